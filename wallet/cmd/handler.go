package main

import (
	"context"
	"strconv"
	"sync"

	"github.com/Luismorlan/ledger_in_go/commands"
	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/Luismorlan/ledger_in_go/wallet"
	"github.com/pkg/errors"
)

// handler runs console commands against a wallet. Mining runs in the background and ends
// with ctx.
type handler struct {
	w   *wallet.Wallet
	ctx context.Context
	wg  sync.WaitGroup
}

func (h *handler) HandleLine(line string) error {
	if h.w == nil {
		return errors.New("wallet is still loading")
	}
	c, err := commands.CreateClientCommand(line)
	if err != nil {
		return err
	}
	return h.HandleCommand(c)
}

func (h *handler) HandleCommand(c commands.ClientCommand) error {
	switch c.Op {
	case commands.TRANSFER:
		amount, _ := strconv.ParseFloat(c.Args[1], 64)
		if err := h.w.TransferMoney(c.Args[0], amount); err != nil {
			return err
		}
		h.w.Log("transaction submitted", "to", utils.ShortenString(c.Args[0]), "amount", amount)
	case commands.MY_PK:
		h.w.Log("my address", "pk", h.w.GetPublicKey())
	case commands.CONNECT:
		if err := h.w.SetFullNodeConnection(c.Args[0], c.Args[1]); err != nil {
			return err
		}
		h.w.Log("connected to full node", "host", c.Args[0], "port", c.Args[1])
	case commands.GET_BALANCE:
		b, err := h.w.GetBalance()
		if err != nil {
			return err
		}
		h.w.Log("balance", "balance", b)
	case commands.MY_HISTORY:
		txs, err := h.w.GetHistory()
		if err != nil {
			return err
		}
		h.w.Log("history", "count", len(txs))
		h.logTransactions(txs)
	case commands.MINE_BLOCK:
		if h.w.FullNodeClient == nil {
			return errors.New("not connected to a full node, use connect first")
		}
		h.mine()
	case commands.SHOW_PENDING:
		txs, err := h.w.GetPendingTransactions()
		if err != nil {
			return err
		}
		h.w.Log("pending transactions", "count", len(txs))
		h.logTransactions(txs)
	case commands.SHOW_LEDGER:
		l, err := h.w.GetLedger()
		if err != nil {
			return err
		}
		h.w.Log("ledger", "height", len(l.Chain)-1, "difficulty", l.Difficulty, "reward", l.MiningReward, "pending", len(l.PendingTransactions))
		for i, b := range l.Chain {
			h.w.Log("  block", "height", i, "hash", utils.ShortenString(b.Hash), "nonce", b.Nonce, "txs", len(b.Transactions))
		}
	case commands.VALIDATE_CHAIN:
		valid, err := h.w.ValidateChain()
		if err != nil {
			return err
		}
		h.w.Log("chain validated", "valid", valid)
	case commands.NEW_KEY:
		i, err := h.w.NewKey()
		if err != nil {
			return err
		}
		h.w.Log("new key", "index", i, "pk", h.w.GetPublicKeys()[i])
	case commands.USE_KEY:
		i, _ := strconv.Atoi(c.Args[0])
		if err := h.w.UseKey(i); err != nil {
			return err
		}
		h.w.Log("using key", "index", i, "pk", h.w.GetPublicKey())
	case commands.MY_KEYS:
		current := h.w.GetPublicKey()
		for i, pk := range h.w.GetPublicKeys() {
			h.w.Log("  key", "index", i, "pk", pk, "current", pk == current)
		}
	default:
		return errors.Errorf("unrecognized command: %v", c)
	}
	return nil
}

// mine waits for the block in the background so the console stays usable.
func (h *handler) mine() {
	h.w.Log("mining requested", "reward_to", utils.ShortenString(h.w.GetPublicKey()))
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		b, err := h.w.MineBlock(h.ctx)
		if err != nil {
			h.w.Log("mining failed", "err", err)
			return
		}
		h.w.Log("block mined", "hash", utils.ShortenString(b.Hash), "nonce", b.Nonce, "txs", len(b.Transactions))
	}()
}

// wait blocks until background mining requests return.
func (h *handler) wait() {
	h.wg.Wait()
}

func (h *handler) logTransactions(txs []*model.Transaction) {
	for _, tx := range txs {
		from := "REWARD"
		if !tx.IsReward() {
			from = utils.ShortenString(tx.FromAddress)
		}
		h.w.Log("  tx", "from", from, "to", utils.ShortenString(tx.ToAddress), "amount", tx.Amount, "timestamp", tx.Timestamp, "mine", h.w.IsOwnAddress(tx.FromAddress) || h.w.IsOwnAddress(tx.ToAddress))
	}
}
