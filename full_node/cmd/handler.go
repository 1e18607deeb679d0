package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/Luismorlan/ledger_in_go/commands"
	"github.com/Luismorlan/ledger_in_go/full_node"
	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/Luismorlan/ledger_in_go/visualize"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// handler runs console commands against a full node. At most one mining task runs at a time.
type handler struct {
	node      *full_node.FullNode
	logger    *slog.Logger
	statePath string
	renderDir string

	isMining *atomic.Bool
	// Cancels the running mining task.
	cancel context.CancelFunc
	m      sync.Mutex
	wg     sync.WaitGroup
}

func newHandler(node *full_node.FullNode, logger *slog.Logger, statePath string) *handler {
	return &handler{
		node:      node,
		logger:    logger,
		statePath: statePath,
		renderDir: os.TempDir(),
		isMining:  atomic.NewBool(false),
	}
}

// HandleLine parses and runs one console line.
func (h *handler) HandleLine(line string) error {
	c, err := commands.CreateCommand(line)
	if err != nil {
		return err
	}
	return h.HandleCommand(c)
}

func (h *handler) HandleCommand(c commands.Command) error {
	switch c.Op {
	case commands.START:
		return h.startMining(c.Args[0], false)
	case commands.MINE:
		return h.startMining(c.Args[0], true)
	case commands.STOP:
		if !h.isMining.Load() {
			return errors.New("no running mining task to stop")
		}
		h.m.Lock()
		h.cancel()
		h.m.Unlock()
	case commands.BALANCE:
		h.logger.Info("balance", "address", utils.ShortenString(c.Args[0]), "balance", h.node.GetBalanceOfAddress(c.Args[0]))
	case commands.HISTORY:
		txs := h.node.GetTransactionsOfAddress(c.Args[0])
		h.logger.Info("history", "address", utils.ShortenString(c.Args[0]), "count", len(txs))
		for _, tx := range txs {
			h.logTransaction(tx)
		}
	case commands.PENDING:
		txs := h.node.GetPendingTransactions()
		h.logger.Info("pending transactions", "count", len(txs))
		for _, tx := range txs {
			h.logTransaction(tx)
		}
	case commands.VALIDATE:
		h.logger.Info("chain validated", "height", h.node.GetHeight(), "valid", h.node.IsChainValid())
	case commands.DIFFICULTY:
		d, _ := strconv.Atoi(c.Args[0])
		return h.node.SetDifficulty(d)
	case commands.REWARD:
		r, _ := strconv.ParseFloat(c.Args[0], 64)
		return h.node.SetMiningReward(r)
	case commands.SHOW:
		d, _ := strconv.Atoi(c.Args[0])
		dotName, pngName, err := visualize.RenderToFile(h.node.GetChain(), d, h.node.GetUUID(), h.renderDir)
		if err != nil {
			return err
		}
		h.logger.Info("rendered chain", "dot", dotName, "png", pngName)
	case commands.SAVE:
		return h.save()
	default:
		return errors.Errorf("unrecognized command: %v", c)
	}
	return nil
}

func (h *handler) logTransaction(tx *model.Transaction) {
	from := "REWARD"
	if !tx.IsReward() {
		from = utils.ShortenString(tx.FromAddress)
	}
	h.logger.Info("  tx", "from", from, "to", utils.ShortenString(tx.ToAddress), "amount", tx.Amount, "timestamp", tx.Timestamp)
}

// startMining mines in the background until stopped, or a single block with once.
func (h *handler) startMining(rewardAddress string, once bool) error {
	if !h.isMining.CompareAndSwap(false, true) {
		return errors.New("mining has already been started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.m.Lock()
	h.cancel = cancel
	h.m.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.isMining.Store(false)
		defer cancel()
		for {
			if _, err := h.node.MinePendingTransactions(ctx, rewardAddress); err != nil {
				if ctx.Err() == nil {
					h.logger.Error("mining failed", "err", err)
				}
				return
			}
			if err := h.save(); err != nil {
				h.logger.Error("failed to save ledger", "err", err)
			}
			if once {
				return
			}
		}
	}()
	return nil
}

// wait blocks until the running mining task, if any, returns.
func (h *handler) wait() {
	h.wg.Wait()
}

func (h *handler) save() error {
	if h.statePath == "" {
		return nil
	}
	if err := utils.SaveLedgerToFile(h.node.Snapshot(), h.statePath); err != nil {
		return err
	}
	h.logger.Debug("ledger saved", "path", h.statePath)
	return nil
}
