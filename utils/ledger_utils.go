package utils

import (
	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/pkg/errors"
)

// GenesisTimestamp is 2017-01-01T00:00:00Z in unix milliseconds.
const GenesisTimestamp int64 = 1483228800000

// CreateGenesisBlock creates the first block of every chain: no transactions and previous hash "0".
func CreateGenesisBlock() *model.Block {
	return CreateBlock(GenesisTimestamp, []*model.Transaction{}, model.GenesisPrevHash)
}

// GetBalanceOfAddress scans every transaction of the chain: spending subtracts, receiving adds.
// Balances may go negative.
func GetBalanceOfAddress(chain []*model.Block, address string) float64 {
	balance := 0.0
	for _, block := range chain {
		for _, tx := range block.Transactions {
			if tx.FromAddress == address {
				balance -= tx.Amount
			}
			if tx.ToAddress == address {
				balance += tx.Amount
			}
		}
	}
	return balance
}

// GetTransactionsOfAddress returns every confirmed transaction sent or received by address, in chain order.
func GetTransactionsOfAddress(chain []*model.Block, address string) []*model.Transaction {
	var txs []*model.Transaction
	if address == "" {
		return txs
	}
	for _, block := range chain {
		for _, tx := range block.Transactions {
			if tx.FromAddress == address || tx.ToAddress == address {
				txs = append(txs, tx)
			}
		}
	}
	return txs
}

// ValidateChain checks every block after genesis:
// 1. All transactions are valid.
// 2. The stored hash matches the recomputed one.
// 3. It links to the stored hash of its predecessor.
// The first violation is returned. The genesis block itself is not checked.
func ValidateChain(chain []*model.Block) error {
	for i := 1; i < len(chain); i++ {
		current := chain[i]
		previous := chain[i-1]

		valid, err := HasValidTransactions(current)
		if err != nil {
			return errors.WithMessagef(err, "block %d", i)
		}
		if !valid {
			return errors.Errorf("block %d has invalid transactions", i)
		}

		if expected := CalcBlockHash(current); current.Hash != expected {
			return errors.Errorf("block %d invalid hash: expected %s, got %s", i, expected, current.Hash)
		}

		if current.PreviousHash != previous.Hash {
			return errors.Errorf("block %d invalid prev hash: expected %s, got %s", i, previous.Hash, current.PreviousHash)
		}
	}
	return nil
}

// IsChainValid fails closed: any violation, including an error while checking a transaction, is false.
func IsChainValid(chain []*model.Block) bool {
	return ValidateChain(chain) == nil
}
