package model

// Ledger is the complete state of a full node: the chain and the transactions
// waiting to be mined, together with the mining settings.
type Ledger struct {
	// How many leading hex 0s form a valid block hash.
	Difficulty int
	// Amount credited to the miner of every block.
	MiningReward float64
	// Index 0 is the genesis block. Never empty.
	Chain []*Block
	// Transactions admitted but not yet included in a block.
	PendingTransactions []*Transaction
}

// GetLatestBlock returns the tail of the chain.
func (l *Ledger) GetLatestBlock() *Block {
	return l.Chain[len(l.Chain)-1]
}
