package model

// GenesisPrevHash is the previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

type Block struct {
	// Creation time in unix milliseconds.
	Timestamp int64
	// Hash of the previous block in the hex format.
	PreviousHash string
	// Hash of this entire block in the hex string format.
	Hash string
	// Nonce is the miner's challenge for computing the block.
	Nonce int64
	// Transactions for this block, in inclusion order. Once mined, the last one is the miner's reward.
	Transactions []*Transaction
}
