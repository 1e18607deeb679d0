package model

type Transaction struct {
	// Hex string of the sender's uncompressed secp256k1 public key. Empty for a mining reward.
	FromAddress string
	// Hex string of the receiver's public key.
	ToAddress string
	// How much value to transfer. Never negative.
	Amount float64
	// Creation time in unix milliseconds, fixed at construction.
	Timestamp int64
	// Hex DER signature over the transaction's content hash. Empty until signed.
	Signature string
}

// IsReward reports whether the transaction is a mining reward, i.e. it has no sender.
func (t *Transaction) IsReward() bool {
	return t.FromAddress == ""
}
