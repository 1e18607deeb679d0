package model

import "github.com/pkg/errors"

var (
	// Transaction fields are out of range, e.g. no receiver or a negative amount.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// The signing key does not belong to the sender.
	ErrUnauthorizedSigning = errors.New("cannot sign transactions for other wallets")
	ErrMissingSignature    = errors.New("no signature in this transaction")
	ErrInvalidSignature    = errors.New("cannot add invalid transaction to chain")
	// Transaction must include from and to address.
	ErrMalformedTransaction = errors.New("malformed transaction")
	ErrInvalidDifficulty    = errors.New("invalid difficulty")
	// Persisted or received data cannot be turned into ledger types.
	ErrMalformedData = errors.New("malformed data")
	ErrInvalidConfig = errors.New("invalid config")
)
