package utils

import (
	"math"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// CreateTransaction creates an unsigned transaction stamped with the current time.
// An empty from address creates a mining reward. Amounts are not checked against any balance.
func CreateTransaction(from string, to string, amount float64) (*model.Transaction, error) {
	if to == "" {
		return nil, errors.Wrap(model.ErrInvalidTransaction, "receiver address is empty")
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, errors.Wrapf(model.ErrInvalidTransaction, "amount %v is not a non-negative number", amount)
	}
	return &model.Transaction{
		FromAddress: from,
		ToAddress:   to,
		Amount:      amount,
		Timestamp:   NowMillis(),
	}, nil
}

// GetTransactionBytes concats the signed content of a transaction: from, to, amount and timestamp.
// The signature itself is not part of it.
func GetTransactionBytes(tx *model.Transaction) []byte {
	var data []byte
	data = append(data, tx.FromAddress...)
	data = append(data, tx.ToAddress...)
	data = append(data, FormatAmount(tx.Amount)...)
	data = append(data, FormatInt64(tx.Timestamp)...)
	return data
}

// GetTransactionHash returns the hex SHA256 content hash of a transaction.
func GetTransactionHash(tx *model.Transaction) string {
	return BytesToHex(SHA256(GetTransactionBytes(tx)))
}

// SignTransaction signs the content hash with sk. sk must belong to the sender.
func SignTransaction(tx *model.Transaction, sk *secp256k1.PrivateKey) error {
	pk := PublicKeyToHex(sk.PubKey())
	if pk != tx.FromAddress {
		return errors.Wrapf(model.ErrUnauthorizedSigning, "key %s does not own %s", ShortenString(pk), ShortenString(tx.FromAddress))
	}
	digest := SHA256(GetTransactionBytes(tx))
	tx.Signature = BytesToHex(Sign(digest, sk))
	return nil
}

// A transaction is valid if:
// 0. Is a mining reward, which needs no signature.
// 1. Carries a signature.
// 2. The signature verifies against the sender's public key.
// A missing signature is an error, a wrong one is just invalid.
func IsValidTransaction(tx *model.Transaction) (bool, error) {
	if tx.IsReward() {
		return true, nil
	}
	if tx.Signature == "" {
		return false, errors.Wrapf(model.ErrMissingSignature, "transaction from %s", ShortenString(tx.FromAddress))
	}
	pk, err := HexToPublicKey(tx.FromAddress)
	if err != nil {
		return false, nil
	}
	sig, err := HexToBytes(tx.Signature)
	if err != nil {
		return false, nil
	}
	return Verify(SHA256(GetTransactionBytes(tx)), pk, sig), nil
}
