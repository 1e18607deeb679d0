package utils

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/pkg/errors"
)

// MaxDifficulty is the length of a hex SHA256 digest. Anything above can never be met.
const MaxDifficulty = 64

// CreateBlock creates an unmined block on top of prevHash. Its hash is computed right away
// and the nonce starts at 0.
func CreateBlock(timestamp int64, txs []*model.Transaction, prevHash string) *model.Block {
	block := &model.Block{
		Timestamp:    timestamp,
		PreviousHash: prevHash,
		Transactions: txs,
	}
	block.Hash = CalcBlockHash(block)
	return block
}

// GetTransactionsBytes is the canonical serialization of a transaction list. It has the same
// shape as the persisted JSON with a fixed field order, so identical transactions always give
// identical bytes.
func GetTransactionsBytes(txs []*model.Transaction) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, tx := range txs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"fromAddress":`)
		if tx.IsReward() {
			buf.WriteString("null")
		} else {
			writeJSONString(&buf, tx.FromAddress)
		}
		buf.WriteString(`,"toAddress":`)
		writeJSONString(&buf, tx.ToAddress)
		buf.WriteString(`,"amount":`)
		buf.WriteString(FormatAmount(tx.Amount))
		buf.WriteString(`,"timestamp":`)
		buf.WriteString(FormatInt64(tx.Timestamp))
		if tx.Signature != "" {
			buf.WriteString(`,"signature":`)
			writeJSONString(&buf, tx.Signature)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func writeJSONString(buf *bytes.Buffer, s string) {
	// Marshalling a string never fails.
	b, _ := json.Marshal(s)
	buf.Write(b)
}

// GetBlockBytes concats previous hash, timestamp, canonical transactions and nonce.
func GetBlockBytes(block *model.Block) []byte {
	var data []byte
	data = append(data, block.PreviousHash...)
	data = append(data, FormatInt64(block.Timestamp)...)
	data = append(data, GetTransactionsBytes(block.Transactions)...)
	data = append(data, FormatInt64(block.Nonce)...)
	return data
}

// CalcBlockHash returns the hex SHA256 digest of the block content.
func CalcBlockHash(block *model.Block) string {
	return BytesToHex(SHA256(GetBlockBytes(block)))
}

func ValidateDifficulty(difficulty int) error {
	if difficulty < 0 || difficulty > MaxDifficulty {
		return errors.Wrapf(model.ErrInvalidDifficulty, "difficulty must be within [0, %d], got %d", MaxDifficulty, difficulty)
	}
	return nil
}

// MatchDifficulty reports whether the first difficulty hex characters of hash are all '0'.
func MatchDifficulty(hash string, difficulty int) bool {
	if difficulty < 0 || difficulty > len(hash) {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}

// Mine a block, fill the nonce and hash given the current difficulty setting.
// difficulty - how many leading hex zeros. With 0 the current hash is accepted as is.
// The search only ends on success or when ctx is done, in which case ctx's error is returned.
func Mine(ctx context.Context, block *model.Block, difficulty int) error {
	if err := ValidateDifficulty(difficulty); err != nil {
		return err
	}
	block.Hash = CalcBlockHash(block)
	for !MatchDifficulty(block.Hash, difficulty) {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "mining interrupted at nonce %d", block.Nonce)
		default:
		}
		block.Nonce++
		block.Hash = CalcBlockHash(block)
	}
	return nil
}

// HasValidTransactions is true iff every transaction of the block is valid. An error from a
// validity check is handed back to the caller.
func HasValidTransactions(block *model.Block) (bool, error) {
	for i, tx := range block.Transactions {
		valid, err := IsValidTransaction(tx)
		if err != nil {
			return false, errors.WithMessagef(err, "transaction %d", i)
		}
		if !valid {
			return false, nil
		}
	}
	return true, nil
}
