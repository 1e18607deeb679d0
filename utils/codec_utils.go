package utils

import (
	"encoding/json"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/pkg/errors"
)

// TransactionData is the serialized form of a transaction. Required fields are pointers so
// that a missing field can be told apart from a zero value.
type TransactionData struct {
	FromAddress *string  `json:"fromAddress"`
	ToAddress   *string  `json:"toAddress"`
	Amount      *float64 `json:"amount"`
	Timestamp   *int64   `json:"timestamp"`
	Signature   string   `json:"signature,omitempty"`
}

type BlockData struct {
	Timestamp    *int64             `json:"timestamp"`
	PreviousHash *string            `json:"previousHash"`
	Hash         *string            `json:"hash"`
	Nonce        *int64             `json:"nonce"`
	Transactions []*TransactionData `json:"transactions"`
}

type LedgerData struct {
	Difficulty          *int               `json:"difficulty"`
	MiningReward        *float64           `json:"miningReward"`
	Chain               []*BlockData       `json:"chain"`
	PendingTransactions []*TransactionData `json:"pendingTransactions"`
}

func NewTransactionData(tx *model.Transaction) *TransactionData {
	d := &TransactionData{
		ToAddress: &tx.ToAddress,
		Amount:    &tx.Amount,
		Timestamp: &tx.Timestamp,
		Signature: tx.Signature,
	}
	if !tx.IsReward() {
		d.FromAddress = &tx.FromAddress
	}
	return d
}

func NewTransactionDataList(txs []*model.Transaction) []*TransactionData {
	data := make([]*TransactionData, 0, len(txs))
	for _, tx := range txs {
		data = append(data, NewTransactionData(tx))
	}
	return data
}

func NewBlockData(b *model.Block) *BlockData {
	return &BlockData{
		Timestamp:    &b.Timestamp,
		PreviousHash: &b.PreviousHash,
		Hash:         &b.Hash,
		Nonce:        &b.Nonce,
		Transactions: NewTransactionDataList(b.Transactions),
	}
}

func NewLedgerData(l *model.Ledger) *LedgerData {
	chain := make([]*BlockData, 0, len(l.Chain))
	for _, b := range l.Chain {
		chain = append(chain, NewBlockData(b))
	}
	return &LedgerData{
		Difficulty:          &l.Difficulty,
		MiningReward:        &l.MiningReward,
		Chain:               chain,
		PendingTransactions: NewTransactionDataList(l.PendingTransactions),
	}
}

// ParseTransactionData rebuilds a transaction verbatim, the signature is not checked.
func ParseTransactionData(d *TransactionData) (*model.Transaction, error) {
	if d == nil {
		return nil, errors.Wrap(model.ErrMalformedData, "transaction is null")
	}
	if d.ToAddress == nil || *d.ToAddress == "" {
		return nil, errors.Wrap(model.ErrMalformedData, "transaction has no toAddress")
	}
	if d.Amount == nil {
		return nil, errors.Wrap(model.ErrMalformedData, "transaction has no amount")
	}
	if *d.Amount < 0 {
		return nil, errors.Wrapf(model.ErrMalformedData, "transaction amount %v is negative", *d.Amount)
	}
	if d.Timestamp == nil {
		return nil, errors.Wrap(model.ErrMalformedData, "transaction has no timestamp")
	}
	tx := &model.Transaction{
		ToAddress: *d.ToAddress,
		Amount:    *d.Amount,
		Timestamp: *d.Timestamp,
		Signature: d.Signature,
	}
	if d.FromAddress != nil {
		tx.FromAddress = *d.FromAddress
	}
	return tx, nil
}

func parseTransactionDataList(ds []*TransactionData) ([]*model.Transaction, error) {
	txs := make([]*model.Transaction, 0, len(ds))
	for i, d := range ds {
		tx, err := ParseTransactionData(d)
		if err != nil {
			return nil, errors.WithMessagef(err, "transaction %d", i)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// ParseBlockData rebuilds a block without mining it again: hash and nonce are taken as stored.
func ParseBlockData(d *BlockData) (*model.Block, error) {
	if d == nil {
		return nil, errors.Wrap(model.ErrMalformedData, "block is null")
	}
	if d.Timestamp == nil || d.PreviousHash == nil || d.Hash == nil || d.Nonce == nil {
		return nil, errors.Wrap(model.ErrMalformedData, "block needs timestamp, previousHash, hash and nonce")
	}
	txs, err := parseTransactionDataList(d.Transactions)
	if err != nil {
		return nil, err
	}
	return &model.Block{
		Timestamp:    *d.Timestamp,
		PreviousHash: *d.PreviousHash,
		Hash:         *d.Hash,
		Nonce:        *d.Nonce,
		Transactions: txs,
	}, nil
}

// ParseLedgerData rebuilds a ledger. The chain is not validated, call IsChainValid for that.
func ParseLedgerData(d *LedgerData) (*model.Ledger, error) {
	if d == nil {
		return nil, errors.Wrap(model.ErrMalformedData, "ledger is null")
	}
	if d.Difficulty == nil || d.MiningReward == nil {
		return nil, errors.Wrap(model.ErrMalformedData, "ledger needs difficulty and miningReward")
	}
	if len(d.Chain) == 0 {
		return nil, errors.Wrap(model.ErrMalformedData, "ledger chain is empty")
	}
	l := &model.Ledger{
		Difficulty:   *d.Difficulty,
		MiningReward: *d.MiningReward,
	}
	for i, bd := range d.Chain {
		b, err := ParseBlockData(bd)
		if err != nil {
			return nil, errors.WithMessagef(err, "block %d", i)
		}
		l.Chain = append(l.Chain, b)
	}
	pending, err := parseTransactionDataList(d.PendingTransactions)
	if err != nil {
		return nil, errors.WithMessage(err, "pending")
	}
	l.PendingTransactions = pending
	return l, nil
}

func ParseTransaction(data []byte) (*model.Transaction, error) {
	var d TransactionData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedData, "transaction: %v", err)
	}
	return ParseTransactionData(&d)
}

// ParseTransactions parses a JSON array of transactions.
func ParseTransactions(data []byte) ([]*model.Transaction, error) {
	var ds []*TransactionData
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedData, "transactions: %v", err)
	}
	return parseTransactionDataList(ds)
}

func ParseBlock(data []byte) (*model.Block, error) {
	var d BlockData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedData, "block: %v", err)
	}
	return ParseBlockData(&d)
}

func ParseLedger(data []byte) (*model.Ledger, error) {
	var d LedgerData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedData, "ledger: %v", err)
	}
	return ParseLedgerData(&d)
}

func MarshalTransaction(tx *model.Transaction) ([]byte, error) {
	data, err := json.Marshal(NewTransactionData(tx))
	return data, errors.Wrap(err, "failed to marshal transaction")
}

func MarshalTransactions(txs []*model.Transaction) ([]byte, error) {
	data, err := json.Marshal(NewTransactionDataList(txs))
	return data, errors.Wrap(err, "failed to marshal transactions")
}

func MarshalBlock(b *model.Block) ([]byte, error) {
	data, err := json.Marshal(NewBlockData(b))
	return data, errors.Wrap(err, "failed to marshal block")
}

func MarshalLedger(l *model.Ledger) ([]byte, error) {
	data, err := json.MarshalIndent(NewLedgerData(l), "", "  ")
	return data, errors.Wrap(err, "failed to marshal ledger")
}
