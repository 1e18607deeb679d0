package full_node

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/Luismorlan/ledger_in_go/config"
	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/Luismorlan/ledger_in_go/utils"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// A full node owns the chain and the pool of pending transactions. All reads hand out deep
// copies, so callers never share memory with the node.
type FullNode struct {
	// The blockchain it needs to maintain. Index 0 is the genesis block.
	chain []*model.Block
	// Transaction pool it needs to maintain. Incoming transactions are appended here.
	pendingTxs []*model.Transaction
	// Current mining settings, they apply to the next mined block.
	difficulty   int
	miningReward float64
	// A single mutex for changing internal state.
	m sync.RWMutex
	// Held for a whole mining attempt. Only one block is mined at a time, and the state
	// lock is free meanwhile.
	mm sync.Mutex
	// Balance by (tip hash, address). Nil when disabled.
	balances *lru.Cache
	logger   *slog.Logger
	// A unique identifier of this full node, only used for logs and rendering.
	uuid string
}

type balanceKey struct {
	tip     string
	address string
}

func newFullNode(c config.AppConfig, logger *slog.Logger) (*FullNode, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}
	f := &FullNode{
		difficulty:   c.DIFFICULTY,
		miningReward: c.MINING_REWARD,
		uuid:         uuid.NewV4().String(),
	}
	f.logger = logger.With("node", f.uuid)
	if c.BALANCE_CACHE_SIZE > 0 {
		cache, err := lru.New(c.BALANCE_CACHE_SIZE)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create balance cache")
		}
		f.balances = cache
	}
	return f, nil
}

// Create a brand new full node, which contains a genesis block in the chain.
func NewFullNode(c config.AppConfig, logger *slog.Logger) (*FullNode, error) {
	f, err := newFullNode(c, logger)
	if err != nil {
		return nil, err
	}
	f.chain = []*model.Block{utils.CreateGenesisBlock()}
	f.logger.Info("created ledger", "genesis", f.chain[0].Hash, "difficulty", f.difficulty, "reward", f.miningReward)
	return f, nil
}

// Restore a full node from a ledger snapshot. Stored hashes and signatures are trusted as is,
// call IsChainValid to check them. Mining settings come from the ledger, the rest from c.
func NewFullNodeFromLedger(c config.AppConfig, l *model.Ledger, logger *slog.Logger) (*FullNode, error) {
	if l == nil || len(l.Chain) == 0 {
		return nil, errors.Wrap(model.ErrMalformedData, "ledger has no genesis block")
	}
	if err := utils.ValidateDifficulty(l.Difficulty); err != nil {
		return nil, err
	}
	if l.MiningReward < 0 {
		return nil, errors.Wrapf(model.ErrInvalidConfig, "mining reward %v is negative", l.MiningReward)
	}
	f, err := newFullNode(c, logger)
	if err != nil {
		return nil, err
	}
	f.difficulty = l.Difficulty
	f.miningReward = l.MiningReward
	f.chain = copyBlocks(l.Chain)
	f.pendingTxs = copyTransactions(l.PendingTransactions)
	f.logger.Info("restored ledger", "height", len(f.chain)-1, "pending", len(f.pendingTxs))
	return f, nil
}

func (f *FullNode) GetUUID() string {
	return f.uuid
}

// GetLatestBlock returns a copy of the tail block. The chain is never empty.
func (f *FullNode) GetLatestBlock() *model.Block {
	f.m.RLock()
	defer f.m.RUnlock()
	return copyBlock(f.chain[len(f.chain)-1])
}

// GetHeight returns the height of the tail, genesis is at height 0.
func (f *FullNode) GetHeight() int {
	f.m.RLock()
	defer f.m.RUnlock()
	return len(f.chain) - 1
}

func (f *FullNode) GetChain() []*model.Block {
	f.m.RLock()
	defer f.m.RUnlock()
	return copyBlocks(f.chain)
}

func (f *FullNode) GetPendingTransactions() []*model.Transaction {
	f.m.RLock()
	defer f.m.RUnlock()
	return copyTransactions(f.pendingTxs)
}

func (f *FullNode) GetDifficulty() int {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.difficulty
}

func (f *FullNode) GetMiningReward() float64 {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.miningReward
}

// SetDifficulty changes the difficulty of the next mined block. Mined blocks are not affected.
func (f *FullNode) SetDifficulty(d int) error {
	if err := utils.ValidateDifficulty(d); err != nil {
		return err
	}
	f.m.Lock()
	defer f.m.Unlock()
	f.difficulty = d
	f.logger.Info("difficulty changed", "difficulty", d)
	return nil
}

// SetMiningReward changes the reward of the next mined block.
func (f *FullNode) SetMiningReward(r float64) error {
	if r < 0 {
		return errors.Wrapf(model.ErrInvalidConfig, "mining reward %v is negative", r)
	}
	f.m.Lock()
	defer f.m.Unlock()
	f.miningReward = r
	f.logger.Info("mining reward changed", "reward", r)
	return nil
}

// AddTransaction validates a transaction and queues it for the next block. Mining rewards,
// which have no sender, need no signature; everything else must be signed by its sender.
func (f *FullNode) AddTransaction(tx *model.Transaction) error {
	if tx == nil {
		return errors.Wrap(model.ErrMalformedTransaction, "transaction is nil")
	}
	if tx.ToAddress == "" {
		return errors.Wrap(model.ErrMalformedTransaction, "transaction must include from and to address")
	}
	if tx.Amount < 0 || math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
		return errors.Wrapf(model.ErrInvalidTransaction, "amount %v is not a non-negative number", tx.Amount)
	}
	valid, err := utils.IsValidTransaction(tx)
	if err != nil {
		return err
	}
	if !valid {
		return errors.Wrapf(model.ErrInvalidSignature, "signature of %s does not verify", utils.ShortenString(tx.FromAddress))
	}

	f.m.Lock()
	f.pendingTxs = append(f.pendingTxs, copyTransaction(tx))
	pending := len(f.pendingTxs)
	f.m.Unlock()

	f.logger.Debug("transaction added to pool",
		"from", utils.ShortenString(tx.FromAddress),
		"to", utils.ShortenString(tx.ToAddress),
		"amount", tx.Amount,
		"pending", pending)
	return nil
}

// MinePendingTransactions bundles every pending transaction plus a reward for rewardAddress
// into a block, mines it on top of the tail and appends it. The search can take very long;
// it ends early when ctx is done, in which case neither chain nor pool change.
// Transactions added while mining stay pending for the next block.
func (f *FullNode) MinePendingTransactions(ctx context.Context, rewardAddress string) (*model.Block, error) {
	f.mm.Lock()
	defer f.mm.Unlock()

	// Lock the state only for reading the pool, mining is a really heavy task.
	f.m.RLock()
	reward, err := utils.CreateTransaction("", rewardAddress, f.miningReward)
	if err != nil {
		f.m.RUnlock()
		return nil, err
	}
	txs := make([]*model.Transaction, 0, len(f.pendingTxs)+1)
	txs = append(txs, f.pendingTxs...)
	included := len(txs)
	tail := f.chain[len(f.chain)-1]
	height := len(f.chain)
	difficulty := f.difficulty
	f.m.RUnlock()

	txs = append(txs, reward)
	block := utils.CreateBlock(utils.NowMillis(), txs, tail.Hash)

	f.logger.Info("mining block", "height", height, "txs", len(txs), "difficulty", difficulty)
	start := time.Now()
	if err := utils.Mine(ctx, block, difficulty); err != nil {
		f.logger.Warn("mining stopped", "height", height, "err", err)
		return nil, err
	}

	f.m.Lock()
	f.chain = append(f.chain, block)
	// Only mining removes from the pool and mining is serialized, so the mined transactions
	// are exactly its prefix.
	f.pendingTxs = append([]*model.Transaction(nil), f.pendingTxs[included:]...)
	f.m.Unlock()

	f.logger.Info("block mined",
		"height", height,
		"hash", block.Hash,
		"nonce", block.Nonce,
		"elapsed", time.Since(start))
	return copyBlock(block), nil
}

// GetBalanceOfAddress sums what address received minus what it sent over the whole chain.
// Pending transactions do not count.
func (f *FullNode) GetBalanceOfAddress(address string) float64 {
	f.m.RLock()
	defer f.m.RUnlock()

	key := balanceKey{tip: f.chain[len(f.chain)-1].Hash, address: address}
	if f.balances != nil {
		if v, ok := f.balances.Get(key); ok {
			return v.(float64)
		}
	}
	balance := utils.GetBalanceOfAddress(f.chain, address)
	if f.balances != nil {
		f.balances.Add(key, balance)
	}
	return balance
}

// GetTransactionsOfAddress returns the confirmed history of address.
func (f *FullNode) GetTransactionsOfAddress(address string) []*model.Transaction {
	f.m.RLock()
	defer f.m.RUnlock()
	return copyTransactions(utils.GetTransactionsOfAddress(f.chain, address))
}

// IsChainValid re-validates every block after genesis.
func (f *FullNode) IsChainValid() bool {
	f.m.RLock()
	defer f.m.RUnlock()
	if err := utils.ValidateChain(f.chain); err != nil {
		f.logger.Warn("chain is invalid", "err", err)
		return false
	}
	return true
}

// Snapshot returns a deep copy of the whole state, suitable for persisting.
func (f *FullNode) Snapshot() *model.Ledger {
	f.m.RLock()
	defer f.m.RUnlock()
	return &model.Ledger{
		Difficulty:          f.difficulty,
		MiningReward:        f.miningReward,
		Chain:               copyBlocks(f.chain),
		PendingTransactions: copyTransactions(f.pendingTxs),
	}
}

// Copies only ever see plain data structs, copier cannot fail on them.
var deepCopy = copier.Option{DeepCopy: true}

func copyTransaction(tx *model.Transaction) *model.Transaction {
	c := &model.Transaction{}
	copier.CopyWithOption(c, tx, deepCopy)
	return c
}

func copyTransactions(txs []*model.Transaction) []*model.Transaction {
	c := make([]*model.Transaction, 0, len(txs))
	for _, tx := range txs {
		c = append(c, copyTransaction(tx))
	}
	return c
}

func copyBlock(b *model.Block) *model.Block {
	c := &model.Block{}
	copier.CopyWithOption(c, b, deepCopy)
	return c
}

func copyBlocks(bs []*model.Block) []*model.Block {
	c := make([]*model.Block, 0, len(bs))
	for _, b := range bs {
		c = append(c, copyBlock(b))
	}
	return c
}
