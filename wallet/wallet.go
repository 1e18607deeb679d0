package wallet

import (
	"context"
	"io/fs"
	"log/slog"
	"net"

	"github.com/Luismorlan/ledger_in_go/client"
	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// User signs and sends transactions to a full node. A wallet holds one or more keys, the
// current one signs transfers and receives mining rewards.
type Wallet struct {
	keys    []*secp256k1.PrivateKey
	current int
	// New keys are appended to this file. Empty keeps them in memory only.
	keyPath        string
	FullNodeClient *client.FullNodeClient
	logger         *slog.Logger
}

// NewWallet loads the keys at keyPath, or creates and saves one there if the file doesn't exist.
func NewWallet(keyPath string, logger *slog.Logger) (*Wallet, error) {
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}
	if keyPath == "" {
		return nil, errors.New("file path is missing")
	}
	sks, err := utils.ReadKeysFromFPath(keyPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("generating a new key", "path", keyPath)
		var sk *secp256k1.PrivateKey
		sk, err = utils.ParseKeyFile(keyPath, true)
		sks = []*secp256k1.PrivateKey{sk}
	}
	if err != nil {
		return nil, err
	}
	w := NewWalletFromKey(sks[0], logger)
	w.keys = sks
	w.keyPath = keyPath
	return w, nil
}

func NewWalletFromKey(sk *secp256k1.PrivateKey, logger *slog.Logger) *Wallet {
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}
	return &Wallet{
		keys:   []*secp256k1.PrivateKey{sk},
		logger: logger,
	}
}

// GetPublicKey returns the address of the current key.
func (w *Wallet) GetPublicKey() string {
	return utils.PublicKeyToHex(w.keys[w.current].PubKey())
}

// GetPublicKeys returns the addresses of every key, in creation order.
func (w *Wallet) GetPublicKeys() []string {
	pks := make([]string, 0, len(w.keys))
	for _, sk := range w.keys {
		pks = append(pks, utils.PublicKeyToHex(sk.PubKey()))
	}
	return pks
}

// NewKey generates a key, saves it with the others and returns its index. The current key stays.
func (w *Wallet) NewKey() (int, error) {
	sk, _, err := utils.GenerateKeyPair()
	if err != nil {
		return 0, err
	}
	keys := append(w.keys[:len(w.keys):len(w.keys)], sk)
	if w.keyPath != "" {
		if err := utils.SavePrivateKeysToFile(keys, w.keyPath); err != nil {
			return 0, err
		}
	}
	w.keys = keys
	return len(keys) - 1, nil
}

// UseKey switches the current key.
func (w *Wallet) UseKey(i int) error {
	if i < 0 || i >= len(w.keys) {
		return errors.Errorf("no key %d, the wallet holds %d", i, len(w.keys))
	}
	w.current = i
	return nil
}

// IsOwnAddress reports whether address belongs to any key of the wallet.
func (w *Wallet) IsOwnAddress(address string) bool {
	for _, pk := range w.GetPublicKeys() {
		if pk == address {
			return true
		}
	}
	return false
}

func (w *Wallet) Log(msg string, args ...any) {
	w.logger.Info(msg, args...)
}

// SetFullNodeConnection replaces the current full node connection, if any.
func (w *Wallet) SetFullNodeConnection(ipAddr string, port string) error {
	c, err := client.Dial(net.JoinHostPort(ipAddr, port))
	if err != nil {
		return err
	}
	if w.FullNodeClient != nil {
		w.FullNodeClient.Close()
	}
	w.FullNodeClient = c
	return nil
}

func (w *Wallet) Close() error {
	if w.FullNodeClient == nil {
		return nil
	}
	return w.FullNodeClient.Close()
}

func (w *Wallet) connected() error {
	if w.FullNodeClient == nil {
		return errors.New("not connected to a full node, use connect first")
	}
	return nil
}

// CreateSignedTransaction creates a transaction from this wallet to receiverPK and signs it.
// The amount is not checked against the balance.
func (w *Wallet) CreateSignedTransaction(receiverPK string, value float64) (*model.Transaction, error) {
	if _, err := utils.HexToPublicKey(receiverPK); err != nil {
		return nil, errors.Wrapf(model.ErrInvalidTransaction, "receiver %s: %v", utils.ShortenString(receiverPK), err)
	}
	tx, err := utils.CreateTransaction(w.GetPublicKey(), receiverPK, value)
	if err != nil {
		return nil, err
	}
	if err := utils.SignTransaction(tx, w.keys[w.current]); err != nil {
		return nil, err
	}
	return tx, nil
}

func (w *Wallet) TransferMoney(receiverPK string, value float64) error {
	if err := w.connected(); err != nil {
		return err
	}
	tx, err := w.CreateSignedTransaction(receiverPK, value)
	if err != nil {
		return err
	}
	if err := w.FullNodeClient.SubmitTransaction(tx); err != nil {
		return errors.Wrap(err, "failed to send transaction to full node")
	}
	return nil
}

func (w *Wallet) GetBalance() (float64, error) {
	if err := w.connected(); err != nil {
		return 0, err
	}
	return w.FullNodeClient.GetBalance(w.GetPublicKey())
}

// GetHistory returns the confirmed transactions sent or received by this wallet.
func (w *Wallet) GetHistory() ([]*model.Transaction, error) {
	if err := w.connected(); err != nil {
		return nil, err
	}
	return w.FullNodeClient.GetTransactions(w.GetPublicKey())
}

// MineBlock asks the full node to mine its pool with the reward going to the current key.
func (w *Wallet) MineBlock(ctx context.Context) (*model.Block, error) {
	if err := w.connected(); err != nil {
		return nil, err
	}
	return w.FullNodeClient.MineBlock(ctx, w.GetPublicKey())
}

// GetLedger fetches the full node's chain, pool and mining settings.
func (w *Wallet) GetLedger() (*model.Ledger, error) {
	if err := w.connected(); err != nil {
		return nil, err
	}
	return w.FullNodeClient.GetLedger()
}

func (w *Wallet) GetPendingTransactions() ([]*model.Transaction, error) {
	l, err := w.GetLedger()
	if err != nil {
		return nil, err
	}
	return l.PendingTransactions, nil
}

func (w *Wallet) ValidateChain() (bool, error) {
	if err := w.connected(); err != nil {
		return false, err
	}
	return w.FullNodeClient.ValidateChain()
}
