package wallet

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/Luismorlan/ledger_in_go/client"
	"github.com/Luismorlan/ledger_in_go/config"
	"github.com/Luismorlan/ledger_in_go/full_node"
	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/Luismorlan/ledger_in_go/service"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func GetTestWallet(t *testing.T) *Wallet {
	sk, _, err := utils.GenerateKeyPair()
	assert.Nil(t, err)
	return NewWalletFromKey(sk, nil)
}

// Connect w to a fresh full node served in memory.
func connectTestFullNode(t *testing.T, w *Wallet) *full_node.FullNode {
	c := config.DefaultAppConfig()
	c.DIFFICULTY = 1
	f, err := full_node.NewFullNode(c, nil)
	assert.Nil(t, err)

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	service.RegisterLedgerServiceServer(s, full_node.NewFullNodeServer(f, nil))
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	fc, err := client.Dial("bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	assert.Nil(t, err)
	w.FullNodeClient = fc
	t.Cleanup(func() { w.Close() })
	return f
}

func TestNewWallet(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "key")
	w, err := NewWallet(keyPath, nil)
	assert.Nil(t, err)

	// The key created on first use is loaded afterwards.
	reloaded, err := NewWallet(keyPath, nil)
	assert.Nil(t, err)
	assert.Equal(t, w.GetPublicKey(), reloaded.GetPublicKey())

	_, err = NewWallet("", nil)
	assert.NotNil(t, err)
}

func TestCreateSignedTransaction(t *testing.T) {
	testWallet := GetTestWallet(t)
	receiver := GetTestWallet(t)

	actualTx, err := testWallet.CreateSignedTransaction(receiver.GetPublicKey(), 10)
	assert.Nil(t, err)
	assert.Equal(t, testWallet.GetPublicKey(), actualTx.FromAddress)
	assert.Equal(t, receiver.GetPublicKey(), actualTx.ToAddress)
	assert.Equal(t, 10.0, actualTx.Amount)

	valid, err := utils.IsValidTransaction(actualTx)
	assert.Nil(t, err)
	assert.True(t, valid)

	_, err = testWallet.CreateSignedTransaction("not a key", 10)
	assert.True(t, errors.Is(err, model.ErrInvalidTransaction))
	_, err = testWallet.CreateSignedTransaction(receiver.GetPublicKey(), -1)
	assert.True(t, errors.Is(err, model.ErrInvalidTransaction))
}

func TestNotConnected(t *testing.T) {
	testWallet := GetTestWallet(t)
	assert.NotNil(t, testWallet.TransferMoney(GetTestWallet(t).GetPublicKey(), 1))
	_, err := testWallet.GetBalance()
	assert.NotNil(t, err)
	_, err = testWallet.GetHistory()
	assert.NotNil(t, err)
	assert.Nil(t, testWallet.Close())
}

func TestTransferMoney(t *testing.T) {
	testWallet := GetTestWallet(t)
	receiver := GetTestWallet(t)
	f := connectTestFullNode(t, testWallet)

	_, err := f.MinePendingTransactions(context.Background(), testWallet.GetPublicKey())
	assert.Nil(t, err)
	balance, err := testWallet.GetBalance()
	assert.Nil(t, err)
	assert.Equal(t, 100.0, balance)

	assert.Nil(t, testWallet.TransferMoney(receiver.GetPublicKey(), 25))
	assert.Len(t, f.GetPendingTransactions(), 1)
	// Pending transfers don't count yet.
	balance, _ = testWallet.GetBalance()
	assert.Equal(t, 100.0, balance)

	_, err = f.MinePendingTransactions(context.Background(), receiver.GetPublicKey())
	assert.Nil(t, err)
	balance, _ = testWallet.GetBalance()
	assert.Equal(t, 75.0, balance)
	assert.Equal(t, 125.0, f.GetBalanceOfAddress(receiver.GetPublicKey()))

	history, err := testWallet.GetHistory()
	assert.Nil(t, err)
	assert.Len(t, history, 2)
	assert.True(t, history[0].IsReward())
	assert.Equal(t, receiver.GetPublicKey(), history[1].ToAddress)
}

func TestMultipleKeys(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "keys")
	w, err := NewWallet(keyPath, nil)
	assert.Nil(t, err)
	first := w.GetPublicKey()

	i, err := w.NewKey()
	assert.Nil(t, err)
	assert.Equal(t, 1, i)
	// The current key doesn't change until switched.
	assert.Equal(t, first, w.GetPublicKey())
	assert.Nil(t, w.UseKey(1))
	second := w.GetPublicKey()
	assert.NotEqual(t, first, second)
	assert.NotNil(t, w.UseKey(2))
	assert.NotNil(t, w.UseKey(-1))

	assert.True(t, w.IsOwnAddress(first))
	assert.True(t, w.IsOwnAddress(second))
	assert.False(t, w.IsOwnAddress(GetTestWallet(t).GetPublicKey()))
	assert.False(t, w.IsOwnAddress(""))

	// New keys are persisted next to the first one.
	reloaded, err := NewWallet(keyPath, nil)
	assert.Nil(t, err)
	assert.Equal(t, []string{first, second}, reloaded.GetPublicKeys())
	assert.Equal(t, first, reloaded.GetPublicKey())

	// Transfers are signed by the current key.
	tx, err := w.CreateSignedTransaction(first, 5)
	assert.Nil(t, err)
	assert.Equal(t, second, tx.FromAddress)
	valid, err := utils.IsValidTransaction(tx)
	assert.Nil(t, err)
	assert.True(t, valid)
}

func TestMineAndInspectLedger(t *testing.T) {
	testWallet := GetTestWallet(t)
	receiver := GetTestWallet(t)
	f := connectTestFullNode(t, testWallet)

	block, err := testWallet.MineBlock(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, testWallet.GetPublicKey(), block.Transactions[0].ToAddress)
	balance, _ := testWallet.GetBalance()
	assert.Equal(t, 100.0, balance)

	assert.Nil(t, testWallet.TransferMoney(receiver.GetPublicKey(), 40))
	pending, err := testWallet.GetPendingTransactions()
	assert.Nil(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, 40.0, pending[0].Amount)

	l, err := testWallet.GetLedger()
	assert.Nil(t, err)
	assert.Len(t, l.Chain, 2)
	assert.Equal(t, f.GetLatestBlock().Hash, l.GetLatestBlock().Hash)

	valid, err := testWallet.ValidateChain()
	assert.Nil(t, err)
	assert.True(t, valid)
}

func TestNotConnectedNodeQueries(t *testing.T) {
	testWallet := GetTestWallet(t)
	_, err := testWallet.MineBlock(context.Background())
	assert.NotNil(t, err)
	_, err = testWallet.GetLedger()
	assert.NotNil(t, err)
	_, err = testWallet.GetPendingTransactions()
	assert.NotNil(t, err)
	_, err = testWallet.ValidateChain()
	assert.NotNil(t, err)
}
