package utils

import (
	"testing"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// Create a key pair, returns the private key and its address.
func createTestAccount(t *testing.T) (*secp256k1.PrivateKey, string) {
	sk, pk, err := GenerateKeyPair()
	assert.Nil(t, err)
	return sk, PublicKeyToHex(pk)
}

func createSignedTransaction(t *testing.T, sk *secp256k1.PrivateKey, to string, amount float64) *model.Transaction {
	tx, err := CreateTransaction(PublicKeyToHex(sk.PubKey()), to, amount)
	assert.Nil(t, err)
	assert.Nil(t, SignTransaction(tx, sk))
	return tx
}

func TestCreateTransaction(t *testing.T) {
	before := NowMillis()
	tx, err := CreateTransaction("a", "b", 10)
	assert.Nil(t, err)
	assert.Equal(t, "a", tx.FromAddress)
	assert.Equal(t, "b", tx.ToAddress)
	assert.Equal(t, 10.0, tx.Amount)
	assert.GreaterOrEqual(t, tx.Timestamp, before)
	assert.Empty(t, tx.Signature)
	assert.False(t, tx.IsReward())

	reward, err := CreateTransaction("", "b", 100)
	assert.Nil(t, err)
	assert.True(t, reward.IsReward())
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	_, err := CreateTransaction("a", "", 1)
	assert.True(t, errors.Is(err, model.ErrInvalidTransaction))
	_, err = CreateTransaction("a", "b", -1)
	assert.True(t, errors.Is(err, model.ErrInvalidTransaction))
}

func TestGetTransactionHash(t *testing.T) {
	tx := &model.Transaction{FromAddress: "a", ToAddress: "b", Amount: 0.5, Timestamp: 42}
	assert.Equal(t, "ab0.542", string(GetTransactionBytes(tx)))
	assert.Equal(t, BytesToHex(SHA256([]byte("ab0.542"))), GetTransactionHash(tx))

	// The signature doesn't take part in the hash.
	hash := GetTransactionHash(tx)
	tx.Signature = "abcd"
	assert.Equal(t, hash, GetTransactionHash(tx))

	tx.Amount = 5
	assert.NotEqual(t, hash, GetTransactionHash(tx))
}

func TestSignAndValidateTransaction(t *testing.T) {
	sk, _ := createTestAccount(t)
	_, to := createTestAccount(t)
	tx := createSignedTransaction(t, sk, to, 10)
	assert.NotEmpty(t, tx.Signature)

	valid, err := IsValidTransaction(tx)
	assert.Nil(t, err)
	assert.True(t, valid)
}

func TestSignWithWrongKey(t *testing.T) {
	_, from := createTestAccount(t)
	otherSk, _ := createTestAccount(t)
	tx, _ := CreateTransaction(from, "b", 10)

	err := SignTransaction(tx, otherSk)
	assert.True(t, errors.Is(err, model.ErrUnauthorizedSigning))
	assert.Empty(t, tx.Signature)
}

func TestValidateTransactionWithoutSignature(t *testing.T) {
	_, from := createTestAccount(t)
	tx, _ := CreateTransaction(from, "b", 10)

	valid, err := IsValidTransaction(tx)
	assert.False(t, valid)
	assert.True(t, errors.Is(err, model.ErrMissingSignature))
}

func TestValidateTamperedTransaction(t *testing.T) {
	sk, _ := createTestAccount(t)
	tx := createSignedTransaction(t, sk, "b", 10)
	tx.Amount = 1000

	valid, err := IsValidTransaction(tx)
	assert.Nil(t, err)
	assert.False(t, valid)
}

func TestValidateUndecodableTransaction(t *testing.T) {
	sk, from := createTestAccount(t)
	tx := createSignedTransaction(t, sk, "b", 10)
	tx.Signature = "not hex"
	valid, err := IsValidTransaction(tx)
	assert.Nil(t, err)
	assert.False(t, valid)

	bogus := &model.Transaction{FromAddress: "A", ToAddress: from, Amount: 1, Timestamp: 1, Signature: "abcd"}
	valid, err = IsValidTransaction(bogus)
	assert.Nil(t, err)
	assert.False(t, valid)
}

func TestValidateReward(t *testing.T) {
	reward, _ := CreateTransaction("", "b", 100)
	valid, err := IsValidTransaction(reward)
	assert.Nil(t, err)
	assert.True(t, valid)
}
