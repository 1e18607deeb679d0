package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKeyFile(t *testing.T) {
	fPath := filepath.Join(t.TempDir(), "key")

	_, err := ParseKeyFile(fPath, false)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	sk, err := ParseKeyFile(fPath, true)
	assert.Nil(t, err)
	info, err := os.Stat(fPath)
	assert.Nil(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := ParseKeyFile(fPath, false)
	assert.Nil(t, err)
	assert.Equal(t, sk.Serialize(), loaded.Serialize())

	_, err = ParseKeyFile("", false)
	assert.NotNil(t, err)
}

func TestReadBadKeyFile(t *testing.T) {
	fPath := filepath.Join(t.TempDir(), "key")
	assert.Nil(t, os.WriteFile(fPath, []byte("\n"), 0600))
	_, err := ReadKeyFromFPath(fPath)
	assert.NotNil(t, err)

	assert.Nil(t, os.WriteFile(fPath, []byte("not a key"), 0600))
	_, err = ReadKeyFromFPath(fPath)
	assert.NotNil(t, err)
}

func TestLedgerFile(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "ledger.json")

	_, err := ReadLedgerFromFile(fPath)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	l := &model.Ledger{Difficulty: 1, MiningReward: 100, Chain: createTestChain(t)}
	assert.Nil(t, SaveLedgerToFile(l, fPath))
	// Overwriting replaces the file.
	assert.Nil(t, SaveLedgerToFile(l, fPath))

	loaded, err := ReadLedgerFromFile(fPath)
	assert.Nil(t, err)
	assert.Equal(t, l.Chain, loaded.Chain)
	assert.Empty(t, loaded.PendingTransactions)

	// No temp files are left behind.
	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1)

	assert.Nil(t, os.WriteFile(fPath, []byte("{"), 0600))
	_, err = ReadLedgerFromFile(fPath)
	assert.True(t, errors.Is(err, model.ErrMalformedData))
}

func TestKeysFile(t *testing.T) {
	fPath := filepath.Join(t.TempDir(), "keys")
	sk1, _, _ := GenerateKeyPair()
	sk2, _, _ := GenerateKeyPair()
	assert.Nil(t, SavePrivateKeysToFile([]*secp256k1.PrivateKey{sk1, sk2}, fPath))

	sks, err := ReadKeysFromFPath(fPath)
	assert.Nil(t, err)
	assert.Len(t, sks, 2)
	assert.Equal(t, sk1.Serialize(), sks[0].Serialize())
	assert.Equal(t, sk2.Serialize(), sks[1].Serialize())

	// A single key reader takes the first one.
	first, err := ReadKeyFromFPath(fPath)
	assert.Nil(t, err)
	assert.Equal(t, sk1.Serialize(), first.Serialize())

	assert.Nil(t, os.WriteFile(fPath, []byte(PrivateKeyToHex(sk1)+"\n\nzz\n"), 0600))
	_, err = ReadKeysFromFPath(fPath)
	assert.NotNil(t, err)
}
