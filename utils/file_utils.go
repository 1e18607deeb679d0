package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// ParseKeyFile reads the private key at fPath. With createNewKey a fresh key is generated
// and saved there instead.
func ParseKeyFile(fPath string, createNewKey bool) (*secp256k1.PrivateKey, error) {
	if fPath == "" {
		return nil, errors.New("file path is missing")
	}
	if createNewKey {
		sk, _, err := GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		if err := SavePrivateKeyToFile(sk, fPath); err != nil {
			return nil, err
		}
		return sk, nil
	}
	return ReadKeyFromFPath(fPath)
}

// SavePrivateKeyToFile writes the key as a single hex line, readable only by the owner.
func SavePrivateKeyToFile(sk *secp256k1.PrivateKey, fPath string) error {
	return SavePrivateKeysToFile([]*secp256k1.PrivateKey{sk}, fPath)
}

// SavePrivateKeysToFile writes one hex key per line, readable only by the owner.
func SavePrivateKeysToFile(sks []*secp256k1.PrivateKey, fPath string) error {
	var b strings.Builder
	for _, sk := range sks {
		b.WriteString(PrivateKeyToHex(sk))
		b.WriteByte('\n')
	}
	err := os.WriteFile(fPath, []byte(b.String()), 0600)
	return errors.Wrapf(err, "failed to save key in %s", fPath)
}

// ReadKeyFromFPath returns the first key of the file.
func ReadKeyFromFPath(fPath string) (*secp256k1.PrivateKey, error) {
	sks, err := ReadKeysFromFPath(fPath)
	if err != nil {
		return nil, err
	}
	return sks[0], nil
}

// ReadKeysFromFPath returns every key of the file in order. Blank lines are skipped.
func ReadKeysFromFPath(fPath string) ([]*secp256k1.PrivateKey, error) {
	fileContent, err := os.ReadFile(fPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key from %s", fPath)
	}
	var sks []*secp256k1.PrivateKey
	for i, line := range strings.Split(string(fileContent), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sk, err := HexToPrivateKey(line)
		if err != nil {
			return nil, errors.WithMessagef(err, "key file %s line %d", fPath, i+1)
		}
		sks = append(sks, sk)
	}
	if len(sks) == 0 {
		return nil, errors.Errorf("key file %s is empty", fPath)
	}
	return sks, nil
}

// SaveLedgerToFile persists a ledger as JSON. The file is replaced atomically so a crash
// never leaves half a ledger behind.
func SaveLedgerToFile(l *model.Ledger, fPath string) error {
	data, err := MarshalLedger(l)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(fPath), filepath.Base(fPath)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", fPath)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", tmp.Name())
	}
	return errors.Wrapf(os.Rename(tmp.Name(), fPath), "failed to replace %s", fPath)
}

// ReadLedgerFromFile loads a ledger written by SaveLedgerToFile. For a missing file the error
// matches fs.ErrNotExist.
func ReadLedgerFromFile(fPath string) (*model.Ledger, error) {
	data, err := os.ReadFile(fPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read ledger from %s", fPath)
	}
	l, err := ParseLedger(data)
	return l, errors.WithMessagef(err, "ledger file %s", fPath)
}
