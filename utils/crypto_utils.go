package utils

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
)

// GenerateKeyPair generates a new secp256k1 key pair.
func GenerateKeyPair() (*secp256k1.PrivateKey, *secp256k1.PublicKey, error) {
	sk, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate key pair")
	}
	return sk, sk.PubKey(), nil
}

// PrivateKeyToHex private key to its 32 byte scalar in hex.
func PrivateKeyToHex(sk *secp256k1.PrivateKey) string {
	return BytesToHex(sk.Serialize())
}

// HexToPrivateKey hex scalar to private key.
func HexToPrivateKey(s string) (*secp256k1.PrivateKey, error) {
	b, err := HexToBytes(s)
	if err != nil {
		return nil, errors.Wrap(err, "private key is not hex")
	}
	if len(b) != secp256k1.PrivKeyBytesLen {
		return nil, errors.Errorf("private key must be %d bytes, got %d", secp256k1.PrivKeyBytesLen, len(b))
	}
	return secp256k1.PrivKeyFromBytes(b), nil
}

// PublicKeyToHex public key to the hex of its uncompressed form. This is the address format.
func PublicKeyToHex(pk *secp256k1.PublicKey) string {
	return BytesToHex(pk.SerializeUncompressed())
}

// HexToPublicKey parses an address back into a public key. Both compressed and uncompressed forms are accepted.
func HexToPublicKey(s string) (*secp256k1.PublicKey, error) {
	b, err := HexToBytes(s)
	if err != nil {
		return nil, errors.Wrap(err, "public key is not hex")
	}
	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, errors.Wrap(err, "invalid public key")
	}
	return pk, nil
}

// Hash message using SHA256
func SHA256(msg []byte) []byte {
	digest := sha256.Sum256(msg)
	return digest[:]
}

// Sign a digest with provided private key. The nonce is derived per RFC 6979, so the
// signature is deterministic. Returns the DER encoding.
func Sign(digest []byte, sk *secp256k1.PrivateKey) []byte {
	return ecdsa.Sign(sk, digest).Serialize()
}

// Verify the given DER signature matches the digest.
func Verify(digest []byte, pk *secp256k1.PublicKey, signature []byte) bool {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(digest, pk)
}
