package massa

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Key material prefixes and the current key version byte.
const (
	userAddressPrefix     = "AU"
	contractAddressPrefix = "AS"
	publicKeyPrefix       = "P"
	secretKeyPrefix       = "S"

	keyVersion = 0x00
)

// ErrInvalidAddress is returned for malformed address strings.
var ErrInvalidAddress = errors.New("invalid address")

// ErrInvalidKey is returned for malformed key material.
var ErrInvalidKey = errors.New("invalid key")

// Wallet holds an ed25519 keypair and derives the account address.
type Wallet struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address string
}

// NewWallet generates a fresh keypair.
func NewWallet() (*Wallet, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return walletFromKeys(pub, priv), nil
}

// NewWalletFromSecret restores a wallet from an encoded secret key
// ("S" prefix, base58 version byte plus 32-byte seed).
func NewWalletFromSecret(encoded string) (*Wallet, error) {
	payload, err := decodeVersioned(encoded, secretKeyPrefix)
	if err != nil {
		return nil, err
	}
	if len(payload) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: secret key must hold a %d-byte seed", ErrInvalidKey, ed25519.SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(payload)
	pub := priv.Public().(ed25519.PublicKey)
	return walletFromKeys(pub, priv), nil
}

func walletFromKeys(pub ed25519.PublicKey, priv ed25519.PrivateKey) *Wallet {
	hash := sha256.Sum256(pub)
	return &Wallet{
		priv:    priv,
		pub:     pub,
		address: userAddressPrefix + encodeVersioned(hash[:]),
	}
}

// Address returns the account address derived from the public key.
func (w *Wallet) Address() string {
	return w.address
}

// PublicKey returns the encoded public key ("P" prefix).
func (w *Wallet) PublicKey() string {
	return publicKeyPrefix + encodeVersioned(w.pub)
}

// SecretKey returns the encoded secret key seed ("S" prefix).
func (w *Wallet) SecretKey() string {
	return secretKeyPrefix + encodeVersioned(w.priv.Seed())
}

// SignOperation signs serialized operation content. The digest binds the
// signing public key to the content so a signature cannot be replayed
// under another key.
func (w *Wallet) SignOperation(content []byte) string {
	digest := operationDigest(w.pub, content)
	return base58.Encode(ed25519.Sign(w.priv, digest))
}

// VerifyOperation checks an operation signature against an encoded
// public key. Invalid or off-curve public keys verify as false.
func VerifyOperation(encodedPub string, content []byte, signature string) bool {
	pub, err := ParsePublicKey(encodedPub)
	if err != nil {
		return false
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, operationDigest(pub, content), sig)
}

func operationDigest(pub ed25519.PublicKey, content []byte) []byte {
	h := sha256.New()
	h.Write(pub)
	h.Write(content)
	return h.Sum(nil)
}

// ParsePublicKey decodes an encoded public key and rejects byte strings
// that are not valid curve points.
func ParsePublicKey(encoded string) (ed25519.PublicKey, error) {
	payload, err := decodeVersioned(encoded, publicKeyPrefix)
	if err != nil {
		return nil, err
	}
	if len(payload) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key must be %d bytes", ErrInvalidKey, ed25519.PublicKeySize)
	}
	if _, err := new(edwards25519.Point).SetBytes(payload); err != nil {
		return nil, fmt.Errorf("%w: not a curve point", ErrInvalidKey)
	}
	return ed25519.PublicKey(payload), nil
}

// CheckAddress reports whether s is a well-formed user or contract
// address.
func CheckAddress(s string) bool {
	_, err := decodeAddress(s)
	return err == nil
}

// decodeAddress strips the AU/AS prefix and returns the 32-byte hash.
func decodeAddress(s string) ([]byte, error) {
	var rest string
	switch {
	case strings.HasPrefix(s, userAddressPrefix):
		rest = s[len(userAddressPrefix):]
	case strings.HasPrefix(s, contractAddressPrefix):
		rest = s[len(contractAddressPrefix):]
	default:
		return nil, fmt.Errorf("%w: unknown prefix", ErrInvalidAddress)
	}

	payload, err := decodeVersionedPayload(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(payload) != sha256.Size {
		return nil, fmt.Errorf("%w: hash must be %d bytes", ErrInvalidAddress, sha256.Size)
	}
	return payload, nil
}

// encodeVersioned prepends the key version byte and base58-encodes.
func encodeVersioned(payload []byte) string {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, keyVersion)
	buf = append(buf, payload...)
	return base58.Encode(buf)
}

// decodeVersioned strips prefix, base58-decodes and checks the version.
func decodeVersioned(s, prefix string) ([]byte, error) {
	if !strings.HasPrefix(s, prefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidKey, prefix)
	}
	return decodeVersionedPayload(s[len(prefix):])
}

func decodeVersionedPayload(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}
	if len(raw) < 1 {
		return nil, errors.New("empty payload")
	}
	if raw[0] != keyVersion {
		return nil, fmt.Errorf("unsupported version %d", raw[0])
	}
	return raw[1:], nil
}
