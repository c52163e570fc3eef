// Package hdkey derives the BIP-32 master key of a seed. A recovered master
// secret is checked by comparing its master fingerprint or extended public
// key with the ones recorded when the wallet was created.
package hdkey

import (
	"encoding/hex"
	"fmt"

	"github.com/tyler-smith/go-bip32"
)

const (
	MinSeedLength = 16
	MaxSeedLength = 64
)

type MasterKey struct {
	key *bip32.Key
}

// NewMasterKey derives the master key of seed. A SLIP-0039 master secret is
// used as the seed directly; a BIP-39 phrase goes through its own seed
// derivation first.
func NewMasterKey(seed []byte) (*MasterKey, error) {
	if len(seed) < MinSeedLength || len(seed) > MaxSeedLength {
		return nil, fmt.Errorf("seed must be %d to %d bytes, got %d", MinSeedLength, MaxSeedLength, len(seed))
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	return &MasterKey{key: key}, nil
}

// Fingerprint returns the first four bytes of HASH160 of the master public
// key. bip32 only exposes a key's parent fingerprint, so it is read from the
// first child.
func (m *MasterKey) Fingerprint() ([]byte, error) {
	child, err := m.key.NewChildKey(0)
	if err != nil {
		return nil, fmt.Errorf("failed to derive child key: %w", err)
	}
	return child.FingerPrint, nil
}

func (m *MasterKey) FingerprintHex() (string, error) {
	fp, err := m.Fingerprint()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(fp), nil
}

func (m *MasterKey) ExtendedPublicKey() string {
	return m.key.PublicKey().String()
}

func (m *MasterKey) PublicKeyHex() string {
	return hex.EncodeToString(m.key.PublicKey().Key)
}
