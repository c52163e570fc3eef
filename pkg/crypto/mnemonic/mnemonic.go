// Package mnemonic converts between BIP-39 phrases and the entropy behind
// them, so that an existing BIP-39 wallet can be shared as a SLIP-0039
// master secret and restored afterwards.
package mnemonic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const (
	MinEntropyBits = 128
	MaxEntropyBits = 256
)

var (
	ErrInvalidPhrase  = errors.New("invalid BIP-39 phrase")
	ErrInvalidEntropy = errors.New("invalid BIP-39 entropy length")
)

// Phrase is a checksummed BIP-39 phrase.
type Phrase struct {
	words []string
}

// New generates a phrase from entropyBits of fresh entropy.
func New(entropyBits int) (*Phrase, error) {
	if err := validateEntropyBits(entropyBits); err != nil {
		return nil, err
	}

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}

	return FromEntropy(entropy)
}

// FromWords parses a phrase. Words may be separated by any whitespace and
// are matched case-insensitively.
func FromWords(phrase string) (*Phrase, error) {
	words := strings.Fields(strings.ToLower(phrase))
	if _, err := EntropyBitsFromWordCount(len(words)); err != nil {
		return nil, err
	}

	if !bip39.IsMnemonicValid(strings.Join(words, " ")) {
		return nil, fmt.Errorf("%w: unknown word or bad checksum", ErrInvalidPhrase)
	}

	return &Phrase{words: words}, nil
}

// FromEntropy encodes entropy as a phrase. Entropy used as a SLIP-0039
// master secret must also satisfy BIP-39: 16 to 32 bytes in steps of 4.
func FromEntropy(entropy []byte) (*Phrase, error) {
	if err := validateEntropyBits(len(entropy) * 8); err != nil {
		return nil, err
	}

	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entropy: %w", err)
	}

	return &Phrase{words: strings.Fields(phrase)}, nil
}

func (p *Phrase) String() string {
	return strings.Join(p.words, " ")
}

func (p *Phrase) Words() []string {
	result := make([]string, len(p.words))
	copy(result, p.words)
	return result
}

func (p *Phrase) WordCount() int {
	return len(p.words)
}

// Entropy returns the entropy encoded by the phrase. It is the value to
// split when sharing the wallet.
func (p *Phrase) Entropy() ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(p.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPhrase, err)
	}
	return entropy, nil
}

// Seed returns the 64-byte BIP-39 seed for passphrase.
func (p *Phrase) Seed(passphrase string) []byte {
	return bip39.NewSeed(p.String(), passphrase)
}

// EntropyBitsFromWordCount returns the entropy size of a phrase with
// wordCount words.
func EntropyBitsFromWordCount(wordCount int) (int, error) {
	switch wordCount {
	case 12, 15, 18, 21, 24:
		return wordCount / 3 * 32, nil
	default:
		return 0, fmt.Errorf("%w: %d words", ErrInvalidPhrase, wordCount)
	}
}

func validateEntropyBits(bits int) error {
	if bits < MinEntropyBits || bits > MaxEntropyBits || bits%32 != 0 {
		return fmt.Errorf("%w: %d bits, need %d to %d in steps of 32",
			ErrInvalidEntropy, bits, MinEntropyBits, MaxEntropyBits)
	}
	return nil
}
