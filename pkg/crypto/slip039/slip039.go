// Package slip039 implements SLIP-0039: Shamir's Secret-Sharing for Mnemonic Codes
// as specified at https://github.com/satoshilabs/slips/blob/master/slip-0039.md
//
// This implementation provides a hierarchical Shamir's Secret Sharing scheme
// with two-level sharing (groups and members), encryption, and mnemonic encoding.
//
// The word list itself is not bundled. Callers load it once with
// LoadWordlist or ParseWordlist and pass the resulting *Wordlist to the
// mnemonic functions.
package slip039

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"

	"github.com/nlordell/hdwallet/pkg/secure"
)

// DefaultIterationExponent is the default iteration exponent for PBKDF2
// This results in 2500 * 2^1 = 5000 iterations per Feistel round
const DefaultIterationExponent = 1

// MaxIterationExponent bounds the iteration exponent (exclusive).
const MaxIterationExponent = 31

// BaseIterationCount is the number of PBKDF2 iterations per Feistel round
// for an iteration exponent of zero.
const BaseIterationCount = 2500

// RoundCount is the number of Feistel rounds.
const RoundCount = 4

// MinMasterSecretLength is the minimum length of the master secret in bytes
const MinMasterSecretLength = 16 // 128 bits

// MaxShareCount is the maximum number of groups, and of members in a group
const MaxShareCount = 16

const (
	digestIndex = 254
	secretIndex = 255
)

// Dealer produces shares. It holds the entropy source used for identifiers,
// random shares and digest salts, and the logger used for debug output.
// A Dealer has no mutable state and may be shared between goroutines as long
// as its random source may.
type Dealer struct {
	random io.Reader
	logger *slog.Logger
}

// Option configures a Dealer.
type Option func(*Dealer)

// WithRandom sets the entropy source. Errors returned by r abort the
// operation in progress and are returned wrapped to the caller.
func WithRandom(r io.Reader) Option {
	return func(d *Dealer) {
		d.random = r
	}
}

// WithLogger sets the logger used for debug records. Records never contain
// secret material.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dealer) {
		d.logger = logger
	}
}

// NewDealer creates a Dealer reading from crypto/rand unless configured
// otherwise.
func NewDealer(opts ...Option) *Dealer {
	d := &Dealer{random: rand.Reader}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dealer) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return slog.Default()
}

var defaultDealer = NewDealer()

// Split splits secret into shareCount shares using crypto/rand.
func Split(threshold, shareCount int, secret []byte) ([][]byte, error) {
	return defaultDealer.Split(threshold, shareCount, secret)
}

// GenerateShares generates the shares of a master secret using crypto/rand.
func GenerateShares(
	groupThreshold byte,
	groups []GroupConfiguration,
	masterSecret []byte,
	passphrase string,
	iterationExponent byte,
) ([]Share, error) {
	return defaultDealer.GenerateShares(groupThreshold, groups, masterSecret, passphrase, iterationExponent)
}

// SplitMasterSecret splits a master secret into SLIP-0039 mnemonic shares,
// grouped by group index.
func SplitMasterSecret(
	wordlist *Wordlist,
	masterSecret []byte,
	passphrase string,
	groupThreshold byte,
	groups []GroupConfiguration,
	iterationExponent byte,
) ([][]string, error) {
	return defaultDealer.SplitMasterSecret(wordlist, masterSecret, passphrase, groupThreshold, groups, iterationExponent)
}

// SplitMasterSecret splits a master secret into SLIP-0039 mnemonic shares,
// grouped by group index.
func (d *Dealer) SplitMasterSecret(
	wordlist *Wordlist,
	masterSecret []byte,
	passphrase string,
	groupThreshold byte,
	groups []GroupConfiguration,
	iterationExponent byte,
) ([][]string, error) {
	shares, err := d.GenerateShares(groupThreshold, groups, masterSecret, passphrase, iterationExponent)
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range shares {
			secure.Zero(shares[i].ShareValue)
		}
	}()

	mnemonics := make([][]string, len(groups))
	for _, share := range shares {
		mnemonic, err := share.Mnemonic(wordlist)
		if err != nil {
			return nil, fmt.Errorf("failed to convert share to mnemonic: %w", err)
		}
		mnemonics[share.GroupIndex] = append(mnemonics[share.GroupIndex], mnemonic)
	}

	return mnemonics, nil
}

// RecoverMasterSecret recovers a master secret from SLIP-0039 mnemonic shares
func RecoverMasterSecret(wordlist *Wordlist, mnemonics []string, passphrase string) ([]byte, error) {
	if len(mnemonics) == 0 {
		return nil, fmt.Errorf("%w: no mnemonics provided", ErrInsufficientShares)
	}

	shares := make([]Share, len(mnemonics))
	for i, mnemonic := range mnemonics {
		share, err := ShareFromMnemonic(wordlist, mnemonic)
		if err != nil {
			return nil, fmt.Errorf("invalid mnemonic %d: %w", i+1, err)
		}
		shares[i] = share
	}
	defer func() {
		for i := range shares {
			secure.Zero(shares[i].ShareValue)
		}
	}()

	return CombineShares(shares, passphrase)
}

// ValidateMnemonic checks if a mnemonic is a valid SLIP-0039 share
func ValidateMnemonic(wordlist *Wordlist, mnemonic string) error {
	_, err := ShareFromMnemonic(wordlist, mnemonic)
	return err
}

// GetShareInfo extracts information from a SLIP-0039 mnemonic share
func GetShareInfo(wordlist *Wordlist, mnemonic string) (*ShareInfo, error) {
	share, err := ShareFromMnemonic(wordlist, mnemonic)
	if err != nil {
		return nil, err
	}
	info := share.Info()
	return &info, nil
}

// ShareInfo contains human-readable information about a share
type ShareInfo struct {
	Identifier        uint16 `json:"identifier"`
	IterationExponent byte   `json:"iteration_exponent"`
	GroupIndex        byte   `json:"group_index"` // 1-based for display
	GroupThreshold    byte   `json:"group_threshold"`
	GroupCount        byte   `json:"group_count"`
	MemberIndex       byte   `json:"member_index"` // 1-based for display
	MemberThreshold   byte   `json:"member_threshold"`
	ValueLength       int    `json:"value_length"`
}

// String returns a human-readable representation of share info
func (si *ShareInfo) String() string {
	return fmt.Sprintf(
		"Share ID: %04X\n"+
			"PBKDF2 Iterations: %d per round\n"+
			"Group: %d of %d (threshold %d)\n"+
			"Member: %d (threshold %d)\n"+
			"Secret Length: %d bytes",
		si.Identifier,
		IterationCount(si.IterationExponent),
		si.GroupIndex, si.GroupCount, si.GroupThreshold,
		si.MemberIndex, si.MemberThreshold,
		si.ValueLength,
	)
}

// GenerateMasterSecret generates a random master secret of the specified length
func GenerateMasterSecret(bytes int) ([]byte, error) {
	return defaultDealer.GenerateMasterSecret(bytes)
}

// GenerateMasterSecret generates a random master secret of the specified length
func (d *Dealer) GenerateMasterSecret(bytes int) ([]byte, error) {
	if err := validateSecretLength(bytes); err != nil {
		return nil, err
	}
	return secure.Random(d.random, bytes)
}

// SimpleConfiguration creates a simple T-of-N sharing configuration
// This creates a single group with the specified threshold and member count
func SimpleConfiguration(threshold, count byte) []GroupConfiguration {
	return []GroupConfiguration{
		{
			MemberThreshold: threshold,
			MemberCount:     count,
		},
	}
}

func validateSecretLength(n int) error {
	if n < MinMasterSecretLength || n%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSecretLength, n)
	}
	return nil
}
