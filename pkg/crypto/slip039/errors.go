package slip039

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksumMismatch is returned when a recovered secret does not match
	// the digest embedded in its shares. Too few, wrong, or tampered shares
	// all produce this error and are deliberately not told apart.
	ErrChecksumMismatch = errors.New("secret checksum mismatch")

	// ErrInvalidThreshold is returned when a threshold is zero or exceeds the
	// number of shares.
	ErrInvalidThreshold = errors.New("threshold must be positive and must not exceed the share count")

	// ErrInvalidShareCount is returned when more than MaxShareCount shares or
	// groups are requested or provided.
	ErrInvalidShareCount = fmt.Errorf("share count must be between 1 and %d", MaxShareCount)

	// ErrInvalidSecretLength is returned for secrets shorter than
	// MinMasterSecretLength bytes or with an odd length.
	ErrInvalidSecretLength = fmt.Errorf("secret length must be even and at least %d bytes", MinMasterSecretLength)

	// ErrShareLengthMismatch is returned when share values differ in length.
	ErrShareLengthMismatch = errors.New("all share values must have the same length")

	// ErrDuplicateIndex is returned when two shares use the same index.
	ErrDuplicateIndex = errors.New("share indices must be unique")

	// ErrInvalidGroup is returned for a group configuration that cannot be
	// shared.
	ErrInvalidGroup = errors.New("invalid group configuration")

	// ErrInvalidIterationExponent is returned when the iteration exponent is
	// not below MaxIterationExponent.
	ErrInvalidIterationExponent = fmt.Errorf("iteration exponent must be less than %d", MaxIterationExponent)

	// ErrInconsistentShares is returned when shares from different splits
	// are combined.
	ErrInconsistentShares = errors.New("shares do not belong to the same set")

	// ErrInsufficientShares is returned when share metadata shows that a group
	// or the set of groups cannot reach its threshold.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrInvalidWordIndex is returned for word indices outside [0, 1024).
	ErrInvalidWordIndex = errors.New("word index out of range")

	// ErrInvalidPadding is returned when the padding bits of a word-encoded
	// value are not zero or the encoded length is inconsistent.
	ErrInvalidPadding = errors.New("invalid word padding")

	// ErrInvalidChecksum is returned when a share mnemonic fails its RS1024
	// checksum.
	ErrInvalidChecksum = errors.New("invalid mnemonic checksum")

	// ErrInvalidMnemonic is returned for share mnemonics that cannot be
	// decoded.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrInvalidWordlist is returned when a dictionary does not hold exactly
	// 1024 sorted, unique, lowercase words.
	ErrInvalidWordlist = errors.New("invalid wordlist")
)
