package slip039

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nlordell/hdwallet/pkg/secure"
)

const (
	idBits                = 15
	iterationExponentBits = 5

	// metadataWords is the number of words holding the identifier, iteration
	// exponent and group/member parameters.
	metadataWords = 4

	// MinMnemonicWords is the length of the shortest share mnemonic, the one
	// for a 128-bit secret.
	MinMnemonicWords = 20
)

// ShareCommonParameters contains parameters common to all shares in a set
type ShareCommonParameters struct {
	Identifier        uint16 // 15-bit random identifier
	IterationExponent byte   // Iteration exponent for PBKDF2
	GroupThreshold    byte   // Number of groups required (GT)
	GroupCount        byte   // Total number of groups (G)
}

// Share represents a single SLIP-0039 share
type Share struct {
	CommonParameters ShareCommonParameters
	GroupIndex       byte   // Index of the group (0-based)
	MemberIndex      byte   // Index within the group (0-based)
	MemberThreshold  byte   // Number of members required in this group (T)
	ShareValue       []byte // The actual share data
}

// GroupConfiguration defines a single group's parameters
type GroupConfiguration struct {
	MemberThreshold byte `json:"member_threshold"`
	MemberCount     byte `json:"member_count"`
}

// SharingConfiguration defines how to split a secret
type SharingConfiguration struct {
	GroupThreshold byte                 `json:"group_threshold"`
	Groups         []GroupConfiguration `json:"groups"`
}

// Validate checks if the sharing configuration is valid
func (c *SharingConfiguration) Validate() error {
	if len(c.Groups) == 0 || len(c.Groups) > MaxShareCount {
		return fmt.Errorf("%w: got %d groups", ErrInvalidShareCount, len(c.Groups))
	}

	if c.GroupThreshold == 0 || int(c.GroupThreshold) > len(c.Groups) {
		return fmt.Errorf("%w: group threshold %d for %d groups",
			ErrInvalidThreshold, c.GroupThreshold, len(c.Groups))
	}

	for i, group := range c.Groups {
		if group.MemberCount == 0 || group.MemberCount > MaxShareCount {
			return fmt.Errorf("%w: group %d: member count %d", ErrInvalidShareCount, i, group.MemberCount)
		}

		if group.MemberThreshold == 0 || group.MemberThreshold > group.MemberCount {
			return fmt.Errorf("%w: group %d: threshold %d for %d members",
				ErrInvalidThreshold, i, group.MemberThreshold, group.MemberCount)
		}

		if group.MemberThreshold == 1 && group.MemberCount == 1 {
			return fmt.Errorf("%w: group %d: a 1-of-1 group is not allowed", ErrInvalidGroup, i)
		}
	}

	return nil
}

// Info returns the share metadata with 1-based indices.
func (s Share) Info() ShareInfo {
	return ShareInfo{
		Identifier:        s.CommonParameters.Identifier,
		IterationExponent: s.CommonParameters.IterationExponent,
		GroupIndex:        s.GroupIndex + 1,
		GroupThreshold:    s.CommonParameters.GroupThreshold,
		GroupCount:        s.CommonParameters.GroupCount,
		MemberIndex:       s.MemberIndex + 1,
		MemberThreshold:   s.MemberThreshold,
		ValueLength:       len(s.ShareValue),
	}
}

func (s Share) validate() error {
	common := s.CommonParameters
	switch {
	case common.Identifier >= 1<<idBits:
		return fmt.Errorf("%w: identifier %d exceeds %d bits", ErrInvalidMnemonic, common.Identifier, idBits)
	case common.IterationExponent >= MaxIterationExponent:
		return fmt.Errorf("%w: got %d", ErrInvalidIterationExponent, common.IterationExponent)
	case common.GroupCount == 0 || common.GroupCount > MaxShareCount:
		return fmt.Errorf("%w: group count %d", ErrInvalidShareCount, common.GroupCount)
	case common.GroupThreshold == 0 || common.GroupThreshold > common.GroupCount:
		return fmt.Errorf("%w: group threshold %d for %d groups", ErrInvalidThreshold, common.GroupThreshold, common.GroupCount)
	case s.GroupIndex >= common.GroupCount:
		return fmt.Errorf("%w: group index %d for %d groups", ErrInvalidMnemonic, s.GroupIndex, common.GroupCount)
	case s.MemberThreshold == 0 || s.MemberThreshold > MaxShareCount:
		return fmt.Errorf("%w: member threshold %d", ErrInvalidThreshold, s.MemberThreshold)
	case s.MemberIndex >= MaxShareCount:
		return fmt.Errorf("%w: member index %d", ErrInvalidMnemonic, s.MemberIndex)
	}
	return validateSecretLength(len(s.ShareValue))
}

// Indices encodes the share as word indices, checksum included:
//
//	id (15 bits) || e (5 bits)
//	group index, group threshold - 1, group count - 1, member index,
//	member threshold - 1 (4 bits each)
//	share value, left padded to a multiple of 10 bits
//	RS1024 checksum (30 bits)
func (s Share) Indices() ([]int, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	common := s.CommonParameters

	idExp := int(common.Identifier)<<iterationExponentBits | int(common.IterationExponent)
	params := int(s.GroupIndex)<<16 |
		int(common.GroupThreshold-1)<<12 |
		int(common.GroupCount-1)<<8 |
		int(s.MemberIndex)<<4 |
		int(s.MemberThreshold-1)

	words := make([]int, 0, metadataWords+WordCount(len(s.ShareValue))+checksumWords)
	words = append(words,
		idExp>>RadixBits, idExp&radixMask,
		params>>RadixBits, params&radixMask,
	)
	for index := range Words(s.ShareValue) {
		words = append(words, index)
	}

	return addChecksum(words), nil
}

// ShareFromIndices decodes a share from its word indices, checksum included.
func ShareFromIndices(indices []int) (Share, error) {
	if len(indices) < MinMnemonicWords {
		return Share{}, fmt.Errorf("%w: %d words, need at least %d", ErrInvalidMnemonic, len(indices), MinMnemonicWords)
	}
	for _, index := range indices {
		if index < 0 || index >= RadixSize {
			return Share{}, fmt.Errorf("%w: %d", ErrInvalidWordIndex, index)
		}
	}

	data, err := verifyChecksum(indices)
	if err != nil {
		return Share{}, err
	}

	idExp := data[0]<<RadixBits | data[1]
	params := data[2]<<RadixBits | data[3]

	share := Share{
		CommonParameters: ShareCommonParameters{
			Identifier:        uint16(idExp >> iterationExponentBits),
			IterationExponent: byte(idExp & (1<<iterationExponentBits - 1)),
			GroupThreshold:    byte(params>>12&0xF) + 1,
			GroupCount:        byte(params>>8&0xF) + 1,
		},
		GroupIndex:      byte(params>>16&0xF),
		MemberIndex:     byte(params>>4&0xF),
		MemberThreshold: byte(params&0xF) + 1,
	}

	// The value is padded to a multiple of 10 bits and its length in bytes
	// is even, so the padding is the value bit count modulo 16.
	valueWords := data[metadataWords:]
	valueBits := len(valueWords) * RadixBits
	size := (valueBits - valueBits%16) / 8

	share.ShareValue, err = BytesFromIndices(valueWords, size)
	if err != nil {
		return Share{}, fmt.Errorf("%w: share value: %w", ErrInvalidMnemonic, err)
	}

	if err := share.validate(); err != nil {
		secure.Zero(share.ShareValue)
		return Share{}, err
	}

	return share, nil
}

// Mnemonic converts a share to a mnemonic phrase
func (s Share) Mnemonic(wordlist *Wordlist) (string, error) {
	indices, err := s.Indices()
	if err != nil {
		return "", err
	}
	return wordlist.Phrase(indices)
}

// ShareFromMnemonic creates a share from a mnemonic phrase
func ShareFromMnemonic(wordlist *Wordlist, mnemonic string) (Share, error) {
	indices, err := wordlist.Indices(mnemonic)
	if err != nil {
		return Share{}, err
	}
	return ShareFromIndices(indices)
}

// generateIdentifier generates a random 15-bit identifier
func generateIdentifier(r io.Reader) (uint16, error) {
	var buf [2]byte
	if err := secure.Fill(r, buf[:]); err != nil {
		return 0, err
	}

	// Mask to 15 bits
	return binary.BigEndian.Uint16(buf[:]) & (1<<idBits - 1), nil
}
