// Package storage persists share sets as JSON files, optionally sealed with
// a password.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
)

const shareSetVersion = 1

const (
	FormatMnemonic = "mnemonic"
	FormatIndices  = "indices"
)

var ErrInvalidShareSet = errors.New("invalid share set")

// ShareSet is the output of one split: every share, rendered as text and
// listed by group.
type ShareSet struct {
	Version           int           `json:"version"`
	Created           time.Time     `json:"created"`
	Identifier        uint16        `json:"identifier"`
	IterationExponent byte          `json:"iteration_exponent"`
	GroupThreshold    byte          `json:"group_threshold"`
	Format            string        `json:"format"`
	Groups            []GroupShares `json:"groups"`
}

type GroupShares struct {
	MemberThreshold byte     `json:"member_threshold"`
	Shares          []string `json:"shares"`
}

// NewShareSet renders shares with encode. Shares must come from a single
// GenerateShares call.
func NewShareSet(shares []slip039.Share, format string, encode func(slip039.Share) (string, error)) (*ShareSet, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares", ErrInvalidShareSet)
	}

	common := shares[0].CommonParameters
	set := &ShareSet{
		Version:           shareSetVersion,
		Created:           time.Now().UTC(),
		Identifier:        common.Identifier,
		IterationExponent: common.IterationExponent,
		GroupThreshold:    common.GroupThreshold,
		Format:            format,
		Groups:            make([]GroupShares, common.GroupCount),
	}

	for _, share := range shares {
		if share.CommonParameters != common || share.GroupIndex >= common.GroupCount {
			return nil, fmt.Errorf("%w: shares belong to different sets", ErrInvalidShareSet)
		}

		text, err := encode(share)
		if err != nil {
			return nil, fmt.Errorf("failed to encode share: %w", err)
		}

		group := &set.Groups[share.GroupIndex]
		group.MemberThreshold = share.MemberThreshold
		group.Shares = append(group.Shares, text)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *ShareSet) Validate() error {
	switch {
	case s.Version != shareSetVersion:
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidShareSet, s.Version)
	case s.Format != FormatMnemonic && s.Format != FormatIndices:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidShareSet, s.Format)
	case len(s.Groups) == 0 || len(s.Groups) > slip039.MaxShareCount:
		return fmt.Errorf("%w: %d groups", ErrInvalidShareSet, len(s.Groups))
	case s.GroupThreshold == 0 || int(s.GroupThreshold) > len(s.Groups):
		return fmt.Errorf("%w: group threshold %d for %d groups", ErrInvalidShareSet, s.GroupThreshold, len(s.Groups))
	}

	for i, group := range s.Groups {
		if len(group.Shares) == 0 || group.MemberThreshold == 0 || int(group.MemberThreshold) > len(group.Shares) {
			return fmt.Errorf("%w: group %d has %d shares with threshold %d",
				ErrInvalidShareSet, i+1, len(group.Shares), group.MemberThreshold)
		}
	}

	return nil
}

// All returns every share, group by group.
func (s *ShareSet) All() []string {
	var all []string
	for _, group := range s.Groups {
		all = append(all, group.Shares...)
	}
	return all
}

// ShareStore keeps a ShareSet in a SecureFile.
type ShareStore struct {
	file *SecureFile
}

func NewShareStore(path string, opts ...FileOption) *ShareStore {
	return &ShareStore{file: NewSecureFile(path, opts...)}
}

func (s *ShareStore) Save(set *ShareSet, password []byte) error {
	if err := set.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal share set: %w", err)
	}

	return s.file.Save(data, password)
}

func (s *ShareStore) Load(password []byte) (*ShareSet, error) {
	data, err := s.file.Load(password)
	if err != nil {
		return nil, err
	}

	var set ShareSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal share set: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	return &set, nil
}

func (s *ShareStore) IsSealed() (bool, error) {
	return s.file.IsSealed()
}

func (s *ShareStore) Exists() bool {
	return s.file.Exists()
}

func (s *ShareStore) Delete() error {
	return s.file.Delete()
}
