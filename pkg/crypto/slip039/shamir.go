package slip039

import (
	"bytes"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/nlordell/hdwallet/pkg/secure"
)

// Split splits a secret into shareCount shares, any threshold of which
// recover it with Recover. Share i is the polynomial evaluated at x = i.
//
// With a threshold of one every share is a copy of the secret. Otherwise the
// secret sits at x = 255 and a digest share at x = 254, so that Recover can
// detect an inconsistent set of shares.
func (d *Dealer) Split(threshold, shareCount int, secret []byte) ([][]byte, error) {
	if err := validateSecretLength(len(secret)); err != nil {
		return nil, err
	}
	if shareCount < 1 || shareCount > MaxShareCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShareCount, shareCount)
	}
	if threshold < 1 || threshold > shareCount {
		return nil, fmt.Errorf("%w: threshold %d for %d shares", ErrInvalidThreshold, threshold, shareCount)
	}

	// Special case: threshold of 1
	if threshold == 1 {
		shares := make([][]byte, shareCount)
		for i := range shares {
			shares[i] = bytes.Clone(secret)
		}
		return shares, nil
	}

	n := len(secret)
	shares := make([][]byte, shareCount)
	points := make([]Point, 0, threshold)

	// Random shares for indices 0 to threshold-3
	for i := 0; i < threshold-2; i++ {
		share, err := secure.Random(d.random, n)
		if err != nil {
			secure.ZeroAll(shares[:i])
			return nil, fmt.Errorf("failed to generate random share: %w", err)
		}
		shares[i] = share
		points = append(points, Point{X: byte(i), Y: share})
	}

	digest := make([]byte, n)
	defer secure.Zero(digest)
	if err := secure.Fill(d.random, digest[DigestLength:]); err != nil {
		secure.ZeroAll(shares[:threshold-2])
		return nil, fmt.Errorf("failed to generate digest share: %w", err)
	}
	createDigest(digest, secret)

	points = append(points,
		Point{X: digestIndex, Y: digest},
		Point{X: secretIndex, Y: secret},
	)

	// Remaining shares are determined by the threshold points above
	for i := threshold - 2; i < shareCount; i++ {
		shares[i] = interpolate(points, byte(i))
	}

	d.log().Debug("split secret",
		"threshold", threshold,
		"shares", shareCount,
		"length", n)

	return shares, nil
}

// Recover reconstructs a secret from points produced by Split. All points
// are used, so supplying more than the threshold is fine.
//
// Recover has no knowledge of the threshold: a set of points that is too
// small, that mixes splits, or that was tampered with interpolates to a wrong
// secret, which the digest check reports as ErrChecksumMismatch.
func Recover(points []Point) ([]byte, error) {
	if len(points) == 0 || len(points) > MaxShareCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShareCount, len(points))
	}

	n := len(points[0].Y)
	for _, p := range points[1:] {
		if len(p.Y) != n {
			return nil, ErrShareLengthMismatch
		}
	}
	if err := validateSecretLength(n); err != nil {
		return nil, err
	}

	if len(points) == 1 {
		return bytes.Clone(points[0].Y), nil
	}

	secret, err := Interpolate(points, secretIndex)
	if err != nil {
		return nil, err
	}
	digest := interpolate(points, digestIndex)
	defer secure.Zero(digest)

	if !verifyDigest(digest, secret) {
		secure.Zero(secret)
		return nil, ErrChecksumMismatch
	}

	return secret, nil
}

// GenerateShares encrypts masterSecret with passphrase and splits it in two
// levels: into one share per group with groupThreshold, and each group share
// into its members with the group's own threshold.
//
// The result is flat, ordered by group and then member, and every Share
// carries its indices so the order carries no meaning.
func (d *Dealer) GenerateShares(
	groupThreshold byte,
	groups []GroupConfiguration,
	masterSecret []byte,
	passphrase string,
	iterationExponent byte,
) ([]Share, error) {
	if err := validateGenerateInputs(groupThreshold, groups, masterSecret, iterationExponent); err != nil {
		return nil, err
	}

	identifier, err := generateIdentifier(d.random)
	if err != nil {
		return nil, fmt.Errorf("failed to generate identifier: %w", err)
	}

	encryptedSecret, err := Encrypt(masterSecret, []byte(passphrase), iterationExponent, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt master secret: %w", err)
	}
	defer secure.Zero(encryptedSecret)

	commonParams := ShareCommonParameters{
		Identifier:        identifier,
		IterationExponent: iterationExponent,
		GroupThreshold:    groupThreshold,
		GroupCount:        byte(len(groups)),
	}

	groupShares, err := d.Split(int(groupThreshold), len(groups), encryptedSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to split into groups: %w", err)
	}
	defer secure.ZeroAll(groupShares)

	var shares []Share
	for i, groupConfig := range groups {
		memberShares, err := d.Split(
			int(groupConfig.MemberThreshold),
			int(groupConfig.MemberCount),
			groupShares[i],
		)
		if err != nil {
			for _, share := range shares {
				secure.Zero(share.ShareValue)
			}
			return nil, fmt.Errorf("failed to split group %d: %w", i, err)
		}

		for j, memberShare := range memberShares {
			shares = append(shares, Share{
				CommonParameters: commonParams,
				GroupIndex:       byte(i),
				MemberIndex:      byte(j),
				MemberThreshold:  groupConfig.MemberThreshold,
				ShareValue:       memberShare,
			})
		}
	}

	d.log().Debug("generated shares",
		"identifier", identifier,
		"group_threshold", groupThreshold,
		"groups", len(groups),
		"shares", len(shares))

	return shares, nil
}

// CombineShares recovers the master secret from shares produced by
// GenerateShares: member shares are combined into group shares, group shares
// into the encrypted master secret, which is then decrypted with passphrase.
//
// Groups short of their member threshold are ignored as long as enough other
// groups are complete, and a share given twice counts once. Exactly the
// threshold number of shares is used at each level; with a threshold of one
// all shares are identical and cannot be interpolated together.
//
// A wrong passphrase is not detected and yields a different secret.
func CombineShares(shares []Share, passphrase string) ([]byte, error) {
	shares, err := validateShareConsistency(shares)
	if err != nil {
		return nil, err
	}

	common := shares[0].CommonParameters

	// Group shares by group index
	groupedShares := make(map[byte][]Share)
	for _, share := range shares {
		groupedShares[share.GroupIndex] = append(groupedShares[share.GroupIndex], share)
	}

	var complete []byte
	for groupIndex, members := range groupedShares {
		if len(members) >= int(members[0].MemberThreshold) {
			complete = append(complete, groupIndex)
		}
	}
	if len(complete) < int(common.GroupThreshold) {
		return nil, fmt.Errorf("%w: %d of %d groups have enough members, need %d",
			ErrInsufficientShares, len(complete), len(groupedShares), common.GroupThreshold)
	}
	slices.Sort(complete)

	groupPoints := make([]Point, 0, common.GroupThreshold)
	defer func() {
		for _, p := range groupPoints {
			secure.Zero(p.Y)
		}
	}()

	for _, groupIndex := range complete[:common.GroupThreshold] {
		members := groupedShares[groupIndex]
		threshold := members[0].MemberThreshold

		memberPoints := make([]Point, threshold)
		for i, member := range members[:threshold] {
			memberPoints[i] = Point{X: member.MemberIndex, Y: member.ShareValue}
		}

		groupShare, err := Recover(memberPoints)
		if err != nil {
			return nil, fmt.Errorf("failed to recover group %d: %w", groupIndex, err)
		}
		groupPoints = append(groupPoints, Point{X: groupIndex, Y: groupShare})
	}

	encryptedSecret, err := Recover(groupPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to recover encrypted master secret: %w", err)
	}
	defer secure.Zero(encryptedSecret)

	masterSecret, err := Decrypt(
		encryptedSecret,
		[]byte(passphrase),
		common.IterationExponent,
		common.Identifier,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt master secret: %w", err)
	}

	return masterSecret, nil
}

// validateGenerateInputs validates inputs for share generation
func validateGenerateInputs(groupThreshold byte, groups []GroupConfiguration, masterSecret []byte, iterationExponent byte) error {
	if err := validateSecretLength(len(masterSecret)); err != nil {
		return err
	}

	if iterationExponent >= MaxIterationExponent {
		return fmt.Errorf("%w: got %d", ErrInvalidIterationExponent, iterationExponent)
	}

	config := &SharingConfiguration{GroupThreshold: groupThreshold, Groups: groups}
	return config.Validate()
}

// validateShareConsistency checks that shares come from one GenerateShares
// call and returns them without repeats. A share given twice is dropped; two
// different shares with the same group and member index are an error.
func validateShareConsistency(shares []Share) ([]Share, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares provided", ErrInsufficientShares)
	}

	common := mapset.NewThreadUnsafeSet[ShareCommonParameters]()
	lengths := mapset.NewThreadUnsafeSet[int]()
	seen := make(map[[2]byte][]byte)
	memberThresholds := make(map[byte]byte)
	unique := make([]Share, 0, len(shares))

	for i, share := range shares {
		common.Add(share.CommonParameters)
		lengths.Add(len(share.ShareValue))

		if share.GroupIndex >= share.CommonParameters.GroupCount {
			return nil, fmt.Errorf("%w: share %d: group index %d exceeds group count %d",
				ErrInconsistentShares, i+1, share.GroupIndex, share.CommonParameters.GroupCount)
		}

		if threshold, ok := memberThresholds[share.GroupIndex]; ok && threshold != share.MemberThreshold {
			return nil, fmt.Errorf("%w: group %d: member threshold mismatch",
				ErrInconsistentShares, share.GroupIndex)
		}
		memberThresholds[share.GroupIndex] = share.MemberThreshold

		key := [2]byte{share.GroupIndex, share.MemberIndex}
		if value, ok := seen[key]; ok {
			if !bytes.Equal(value, share.ShareValue) {
				return nil, fmt.Errorf("%w: group %d, member %d given twice with different values",
					ErrDuplicateIndex, share.GroupIndex, share.MemberIndex)
			}
			continue
		}
		seen[key] = share.ShareValue
		unique = append(unique, share)
	}

	if common.Cardinality() != 1 {
		return nil, fmt.Errorf("%w: identifier, iteration exponent or group parameters differ",
			ErrInconsistentShares)
	}
	if lengths.Cardinality() != 1 {
		return nil, ErrShareLengthMismatch
	}

	return unique, nil
}
