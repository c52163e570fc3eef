package slip039

import (
	"bytes"
	"testing"

	"github.com/hashicorp/vault/shamir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	points := []Point{
		{X: 1, Y: []byte{118, 56}},
		{X: 2, Y: []byte{146, 14}},
	}

	got, err := Interpolate(points, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{42, 42}, got)

	// Interpolating at a known x returns its y
	for _, p := range points {
		got, err := Interpolate(points, p.X)
		require.NoError(t, err)
		assert.Equal(t, p.Y, got)
	}
}

func TestInterpolateErrors(t *testing.T) {
	_, err := Interpolate(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidShareCount)

	_, err = Interpolate([]Point{
		{X: 1, Y: []byte{1, 2}},
		{X: 1, Y: []byte{3, 4}},
	}, 0)
	assert.ErrorIs(t, err, ErrDuplicateIndex)

	_, err = Interpolate([]Point{
		{X: 1, Y: []byte{1, 2}},
		{X: 2, Y: []byte{3}},
	}, 0)
	assert.ErrorIs(t, err, ErrShareLengthMismatch)
}

// Vault's shamir package works over the same field and puts the secret at
// x = 0, with the x coordinate appended to each share.
func TestInterpolateMatchesVault(t *testing.T) {
	secret := []byte("correct horse battery staple")

	parts, err := shamir.Split(secret, 5, 3)
	require.NoError(t, err)

	for _, subset := range [][]int{{0, 1, 2}, {2, 3, 4}, {0, 2, 4}, {0, 1, 2, 3, 4}} {
		points := make([]Point, 0, len(subset))
		for _, i := range subset {
			part := parts[i]
			points = append(points, Point{
				X: part[len(part)-1],
				Y: part[:len(part)-1],
			})
		}

		got, err := Interpolate(points, 0)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(secret, got), "subset %v", subset)
	}
}
