package slip039

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointsFor(shares [][]byte, indices []int) []Point {
	points := make([]Point, len(indices))
	for i, index := range indices {
		points[i] = Point{X: byte(index), Y: shares[index]}
	}
	return points
}

func TestSplitRecover(t *testing.T) {
	secret := []byte("ABCDEFGHIJKLMNOP")

	for n := 1; n <= 6; n++ {
		for threshold := 1; threshold <= n; threshold++ {
			shares, err := Split(threshold, n, secret)
			require.NoError(t, err)
			require.Len(t, shares, n)

			for _, subset := range combinations(n, threshold) {
				got, err := Recover(pointsFor(shares, subset))
				require.NoError(t, err, "%d of %d, subset %v", threshold, n, subset)
				assert.Equal(t, secret, got, "%d of %d, subset %v", threshold, n, subset)
			}
		}
	}
}

func TestSplitThresholdOneCopiesSecret(t *testing.T) {
	secret := bytes.Repeat([]byte{0x5a}, 32)

	shares, err := Split(1, 4, secret)
	require.NoError(t, err)
	for _, share := range shares {
		assert.Equal(t, secret, share)
	}

	// Shares are independent copies
	shares[0][0] = 0
	assert.Equal(t, byte(0x5a), shares[1][0])
	assert.Equal(t, byte(0x5a), secret[0])
}

func TestRecoverSuperset(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	shares, err := Split(3, 7, secret)
	require.NoError(t, err)

	for k := 3; k <= 7; k++ {
		got, err := Recover(pointsFor(shares, combinations(7, k)[0]))
		require.NoError(t, err)
		assert.Equal(t, secret, got)
	}
}

func TestRecoverBelowThreshold(t *testing.T) {
	secret := []byte("ABCDEFGHIJKLMNOP")

	shares, err := Split(4, 6, secret)
	require.NoError(t, err)

	for _, subset := range combinations(6, 3) {
		_, err := Recover(pointsFor(shares, subset))
		assert.ErrorIs(t, err, ErrChecksumMismatch, "subset %v", subset)
	}
}

func TestRecoverMixedSplits(t *testing.T) {
	secret := []byte("ABCDEFGHIJKLMNOP")

	a, err := Split(2, 3, secret)
	require.NoError(t, err)
	b, err := Split(2, 3, secret)
	require.NoError(t, err)

	_, err = Recover([]Point{{X: 0, Y: a[0]}, {X: 1, Y: b[1]}})
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestRecoverTamperedShare(t *testing.T) {
	secret := []byte("ABCDEFGHIJKLMNOP")

	shares, err := Split(2, 3, secret)
	require.NoError(t, err)

	shares[1][7] ^= 0x01
	_, err = Recover(pointsFor(shares, []int{0, 1}))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestSplitLargeSecret(t *testing.T) {
	secret := make([]byte, 8192)
	_, err := rand.New(rand.NewSource(1)).Read(secret)
	require.NoError(t, err)

	shares, err := Split(3, 5, secret)
	require.NoError(t, err)

	got, err := Recover(pointsFor(shares, []int{4, 0, 2}))
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestSplitDeterministicWithRandom(t *testing.T) {
	secret := []byte("ABCDEFGHIJKLMNOP")

	split := func() [][]byte {
		dealer := NewDealer(WithRandom(rand.New(rand.NewSource(42))))
		shares, err := dealer.Split(3, 5, secret)
		require.NoError(t, err)
		return shares
	}

	assert.Equal(t, split(), split())
}

func TestSplitRandomFailure(t *testing.T) {
	errEntropy := errors.New("entropy source exhausted")
	dealer := NewDealer(WithRandom(iotest.ErrReader(errEntropy)))

	for _, threshold := range []int{2, 3} {
		_, err := dealer.Split(threshold, 5, []byte("ABCDEFGHIJKLMNOP"))
		assert.ErrorIs(t, err, errEntropy)
	}

	// A threshold of one needs no randomness
	_, err := dealer.Split(1, 2, []byte("ABCDEFGHIJKLMNOP"))
	assert.NoError(t, err)

	_, err = dealer.GenerateShares(1, SimpleConfiguration(2, 3), []byte("ABCDEFGHIJKLMNOP"), "", 0)
	assert.ErrorIs(t, err, errEntropy)
}

func TestSplitValidation(t *testing.T) {
	secret := []byte("ABCDEFGHIJKLMNOP")

	tests := []struct {
		name      string
		threshold int
		count     int
		secret    []byte
		wantErr   error
	}{
		{"short secret", 2, 3, secret[:14], ErrInvalidSecretLength},
		{"odd secret", 2, 3, append(secret, 'Q'), ErrInvalidSecretLength},
		{"no shares", 1, 0, secret, ErrInvalidShareCount},
		{"too many shares", 2, 17, secret, ErrInvalidShareCount},
		{"zero threshold", 0, 3, secret, ErrInvalidThreshold},
		{"threshold above count", 4, 3, secret, ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.threshold, tt.count, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecoverValidation(t *testing.T) {
	value := []byte("ABCDEFGHIJKLMNOP")

	_, err := Recover(nil)
	assert.ErrorIs(t, err, ErrInvalidShareCount)

	tooMany := make([]Point, 17)
	for i := range tooMany {
		tooMany[i] = Point{X: byte(i), Y: value}
	}
	_, err = Recover(tooMany)
	assert.ErrorIs(t, err, ErrInvalidShareCount)

	_, err = Recover([]Point{{X: 0, Y: value}, {X: 1, Y: value[:14]}})
	assert.ErrorIs(t, err, ErrShareLengthMismatch)

	_, err = Recover([]Point{{X: 0, Y: value[:14]}})
	assert.ErrorIs(t, err, ErrInvalidSecretLength)

	_, err = Recover([]Point{{X: 3, Y: value}, {X: 3, Y: value}})
	assert.ErrorIs(t, err, ErrDuplicateIndex)
}
