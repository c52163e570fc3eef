package slip039

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Point is a share index and its value, one y coordinate per byte of the
// shared secret.
type Point struct {
	X byte
	Y []byte
}

// Interpolate evaluates at x the unique polynomial passing through points.
// The polynomial is taken byte-wise: every byte position of the Y values is
// an independent polynomial over GF(256) sharing the same X coordinates.
func Interpolate(points []Point, x byte) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points to interpolate", ErrInvalidShareCount)
	}

	xs := mapset.NewThreadUnsafeSetWithSize[byte](len(points))
	yLen := len(points[0].Y)
	for _, p := range points {
		if !xs.Add(p.X) {
			return nil, fmt.Errorf("%w: x = %d", ErrDuplicateIndex, p.X)
		}
		if len(p.Y) != yLen {
			return nil, ErrShareLengthMismatch
		}
	}

	return interpolate(points, x), nil
}

// interpolate assumes distinct X coordinates and equal Y lengths.
func interpolate(points []Point, x byte) []byte {
	result := make([]byte, len(points[0].Y))

	for i, pi := range points {
		// Lagrange basis polynomial for point i evaluated at x
		basis := byte(1)
		for j, pj := range points {
			if i == j {
				continue
			}
			basis = gfMultiply(basis, gfDivide(gfSubtract(x, pj.X), gfSubtract(pi.X, pj.X)))
		}

		for k, y := range pi.Y {
			result[k] = gfAdd(result[k], gfMultiply(basis, y))
		}
	}

	return result
}
