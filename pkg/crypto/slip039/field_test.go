package slip039

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGFMultiply(t *testing.T) {
	tests := []struct {
		a, b, want byte
	}{
		{0x53, 0xca, 0x01},
		{3, 7, 9},
		{9, 11, 83},
		{255, 255, 19},
		{0, 0x42, 0},
		{1, 0x42, 0x42},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, gfMultiply(tt.a, tt.b), "%#02x * %#02x", tt.a, tt.b)
		assert.Equal(t, tt.want, gfMultiply(tt.b, tt.a), "%#02x * %#02x", tt.b, tt.a)
	}
}

func TestGFInverse(t *testing.T) {
	for a := 1; a < 256; a++ {
		x := byte(a)
		assert.Equal(t, byte(1), gfMultiply(x, gfInverse(x)), "x = %#02x", x)
	}
	assert.Equal(t, byte(0xca), gfInverse(0x53))
}

func TestGFDivide(t *testing.T) {
	assert.Equal(t, byte(0xca), gfDivide(0x01, 0x53))

	for a := 0; a < 256; a++ {
		for b := 1; b < 256; b++ {
			q := gfDivide(byte(a), byte(b))
			assert.Equal(t, byte(a), gfMultiply(q, byte(b)))
		}
	}

	assert.PanicsWithValue(t, "division by zero in GF(256)", func() {
		gfDivide(0x42, 0)
	})
	assert.Panics(t, func() {
		gfDivide(0, 0)
	})
}

func TestGFFieldAxioms(t *testing.T) {
	for a := 0; a < 256; a++ {
		x := byte(a)
		assert.Equal(t, byte(0), gfAdd(x, x))
		assert.Equal(t, x, gfSubtract(gfAdd(x, 0x5a), 0x5a))
		assert.Equal(t, byte(0), gfMultiply(x, 0))
		assert.Equal(t, x, gfMultiply(x, 1))

		// Distributivity over a handful of operands
		for _, y := range []byte{0x01, 0x1b, 0x80, 0xff} {
			for _, z := range []byte{0x02, 0x53, 0xca} {
				assert.Equal(t,
					gfAdd(gfMultiply(x, y), gfMultiply(x, z)),
					gfMultiply(x, gfAdd(y, z)))
				assert.Equal(t,
					gfMultiply(gfMultiply(x, y), z),
					gfMultiply(x, gfMultiply(y, z)))
			}
		}
	}
}

func TestGFMasks(t *testing.T) {
	assert.Equal(t, byte(0xff), lsbMask(0x01))
	assert.Equal(t, byte(0x00), lsbMask(0xfe))
	assert.Equal(t, byte(0xff), msbMask(0x80))
	assert.Equal(t, byte(0x00), msbMask(0x7f))
}
