package slip039

// GF(256) field arithmetic using polynomial representation with operations modulo
// the Rijndael irreducible polynomial x^8 + x^4 + x^3 + x + 1 (0x11B)
// as specified in SLIP-0039 and AES.
//
// None of the operations branch on, or index memory with, their operands.

const (
	// Rijndael polynomial: x^8 + x^4 + x^3 + x + 1
	rijndaelPoly = 0x11B
)

// gfAdd performs addition in GF(256) (which is XOR)
func gfAdd(a, b byte) byte {
	return a ^ b
}

// gfSubtract performs subtraction in GF(256) (which is also XOR)
func gfSubtract(a, b byte) byte {
	return a ^ b
}

// lsbMask returns 0xFF if the low bit of x is set and 0x00 otherwise.
func lsbMask(x byte) byte {
	return -(x & 1)
}

// msbMask returns 0xFF if the high bit of x is set and 0x00 otherwise.
func msbMask(x byte) byte {
	return -(x >> 7)
}

// gfMultiply performs carry-less multiplication reduced by the Rijndael
// polynomial, one bit of b per iteration.
func gfMultiply(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		p = gfAdd(p, lsbMask(b)&a)
		a = gfSubtract(a<<1, msbMask(a)&byte(rijndaelPoly&0xFF))
		b >>= 1
	}
	return p
}

// gfInverse returns x^254, which is the multiplicative inverse of x for any
// non-zero x since every such element has an order dividing 255.
func gfInverse(x byte) byte {
	i := x               // x^1
	i = gfMultiply(i, i) // x^2
	i = gfMultiply(i, x) // x^3
	i = gfMultiply(i, i) // x^6
	i = gfMultiply(i, x) // x^7
	i = gfMultiply(i, i) // x^14
	i = gfMultiply(i, x) // x^15
	i = gfMultiply(i, i) // x^30
	i = gfMultiply(i, x) // x^31
	i = gfMultiply(i, i) // x^62
	i = gfMultiply(i, x) // x^63
	i = gfMultiply(i, i) // x^126
	i = gfMultiply(i, x) // x^127
	i = gfMultiply(i, i) // x^254
	return i
}

// gfDivide performs division in GF(256). Dividing by zero is a programming
// error and panics.
func gfDivide(a, b byte) byte {
	if b == 0 {
		panic("division by zero in GF(256)")
	}
	return gfMultiply(a, gfInverse(b))
}
