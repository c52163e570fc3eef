package slip039

import (
	"fmt"
	"iter"
	"slices"
)

const (
	// RadixBits is the number of bits encoded by one word.
	RadixBits = 10
	// RadixSize is the number of words in a SLIP-0039 word list.
	RadixSize = 1 << RadixBits

	radixMask = RadixSize - 1
)

// WordCount returns the number of words needed to encode size bytes.
func WordCount(size int) int {
	return (size*8 + RadixBits - 1) / RadixBits
}

// Words returns the 10-bit word indices encoding data as one big-endian
// number, most significant word first. The leading word is padded with zero
// bits. The sequence holds no state and can be ranged over any number of
// times.
func Words(data []byte) iter.Seq[int] {
	return func(yield func(int) bool) {
		count := WordCount(len(data))

		// The padding is treated as bits already taken from the input.
		var acc uint32
		bits := count*RadixBits - len(data)*8
		next := 0

		for range count {
			for bits < RadixBits {
				acc = acc<<8 | uint32(data[next])
				next++
				bits += 8
			}
			bits -= RadixBits
			if !yield(int(acc>>bits) & radixMask) {
				return
			}
		}
	}
}

// WordIndices collects Words(data) into a slice.
func WordIndices(data []byte) []int {
	return slices.Collect(Words(data))
}

// BytesFromIndices decodes size bytes from word indices produced by Words.
// The number of indices must be exactly WordCount(size) and the padding bits
// of the first word must be zero.
func BytesFromIndices(indices []int, size int) ([]byte, error) {
	if size < 0 || WordCount(size) != len(indices) {
		return nil, fmt.Errorf("%w: %d words cannot encode %d bytes", ErrInvalidPadding, len(indices), size)
	}

	padding := len(indices)*RadixBits - size*8
	result := make([]byte, 0, size)

	var acc uint32
	bits := 0
	for i, index := range indices {
		if index < 0 || index >= RadixSize {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWordIndex, index)
		}

		acc = acc<<RadixBits | uint32(index)
		bits += RadixBits
		if i == 0 {
			if index>>(RadixBits-padding) != 0 {
				return nil, ErrInvalidPadding
			}
			bits -= padding
		}

		for bits >= 8 {
			bits -= 8
			result = append(result, byte(acc>>bits))
		}
	}

	return result, nil
}
