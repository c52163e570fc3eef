package slip039

import "fmt"

const (
	checksumWords = 3

	// checksumCustomization is mixed into the checksum so that share
	// mnemonics are never valid for other RS1024 uses.
	checksumCustomization = "shamir"
)

// RS1024 generator, a Reed-Solomon code over GF(1024).
var rs1024Generator = [RadixBits]uint32{
	0x00e0e040, 0x01c1c080, 0x03838100, 0x07070200, 0x0e0e0009,
	0x1c0c2412, 0x38086c24, 0x3090fc48, 0x21b1f890, 0x03f3f120,
}

// rs1024 folds the customization and then words into the checksum state.
func rs1024(words ...[]int) uint32 {
	chk := uint32(1)
	step := func(v uint32) {
		top := chk >> 20
		chk = (chk&0xfffff)<<RadixBits ^ v
		for i, g := range rs1024Generator {
			// Branch free: the mask is all ones when bit i of top is set
			chk ^= g & -(top >> i & 1)
		}
	}

	for i := range len(checksumCustomization) {
		step(uint32(checksumCustomization[i]))
	}
	for _, part := range words {
		for _, w := range part {
			step(uint32(w))
		}
	}
	return chk
}

// addChecksum returns data followed by its checksum words.
func addChecksum(data []int) []int {
	chk := rs1024(data, make([]int, checksumWords)) ^ 1

	out := make([]int, len(data), len(data)+checksumWords)
	copy(out, data)
	for i := checksumWords - 1; i >= 0; i-- {
		out = append(out, int(chk>>(RadixBits*i))&radixMask)
	}
	return out
}

// verifyChecksum checks the trailing checksum words and returns the data
// before them.
func verifyChecksum(indices []int) ([]int, error) {
	if len(indices) < checksumWords {
		return nil, fmt.Errorf("%w: %d words cannot hold a checksum", ErrInvalidMnemonic, len(indices))
	}
	if rs1024(indices) != 1 {
		return nil, ErrInvalidChecksum
	}
	return indices[:len(indices)-checksumWords], nil
}
