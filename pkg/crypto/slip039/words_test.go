package slip039

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wordsBuffer = []byte{
	0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
	0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
}

func TestWords(t *testing.T) {
	tests := []struct {
		size int
		want []int
	}{
		{0, nil},
		{1, []int{0x011}},
		{2, []int{0x004, 0x122}},
		{3, []int{0x001, 0x048, 0x233}},
		{4, []int{0x000, 0x112, 0x08c, 0x344}},
		{5, []int{0x044, 0x223, 0x0d1, 0x055}},
		{6, []int{0x011, 0x088, 0x334, 0x115, 0x166}},
		{7, []int{0x004, 0x122, 0x0cd, 0x045, 0x159, 0x277}},
		{8, []int{0x001, 0x048, 0x233, 0x111, 0x156, 0x19d, 0x388}},
		{9, []int{0x000, 0x112, 0x08c, 0x344, 0x155, 0x267, 0x1e2, 0x099}},
		{10, []int{0x044, 0x223, 0x0d1, 0x055, 0x199, 0x378, 0x226, 0x1aa}},
		{11, []int{0x011, 0x088, 0x334, 0x115, 0x166, 0x1de, 0x089, 0x26a, 0x2bb}},
		{12, []int{0x004, 0x122, 0x0cd, 0x045, 0x159, 0x277, 0x222, 0x19a, 0x2ae, 0x3cc}},
		{13, []int{0x001, 0x048, 0x233, 0x111, 0x156, 0x19d, 0x388, 0x266, 0x2ab, 0x2f3, 0x0dd}},
		{14, []int{0x000, 0x112, 0x08c, 0x344, 0x155, 0x267, 0x1e2, 0x099, 0x2aa, 0x3bc, 0x337, 0x1ee}},
		{15, []int{0x044, 0x223, 0x0d1, 0x055, 0x199, 0x378, 0x226, 0x1aa, 0x2ef, 0x0cd, 0x37b, 0x2ff}},
	}

	for _, tt := range tests {
		data := wordsBuffer[:tt.size]

		got := WordIndices(data)
		assert.Equal(t, tt.want, got, "size %d", tt.size)
		assert.Len(t, got, WordCount(tt.size))

		decoded, err := BytesFromIndices(got, tt.size)
		require.NoError(t, err, "size %d", tt.size)
		assert.Equal(t, data, decoded, "size %d", tt.size)
	}
}

func TestWordsRestartable(t *testing.T) {
	seq := Words(wordsBuffer)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	// Stopping early is honoured
	var taken []int
	for index := range seq {
		taken = append(taken, index)
		if len(taken) == 2 {
			break
		}
	}
	assert.Equal(t, first[:2], taken)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(0))
	assert.Equal(t, 13, WordCount(16))
	assert.Equal(t, 26, WordCount(32))
}

func TestBytesFromIndicesErrors(t *testing.T) {
	// Wrong number of words for the size
	_, err := BytesFromIndices([]int{0x001, 0x048}, 3)
	assert.ErrorIs(t, err, ErrInvalidPadding)

	_, err = BytesFromIndices([]int{0x001}, -1)
	assert.ErrorIs(t, err, ErrInvalidPadding)

	// Three bytes leave six padding bits in the first word
	_, err = BytesFromIndices([]int{0x040, 0x048, 0x233}, 3)
	assert.ErrorIs(t, err, ErrInvalidPadding)

	_, err = BytesFromIndices([]int{0x001, 0x400, 0x233}, 3)
	assert.ErrorIs(t, err, ErrInvalidWordIndex)

	_, err = BytesFromIndices([]int{0x001, -1, 0x233}, 3)
	assert.ErrorIs(t, err, ErrInvalidWordIndex)
}
