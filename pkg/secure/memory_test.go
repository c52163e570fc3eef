package secure

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZero(t *testing.T) {
	b := []byte("sensitive data")
	Zero(b)
	assert.Equal(t, make([]byte, 14), b)

	bs := [][]byte{[]byte("one"), []byte("two"), nil}
	ZeroAll(bs)
	assert.Equal(t, []byte{0, 0, 0}, bs[0])
	assert.Equal(t, []byte{0, 0, 0}, bs[1])
}

func TestClearBytes(t *testing.T) {
	b := []byte("secret")
	alias := b
	ClearBytes(&b)
	assert.Nil(t, b)
	assert.Equal(t, make([]byte, 6), alias)

	ClearBytes(nil)
	var empty []byte
	ClearBytes(&empty)
	assert.Nil(t, empty)
}

func TestConstantTimeCompare(t *testing.T) {
	assert.True(t, ConstantTimeCompare([]byte("abc"), []byte("abc")))
	assert.False(t, ConstantTimeCompare([]byte("abc"), []byte("abd")))
	assert.False(t, ConstantTimeCompare([]byte("abc"), []byte("ab")))
	assert.True(t, ConstantTimeCompare(nil, []byte{}))
}

func TestRandom(t *testing.T) {
	b, err := Random(nil, 32)
	require.NoError(t, err)
	assert.Len(t, b, 32)

	src := bytes.NewReader([]byte{1, 2, 3, 4, 5})
	b, err = Random(src, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, b)

	// Short reads are an error
	_, err = Random(src, 4)
	assert.Error(t, err)
}

func TestFillError(t *testing.T) {
	errSource := errors.New("source failed")

	b := []byte("keep me out")
	err := Fill(iotest.ErrReader(errSource), b)
	assert.ErrorIs(t, err, errSource)
	assert.Equal(t, make([]byte, len(b)), b)
}
