package validation

import (
	"testing"

	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHex(t *testing.T) {
	assert.NoError(t, ValidateHex("00ff"))
	assert.NoError(t, ValidateHex(" ABcd "))
	assert.Error(t, ValidateHex(""))
	assert.Error(t, ValidateHex("abc"))
	assert.Error(t, ValidateHex("zz"))
}

func TestDecodeSecret(t *testing.T) {
	secret, err := DecodeSecret("0x000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)
	assert.Len(t, secret, 16)
	assert.Equal(t, byte(0x0f), secret[15])

	_, err = DecodeSecret("000102030405060708090a0b0c0d0e")
	assert.Error(t, err)

	_, err = DecodeSecret("000102030405060708090a0b0c0d0e0f10")
	assert.Error(t, err)

	_, err = DecodeSecret("not hex")
	assert.Error(t, err)
}

func TestParseGroups(t *testing.T) {
	groups, err := ParseGroups("2/3, 3of5,1 / 1")
	require.NoError(t, err)
	assert.Equal(t, []slip039.GroupConfiguration{
		{MemberThreshold: 2, MemberCount: 3},
		{MemberThreshold: 3, MemberCount: 5},
		{MemberThreshold: 1, MemberCount: 1},
	}, groups)

	for _, bad := range []string{"", "2", "2/", "4/3", "0/3", "2/17", "a/b", "2/3,"} {
		_, err := ParseGroups(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestValidateSplitParams(t *testing.T) {
	assert.NoError(t, ValidateSplitParams(1, 1))
	assert.NoError(t, ValidateSplitParams(16, 16))
	assert.Error(t, ValidateSplitParams(0, 0))
	assert.Error(t, ValidateSplitParams(17, 2))
	assert.Error(t, ValidateSplitParams(3, 4))
}

func TestValidateIterationExponent(t *testing.T) {
	assert.NoError(t, ValidateIterationExponent(0))
	assert.NoError(t, ValidateIterationExponent(30))
	assert.Error(t, ValidateIterationExponent(31))
	assert.Error(t, ValidateIterationExponent(-1))
}

func TestParseIndices(t *testing.T) {
	indices, err := ParseIndices("[1, 2 1023]\n0")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 1023, 0}, indices)

	_, err = ParseIndices("1 1024")
	assert.Error(t, err)
	_, err = ParseIndices("1 x")
	assert.Error(t, err)
	_, err = ParseIndices(" , ")
	assert.Error(t, err)
}

func TestValidatePassphrase(t *testing.T) {
	assert.NoError(t, ValidatePassphrase(""))
	assert.NoError(t, ValidatePassphrase("TREZOR ~!"))
	assert.Error(t, ValidatePassphrase("café"))
	assert.Error(t, ValidatePassphrase("a\x00b"))
	assert.Error(t, ValidatePassphrase(string(make([]byte, 300))))
}

func TestSplitShares(t *testing.T) {
	input := "\r\n# group 1\r\n  word  one two \n\n\tthree four\r\n"
	assert.Equal(t, []string{"word one two", "three four"}, SplitShares(input))
	assert.Empty(t, SplitShares("  \n "))
}
