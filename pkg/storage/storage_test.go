package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"testing/iotest"

	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureFilePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.json")
	f := NewSecureFile(path)

	assert.False(t, f.Exists())
	require.NoError(t, f.Save([]byte(`{"hello":"world"}`), nil))
	assert.True(t, f.Exists())

	sealed, err := f.IsSealed()
	require.NoError(t, err)
	assert.False(t, sealed)

	data, err := f.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, `{"hello":"world"}`, string(data))

	// A password is ignored for plain files
	data, err = f.Load([]byte("unused"))
	require.NoError(t, err)
	assert.Equal(t, `{"hello":"world"}`, string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultPermissions, info.Mode().Perm())
	}
}

func TestSecureFileSealed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sealed.json")
	f := NewSecureFile(path, WithPermissions(0o640))

	payload := []byte("top secret payload")
	require.NoError(t, f.Save(payload, []byte("correct horse")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "top secret")

	sealed, err := f.IsSealed()
	require.NoError(t, err)
	assert.True(t, sealed)

	data, err := f.Load([]byte("correct horse"))
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = f.Load(nil)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = f.Load([]byte("wrong horse"))
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestSecureFileRejectsEnvelopeParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sealed.json")
	f := NewSecureFile(path)
	password := []byte("correct horse")
	require.NoError(t, f.Save([]byte("payload"), password))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	tests := []struct {
		name   string
		modify func(*Envelope)
	}{
		{"huge iteration count", func(e *Envelope) { e.Iterations = 1 << 40 }},
		{"just above the limit", func(e *Envelope) { e.Iterations = MaxIterations + 1 }},
		{"zero iterations", func(e *Envelope) { e.Iterations = 0 }},
		{"unknown kdf", func(e *Envelope) { e.KDF = "scrypt" }},
		{"unknown version", func(e *Envelope) { e.Version = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var envelope Envelope
			require.NoError(t, json.Unmarshal(raw, &envelope))
			tt.modify(&envelope)

			data, err := json.Marshal(&envelope)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			_, err = f.Load(password)
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}

func TestSecureFileRandomFailure(t *testing.T) {
	errSource := errors.New("no entropy")
	f := NewSecureFile(filepath.Join(t.TempDir(), "x.json"), WithRandom(iotest.ErrReader(errSource)))

	err := f.Save([]byte("data"), []byte("password"))
	assert.ErrorIs(t, err, errSource)
	assert.False(t, f.Exists())
}

func TestSecureFileDelete(t *testing.T) {
	f := NewSecureFile(filepath.Join(t.TempDir(), "x.json"))
	require.NoError(t, f.Delete())

	require.NoError(t, f.Save([]byte("data"), nil))
	require.NoError(t, f.Delete())
	assert.False(t, f.Exists())
}

func testShares(t *testing.T) []slip039.Share {
	t.Helper()
	groups := []slip039.GroupConfiguration{
		{MemberThreshold: 2, MemberCount: 3},
		{MemberThreshold: 1, MemberCount: 2},
	}
	shares, err := slip039.GenerateShares(1, groups, []byte("ABCDEFGHIJKLMNOP"), "", 0)
	require.NoError(t, err)
	return shares
}

func encodeIndices(share slip039.Share) (string, error) {
	indices, err := share.Indices()
	if err != nil {
		return "", err
	}
	return fmt.Sprint(indices), nil
}

func TestShareStore(t *testing.T) {
	shares := testShares(t)

	set, err := NewShareSet(shares, FormatIndices, encodeIndices)
	require.NoError(t, err)
	require.Len(t, set.Groups, 2)
	assert.Equal(t, byte(2), set.Groups[0].MemberThreshold)
	assert.Len(t, set.Groups[0].Shares, 3)
	assert.Len(t, set.Groups[1].Shares, 2)
	assert.Len(t, set.All(), 5)
	assert.Equal(t, shares[0].CommonParameters.Identifier, set.Identifier)

	for _, password := range [][]byte{nil, []byte("password")} {
		store := NewShareStore(filepath.Join(t.TempDir(), "shares.json"))
		require.NoError(t, store.Save(set, password))

		loaded, err := store.Load(password)
		require.NoError(t, err)
		assert.Equal(t, set.All(), loaded.All())
		assert.Equal(t, set.GroupThreshold, loaded.GroupThreshold)
		assert.True(t, set.Created.Equal(loaded.Created))

		sealed, err := store.IsSealed()
		require.NoError(t, err)
		assert.Equal(t, password != nil, sealed)
	}
}

func TestShareSetValidation(t *testing.T) {
	_, err := NewShareSet(nil, FormatMnemonic, encodeIndices)
	assert.ErrorIs(t, err, ErrInvalidShareSet)

	_, err = NewShareSet(testShares(t), "qr", encodeIndices)
	assert.ErrorIs(t, err, ErrInvalidShareSet)

	mixed := testShares(t)
	mixed[3].CommonParameters.Identifier ^= 1
	_, err = NewShareSet(mixed, FormatIndices, encodeIndices)
	assert.ErrorIs(t, err, ErrInvalidShareSet)

	errEncode := errors.New("cannot encode")
	_, err = NewShareSet(testShares(t), FormatIndices, func(slip039.Share) (string, error) {
		return "", errEncode
	})
	assert.ErrorIs(t, err, errEncode)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"format":"indices","groups":[]}`), 0o600))
	_, err = NewShareStore(path).Load(nil)
	assert.ErrorIs(t, err, ErrInvalidShareSet)
}
