// Package secure holds small helpers for handling secret material: reading
// from an entropy source, wiping buffers and comparing them in constant time.
package secure

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"runtime"
)

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// ZeroAll zeros every buffer in bs.
func ZeroAll(bs [][]byte) {
	for _, b := range bs {
		Zero(b)
	}
}

// ClearBytes zeros *b and drops the reference.
func ClearBytes(b *[]byte) {
	if b == nil || *b == nil {
		return
	}
	Zero(*b)
	*b = nil
}

func ConstantTimeCompare(x, y []byte) bool {
	if len(x) != len(y) {
		return false
	}
	return subtle.ConstantTimeCompare(x, y) == 1
}

// Fill reads len(b) bytes from r into b. A failing source is reported to the
// caller; b is zeroed so that no partial output is used by mistake.
func Fill(r io.Reader, b []byte) error {
	if r == nil {
		r = rand.Reader
	}
	if _, err := io.ReadFull(r, b); err != nil {
		Zero(b)
		return fmt.Errorf("failed to read random bytes: %w", err)
	}
	return nil
}

// Random returns size bytes read from r, or from crypto/rand when r is nil.
func Random(r io.Reader, size int) ([]byte, error) {
	b := make([]byte, size)
	if err := Fill(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
