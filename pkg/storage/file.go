package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nlordell/hdwallet/pkg/secure"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize   = 32
	NonceSize  = 12
	KeySize    = 32
	Iterations = 100000

	// MaxIterations bounds the key derivation cost a file can ask for.
	MaxIterations = 10 * Iterations

	DefaultPermissions os.FileMode = 0o600

	envelopeVersion = 1
)

var (
	ErrPasswordRequired = errors.New("file is encrypted, a password is required")
	ErrDecrypt          = errors.New("failed to decrypt: wrong password or corrupted file")
	ErrUnsupported      = errors.New("unsupported envelope")
)

// SecureFile reads and writes a single file, optionally sealed with a
// password. Sealed files hold an Envelope; plain files hold the payload as is.
type SecureFile struct {
	path        string
	random      io.Reader
	permissions os.FileMode
}

// Envelope is the on-disk form of a sealed payload: AES-256-GCM under a
// PBKDF2-SHA256 key derived from the password.
type Envelope struct {
	Version    int    `json:"version"`
	KDF        string `json:"kdf"`
	Iterations int    `json:"iterations"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

type FileOption func(*SecureFile)

// WithRandom sets the source of salts and nonces.
func WithRandom(r io.Reader) FileOption {
	return func(f *SecureFile) {
		f.random = r
	}
}

// WithPermissions sets the mode of files created by Save.
func WithPermissions(perm os.FileMode) FileOption {
	return func(f *SecureFile) {
		f.permissions = perm
	}
}

func NewSecureFile(path string, opts ...FileOption) *SecureFile {
	f := &SecureFile{
		path:        path,
		permissions: DefaultPermissions,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *SecureFile) Path() string {
	return f.path
}

// Save writes data, sealed when password is non-empty.
func (f *SecureFile) Save(data, password []byte) error {
	if len(password) > 0 {
		sealed, err := f.seal(data, password)
		if err != nil {
			return err
		}
		data = sealed
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(f.path, data, f.permissions); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Load reads the file and opens it if it is sealed.
func (f *SecureFile) Load(password []byte) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	envelope, ok := parseEnvelope(data)
	if !ok {
		return data, nil
	}
	if len(password) == 0 {
		return nil, ErrPasswordRequired
	}

	return envelope.open(password)
}

// IsSealed reports whether the file holds an Envelope.
func (f *SecureFile) IsSealed() (bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	_, ok := parseEnvelope(data)
	return ok, nil
}

func (f *SecureFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Delete overwrites the file with random bytes before removing it.
func (f *SecureFile) Delete() error {
	info, err := os.Stat(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	noise, err := secure.Random(f.random, int(info.Size()))
	if err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}
	if err := os.WriteFile(f.path, noise, f.permissions); err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}

	return os.Remove(f.path)
}

func (f *SecureFile) seal(data, password []byte) ([]byte, error) {
	salt, err := secure.Random(f.random, SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce, err := secure.Random(f.random, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	gcm, err := newGCM(password, salt, Iterations)
	if err != nil {
		return nil, err
	}

	envelope := Envelope{
		Version:    envelopeVersion,
		KDF:        "pbkdf2-sha256",
		Iterations: Iterations,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, data, nil),
	}

	sealed, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return sealed, nil
}

func (e *Envelope) open(password []byte) ([]byte, error) {
	if e.Version != envelopeVersion || e.KDF != "pbkdf2-sha256" {
		return nil, fmt.Errorf("%w: version %d, kdf %q", ErrUnsupported, e.Version, e.KDF)
	}
	if e.Iterations < 1 || e.Iterations > MaxIterations {
		return nil, fmt.Errorf("%w: %d iterations, at most %d allowed", ErrUnsupported, e.Iterations, MaxIterations)
	}
	if len(e.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: bad nonce length", ErrDecrypt)
	}

	gcm, err := newGCM(password, e.Salt, e.Iterations)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, e.Nonce, e.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func parseEnvelope(data []byte) (*Envelope, bool) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, false
	}
	if len(envelope.Ciphertext) == 0 {
		return nil, false
	}
	return &envelope, true
}

func newGCM(password, salt []byte, iterations int) (cipher.AEAD, error) {
	key := pbkdf2.Key(password, salt, iterations, KeySize, sha256.New)
	defer secure.Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
