package slip039

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/nlordell/hdwallet/pkg/secure"
	"golang.org/x/crypto/pbkdf2"
)

// saltPrefix personalizes the round function salt; it is followed by the
// big-endian identifier.
const saltPrefix = "shamir"

// IterationCount returns the number of PBKDF2 iterations in each Feistel
// round for iterationExponent.
func IterationCount(iterationExponent byte) int {
	return BaseIterationCount << iterationExponent
}

// Encrypt encrypts the master secret using a 4-round Feistel network keyed by
// passphrase. The identifier and iteration exponent must be presented again
// to Decrypt.
func Encrypt(masterSecret, passphrase []byte, iterationExponent byte, identifier uint16) ([]byte, error) {
	return feistel(masterSecret, passphrase, iterationExponent, identifier, [RoundCount]byte{0, 1, 2, 3})
}

// Decrypt decrypts an encrypted master secret by running the Feistel rounds
// of Encrypt in reverse order.
func Decrypt(encryptedMasterSecret, passphrase []byte, iterationExponent byte, identifier uint16) ([]byte, error) {
	return feistel(encryptedMasterSecret, passphrase, iterationExponent, identifier, [RoundCount]byte{3, 2, 1, 0})
}

// feistel runs the given rounds over data. The output buffer starts as R || L
// and each round XORs F(i, R) into L before the halves trade places, so the
// buffer ends as R || L of the final round.
func feistel(data, passphrase []byte, iterationExponent byte, identifier uint16, rounds [RoundCount]byte) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSecretLength, len(data))
	}
	if iterationExponent >= MaxIterationExponent {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterationExponent, iterationExponent)
	}

	half := len(data) / 2
	output := make([]byte, len(data))
	copy(output[:half], data[half:])
	copy(output[half:], data[:half])
	r, l := output[:half], output[half:]

	// Password is round number (1 byte) || passphrase
	password := make([]byte, 1+len(passphrase))
	copy(password[1:], passphrase)
	defer secure.Zero(password)

	// Salt is "shamir" || identifier || R
	salt := make([]byte, len(saltPrefix)+2+half)
	copy(salt, saltPrefix)
	binary.BigEndian.PutUint16(salt[len(saltPrefix):], identifier)
	defer secure.Zero(salt)

	iterations := IterationCount(iterationExponent)
	for _, round := range rounds {
		password[0] = round
		copy(salt[len(saltPrefix)+2:], r)

		f := pbkdf2.Key(password, salt, iterations, half, sha256.New)
		subtle.XORBytes(l, l, f)
		secure.Zero(f)

		l, r = r, l
	}

	return output, nil
}
