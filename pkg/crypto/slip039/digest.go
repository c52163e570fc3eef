package slip039

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/nlordell/hdwallet/pkg/secure"
)

// DigestLength is the number of checksum bytes carried in a digest share.
const DigestLength = 4

// checksum computes HMAC-SHA256 keyed with the random part of a digest share
// over the shared secret.
func checksum(random, secret []byte) [sha256.Size]byte {
	var sum [sha256.Size]byte
	h := hmac.New(sha256.New, random)
	h.Write(secret)
	h.Sum(sum[:0])
	return sum
}

// createDigest fills digest[:4] with the checksum of secret keyed by
// digest[4:]. The random tail must already be in place.
func createDigest(digest, secret []byte) {
	sum := checksum(digest[DigestLength:], secret)
	copy(digest[:DigestLength], sum[:DigestLength])
	secure.Zero(sum[:])
}

// verifyDigest reports whether digest carries the checksum of secret.
func verifyDigest(digest, secret []byte) bool {
	if len(digest) < DigestLength {
		return false
	}
	sum := checksum(digest[DigestLength:], secret)
	defer secure.Zero(sum[:])
	return secure.ConstantTimeCompare(digest[:DigestLength], sum[:DigestLength])
}
