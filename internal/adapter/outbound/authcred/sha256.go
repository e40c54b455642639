package authcred

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// constantTimeSHA256Compare hashes raw and compares it against
// expectedHex in constant time, to avoid leaking timing information
// about how many leading bytes matched.
func constantTimeSHA256Compare(raw, expectedHex string) bool {
	sum := sha256.Sum256([]byte(raw))
	computed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expectedHex)) == 1
}
