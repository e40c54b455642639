// Package authcred verifies a caller-supplied credential attachment
// against an Argon2id-hashed secret before an invocation is allowed to
// reach its Receiver (SPEC_FULL "Credential").
package authcred

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
)

// ErrMissingCredential is returned when no credential attachment was set
// on the invocation at all.
var ErrMissingCredential = errors.New("authcred: no credential attached to invocation")

// ErrInvalidCredential is returned when the attached credential does not
// match the configured hash.
var ErrInvalidCredential = errors.New("authcred: credential verification failed")

// ErrUnknownHashType is returned when the configured hash is in neither
// recognized format.
var ErrUnknownHashType = errors.New("authcred: unrecognized hash format")

// argon2idParams follows OWASP's minimum recommendation for Argon2id:
// 46 MiB memory, 1 iteration, 1 degree of parallelism.
var argon2idParams = &argon2id.Params{
	Memory:      46 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash produces an Argon2id PHC-format hash of secret, suitable for
// storing in CredentialConfig.HashedSecret.
func Hash(secret string) (string, error) {
	return argon2id.CreateHash(secret, argon2idParams)
}

// Verifier checks a raw credential against one fixed hashed secret. It
// holds no per-caller state, so a single instance is safe to share across
// every invocation a process handles.
type Verifier struct {
	hashedSecret string
}

// NewVerifier returns a Verifier that checks candidates against
// hashedSecret, which must be either an Argon2id PHC string
// ("$argon2id$...") or a "sha256:<hex>" digest kept for migration from
// legacy plain SHA-256 secrets.
func NewVerifier(hashedSecret string) *Verifier {
	return &Verifier{hashedSecret: hashedSecret}
}

// Verify reports whether raw matches the configured secret.
func (v *Verifier) Verify(raw string) (bool, error) {
	switch {
	case strings.HasPrefix(v.hashedSecret, "$argon2id$"):
		return safeArgon2idCompare(raw, v.hashedSecret)
	case strings.HasPrefix(v.hashedSecret, "sha256:"):
		return constantTimeSHA256Compare(raw, strings.TrimPrefix(v.hashedSecret, "sha256:")), nil
	default:
		return false, ErrUnknownHashType
	}
}

// safeArgon2idCompare wraps argon2id.ComparePasswordAndHash with panic
// recovery: the underlying library panics on malformed parameters (e.g.
// t=0) rather than returning an error.
func safeArgon2idCompare(raw, hashed string) (match bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			match = false
			err = fmt.Errorf("authcred: invalid argon2id hash parameters: %v", r)
		}
	}()
	return argon2id.ComparePasswordAndHash(raw, hashed)
}
