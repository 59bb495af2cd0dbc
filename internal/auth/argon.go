package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2Params are the cost parameters embedded in every encoded hash.
type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

// defaultParams are sensible for a personal notes server; verify always reads
// the parameters back out of the stored hash, so changing these is safe.
var defaultParams = argon2Params{
	memory:      64 * 1024,
	iterations:  3,
	parallelism: 4,
	saltLength:  16,
	keyLength:   32,
}

const (
	// maxPasswordLength bounds the work an unauthenticated caller can ask for.
	maxPasswordLength = 1024

	// Upper bounds for parameters read back from a stored hash.
	maxMemoryKiB  = 1 << 20
	maxIterations = 16
)

// Password errors.
var (
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length")
	errInvalidHash      = errors.New("invalid hash format")
	errIncompatibleHash = errors.New("incompatible argon2 version")
)

// HashPassword creates an Argon2id hash of the password in the
// $argon2id$v=19$m=...,t=...,p=...$salt$hash format.
// Every call uses a fresh random salt, so hashes of the same password differ.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	p := defaultParams
	salt := make([]byte, p.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.iterations,
		p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the encoded hash.
// A malformed hash is a mismatch, not an error.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if len(password) > maxPasswordLength {
		return false, nil
	}

	salt, want, p, err := decodeHash(encodedHash)
	if err != nil {
		//nolint:nilerr // a corrupt hash must look exactly like a wrong password
		return false, nil
	}

	got := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// decodeHash extracts salt, key and parameters from an encoded hash.
func decodeHash(encodedHash string) (salt, key []byte, p argon2Params, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, p, errInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, p, errInvalidHash
	}
	if version != argon2.Version {
		return nil, nil, p, errIncompatibleHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return nil, nil, p, errInvalidHash
	}
	if p.memory == 0 || p.iterations == 0 || p.parallelism == 0 ||
		p.memory > maxMemoryKiB || p.iterations > maxIterations {
		return nil, nil, p, errInvalidHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, nil, p, errInvalidHash
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, p, errInvalidHash
	}

	//nolint:gosec // key length comes from our own encoding, always small
	p.keyLength = uint32(len(key))
	//nolint:gosec // same as above
	p.saltLength = uint32(len(salt))

	return salt, key, p, nil
}
