// Package auth provides password hashing, session tokens, and reset tokens.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// KeyLength is the size of the PASETO v4 symmetric key (256 bits).
	KeyLength = 32
	// keyHexLength is KeyLength hex-encoded.
	keyHexLength = KeyLength * 2

	keyFileName = "auth.key"
)

// ErrInvalidKey is returned for keys that are not 64 hex characters.
var ErrInvalidKey = errors.New("auth key must be 64 hex characters")

// DecodeKey decodes a hex-encoded 32-byte signing key.
func DecodeKey(keyHex string) ([]byte, error) {
	keyHex = strings.TrimSpace(keyHex)
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return key, nil
}

// LoadOrGenerateKey loads the signing key from <dataDir>/auth.key, generating
// and persisting a new random key if the file does not exist yet.
func LoadOrGenerateKey(dataDir string) ([]byte, error) {
	keyPath := filepath.Join(dataDir, keyFileName)

	//#nosec G304 -- key path is derived from the configured data directory
	keyBytes, err := os.ReadFile(keyPath)
	if err == nil {
		key, err := DecodeKey(string(keyBytes))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", keyPath, err)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save auth key: %w", err)
	}

	return key, nil
}
