// Package auth implements password hashing, PASETO session tokens and
// cookie-based session binding.
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
	// KeySize is the PASETO v4.local symmetric key size in bytes.
	KeySize = 32
	// keyHexLength is KeySize hex-encoded.
	keyHexLength = KeySize * 2

	keyFileName = "auth.key"
)

// ErrInvalidKey is returned for keys that are not 32 hex-encoded bytes.
var ErrInvalidKey = errors.New("invalid token key")

// DecodeKey decodes a hex-encoded 32-byte token key.
func DecodeKey(keyHex string) ([]byte, error) {
	keyHex = strings.TrimSpace(keyHex)
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("%w: expected %d hex chars, got %d", ErrInvalidKey, keyHexLength, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return key, nil
}

// LoadOrGenerateKey returns the token key stored in <dataPath>/auth.key,
// creating the file with a fresh random key on first use.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, keyFileName)

	//#nosec G304 -- key path is derived from the configured data directory
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		key, err := DecodeKey(string(raw))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", keyPath, err)
		}
		return key, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save auth key: %w", err)
	}

	return key, nil
}
