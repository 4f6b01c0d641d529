package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Interactive-login parameters; a hash costs roughly 50ms on a small VPS.
	argon2Memory      = 64 * 1024
	argon2Iterations  = 3
	argon2Parallelism = 2
	argon2SaltLength  = 16
	argon2KeyLength   = 32

	// Upper bound on memory accepted from a stored hash (1 GiB).
	maxArgon2Memory = 1024 * 1024

	// Caps hashing cost for oversized inputs.
	maxPasswordLength = 1024
)

var (
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrPasswordTooLong is returned when a password exceeds maxPasswordLength.
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// HashPassword creates an argon2id hash of the password in PHC string format.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	salt := make([]byte, argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Iterations, argon2Memory, argon2Parallelism, argon2KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Iterations,
		argon2Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the stored hash.
// Accounts imported from the previous deployment carry bcrypt hashes, so both
// formats are accepted. A malformed hash never matches.
func VerifyPassword(password, encoded string) bool {
	if password == "" || len(password) > maxPasswordLength {
		return false
	}

	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2(password, encoded)
	case isBcryptHash(encoded):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	default:
		return false
	}
}

// NeedsRehash reports whether a stored hash should be replaced by a fresh
// argon2id hash with the current parameters.
func NeedsRehash(encoded string) bool {
	if isBcryptHash(encoded) {
		return true
	}
	_, _, params, err := decodeArgon2(encoded)
	if err != nil {
		return true
	}
	return params.memory != argon2Memory ||
		params.iterations != argon2Iterations ||
		params.parallelism != argon2Parallelism
}

func isBcryptHash(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func verifyArgon2(password, encoded string) bool {
	salt, want, params, err := decodeArgon2(encoded)
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, params.iterations, params.memory, params.parallelism, params.keyLength)
	return subtle.ConstantTimeCompare(want, got) == 1
}

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	keyLength   uint32
}

func decodeArgon2(encoded string) (salt, key []byte, params *argon2Params, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, nil, errors.New("invalid hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	params = &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.iterations, &params.parallelism); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.iterations == 0 || params.parallelism == 0 || params.memory > maxArgon2Memory {
		return nil, nil, nil, errors.New("invalid parameters: cost out of range")
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid hash encoding: %w", err)
	}
	if len(key) == 0 {
		return nil, nil, nil, errors.New("invalid hash: empty key")
	}

	//nolint:gosec // key length is bounded by the encoded string
	params.keyLength = uint32(len(key))

	return salt, key, params, nil
}
