// Package id generates random identifiers and secrets with NanoID.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// passwordAlphabet avoids characters that are easy to misread when a generated
// password is copied from a log line.
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Generate creates a prefixed unique ID, e.g. "err-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if the system has no entropy.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Password returns a random password of the given length.
func Password(length int) (string, error) {
	if length < 12 {
		return "", fmt.Errorf("password length %d too short", length)
	}
	pw, err := gonanoid.Generate(passwordAlphabet, length)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return pw, nil
}
