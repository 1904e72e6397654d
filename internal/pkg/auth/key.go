package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidKey is returned when the presented key does not match.
	ErrInvalidKey = errors.New("invalid admin key")
	// ErrDisabled is returned when no admin key hash is configured.
	ErrDisabled = errors.New("admin access disabled")
)

// KeyVerifier checks admin API keys.
type KeyVerifier interface {
	Verify(key string) error
}

// BcryptKeyVerifier compares keys against a bcrypt hash.
type BcryptKeyVerifier struct {
	hash []byte
}

// NewBcryptKeyVerifier creates a verifier for hash. An empty hash disables admin access.
func NewBcryptKeyVerifier(hash string) *BcryptKeyVerifier {
	return &BcryptKeyVerifier{hash: []byte(strings.TrimSpace(hash))}
}

// Verify returns nil when key matches the configured hash.
func (v *BcryptKeyVerifier) Verify(key string) error {
	if len(v.hash) == 0 {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(key)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidKey
		}
		return err
	}
	return nil
}

// HashKey returns the bcrypt hash to configure as ADMIN_KEY_HASH.
func HashKey(key string, cost int) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	encoded, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
