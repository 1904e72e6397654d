package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
)

func TestNewKeyVerifierUsesConfiguredHash(t *testing.T) {
	hash, err := HashKey("admin", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	verifier := newKeyVerifier(verifierParams{Config: &config.Config{AdminKeyHash: hash}})
	if _, ok := verifier.(*BcryptKeyVerifier); !ok {
		t.Fatalf("expected *BcryptKeyVerifier, got %T", verifier)
	}
	if err := verifier.Verify("admin"); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
