package test

import (
	pkgAuth "github.com/polkiloo/cakeshop-checkout/internal/pkg/auth"
)

// KeyVerifierStub accepts a single key or returns a fixed error.
type KeyVerifierStub struct {
	Key string
	Err error
}

// Verify returns Err when set, otherwise checks key against Key.
func (s KeyVerifierStub) Verify(key string) error {
	if s.Err != nil {
		return s.Err
	}
	if key == "" || key != s.Key {
		return pkgAuth.ErrInvalidKey
	}
	return nil
}

var _ pkgAuth.KeyVerifier = KeyVerifierStub{}
