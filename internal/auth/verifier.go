// Package auth verifies that the principal named in an invocation actually
// signed it. The settlement core itself only compares addresses; this check
// sits upstream, at the transport boundary.
package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/kodax/bulkpay/internal/domain/model"
)

// Verifier checks that payload was signed by the key behind principal.
type Verifier interface {
	Verify(principal model.Address, payload, signature []byte) error
}

// Ed25519Verifier treats an address as the hex encoding of an ed25519 public
// key, so possession of the matching private key is possession of the
// principal.
type Ed25519Verifier struct{}

var _ Verifier = Ed25519Verifier{}

func (Ed25519Verifier) Verify(principal model.Address, payload, signature []byte) error {
	pub, err := hex.DecodeString(string(principal))
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("principal %s is not a valid public key: %w", principal, model.ErrUnauthorized)
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), payload, signature) {
		return fmt.Errorf("signature does not verify for %s: %w", principal, model.ErrUnauthorized)
	}
	return nil
}

// NoopVerifier accepts every invocation. Used in dev environments where the
// transport is already authenticated.
type NoopVerifier struct{}

var _ Verifier = NoopVerifier{}

func (NoopVerifier) Verify(model.Address, []byte, []byte) error {
	return nil
}
