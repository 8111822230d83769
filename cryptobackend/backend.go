// Package cryptobackend implements the crypto primitives behind every JWS
// and JWE algorithm (RFC 7518) as a single Backend value built from stdlib
// crypto plus a small set of algorithms stdlib does not cover (secp256k1,
// Ed448). Every exported Backend method is total over its algorithm family:
// an unsupported algorithm name returns joseerr.AlgorithmUnsupported rather
// than panicking, so callers can probe support uniformly.
package cryptobackend

import (
	"crypto/rand"
	"io"
)

// Backend bundles every crypto primitive this module needs, configured via
// Option. The zero value is unusable; construct with New.
type Backend struct {
	rand          io.Reader
	pbkdf2MinIter int
}

const defaultPBKDF2MinIterations = 310_000 // OWASP 2023 guidance for PBKDF2-HMAC-SHA256

// Option configures a Backend.
type Option func(*Backend)

// WithRandSource overrides the source of cryptographic randomness used for
// key generation, IV/nonce generation, RSA blinding and ECDSA/EdDSA nonces.
// Defaults to crypto/rand.Reader; tests may inject a deterministic source.
func WithRandSource(r io.Reader) Option {
	return func(b *Backend) { b.rand = r }
}

// WithPBKDF2MinIterations sets a floor below which PBES2 decryption refuses
// to honor a peer-supplied "p2c" iteration count, guarding against a
// malicious header forcing an expensive-but-weak derivation. The floor is
// checked on every PBES2DeriveKey call, so an encrypting caller's own p2c
// must meet it too.
func WithPBKDF2MinIterations(n int) Option {
	return func(b *Backend) { b.pbkdf2MinIter = n }
}

// New builds a Backend with stdlib-backed defaults for every primitive.
func New(opts ...Option) *Backend {
	b := &Backend{
		rand:          rand.Reader,
		pbkdf2MinIter: defaultPBKDF2MinIterations,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}
