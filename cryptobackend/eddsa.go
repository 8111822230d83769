package cryptobackend

import (
	"crypto/ed25519"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/arkline/jose/joseerr"
)

// EdDSASign signs data with an Ed25519 or Ed448 private key, per RFC 8037.
// Both algorithms are pure (no pre-hashing), so priv's concrete type alone
// selects the curve.
func (b *Backend) EdDSASign(priv any, data []byte) ([]byte, error) {
	switch key := priv.(type) {
	case ed25519.PrivateKey:
		return ed25519.Sign(key, data), nil
	case ed448.PrivateKey:
		return ed448.Sign(key, data, nil), nil
	default:
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "unsupported EdDSA private key type %T", priv)
	}
}

// EdDSAVerify verifies sig over data against an Ed25519 or Ed448 public key.
func (b *Backend) EdDSAVerify(pub any, data, sig []byte) error {
	switch key := pub.(type) {
	case ed25519.PublicKey:
		if !ed25519.Verify(key, data, sig) {
			return joseerr.New(joseerr.SignatureInvalid, "Ed25519 signature verification failed")
		}
		return nil
	case ed448.PublicKey:
		if !ed448.Verify(key, data, sig, nil) {
			return joseerr.New(joseerr.SignatureInvalid, "Ed448 signature verification failed")
		}
		return nil
	default:
		return joseerr.Newf(joseerr.KeyTypeMismatch, "unsupported EdDSA public key type %T", pub)
	}
}
