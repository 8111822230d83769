package cryptobackend

import (
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"io"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

// RSAWrap encrypts cek under pub, per RFC 7518 section 4.2-4.3. RSA1_5
// (PKCS#1 v1.5), RSA-OAEP (SHA-1) and RSA-OAEP-256 (SHA-256) are all handled
// by the stdlib's constant-time-by-design crypto/rsa primitives, which
// already produce uniform-shaped errors that do not leak padding validity.
func (b *Backend) RSAWrap(alg jwa.KeyAlgorithm, pub *rsa.PublicKey, cek []byte) ([]byte, error) {
	switch alg {
	case jwa.RSA1_5:
		ct, err := rsa.EncryptPKCS1v15(b.rand, pub, cek)
		if err != nil {
			return nil, joseerr.Wrap(joseerr.BackendError, "RSA1_5 key wrap failed", err)
		}
		return ct, nil
	case jwa.RSA_OAEP:
		ct, err := rsa.EncryptOAEP(sha1.New(), b.rand, pub, cek, nil)
		if err != nil {
			return nil, joseerr.Wrap(joseerr.BackendError, "RSA-OAEP key wrap failed", err)
		}
		return ct, nil
	case jwa.RSA_OAEP_256:
		ct, err := rsa.EncryptOAEP(sha256.New(), b.rand, pub, cek, nil)
		if err != nil {
			return nil, joseerr.Wrap(joseerr.BackendError, "RSA-OAEP-256 key wrap failed", err)
		}
		return ct, nil
	default:
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not an RSA key wrap algorithm", alg)
	}
}

// RSAUnwrap decrypts an RSA-wrapped CEK. For RSA1_5, a Bleichenbacher
// padding-oracle defense generates a random substitute key of the expected
// length on any decryption failure rather than returning early, so the
// caller cannot distinguish a padding failure from a successful decrypt by
// timing or error shape; the substitute simply fails integrity checks
// downstream exactly like a wrong key would. expectedLen must be the CEK
// length the negotiated "enc" algorithm requires.
func (b *Backend) RSAUnwrap(alg jwa.KeyAlgorithm, priv *rsa.PrivateKey, wrapped []byte, expectedLen int) ([]byte, error) {
	switch alg {
	case jwa.RSA1_5:
		cek, err := rsa.DecryptPKCS1v15(b.rand, priv, wrapped)
		if err != nil || len(cek) != expectedLen {
			return b.randomSubstituteCEK(expectedLen)
		}
		return cek, nil
	case jwa.RSA_OAEP:
		cek, err := rsa.DecryptOAEP(sha1.New(), b.rand, priv, wrapped, nil)
		if err != nil {
			return nil, joseerr.Wrap(joseerr.IntegrityFailure, "RSA-OAEP key unwrap failed", err)
		}
		return cek, nil
	case jwa.RSA_OAEP_256:
		cek, err := rsa.DecryptOAEP(sha256.New(), b.rand, priv, wrapped, nil)
		if err != nil {
			return nil, joseerr.Wrap(joseerr.IntegrityFailure, "RSA-OAEP-256 key unwrap failed", err)
		}
		return cek, nil
	default:
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not an RSA key wrap algorithm", alg)
	}
}

func (b *Backend) randomSubstituteCEK(n int) ([]byte, error) {
	cek := make([]byte, n)
	if _, err := io.ReadFull(b.rand, cek); err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to generate substitute key", err)
	}
	return cek, nil
}
