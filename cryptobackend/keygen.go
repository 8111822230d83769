package cryptobackend

import (
	"io"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

// GenerateCEK returns a fresh random content encryption key sized for enc.
func (b *Backend) GenerateCEK(enc jwa.EncryptionAlgorithm) ([]byte, error) {
	bits := enc.CEKBits()
	if bits == 0 {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "unknown content encryption algorithm %s", enc)
	}
	cek := make([]byte, bits/8)
	if _, err := io.ReadFull(b.rand, cek); err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to generate content encryption key", err)
	}
	return cek, nil
}

// GenerateRandom returns n fresh random bytes, used for PBES2 salts and
// other nonces that are not tied to a specific algorithm's key size.
func (b *Backend) GenerateRandom(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.rand, buf); err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to generate random bytes", err)
	}
	return buf, nil
}
