package cryptobackend

import (
	"io"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

// GCMKWEncrypt wraps cek under kek using AES-GCM key wrap (RFC 7518
// section 4.7, A128GCMKW/A192GCMKW/A256GCMKW). Unlike plain AES key wrap,
// this produces its own fresh 96-bit IV and a 128-bit tag, both of which the
// caller must carry in the JWE header ("iv"/"tag") since they are needed to
// unwrap.
func (b *Backend) GCMKWEncrypt(alg jwa.KeyAlgorithm, kek, cek []byte) (wrapped, iv, tag []byte, err error) {
	bits := alg.GCMKWBits()
	if bits == 0 {
		return nil, nil, nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not an AES-GCM key wrap algorithm", alg)
	}
	if len(kek)*8 != bits {
		return nil, nil, nil, joseerr.KeyLength("invalid key encryption key length for "+string(alg), bits)
	}

	gcm, err := newGCM(kek)
	if err != nil {
		return nil, nil, nil, err
	}

	iv = make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(b.rand, iv); err != nil {
		return nil, nil, nil, joseerr.Wrap(joseerr.BackendError, "failed to generate GCM key wrap IV", err)
	}

	sealed := gcm.Seal(nil, iv, cek, nil)
	wrapped = sealed[:len(sealed)-gcm.Overhead()]
	tag = sealed[len(sealed)-gcm.Overhead():]
	return wrapped, iv, tag, nil
}

// GCMKWDecrypt reverses GCMKWEncrypt using the iv/tag carried in the header.
func (b *Backend) GCMKWDecrypt(alg jwa.KeyAlgorithm, kek, wrapped, iv, tag []byte) ([]byte, error) {
	bits := alg.GCMKWBits()
	if bits == 0 {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not an AES-GCM key wrap algorithm", alg)
	}
	if len(kek)*8 != bits {
		return nil, joseerr.KeyLength("invalid key encryption key length for "+string(alg), bits)
	}

	gcm, err := newGCM(kek)
	if err != nil {
		return nil, err
	}
	if len(iv) != gcm.NonceSize() {
		return nil, joseerr.New(joseerr.IntegrityFailure, "AES-GCM key unwrap failed")
	}

	sealed := append(append([]byte{}, wrapped...), tag...)
	cek, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.IntegrityFailure, "AES-GCM key unwrap failed", err)
	}
	return cek, nil
}
