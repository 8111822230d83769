package cryptobackend

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

// GenerateIV returns a fresh random initialization vector of the length
// enc requires (96 bits for GCM, 128 bits for CBC, per RFC 7518 section 5).
func (b *Backend) GenerateIV(enc jwa.EncryptionAlgorithm) ([]byte, error) {
	iv := make([]byte, enc.IVBits()/8)
	if _, err := io.ReadFull(b.rand, iv); err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to generate IV", err)
	}
	return iv, nil
}

// GCMEncrypt encrypts plaintext under cek with the given iv and AAD, per
// RFC 7518 section 5.3. It returns the ciphertext and the 128-bit auth tag
// separately, matching the JWE compact serialization's segment split.
func (b *Backend) GCMEncrypt(enc jwa.EncryptionAlgorithm, cek, iv, aad, plaintext []byte) (ciphertext, tag []byte, err error) {
	if !enc.IsGCM() {
		return nil, nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not a GCM content encryption algorithm", enc)
	}
	if len(cek)*8 != enc.CEKBits() {
		return nil, nil, joseerr.KeyLength("invalid CEK length for "+string(enc), enc.CEKBits())
	}

	gcm, err := newGCM(cek)
	if err != nil {
		return nil, nil, err
	}

	sealed := gcm.Seal(nil, iv, plaintext, aad)
	ct := sealed[:len(sealed)-gcm.Overhead()]
	t := sealed[len(sealed)-gcm.Overhead():]
	return ct, t, nil
}

// GCMDecrypt authenticates and decrypts ciphertext under cek/iv/aad/tag. Any
// tag mismatch is reported as the opaque IntegrityFailure kind.
func (b *Backend) GCMDecrypt(enc jwa.EncryptionAlgorithm, cek, iv, aad, ciphertext, tag []byte) ([]byte, error) {
	if !enc.IsGCM() {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not a GCM content encryption algorithm", enc)
	}
	if len(cek)*8 != enc.CEKBits() {
		return nil, joseerr.KeyLength("invalid CEK length for "+string(enc), enc.CEKBits())
	}

	gcm, err := newGCM(cek)
	if err != nil {
		return nil, err
	}

	sealed := append(append([]byte{}, ciphertext...), tag...)
	plaintext, err := gcm.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.IntegrityFailure, "AES-GCM authentication failed", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to initialize AES block cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to initialize AES-GCM", err)
	}
	return gcm, nil
}
