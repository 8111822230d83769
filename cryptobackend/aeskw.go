package cryptobackend

import (
	"crypto/aes"
	"encoding/binary"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

var aeskwDefaultIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

func aeskwKeyBits(alg jwa.KeyAlgorithm) (int, bool) {
	bits := alg.AESKWBits()
	return bits, bits != 0
}

// AESKWWrap wraps cek under kek using the RFC 3394 key wrap algorithm
// (RFC 7518 section 4.4). Used directly for A128KW/A192KW/A256KW, and as the
// second stage of ECDH-ES+A*KW and PBES2-*+A*KW. cek must be a multiple of
// 8 bytes and at least 16 bytes long.
func (b *Backend) AESKWWrap(alg jwa.KeyAlgorithm, kek, cek []byte) ([]byte, error) {
	bits, ok := aeskwKeyBits(alg)
	if !ok {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not an AES key wrap algorithm", alg)
	}
	if len(kek)*8 != bits {
		return nil, joseerr.KeyLength("invalid key encryption key length for "+string(alg), bits)
	}
	if len(cek)%8 != 0 || len(cek) < 16 {
		return nil, joseerr.New(joseerr.KeyLengthMismatch, "content encryption key is not a valid AES key wrap plaintext")
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to initialize AES block cipher", err)
	}

	n := len(cek) / 8
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], cek[i*8:(i+1)*8])
	}

	var a [8]byte
	copy(a[:], aeskwDefaultIV[:])

	buf := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(buf[:8], a[:])
			copy(buf[8:], r[i-1][:])
			block.Encrypt(buf, buf)

			t := uint64(n*j + i)
			tb := make([]byte, 8)
			binary.BigEndian.PutUint64(tb, t)
			for k := range a {
				a[k] = buf[k] ^ tb[k]
			}
			copy(r[i-1][:], buf[8:])
		}
	}

	out := make([]byte, 8+len(cek))
	copy(out[:8], a[:])
	for i := 0; i < n; i++ {
		copy(out[8+i*8:8+(i+1)*8], r[i][:])
	}
	return out, nil
}

// AESKWUnwrap reverses AESKWWrap, rejecting the result if the recovered
// integrity check value does not match the RFC 3394 default IV.
func (b *Backend) AESKWUnwrap(alg jwa.KeyAlgorithm, kek, wrapped []byte) ([]byte, error) {
	bits, ok := aeskwKeyBits(alg)
	if !ok {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not an AES key wrap algorithm", alg)
	}
	if len(kek)*8 != bits {
		return nil, joseerr.KeyLength("invalid key encryption key length for "+string(alg), bits)
	}
	if len(wrapped)%8 != 0 || len(wrapped) < 24 {
		return nil, joseerr.New(joseerr.IntegrityFailure, "AES key unwrap failed")
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to initialize AES block cipher", err)
	}

	n := len(wrapped)/8 - 1
	var a [8]byte
	copy(a[:], wrapped[:8])

	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], wrapped[8+i*8:8+(i+1)*8])
	}

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(n*j + i)
			tb := make([]byte, 8)
			binary.BigEndian.PutUint64(tb, t)

			var xored [8]byte
			for k := range a {
				xored[k] = a[k] ^ tb[k]
			}
			copy(buf[:8], xored[:])
			copy(buf[8:], r[i-1][:])
			block.Decrypt(buf, buf)

			copy(a[:], buf[:8])
			copy(r[i-1][:], buf[8:])
		}
	}

	if !ConstantTimeEqual(a[:], aeskwDefaultIV[:]) {
		return nil, joseerr.New(joseerr.IntegrityFailure, "AES key unwrap failed")
	}

	out := make([]byte, n*8)
	for i := 0; i < n; i++ {
		copy(out[i*8:(i+1)*8], r[i][:])
	}
	return out, nil
}
