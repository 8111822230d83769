package cryptobackend

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"hash"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

// cbcHMACParams returns the HMAC hash constructor, the tag length in bytes
// (half the full HMAC output, per RFC 7518 section 5.2.2.1), and the AES key
// size in bytes for a CBC-HMAC enc algorithm. The CEK splits into two equal
// halves: the first half is the HMAC key, the second half the AES key.
func cbcHMACParams(enc jwa.EncryptionAlgorithm) (hf func() hash.Hash, tagLen, aesKeyLen int, ok bool) {
	switch enc {
	case jwa.A128CBC_HS256:
		return sha256.New, 16, 16, true
	case jwa.A192CBC_HS384:
		return sha512.New384, 24, 24, true
	case jwa.A256CBC_HS512:
		return sha512.New, 32, 32, true
	default:
		return nil, 0, 0, false
	}
}

// CBCHMACEncrypt implements the AES-CBC-HMAC-SHA2 composite authenticated
// encryption of RFC 7518 section 5.2.2: the CEK splits into a MAC key and an
// encryption key of equal size, plaintext is PKCS#7 padded and CBC-encrypted,
// and the authentication tag is the truncated HMAC over AAD || IV ||
// ciphertext || AL, where AL is the 64-bit big-endian bit length of AAD.
func (b *Backend) CBCHMACEncrypt(enc jwa.EncryptionAlgorithm, cek, iv, aad, plaintext []byte) (ciphertext, tag []byte, err error) {
	hf, tagLen, aesKeyLen, ok := cbcHMACParams(enc)
	if !ok {
		return nil, nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not an AES-CBC-HMAC content encryption algorithm", enc)
	}
	if len(cek) != 2*aesKeyLen {
		return nil, nil, joseerr.KeyLength("invalid CEK length for "+string(enc), enc.CEKBits())
	}
	macKey, encKey := cek[:aesKeyLen], cek[aesKeyLen:]

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, nil, joseerr.Wrap(joseerr.BackendError, "failed to initialize AES block cipher", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, nil, joseerr.Newf(joseerr.HeaderInvalid, "invalid IV length for %s: got %d, want %d", enc, len(iv), block.BlockSize())
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	t := cbcHMACTag(hf, macKey, tagLen, aad, iv, ct)
	return ct, t, nil
}

// CBCHMACDecrypt authenticates ciphertext+tag before decrypting, comparing
// the tag in constant time and returning IntegrityFailure on mismatch so
// callers cannot distinguish a bad tag from a bad pad (Vaudenay's attack).
func (b *Backend) CBCHMACDecrypt(enc jwa.EncryptionAlgorithm, cek, iv, aad, ciphertext, tag []byte) ([]byte, error) {
	hf, tagLen, aesKeyLen, ok := cbcHMACParams(enc)
	if !ok {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not an AES-CBC-HMAC content encryption algorithm", enc)
	}
	if len(cek) != 2*aesKeyLen {
		return nil, joseerr.KeyLength("invalid CEK length for "+string(enc), enc.CEKBits())
	}
	macKey, encKey := cek[:aesKeyLen], cek[aesKeyLen:]

	expectedTag := cbcHMACTag(hf, macKey, tagLen, aad, iv, ciphertext)
	if !ConstantTimeEqual(expectedTag, tag) {
		return nil, joseerr.New(joseerr.IntegrityFailure, "AES-CBC-HMAC authentication failed")
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to initialize AES block cipher", err)
	}
	if len(iv) != block.BlockSize() || len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, joseerr.New(joseerr.IntegrityFailure, "AES-CBC-HMAC authentication failed")
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, block.BlockSize())
	if err != nil {
		// Padding errors are folded into the generic integrity failure so a
		// padding-oracle attacker learns nothing beyond "authentication failed".
		return nil, joseerr.New(joseerr.IntegrityFailure, "AES-CBC-HMAC authentication failed")
	}
	return plaintext, nil
}

func cbcHMACTag(hf func() hash.Hash, macKey []byte, tagLen int, aad, iv, ciphertext []byte) []byte {
	al := make([]byte, 8)
	binary.BigEndian.PutUint64(al, uint64(len(aad))*8)

	mac := hmac.New(hf, macKey)
	mac.Write(aad)
	mac.Write(iv)
	mac.Write(ciphertext)
	mac.Write(al)
	full := mac.Sum(nil)
	return full[:tagLen]
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, joseerr.New(joseerr.Malformed, "ciphertext is not a multiple of the block size")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, joseerr.New(joseerr.Malformed, "invalid PKCS#7 padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, joseerr.New(joseerr.Malformed, "invalid PKCS#7 padding")
		}
	}
	return data[:len(data)-padLen], nil
}
