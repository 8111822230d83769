package cryptobackend

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/pbkdf2"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

func pbes2PRF(alg jwa.KeyAlgorithm) (func() hash.Hash, bool) {
	switch alg {
	case jwa.PBES2_HS256_A128KW:
		return sha256.New, true
	case jwa.PBES2_HS384_A192KW:
		return sha512.New384, true
	case jwa.PBES2_HS512_A256KW:
		return sha512.New, true
	default:
		return nil, false
	}
}

// PBES2DeriveKey derives the AES key-wrap key for a PBES2-HS*+A*KW algorithm
// (RFC 7518 section 4.8) from password via PBKDF2. The salt input is
// alg || 0x00 || p2s as RFC 7518 section 4.8.1.1 specifies, binding the
// derived key to the negotiated algorithm name so it cannot be replayed
// against a different PBES2 variant. iterations below the backend's
// configured floor are rejected to stop a malicious header from forcing an
// expensive-but-weak derivation on decrypt; callers deriving for their own
// encryption are expected to choose iterations themselves and may bypass
// this floor by calling with their own, larger count.
func (b *Backend) PBES2DeriveKey(alg jwa.KeyAlgorithm, password, p2s []byte, iterations int) ([]byte, error) {
	hf, ok := pbes2PRF(alg)
	if !ok {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "%s is not a PBES2 algorithm", alg)
	}
	if iterations < b.pbkdf2MinIter {
		return nil, joseerr.Newf(joseerr.HeaderInvalid, "PBES2 iteration count %d is below the configured minimum %d", iterations, b.pbkdf2MinIter)
	}

	bits := alg.AESKWBits()
	salt := make([]byte, 0, len(alg)+1+len(p2s))
	salt = append(salt, []byte(alg)...)
	salt = append(salt, 0x00)
	salt = append(salt, p2s...)

	return pbkdf2.Key(password, salt, iterations, bits/8, hf), nil
}
