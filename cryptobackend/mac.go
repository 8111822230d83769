package cryptobackend

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"hash"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

func hmacHash(alg jwa.JWSAlgorithm) (func() hash.Hash, int, bool) {
	switch alg {
	case jwa.HS256:
		return sha256.New, 256, true
	case jwa.HS384:
		return sha512.New384, 384, true
	case jwa.HS512:
		return sha512.New, 512, true
	default:
		return nil, 0, false
	}
}

// MACSign computes an HMAC over data under key, per RFC 7518 section 3.2.
func (b *Backend) MACSign(alg jwa.JWSAlgorithm, key, data []byte) ([]byte, error) {
	hf, minBits, ok := hmacHash(alg)
	if !ok {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "no MAC primitive for %s", alg)
	}
	if len(key)*8 < minBits {
		return nil, joseerr.KeyLength("HMAC key too short for "+string(alg), minBits)
	}

	mac := hmac.New(hf, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

// MACVerify recomputes the HMAC over data and compares it against sig in
// constant time.
func (b *Backend) MACVerify(alg jwa.JWSAlgorithm, key, data, sig []byte) error {
	expected, err := b.MACSign(alg, key, data)
	if err != nil {
		return err
	}
	if !ConstantTimeEqual(expected, sig) {
		return joseerr.New(joseerr.SignatureInvalid, "HMAC mismatch")
	}
	return nil
}

// ConstantTimeEqual compares a and b in constant time regardless of their
// relative lengths, avoiding the short-circuit length check that a plain
// subtle.ConstantTimeCompare(a, b) == 1 leaks when len(a) != len(b): it pads
// the shorter operand so the comparison always walks the same number of
// bytes, then additionally folds in the true length equality.
func ConstantTimeEqual(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	pa := make([]byte, n)
	pb := make([]byte, n)
	copy(pa, a)
	copy(pb, b)

	lenEqual := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	bytesEqual := subtle.ConstantTimeCompare(pa, pb)

	return lenEqual&bytesEqual == 1
}
