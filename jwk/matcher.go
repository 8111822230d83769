package jwk

import (
	"github.com/arkline/jose/header"
	"github.com/arkline/jose/jwa"
)

// Matcher defines predicates over a JWK's registered parameters, curve and
// key size. Matches reports true iff every non-nil predicate matches the
// corresponding field of k; a predicate constraining a field the key does
// not carry (e.g. a curve predicate against an RSA key) never matches.
type Matcher struct {
	KeyType *KeyType
	Use     *KeyUse
	KeyOps  []KeyOp // matches if k supports any of these
	// Usable, when set, matches iff k declares Use==*Usable OR (Use is
	// unset and k's key_ops contains an operation appropriate for
	// *Usable) OR k declares neither use nor key_ops. This implements RFC 7517's "use=sig (or sig∈key_ops)"
	// wording, which the plain Use/KeyOps fields above do not by
	// themselves express (those are independent AND'd predicates for
	// callers who want stricter matching).
	Usable  *KeyUse
	Alg     *string
	KeyID   *string
	Curve   *string
	MinBits *int
	MaxBits *int
	X5T     *string
	X5TS256 *string
}

// Matches reports whether k satisfies every non-nil predicate in m.
func (m Matcher) Matches(k Key) bool {
	if m.KeyType != nil && k.Type() != *m.KeyType {
		return false
	}
	if m.Use != nil && k.Use() != *m.Use {
		return false
	}
	if len(m.KeyOps) > 0 && !hasAnyOp(k.Operations(), m.KeyOps) {
		return false
	}
	if m.Usable != nil && !usableFor(k, *m.Usable) {
		return false
	}
	if m.Alg != nil && k.Algorithm() != *m.Alg {
		return false
	}
	if m.KeyID != nil && k.ID() != *m.KeyID {
		return false
	}
	if m.Curve != nil {
		crv, ok := curveOf(k)
		if !ok || crv != *m.Curve {
			return false
		}
	}
	if m.MinBits != nil || m.MaxBits != nil {
		bits, ok := bitsOf(k)
		if !ok {
			return false
		}
		if m.MinBits != nil && bits < *m.MinBits {
			return false
		}
		if m.MaxBits != nil && bits > *m.MaxBits {
			return false
		}
	}
	if m.X5T != nil {
		if kd, ok := descriptionOf(k); !ok || kd.X5T != *m.X5T {
			return false
		}
	}
	if m.X5TS256 != nil {
		if kd, ok := descriptionOf(k); !ok || kd.X5TS256 != *m.X5TS256 {
			return false
		}
	}
	return true
}

// usableFor reports whether k may be used for use u, per RFC 7517's
// use/key_ops relationship: an explicit "use" match wins; absent that, an
// appropriate entry in "key_ops" suffices; absent both, the key carries no
// usage constraint and is considered usable for anything.
func usableFor(k Key, u KeyUse) bool {
	if k.Use() != "" {
		return k.Use() == u
	}
	if len(k.Operations()) == 0 {
		return true
	}

	var candidates []KeyOp
	if u == UseSignature {
		candidates = []KeyOp{KeyOpsSign, KeyOpsVerify}
	} else {
		candidates = append([]KeyOp{KeyOpsEncrypt, KeyOpsDecrypt}, KeyOpsWrapKeyOps()...)
	}
	return hasAnyOp(k.Operations(), candidates)
}

func hasAnyOp(have []KeyOp, want []KeyOp) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func curveOf(k Key) (string, bool) {
	switch key := k.(type) {
	case *ECKey:
		return key.Crv, true
	case *OKPKey:
		return key.Crv, true
	default:
		return "", false
	}
}

func bitsOf(k Key) (int, bool) {
	switch key := k.(type) {
	case *RSAKey:
		n, err := decodeUint(key.N, "n")
		if err != nil {
			return 0, false
		}
		return len(n) * 8, true
	case *ECKey:
		n, ok := curveByteLengths[key.Crv]
		if !ok {
			return 0, false
		}
		return n * 8, true
	case *OKPKey:
		n, ok := okpPublicKeySizes[key.Crv]
		if !ok {
			return 0, false
		}
		return n * 8, true
	case *SymmetricKey:
		b, err := key.Bytes()
		if err != nil {
			return 0, false
		}
		return len(b) * 8, true
	default:
		return 0, false
	}
}

func descriptionOf(k Key) (KeyDescription, bool) {
	switch key := k.(type) {
	case *RSAKey:
		return key.KeyDescription, true
	case *ECKey:
		return key.KeyDescription, true
	case *OKPKey:
		return key.KeyDescription, true
	case *SymmetricKey:
		return key.KeyDescription, true
	default:
		return KeyDescription{}, false
	}
}

// MatcherForJWS builds the Matcher implied by a JWS header, per RFC 7515
// guidance on algorithm-to-key-type binding: kty is derived from the alg
// family (oct for HS*, RSA for RS*/PS*, EC for ES*, OKP for EdDSA), use is
// constrained to signature keys, and alg/kid are carried through verbatim
// when present.
func MatcherForJWS(h header.Header) Matcher {
	m := Matcher{
		Usable: useP(UseSignature),
	}

	if kt, ok := ktyForJWSAlg(h.JWSAlgorithm()); ok {
		m.KeyType = &kt
	}
	if h.Alg != "" {
		m.Alg = &h.Alg
	}
	if h.Kid != "" {
		m.KeyID = &h.Kid
	}

	return m
}

// MatcherForJWE builds the Matcher implied by a JWE header: kty is derived
// from the key-management alg family, use is constrained to encryption
// keys, and alg/kid are carried through verbatim when present.
func MatcherForJWE(h header.Header) Matcher {
	m := Matcher{
		Usable: useP(UseEncryption),
	}

	if kt, ok := ktyForJWEAlg(h.KeyAlgorithm()); ok {
		m.KeyType = &kt
	}
	if h.Alg != "" {
		m.Alg = &h.Alg
	}
	if h.Kid != "" {
		m.KeyID = &h.Kid
	}

	return m
}

// KeyOpsWrapKeyOps returns the key_ops values that indicate a key usable
// for JWE key management (wrap/unwrap), supplementing encrypt/decrypt.
func KeyOpsWrapKeyOps() []KeyOp {
	return []KeyOp{KeyOpsKeyWrap, KeyOpsUnwrapKey, KeyOpsDeriveKey, KeyOpsDeriveBits}
}

func useP(u KeyUse) *KeyUse { return &u }

func ktyForJWSAlg(alg jwa.JWSAlgorithm) (KeyType, bool) {
	switch {
	case alg.IsHMAC():
		return KeyTypeOct, true
	case alg.IsRSA(), alg.IsRSAPSS():
		return KeyTypeRSA, true
	case alg.IsECDSA():
		return KeyTypeEC, true
	case alg == jwa.EdDSA:
		return KeyTypeOKP, true
	default:
		return "", false
	}
}

func ktyForJWEAlg(alg jwa.KeyAlgorithm) (KeyType, bool) {
	switch {
	case alg == jwa.Direct:
		return KeyTypeOct, true
	case alg.AESKWBits() > 0, alg.IsGCMKW():
		return KeyTypeOct, true
	case alg.IsRSAWrap():
		return KeyTypeRSA, true
	case alg.IsECDH():
		return KeyTypeEC, true // OKP (X25519/X448) also legal; alg alone cannot disambiguate
	case alg.IsPBES2():
		return KeyTypeOct, true
	default:
		return "", false
	}
}
