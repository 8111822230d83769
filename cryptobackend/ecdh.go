package cryptobackend

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/binary"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

func stdlibCurveFor(crv jwa.EllipticCurve) (elliptic.Curve, bool) {
	switch crv {
	case jwa.P256:
		return elliptic.P256(), true
	case jwa.P384:
		return elliptic.P384(), true
	case jwa.P521:
		return elliptic.P521(), true
	default:
		return nil, false
	}
}

// ConcatKDFParams carries the fixed info fields NIST SP 800-56A section
// 5.8.1's single-step KDF mixes into the derived key, sourced from the JWE
// header per RFC 7518 section 4.6.2: AlgorithmID is the negotiated "enc" (or
// the key-wrap "alg" for ECDH-ES+A*KW), and PartyUInfo/PartyVInfo carry the
// optional "apu"/"apv" header values.
type ConcatKDFParams struct {
	AlgorithmID string
	PartyUInfo  []byte
	PartyVInfo  []byte
	KeyDataLen  int // derived key length in bits
}

// ConcatKDF derives keyDataLen/8 bytes from a shared secret Z, per NIST SP
// 800-56A section 5.8.1 as profiled by RFC 7518 section 4.6.2. Each round
// hashes round-counter || Z || OtherInfo, where OtherInfo is
// AlgorithmID || PartyUInfo || PartyVInfo || SuppPubInfo, each field
// prefixed with its own 32-bit big-endian length (except SuppPubInfo, which
// is exactly the 32-bit key data bit length with no separate length prefix).
func ConcatKDF(z []byte, p ConcatKDFParams) []byte {
	hashLen := sha256.Size
	keyLen := p.KeyDataLen / 8
	rounds := (keyLen + hashLen - 1) / hashLen

	algID := lengthPrefixed([]byte(p.AlgorithmID))
	partyU := lengthPrefixed(p.PartyUInfo)
	partyV := lengthPrefixed(p.PartyVInfo)
	suppPub := make([]byte, 4)
	binary.BigEndian.PutUint32(suppPub, uint32(p.KeyDataLen))

	out := make([]byte, 0, rounds*hashLen)
	for i := 1; i <= rounds; i++ {
		h := sha256.New()
		counter := make([]byte, 4)
		binary.BigEndian.PutUint32(counter, uint32(i))
		h.Write(counter)
		h.Write(z)
		h.Write(algID)
		h.Write(partyU)
		h.Write(partyV)
		h.Write(suppPub)
		out = append(out, h.Sum(nil)...)
	}
	return out[:keyLen]
}

func lengthPrefixed(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.BigEndian.PutUint32(out, uint32(len(b)))
	copy(out[4:], b)
	return out
}

// ecdhCurve maps an EllipticCurve name to crypto/ecdh's curve implementation,
// which — unlike crypto/elliptic — exposes scalar multiplication directly
// and constant-time by construction.
func ecdhCurve(crv jwa.EllipticCurve) (ecdh.Curve, bool) {
	switch crv {
	case jwa.P256:
		return ecdh.P256(), true
	case jwa.P384:
		return ecdh.P384(), true
	case jwa.P521:
		return ecdh.P521(), true
	default:
		return nil, false
	}
}

// ECDHSharedSecret computes the raw ECDH shared secret Z between a local
// private key and a peer's public key, both on the same NIST curve named by
// crv (RFC 7518 section 4.6 restricts ECDH-ES to the registered EC curves;
// X25519/X448 agreement is out of scope for this module).
func (b *Backend) ECDHSharedSecret(crv jwa.EllipticCurve, priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) ([]byte, error) {
	curve, ok := ecdhCurve(crv)
	if !ok {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "ECDH-ES is not supported on curve %s", crv)
	}

	ecdhPriv, err := priv.ECDH()
	if err != nil {
		return nil, joseerr.Wrap(joseerr.KeyTypeMismatch, "private key is not valid for ECDH", err)
	}
	ecdhPub, err := pub.ECDH()
	if err != nil {
		return nil, joseerr.Wrap(joseerr.KeyTypeMismatch, "public key is not valid for ECDH", err)
	}
	if ecdhPriv.Curve() != curve || ecdhPub.Curve() != curve {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "ECDH key is not on curve %s", crv)
	}

	z, err := ecdhPriv.ECDH(ecdhPub)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "ECDH key agreement failed", err)
	}
	return z, nil
}

// GenerateEphemeralECDH generates a fresh ephemeral key pair on crv for the
// producer side of ECDH-ES (RFC 7518 section 4.6.1.2, the "epk" header).
func (b *Backend) GenerateEphemeralECDH(crv jwa.EllipticCurve) (*ecdsa.PrivateKey, error) {
	stdCurve, ok := stdlibCurveFor(crv)
	if !ok {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "ECDH-ES is not supported on curve %s", crv)
	}
	return ecdsa.GenerateKey(stdCurve, b.rand)
}
