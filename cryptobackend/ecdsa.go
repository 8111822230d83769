package cryptobackend

import (
	"crypto"
	"crypto/ecdsa"
	"encoding/asn1"
	"hash"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrdecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/jwk"
	"github.com/arkline/jose/joseerr"
)

// Secp256k1PrivateKey and Secp256k1PublicKey alias decred's secp256k1 key
// types, since secp256k1 has no crypto/ecdsa-compatible representation.
type (
	Secp256k1PrivateKey = secp256k1.PrivateKey
	Secp256k1PublicKey  = secp256k1.PublicKey
)

func ecdsaHash(alg jwa.JWSAlgorithm) (crypto.Hash, bool) {
	switch alg {
	case jwa.ES256, jwa.ES256K:
		return crypto.SHA256, true
	case jwa.ES384:
		return crypto.SHA384, true
	case jwa.ES512:
		return crypto.SHA512, true
	default:
		return 0, false
	}
}

func digest(hf func() hash.Hash, data []byte) []byte {
	h := hf()
	h.Write(data)
	return h.Sum(nil)
}

// ECDSASign signs data with priv, which must sit on the curve alg requires
// (P-256/P-384/P-521 for ES256/384/512), returning the raw R||S concatenation
// specified by RFC 7518 section 3.4 — NOT the ASN.1 DER encoding crypto/ecdsa
// itself produces.
func (b *Backend) ECDSASign(alg jwa.JWSAlgorithm, priv *ecdsa.PrivateKey, data []byte) ([]byte, error) {
	ch, ok := ecdsaHash(alg)
	if !ok {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "no ECDSA primitive for %s", alg)
	}

	byteLen, err := curveByteLengthFor(alg)
	if err != nil {
		return nil, err
	}

	h := ch.New()
	h.Write(data)

	r, s, err := ecdsa.Sign(b.rand, priv, h.Sum(nil))
	if err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "ECDSA signing failed", err)
	}

	return rawRS(r, s, byteLen), nil
}

// ECDSAVerify verifies the raw R||S signature sig over data against pub.
func (b *Backend) ECDSAVerify(alg jwa.JWSAlgorithm, pub *ecdsa.PublicKey, data, sig []byte) error {
	ch, ok := ecdsaHash(alg)
	if !ok {
		return joseerr.Newf(joseerr.AlgorithmUnsupported, "no ECDSA primitive for %s", alg)
	}

	byteLen, err := curveByteLengthFor(alg)
	if err != nil {
		return err
	}
	if len(sig) != 2*byteLen {
		return joseerr.Newf(joseerr.SignatureInvalid, "invalid ECDSA signature length: got %d, want %d", len(sig), 2*byteLen)
	}

	r := new(big.Int).SetBytes(sig[:byteLen])
	s := new(big.Int).SetBytes(sig[byteLen:])

	h := ch.New()
	h.Write(data)

	if !ecdsa.Verify(pub, h.Sum(nil), r, s) {
		return joseerr.New(joseerr.SignatureInvalid, "ECDSA signature verification failed")
	}
	return nil
}

// Secp256k1Sign signs data with priv for ES256K, returning the raw R||S
// concatenation. secp256k1 has no crypto/elliptic representation, so signing
// goes through the decred ecdsa package instead of crypto/ecdsa.
func (b *Backend) Secp256k1Sign(priv *Secp256k1PrivateKey, data []byte) ([]byte, error) {
	d := digest(crypto.SHA256.New, data)
	sig := dcrdecdsa.Sign(priv, d)
	der := sig.Serialize()

	r, s, err := parseDERSignature(der)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "ES256K signing produced an unparsable signature", err)
	}
	return rawRS(r, s, 32), nil
}

// Secp256k1Verify verifies the raw R||S signature sig for ES256K.
func (b *Backend) Secp256k1Verify(pub *Secp256k1PublicKey, data, sig []byte) error {
	if len(sig) != 64 {
		return joseerr.Newf(joseerr.SignatureInvalid, "invalid ES256K signature length: got %d, want 64", len(sig))
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])

	der, err := encodeDERSignature(r, s)
	if err != nil {
		return joseerr.Wrap(joseerr.SignatureInvalid, "invalid ES256K signature", err)
	}

	parsed, err := dcrdecdsa.ParseDERSignature(der)
	if err != nil {
		return joseerr.Wrap(joseerr.SignatureInvalid, "invalid ES256K signature encoding", err)
	}

	d := digest(crypto.SHA256.New, data)
	if !parsed.Verify(d, pub) {
		return joseerr.New(joseerr.SignatureInvalid, "ES256K signature verification failed")
	}
	return nil
}

func curveByteLengthFor(alg jwa.JWSAlgorithm) (int, error) {
	switch alg {
	case jwa.ES256:
		return jwk.CurveByteLength("P-256")
	case jwa.ES384:
		return jwk.CurveByteLength("P-384")
	case jwa.ES512:
		return jwk.CurveByteLength("P-521")
	case jwa.ES256K:
		return jwk.CurveByteLength("secp256k1")
	default:
		return 0, joseerr.Newf(joseerr.AlgorithmUnsupported, "no ECDSA primitive for %s", alg)
	}
}

func rawRS(r, s *big.Int, byteLen int) []byte {
	out := make([]byte, 2*byteLen)
	rb := r.Bytes()
	sb := s.Bytes()
	copy(out[byteLen-len(rb):byteLen], rb)
	copy(out[2*byteLen-len(sb):], sb)
	return out
}

type derECDSASignature struct {
	R, S *big.Int
}

func parseDERSignature(der []byte) (r, s *big.Int, err error) {
	var sig derECDSASignature
	if _, err := asn1.Unmarshal(der, &sig); err != nil {
		return nil, nil, err
	}
	return sig.R, sig.S, nil
}

func encodeDERSignature(r, s *big.Int) ([]byte, error) {
	return asn1.Marshal(derECDSASignature{R: r, S: s})
}
