// Package jws implements JSON Web Signatures (RFC 7515): producing and
// consuming compact-serialized signed (or MACed, or unsecured "none")
// objects over an arbitrary payload. Signing and verification key material
// is supplied as a jwk.Key; NewSigner/NewVerifier pick the matching
// cryptobackend primitive from the JWS header's "alg".
package jws

import (
	"crypto/ecdsa"
	"crypto/rsa"

	"github.com/arkline/jose/cryptobackend"
	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/jwk"
	"github.com/arkline/jose/joseerr"
)

// Signer produces a signature over data for a fixed algorithm and key.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// Verifier checks a signature over data for a fixed algorithm and key.
type Verifier interface {
	Verify(data, sig []byte) error
}

// NewSigner builds a Signer for alg using key, dispatching to the
// cryptobackend primitive the algorithm family requires. It fails if key's
// type does not fit alg (algorithm confusion defense: a caller cannot,
// for instance, successfully request an HS256 signer over an RSA key).
func NewSigner(backend *cryptobackend.Backend, alg jwa.JWSAlgorithm, key jwk.Key) (Signer, error) {
	switch {
	case alg == jwa.None:
		return noneSigner{}, nil

	case alg.IsHMAC():
		k, ok := key.(*jwk.SymmetricKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an oct key, got %T", alg, key)
		}
		secret, err := k.Bytes()
		if err != nil {
			return nil, err
		}
		return &macSigner{backend: backend, alg: alg, key: secret}, nil

	case alg.IsRSA():
		k, ok := key.(*jwk.RSAKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an RSA key, got %T", alg, key)
		}
		priv, err := k.PrivateKey()
		if err != nil {
			return nil, err
		}
		return &rsaSigner{backend: backend, alg: alg, key: priv}, nil

	case alg == jwa.ES256K:
		k, ok := key.(*jwk.ECKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an EC key, got %T", alg, key)
		}
		priv, err := k.Secp256k1PrivateKey()
		if err != nil {
			return nil, err
		}
		return &secp256k1Signer{backend: backend, key: priv}, nil

	case alg.IsECDSA():
		k, ok := key.(*jwk.ECKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an EC key, got %T", alg, key)
		}
		priv, err := k.PrivateKey()
		if err != nil {
			return nil, err
		}
		if err := checkECDSACurve(alg, k.Crv); err != nil {
			return nil, err
		}
		return &ecdsaSigner{backend: backend, alg: alg, key: priv}, nil

	case alg == jwa.EdDSA:
		k, ok := key.(*jwk.OKPKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "EdDSA requires an OKP key, got %T", key)
		}
		priv, err := edDSAPrivateKey(k)
		if err != nil {
			return nil, err
		}
		return &eddsaSigner{backend: backend, key: priv}, nil

	default:
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "no signer for algorithm %s", alg)
	}
}

// NewVerifier builds a Verifier for alg using key, mirroring NewSigner's
// dispatch but over public (or symmetric) key material.
func NewVerifier(backend *cryptobackend.Backend, alg jwa.JWSAlgorithm, key jwk.Key) (Verifier, error) {
	switch {
	case alg == jwa.None:
		return noneVerifier{}, nil

	case alg.IsHMAC():
		k, ok := key.(*jwk.SymmetricKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an oct key, got %T", alg, key)
		}
		secret, err := k.Bytes()
		if err != nil {
			return nil, err
		}
		return &macSigner{backend: backend, alg: alg, key: secret}, nil

	case alg.IsRSA():
		k, ok := key.(*jwk.RSAKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an RSA key, got %T", alg, key)
		}
		pub, err := k.PublicKey()
		if err != nil {
			return nil, err
		}
		return &rsaVerifier{backend: backend, alg: alg, key: pub}, nil

	case alg == jwa.ES256K:
		k, ok := key.(*jwk.ECKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an EC key, got %T", alg, key)
		}
		pub, err := k.Secp256k1PublicKey()
		if err != nil {
			return nil, err
		}
		return &secp256k1Verifier{backend: backend, key: pub}, nil

	case alg.IsECDSA():
		k, ok := key.(*jwk.ECKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an EC key, got %T", alg, key)
		}
		if err := checkECDSACurve(alg, k.Crv); err != nil {
			return nil, err
		}
		pub, err := k.PublicKey()
		if err != nil {
			return nil, err
		}
		return &ecdsaVerifier{backend: backend, alg: alg, key: pub}, nil

	case alg == jwa.EdDSA:
		k, ok := key.(*jwk.OKPKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "EdDSA requires an OKP key, got %T", key)
		}
		pub, err := edDSAPublicKey(k)
		if err != nil {
			return nil, err
		}
		return &eddsaVerifier{backend: backend, key: pub}, nil

	default:
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "no verifier for algorithm %s", alg)
	}
}

// checkECDSACurve enforces the one-to-one curve-to-algorithm binding RFC
// 7518 section 3.4 requires (ES256 only with P-256, etc.), rather than
// trusting crypto/ecdsa to silently accept a mismatched curve.
func checkECDSACurve(alg jwa.JWSAlgorithm, crv string) error {
	want := map[jwa.JWSAlgorithm]string{
		jwa.ES256: "P-256",
		jwa.ES384: "P-384",
		jwa.ES512: "P-521",
	}[alg]
	if crv != want {
		return joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires curve %s, got %s", alg, want, crv)
	}
	return nil
}

func edDSAPrivateKey(k *jwk.OKPKey) (any, error) {
	switch k.Crv {
	case "Ed25519":
		return k.Ed25519PrivateKey()
	case "Ed448":
		return k.Ed448PrivateKey()
	default:
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "EdDSA does not support curve %s", k.Crv)
	}
}

func edDSAPublicKey(k *jwk.OKPKey) (any, error) {
	switch k.Crv {
	case "Ed25519":
		return k.Ed25519PublicKey()
	case "Ed448":
		return k.Ed448PublicKey()
	default:
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "EdDSA does not support curve %s", k.Crv)
	}
}

type noneSigner struct{}

func (noneSigner) Sign([]byte) ([]byte, error) { return nil, nil }

type noneVerifier struct{}

func (noneVerifier) Verify(_, sig []byte) error {
	if len(sig) != 0 {
		return joseerr.New(joseerr.SignatureInvalid, `alg "none" requires an empty signature`)
	}
	return nil
}

type macSigner struct {
	backend *cryptobackend.Backend
	alg     jwa.JWSAlgorithm
	key     []byte
}

func (s *macSigner) Sign(data []byte) ([]byte, error) {
	return s.backend.MACSign(s.alg, s.key, data)
}

func (s *macSigner) Verify(data, sig []byte) error {
	return s.backend.MACVerify(s.alg, s.key, data, sig)
}

type rsaSigner struct {
	backend *cryptobackend.Backend
	alg     jwa.JWSAlgorithm
	key     *rsa.PrivateKey
}

func (s *rsaSigner) Sign(data []byte) ([]byte, error) {
	return s.backend.RSASign(s.alg, s.key, data)
}

type rsaVerifier struct {
	backend *cryptobackend.Backend
	alg     jwa.JWSAlgorithm
	key     *rsa.PublicKey
}

func (v *rsaVerifier) Verify(data, sig []byte) error {
	return v.backend.RSAVerify(v.alg, v.key, data, sig)
}

type ecdsaSigner struct {
	backend *cryptobackend.Backend
	alg     jwa.JWSAlgorithm
	key     *ecdsa.PrivateKey
}

func (s *ecdsaSigner) Sign(data []byte) ([]byte, error) {
	return s.backend.ECDSASign(s.alg, s.key, data)
}

type ecdsaVerifier struct {
	backend *cryptobackend.Backend
	alg     jwa.JWSAlgorithm
	key     *ecdsa.PublicKey
}

func (v *ecdsaVerifier) Verify(data, sig []byte) error {
	return v.backend.ECDSAVerify(v.alg, v.key, data, sig)
}

type secp256k1Signer struct {
	backend *cryptobackend.Backend
	key     *cryptobackend.Secp256k1PrivateKey
}

func (s *secp256k1Signer) Sign(data []byte) ([]byte, error) {
	return s.backend.Secp256k1Sign(s.key, data)
}

type secp256k1Verifier struct {
	backend *cryptobackend.Backend
	key     *cryptobackend.Secp256k1PublicKey
}

func (v *secp256k1Verifier) Verify(data, sig []byte) error {
	return v.backend.Secp256k1Verify(v.key, data, sig)
}

type eddsaSigner struct {
	backend *cryptobackend.Backend
	key     any // ed25519.PrivateKey or ed448.PrivateKey
}

func (s *eddsaSigner) Sign(data []byte) ([]byte, error) {
	return s.backend.EdDSASign(s.key, data)
}

type eddsaVerifier struct {
	backend *cryptobackend.Backend
	key     any // ed25519.PublicKey or ed448.PublicKey
}

func (v *eddsaVerifier) Verify(data, sig []byte) error {
	return v.backend.EdDSAVerify(v.key, data, sig)
}
