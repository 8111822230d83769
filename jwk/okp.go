package jwk

import (
	"crypto/ed25519"
	"encoding/json"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/joseerr"
)

// OKPKey implements "kty": "OKP" as specified in RFC 8037. Signing curves
// (Ed25519, Ed448) carry X as the raw public key and, when present, D as the
// private seed; key-agreement curves (X25519, X448) are modeled the same way
// for JWE ECDH-ES epk headers even though this module signs with EdDSA only.
type OKPKey struct {
	KeyDescription

	Crv string `json:"crv"`
	X   string `json:"x"`
	D   string `json:"d,omitempty"`
}

func (k *OKPKey) Type() KeyType   { return KeyTypeOKP }
func (k *OKPKey) IsPrivate() bool { return k.D != "" }

var okpPublicKeySizes = map[string]int{
	"Ed25519": ed25519.PublicKeySize,
	"Ed448":   ed448.PublicKeySize,
	"X25519":  32,
	"X448":    56,
}

var okpPrivateKeySizes = map[string]int{
	"Ed25519": ed25519.SeedSize,
	"Ed448":   ed448.SeedSize,
	"X25519":  32,
	"X448":    56,
}

type okpKeyWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	Crv  string  `json:"crv"`
	X    string  `json:"x"`
	D    string  `json:"d,omitempty"`
}

func (k *OKPKey) MarshalJSON() ([]byte, error) {
	w := okpKeyWrapper{
		KeyDescription: k.KeyDescription,
		Type:           KeyTypeOKP,
		Crv:            k.Crv,
		X:              k.X,
		D:              k.D,
	}
	return json.Marshal(w)
}

func (k *OKPKey) UnmarshalJSON(data []byte) error {
	var w okpKeyWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return joseerr.Wrap(joseerr.Malformed, "invalid OKP JWK", err)
	}
	if w.Type != KeyTypeOKP {
		return joseerr.Newf(joseerr.KeyTypeMismatch, "invalid key type: %s", w.Type)
	}
	if w.X == "" {
		return joseerr.New(joseerr.Malformed, "OKP JWK missing required x member")
	}
	if _, ok := okpPublicKeySizes[w.Crv]; !ok {
		return joseerr.Newf(joseerr.KeyTypeMismatch, "unsupported OKP curve: %s", w.Crv)
	}

	*k = OKPKey{KeyDescription: w.KeyDescription, Crv: w.Crv, X: w.X, D: w.D}
	return nil
}

// PublicKeyBytes decodes X and validates its length against Crv's expected
// public key size.
func (k *OKPKey) PublicKeyBytes() ([]byte, error) {
	n, ok := okpPublicKeySizes[k.Crv]
	if !ok {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "unsupported OKP curve: %s", k.Crv)
	}
	b, err := base64url.Decode(k.X)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, "invalid OKP JWK member \"x\"", err)
	}
	if len(b) != n {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "illegal key size for %s curve: got %d, want %d", k.Crv, len(b), n)
	}
	return b, nil
}

// PrivateKeyBytes decodes D (the private seed) and validates its length.
func (k *OKPKey) PrivateKeyBytes() ([]byte, error) {
	if !k.IsPrivate() {
		return nil, joseerr.New(joseerr.KeyTypeMismatch, "OKP JWK has no private key material")
	}
	n, ok := okpPrivateKeySizes[k.Crv]
	if !ok {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "unsupported OKP curve: %s", k.Crv)
	}
	b, err := base64url.Decode(k.D)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, "invalid OKP JWK member \"d\"", err)
	}
	if len(b) != n {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "illegal seed size for %s curve: got %d, want %d", k.Crv, len(b), n)
	}
	return b, nil
}

// Ed25519PublicKey decodes an Ed25519 public key.
func (k *OKPKey) Ed25519PublicKey() (ed25519.PublicKey, error) {
	if k.Crv != "Ed25519" {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "not an Ed25519 key: crv=%s", k.Crv)
	}
	b, err := k.PublicKeyBytes()
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(b), nil
}

// Ed25519PrivateKey decodes an Ed25519 private key from its seed.
func (k *OKPKey) Ed25519PrivateKey() (ed25519.PrivateKey, error) {
	if k.Crv != "Ed25519" {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "not an Ed25519 key: crv=%s", k.Crv)
	}
	seed, err := k.PrivateKeyBytes()
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// Ed448PublicKey decodes an Ed448 public key.
func (k *OKPKey) Ed448PublicKey() (ed448.PublicKey, error) {
	if k.Crv != "Ed448" {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "not an Ed448 key: crv=%s", k.Crv)
	}
	b, err := k.PublicKeyBytes()
	if err != nil {
		return nil, err
	}
	return ed448.PublicKey(b), nil
}

// Ed448PrivateKey decodes an Ed448 private key from its seed.
func (k *OKPKey) Ed448PrivateKey() (ed448.PrivateKey, error) {
	if k.Crv != "Ed448" {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "not an Ed448 key: crv=%s", k.Crv)
	}
	seed, err := k.PrivateKeyBytes()
	if err != nil {
		return nil, err
	}
	return ed448.NewKeyFromSeed(seed), nil
}
