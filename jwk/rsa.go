package jwk

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/joseerr"
)

// RSAKey implements "kty": "RSA" as specified in RFC 7518 section 6.3. It
// carries the public modulus/exponent and, when present, the private
// exponent and CRT parameters.
type RSAKey struct {
	KeyDescription

	N string `json:"n"`
	E string `json:"e"`

	// Private, optional. Multi-prime keys ("oth", RFC 7518 section 6.3.2.7)
	// are not represented; see DESIGN.md.
	D  string `json:"d,omitempty"`
	P  string `json:"p,omitempty"`
	Q  string `json:"q,omitempty"`
	Dp string `json:"dp,omitempty"`
	Dq string `json:"dq,omitempty"`
	Qi string `json:"qi,omitempty"`
}

func (k *RSAKey) Type() KeyType  { return KeyTypeRSA }
func (k *RSAKey) IsPrivate() bool { return k.D != "" }

type rsaKeyWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	N    string  `json:"n"`
	E    string  `json:"e"`
	D    string  `json:"d,omitempty"`
	P    string  `json:"p,omitempty"`
	Q    string  `json:"q,omitempty"`
	Dp   string  `json:"dp,omitempty"`
	Dq   string  `json:"dq,omitempty"`
	Qi   string  `json:"qi,omitempty"`
}

func (k *RSAKey) MarshalJSON() ([]byte, error) {
	w := rsaKeyWrapper{
		KeyDescription: k.KeyDescription,
		Type:           KeyTypeRSA,
		N:              k.N,
		E:              k.E,
		D:              k.D,
		P:              k.P,
		Q:              k.Q,
		Dp:             k.Dp,
		Dq:             k.Dq,
		Qi:             k.Qi,
	}
	return json.Marshal(w)
}

func (k *RSAKey) UnmarshalJSON(data []byte) error {
	var w rsaKeyWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return joseerr.Wrap(joseerr.Malformed, "invalid RSA JWK", err)
	}
	if w.Type != KeyTypeRSA {
		return joseerr.Newf(joseerr.KeyTypeMismatch, "invalid key type: %s", w.Type)
	}
	if w.N == "" || w.E == "" {
		return joseerr.New(joseerr.Malformed, "RSA JWK missing required n/e members")
	}

	*k = RSAKey{
		KeyDescription: w.KeyDescription,
		N:              w.N, E: w.E,
		D: w.D, P: w.P, Q: w.Q, Dp: w.Dp, Dq: w.Dq, Qi: w.Qi,
	}
	return nil
}

// PublicKey decodes N and E into a *rsa.PublicKey.
func (k *RSAKey) PublicKey() (*rsa.PublicKey, error) {
	n, err := decodeUint(k.N, "n")
	if err != nil {
		return nil, err
	}
	e, err := decodeUint(k.E, "e")
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}

// PrivateKey decodes the private components (and re-derives an rsa.PrivateKey
// in a form usable by crypto/rsa) when k carries private material.
func (k *RSAKey) PrivateKey() (*rsa.PrivateKey, error) {
	if !k.IsPrivate() {
		return nil, joseerr.New(joseerr.KeyTypeMismatch, "RSA JWK has no private key material")
	}

	pub, err := k.PublicKey()
	if err != nil {
		return nil, err
	}
	d, err := decodeUint(k.D, "d")
	if err != nil {
		return nil, err
	}

	priv := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(d),
	}

	if k.P != "" && k.Q != "" {
		p, err := decodeUint(k.P, "p")
		if err != nil {
			return nil, err
		}
		q, err := decodeUint(k.Q, "q")
		if err != nil {
			return nil, err
		}
		priv.Primes = []*big.Int{new(big.Int).SetBytes(p), new(big.Int).SetBytes(q)}
		if err := priv.Validate(); err != nil {
			return nil, joseerr.Wrap(joseerr.KeyTypeMismatch, "inconsistent RSA private key components", err)
		}
		priv.Precompute()
	}

	return priv, nil
}

func decodeUint(s, member string) ([]byte, error) {
	b, err := base64url.Decode(s)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, fmt.Sprintf("invalid RSA JWK member %q", member), err)
	}
	return b, nil
}
