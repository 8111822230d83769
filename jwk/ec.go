package jwk

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/joseerr"
)

// ECKey implements "kty": "EC" as specified in RFC 7518 section 6.2. Curve
// support extends beyond the three NIST curves the RFC registers to include
// secp256k1 (ES256K), whose coordinates are carried the same way but decoded
// through a dedicated secp256k1 accessor since crypto/ecdsa has no built-in
// curve for it.
type ECKey struct {
	KeyDescription

	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	D   string `json:"d,omitempty"`
}

func (k *ECKey) Type() KeyType   { return KeyTypeEC }
func (k *ECKey) IsPrivate() bool { return k.D != "" }

type ecKeyWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	Crv  string  `json:"crv"`
	X    string  `json:"x"`
	Y    string  `json:"y"`
	D    string  `json:"d,omitempty"`
}

func (k *ECKey) MarshalJSON() ([]byte, error) {
	w := ecKeyWrapper{
		KeyDescription: k.KeyDescription,
		Type:           KeyTypeEC,
		Crv:            k.Crv,
		X:              k.X,
		Y:              k.Y,
		D:              k.D,
	}
	return json.Marshal(w)
}

func (k *ECKey) UnmarshalJSON(data []byte) error {
	var w ecKeyWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return joseerr.Wrap(joseerr.Malformed, "invalid EC JWK", err)
	}
	if w.Type != KeyTypeEC {
		return joseerr.Newf(joseerr.KeyTypeMismatch, "invalid key type: %s", w.Type)
	}
	if w.Crv == "" || w.X == "" || w.Y == "" {
		return joseerr.New(joseerr.Malformed, "EC JWK missing required crv/x/y members")
	}
	if _, ok := curveByteLengths[w.Crv]; !ok {
		return joseerr.Newf(joseerr.KeyTypeMismatch, "unsupported EC curve: %s", w.Crv)
	}

	*k = ECKey{KeyDescription: w.KeyDescription, Crv: w.Crv, X: w.X, Y: w.Y, D: w.D}
	return nil
}

// stdlibCurves maps the JWK "crv" name to a crypto/elliptic curve, for the
// three NIST curves crypto/ecdsa can operate on directly.
var stdlibCurves = map[string]elliptic.Curve{
	"P-256": elliptic.P256(),
	"P-384": elliptic.P384(),
	"P-521": elliptic.P521(),
}

// curveByteLengths gives the fixed-width coordinate/signature-component byte
// length for every supported EC curve, including secp256k1 which has no
// crypto/elliptic representation.
var curveByteLengths = map[string]int{
	"P-256":     32,
	"P-384":     48,
	"P-521":     66,
	"secp256k1": 32,
}

// CurveByteLength returns the fixed-width byte length of X/Y/D for crv, used
// to size the raw R||S signature encoding for ES256/384/512/256K.
func CurveByteLength(crv string) (int, error) {
	n, ok := curveByteLengths[crv]
	if !ok {
		return 0, joseerr.Newf(joseerr.KeyTypeMismatch, "unsupported EC curve: %s", crv)
	}
	return n, nil
}

// PublicKey decodes Crv/X/Y into an *ecdsa.PublicKey. It only supports the
// three NIST curves; use Secp256k1PublicKey for secp256k1.
func (k *ECKey) PublicKey() (*ecdsa.PublicKey, error) {
	curve, ok := stdlibCurves[k.Crv]
	if !ok {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "curve %s is not a stdlib ECDSA curve", k.Crv)
	}

	x, err := decodeCoord(k.X, "x")
	if err != nil {
		return nil, err
	}
	y, err := decodeCoord(k.Y, "y")
	if err != nil {
		return nil, err
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// PrivateKey decodes Crv/X/Y/D into an *ecdsa.PrivateKey (NIST curves only).
func (k *ECKey) PrivateKey() (*ecdsa.PrivateKey, error) {
	if !k.IsPrivate() {
		return nil, joseerr.New(joseerr.KeyTypeMismatch, "EC JWK has no private key material")
	}

	pub, err := k.PublicKey()
	if err != nil {
		return nil, err
	}
	d, err := decodeCoord(k.D, "d")
	if err != nil {
		return nil, err
	}

	return &ecdsa.PrivateKey{PublicKey: *pub, D: d}, nil
}

// Secp256k1PublicKey decodes Crv/X/Y into a secp256k1.PublicKey for ES256K,
// via the uncompressed SEC1 point encoding secp256k1.ParsePubKey accepts.
func (k *ECKey) Secp256k1PublicKey() (*secp256k1.PublicKey, error) {
	if k.Crv != "secp256k1" {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "not a secp256k1 key: crv=%s", k.Crv)
	}

	xb, err := fixedWidth(k.X, "x", 32)
	if err != nil {
		return nil, err
	}
	yb, err := fixedWidth(k.Y, "y", 32)
	if err != nil {
		return nil, err
	}

	point := make([]byte, 0, 65)
	point = append(point, 0x04)
	point = append(point, xb...)
	point = append(point, yb...)

	pub, err := secp256k1.ParsePubKey(point)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.KeyTypeMismatch, "invalid secp256k1 point", err)
	}
	return pub, nil
}

// Secp256k1PrivateKey decodes D into a secp256k1.PrivateKey for ES256K.
func (k *ECKey) Secp256k1PrivateKey() (*secp256k1.PrivateKey, error) {
	if k.Crv != "secp256k1" {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "not a secp256k1 key: crv=%s", k.Crv)
	}
	if !k.IsPrivate() {
		return nil, joseerr.New(joseerr.KeyTypeMismatch, "secp256k1 JWK has no private key material")
	}

	db, err := fixedWidth(k.D, "d", 32)
	if err != nil {
		return nil, err
	}
	return secp256k1.PrivKeyFromBytes(db), nil
}

func decodeCoord(s, member string) (*big.Int, error) {
	b, err := base64url.Decode(s)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, fmt.Sprintf("invalid EC JWK member %q", member), err)
	}
	return new(big.Int).SetBytes(b), nil
}

func fixedWidth(s, member string, n int) ([]byte, error) {
	b, err := base64url.Decode(s)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, fmt.Sprintf("invalid EC JWK member %q", member), err)
	}
	if len(b) == n {
		return b, nil
	}
	if len(b) > n {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "EC JWK member %q too long for curve", member)
	}
	padded := make([]byte, n)
	copy(padded[n-len(b):], b)
	return padded, nil
}
