// Package jwk provides types and functions implementing JSON Web Keys as
// specified in RFC 7517 (https://datatracker.ietf.org/doc/html/rfc7517) and
// the key types registered by RFC 7518 section 6 and RFC 8037.
package jwk

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/joseerr"
)

// KeyType defines the types of keys as specified in RFC 7518 section 6.1.
type KeyType string

const (
	ParamKeyType = "kty"

	KeyTypeEC  KeyType = "EC"
	KeyTypeRSA KeyType = "RSA"
	KeyTypeOct KeyType = "oct"
	KeyTypeOKP KeyType = "OKP"
)

// KeyUse defines the types of key use as specified in RFC 7517 section 4.2.
type KeyUse string

const (
	ParamUse = "use"

	UseSignature  KeyUse = "sig"
	UseEncryption KeyUse = "enc"
)

// KeyOp defines the types of key operations as specified in RFC 7517
// section 4.3.
type KeyOp string

const (
	ParamKeyOps = "key_ops"

	KeyOpsSign       KeyOp = "sign"
	KeyOpsVerify     KeyOp = "verify"
	KeyOpsEncrypt    KeyOp = "encrypt"
	KeyOpsDecrypt    KeyOp = "decrypt"
	KeyOpsKeyWrap    KeyOp = "wrapKey"
	KeyOpsUnwrapKey  KeyOp = "unwrapKey"
	KeyOpsDeriveKey  KeyOp = "deriveKey"
	KeyOpsDeriveBits KeyOp = "deriveBits"
)

const (
	ParamAlg     = "alg"
	ParamKID     = "kid"
	ParamX5U     = "x5u"
	ParamX5T     = "x5t"
	ParamX5TS256 = "x5t#S256"
	ParamX5C     = "x5c"
)

// Key defines the interface implemented by every key variant. It exposes
// getters for the common metadata parameters defined in RFC 7517 section 4.
type Key interface {
	// Type returns the "kty" parameter.
	Type() KeyType

	// Use returns the "use" parameter.
	Use() KeyUse

	// Operations returns the "key_ops" parameter.
	Operations() []KeyOp

	// Algorithm returns the "alg" parameter.
	Algorithm() string

	// ID returns the "kid" parameter.
	ID() string

	// IsPrivate reports whether this key carries private key material.
	IsPrivate() bool
}

// KeyDescription holds the metadata parameters common to every key variant,
// as defined in RFC 7517 section 4. It is embedded in each concrete key type
// and implements the shared Key getters.
type KeyDescription struct {
	KeyUse        KeyUse  `json:"use,omitempty"`
	KeyOperations []KeyOp `json:"key_ops,omitempty"`
	KeyAlgorithm  string  `json:"alg,omitempty"`
	KeyID         string  `json:"kid,omitempty"`
	X5U           string  `json:"x5u,omitempty"`
	X5T           string  `json:"x5t,omitempty"`
	X5TS256       string  `json:"x5t#S256,omitempty"`
	X5C           []string `json:"x5c,omitempty"`
}

func (k KeyDescription) Use() KeyUse           { return k.KeyUse }
func (k KeyDescription) Operations() []KeyOp   { return k.KeyOperations }
func (k KeyDescription) Algorithm() string     { return k.KeyAlgorithm }
func (k KeyDescription) ID() string            { return k.KeyID }

// keyTypeProbe is used to sniff "kty" before deciding which concrete type to
// unmarshal into.
type keyTypeProbe struct {
	Type KeyType `json:"kty"`
}

// MarshalKey marshals k into its JWK JSON representation.
func MarshalKey(k Key) ([]byte, error) {
	return json.Marshal(k)
}

// UnmarshalKey unmarshals JSON data as a Key, dispatching on "kty" to the
// appropriate concrete type.
func UnmarshalKey(data []byte) (Key, error) {
	var probe keyTypeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, "invalid JWK JSON", err)
	}

	switch probe.Type {
	case KeyTypeRSA:
		var k RSAKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeEC:
		var k ECKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeOKP:
		var k OKPKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeOct:
		var k SymmetricKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	default:
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "unsupported kty: %s", probe.Type)
	}
}

// Thumbprint computes the RFC 7638 JWK thumbprint of k: the required members
// for k's kty are canonicalized into a lexicographically-ordered JSON object
// with no insignificant whitespace, SHA-256 hashed, and base64url encoded.
func Thumbprint(k Key) (string, error) {
	members, err := thumbprintMembers(k)
	if err != nil {
		return "", err
	}

	canonical, err := base64url.CanonicalJSON(members)
	if err != nil {
		return "", joseerr.Wrap(joseerr.BackendError, "failed to canonicalize JWK for thumbprint", err)
	}

	sum := sha256.Sum256(canonical)
	return base64url.Encode(sum[:]), nil
}

// thumbprintMembers returns the RFC 7638 required-members set for k, keyed
// by JWK member name.
func thumbprintMembers(k Key) (map[string]string, error) {
	switch key := k.(type) {
	case *RSAKey:
		return map[string]string{"kty": string(KeyTypeRSA), "n": key.N, "e": key.E}, nil
	case *ECKey:
		return map[string]string{"kty": string(KeyTypeEC), "crv": key.Crv, "x": key.X, "y": key.Y}, nil
	case *OKPKey:
		return map[string]string{"kty": string(KeyTypeOKP), "crv": key.Crv, "x": key.X}, nil
	case *SymmetricKey:
		return map[string]string{"kty": string(KeyTypeOct), "k": key.K}, nil
	default:
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "thumbprint not supported for key type %T", k)
	}
}
