package jwk

import (
	"encoding/json"

	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/joseerr"
)

// SymmetricKey implements "kty": "oct" as specified in RFC 7517 appendix
// A.3. It is used for HMAC signing/verification and as an AES key-wrap or
// PBES2 input key.
type SymmetricKey struct {
	KeyDescription

	K string `json:"k"`
}

func (k *SymmetricKey) Type() KeyType   { return KeyTypeOct }
func (k *SymmetricKey) IsPrivate() bool { return true } // an oct key IS its secret

type symmetricKeyWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	K    string  `json:"k"`
}

func (k *SymmetricKey) MarshalJSON() ([]byte, error) {
	w := symmetricKeyWrapper{
		KeyDescription: k.KeyDescription,
		Type:           KeyTypeOct,
		K:              k.K,
	}
	return json.Marshal(w)
}

func (k *SymmetricKey) UnmarshalJSON(data []byte) error {
	var w symmetricKeyWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return joseerr.Wrap(joseerr.Malformed, "invalid oct JWK", err)
	}
	if w.Type != KeyTypeOct {
		return joseerr.Newf(joseerr.KeyTypeMismatch, "invalid key type: %s", w.Type)
	}
	if w.K == "" {
		return joseerr.New(joseerr.Malformed, "oct JWK missing required k member")
	}

	*k = SymmetricKey{KeyDescription: w.KeyDescription, K: w.K}
	return nil
}

// Bytes decodes K into raw key bytes.
func (k *SymmetricKey) Bytes() ([]byte, error) {
	b, err := base64url.Decode(k.K)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, "invalid oct JWK member \"k\"", err)
	}
	return b, nil
}

// NewSymmetricKey wraps raw secret bytes as a SymmetricKey.
func NewSymmetricKey(secret []byte) *SymmetricKey {
	return &SymmetricKey{K: base64url.Encode(secret)}
}
