package jose

import (
	"bytes"
	"encoding/json"

	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/joseerr"
)

// Payload carries a JOSE payload's canonical byte form plus four derived
// views: JSON, UTF-8 string, Base64URL, and (for nested JOSE) a JWS view.
// The byte sequence is canonical; everything else is computed lazily and
// cached. Payload is immutable once constructed, so the cache fields need
// no lock: under normal single-assignment use each is computed once, and
// a concurrent race recomputes the same value from the same bytes rather
// than risking a torn read.
type Payload struct {
	raw []byte

	jsonCached bool
	jsonValue  any
	jsonErr    error

	stringCached bool
	stringValue  string

	b64Cached bool
	b64Value  string
}

// NewPayload wraps raw as a Payload. raw is held, not copied; callers
// should not mutate it afterward.
func NewPayload(raw []byte) *Payload {
	return &Payload{raw: raw}
}

// NewPayloadFromJSON marshals v with encoding/json and wraps the result.
func NewPayloadFromJSON(v any) (*Payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.HeaderInvalid, "payload: marshaling JSON value", err)
	}
	return NewPayload(b), nil
}

// NewPayloadFromString wraps the UTF-8 bytes of s as a Payload.
func NewPayloadFromString(s string) *Payload {
	return NewPayload([]byte(s))
}

// Bytes returns the payload's canonical byte form.
func (p *Payload) Bytes() []byte { return p.raw }

// String returns the payload's bytes decoded as UTF-8.
func (p *Payload) String() string {
	if !p.stringCached {
		p.stringValue = string(p.raw)
		p.stringCached = true
	}
	return p.stringValue
}

// Base64URL returns the payload's bytes as an unpadded Base64URL string
// (RFC 4648 section 5), the form carried in a compact serialization.
func (p *Payload) Base64URL() string {
	if !p.b64Cached {
		p.b64Value = base64url.Encode(p.raw)
		p.b64Cached = true
	}
	return p.b64Value
}

// JSON unmarshals the payload's bytes into v using encoding/json.
func (p *Payload) JSON(v any) error {
	return json.Unmarshal(p.raw, v)
}

// JSONValue decodes the payload as a generic JSON value (map, slice,
// string, number, bool, or nil), caching the result.
func (p *Payload) JSONValue() (any, error) {
	if !p.jsonCached {
		p.jsonErr = json.Unmarshal(p.raw, &p.jsonValue)
		p.jsonCached = true
	}
	return p.jsonValue, p.jsonErr
}

// Equal reports whether two payloads carry the same bytes.
func (p *Payload) Equal(other *Payload) bool {
	if p == nil || other == nil {
		return p == other
	}
	return bytes.Equal(p.raw, other.raw)
}

// AsJWS attempts to parse the payload's bytes as a compact JWS, the nested
// JOSE view used by JWTs embedded as the payload of an enclosing JWE
// ("nested JWT", RFC 7519 section 5.2).
func (p *Payload) AsJWS() (*JWSObject, error) {
	return ParseJWSCompact(p.String())
}
