package jws

import (
	"strings"

	"github.com/arkline/jose/header"
	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/joseerr"
)

// state tracks where an Object sits in its signing/verification lifecycle.
// Transitions are checked at runtime rather than encoded in the type
// system, matching this module's existing Header/Builder idiom.
type state int

const (
	stateUnsigned state = iota
	stateSigned
	stateVerified
)

// Object represents a JSON Web Signature: a JOSE header, a payload, and
// (once Sign has run) a signature. A freshly built Object is unsigned; Sign
// moves it to Signed and a successful Verify to Verified. ParseCompact
// yields a Signed Object whose signature bytes are present but not yet
// checked — call Verify before trusting Header or Payload.
type Object struct {
	st        state
	h         header.Header
	payload   []byte
	signature []byte
}

// New starts an Object over payload using h, which must be a JWS (or Plain,
// for alg=none) header. The payload is held verbatim; b64=false callers
// (RFC 7797) are responsible for ensuring payload contains no characters
// that would be misinterpreted when embedded unencoded in the compact
// serialization.
func New(h header.Header, payload []byte) (*Object, error) {
	if h.Kind != header.KindJWS && h.Kind != header.KindPlain {
		return nil, joseerr.New(joseerr.HeaderInvalid, "jws.New requires a JWS or Plain header")
	}
	return &Object{h: h, payload: payload}, nil
}

// Header returns the object's header.
func (o *Object) Header() header.Header { return o.h }

// Payload returns the object's payload.
func (o *Object) Payload() []byte { return o.payload }

// isUnencodedPayload reports whether h selects the RFC 7797 b64=false
// signing input, which embeds Payload directly instead of its base64url
// encoding.
func isUnencodedPayload(h header.Header) bool {
	return h.Kind == header.KindJWS && h.B64 != nil && !*h.B64
}

// signingInput builds the byte string a JWS alg signs: the header's
// base64url segment, a ".", and either the base64url-encoded payload
// (default) or the raw payload bytes (RFC 7797 b64=false).
func signingInput(h header.Header, payload []byte) []byte {
	headerSeg := h.ToBase64URL()

	var payloadSeg string
	if isUnencodedPayload(h) {
		payloadSeg = string(payload)
	} else {
		payloadSeg = base64url.Encode(payload)
	}

	buf := make([]byte, 0, len(headerSeg)+1+len(payloadSeg))
	buf = append(buf, headerSeg...)
	buf = append(buf, '.')
	buf = append(buf, payloadSeg...)
	return buf
}

// Sign computes the object's signature using signer and transitions it to
// the Signed state. Sign may only be called once.
func (o *Object) Sign(signer Signer) error {
	if o.st != stateUnsigned {
		return joseerr.New(joseerr.InvalidState, "jws: Sign called on an object that is already signed")
	}

	sig, err := signer.Sign(signingInput(o.h, o.payload))
	if err != nil {
		return err
	}

	o.signature = sig
	o.st = stateSigned
	return nil
}

// Verify checks the object's signature using verifier and transitions it to
// the Verified state on success. Verify may be called on a freshly-parsed
// (Signed, not yet verified) object or retried after a prior failed attempt, but never
// after a successful verification — callers should treat a Verified object
// as immutable from then on.
func (o *Object) Verify(verifier Verifier) error {
	if o.st == stateVerified {
		return joseerr.New(joseerr.InvalidState, "jws: Verify called on an already-verified object")
	}

	if err := verifier.Verify(signingInput(o.h, o.payload), o.signature); err != nil {
		return err
	}

	o.st = stateVerified
	return nil
}

// IsVerified reports whether Verify has succeeded on this object.
func (o *Object) IsVerified() bool { return o.st == stateVerified }

// Serialize renders the object in the JWS compact serialization (RFC 7515
// section 7.1). It may be called on a Signed or Verified object; an
// unsigned object has no signature segment to emit.
func (o *Object) Serialize() (string, error) {
	if o.st == stateUnsigned {
		return "", joseerr.New(joseerr.InvalidState, "jws: Serialize called before Sign")
	}

	headerSeg := o.h.ToBase64URL()

	var payloadSeg string
	if isUnencodedPayload(o.h) {
		payloadSeg = string(o.payload)
	} else {
		payloadSeg = base64url.Encode(o.payload)
	}

	return headerSeg + "." + payloadSeg + "." + base64url.Encode(o.signature), nil
}

// ParseCompact parses a JWS compact serialization into a Signed Object.
// The signature is held but NOT checked; callers must call Verify with a
// Verifier built for the appropriate key before trusting the result. For
// RFC 7797 b64=false objects, compact is expected to carry the raw,
// unencoded payload as its middle segment, exactly as the detached-payload
// convention requires.
func ParseCompact(compact string) (*Object, error) {
	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return nil, joseerr.Newf(joseerr.Malformed, "invalid compact JWS: want 3 segments, got %d", len(parts))
	}

	h, err := header.Parse(parts[0])
	if err != nil {
		return nil, err
	}
	if h.Kind != header.KindJWS && h.Kind != header.KindPlain {
		return nil, joseerr.New(joseerr.Malformed, "compact input is not a JWS")
	}

	var payload []byte
	if isUnencodedPayload(h) {
		payload = []byte(parts[1])
	} else {
		payload, err = base64url.Decode(parts[1])
		if err != nil {
			return nil, joseerr.Wrap(joseerr.Malformed, "invalid payload segment", err)
		}
	}

	sig, err := base64url.Decode(parts[2])
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, "invalid signature segment", err)
	}
	if h.Alg == "none" && len(sig) != 0 {
		return nil, joseerr.New(joseerr.HeaderInvalid, `alg "none" must carry an empty signature segment`)
	}

	return &Object{h: h, payload: payload, signature: sig, st: stateSigned}, nil
}
