package jose

import (
	"github.com/arkline/jose/cryptobackend"
	"github.com/arkline/jose/header"
	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/jwe"
	"github.com/arkline/jose/jwk"
	"github.com/arkline/jose/joseerr"
	"github.com/arkline/jose/jws"
)

// MediaTypeCompact is the MIME type for a JOSE value in compact
// serialization (RFC 7515 section 9.2.1 / RFC 7516 section 9.2.1).
const MediaTypeCompact = "application/jose"

// MediaTypeJSON is the MIME type for a JOSE value in the general or
// flattened JSON serialization. This package implements only the compact
// serialization; the constant exists for callers building Content-Type
// headers around bytes produced elsewhere.
const MediaTypeJSON = "application/jose+json"

// JWSObject is the root-package view of a JSON Web Signature: a header, a
// Payload, and the runtime-checked Unsigned/Signed/Verified state machine
// jws.Object implements. It exists to hand callers Payload (with its
// cached JSON/string/Base64URL views) instead of raw bytes.
type JWSObject struct {
	inner *jws.Object
}

// NewJWSObject starts an unsigned JWSObject over payload using h.
func NewJWSObject(h header.Header, payload *Payload) (*JWSObject, error) {
	inner, err := jws.New(h, payload.Bytes())
	if err != nil {
		return nil, err
	}
	return &JWSObject{inner: inner}, nil
}

// Header returns the object's header.
func (o *JWSObject) Header() header.Header { return o.inner.Header() }

// Payload returns the object's payload.
func (o *JWSObject) Payload() *Payload { return NewPayload(o.inner.Payload()) }

// IsVerified reports whether Verify has succeeded on this object.
func (o *JWSObject) IsVerified() bool { return o.inner.IsVerified() }

// Sign signs the object using key, selecting the signer from the header's
// alg via backend.
func (o *JWSObject) Sign(backend *cryptobackend.Backend, key jwk.Key) error {
	signer, err := jws.NewSigner(backend, o.inner.Header().JWSAlgorithm(), key)
	if err != nil {
		return err
	}
	return o.inner.Sign(signer)
}

// Verify checks the object's signature using key, selecting the verifier
// from the header's alg via backend.
func (o *JWSObject) Verify(backend *cryptobackend.Backend, key jwk.Key) error {
	verifier, err := jws.NewVerifier(backend, o.inner.Header().JWSAlgorithm(), key)
	if err != nil {
		return err
	}
	return o.inner.Verify(verifier)
}

// Serialize renders the object as a compact JWS.
func (o *JWSObject) Serialize() (string, error) { return o.inner.Serialize() }

// ParseJWSCompact parses compact as a JWS, returning it in the Signed
// state (signature present, not yet checked). Call Verify before trusting
// Header or Payload.
func ParseJWSCompact(compact string) (*JWSObject, error) {
	inner, err := jws.ParseCompact(compact)
	if err != nil {
		return nil, err
	}
	return &JWSObject{inner: inner}, nil
}

// PlainObject is an unsecured (alg=none) JOSE object: a header and a
// Payload with no cryptographic protection at all. It is the Plain arm of
// the {Plain, JWS, JWE} JOSEObject variant; processor.Processor rejects it
// by default (PlainObjectRejected) unless a caller opts in via
// processor.AllowPlain.
type PlainObject struct {
	inner *jws.Object
}

// NewPlainObject builds an unsecured object over payload, with an empty
// signature segment, ready to Serialize.
func NewPlainObject(payload *Payload) (*PlainObject, error) {
	h, err := header.New(jwa.None).Build()
	if err != nil {
		return nil, err
	}
	inner, err := jws.New(h, payload.Bytes())
	if err != nil {
		return nil, err
	}
	if err := inner.Sign(&noneSigner{}); err != nil {
		return nil, err
	}
	return &PlainObject{inner: inner}, nil
}

// noneSigner produces the empty signature alg=none requires, without
// reaching into jws's unexported signer construction.
type noneSigner struct{}

func (*noneSigner) Sign([]byte) ([]byte, error) { return nil, nil }

// Header returns the object's header.
func (o *PlainObject) Header() header.Header { return o.inner.Header() }

// Payload returns the object's payload.
func (o *PlainObject) Payload() *Payload { return NewPayload(o.inner.Payload()) }

// Serialize renders the object as a compact, unsecured JWS.
func (o *PlainObject) Serialize() (string, error) { return o.inner.Serialize() }

// ParsePlainCompact parses compact as an unsecured (alg=none) JOSE object.
func ParsePlainCompact(compact string) (*PlainObject, error) {
	inner, err := jws.ParseCompact(compact)
	if err != nil {
		return nil, err
	}
	if inner.Header().Alg != jwa.None {
		return nil, joseerr.Newf(joseerr.HeaderInvalid, "ParsePlainCompact requires alg=none, got %s", inner.Header().Alg)
	}
	return &PlainObject{inner: inner}, nil
}

// JWEObject is the root-package view of a JSON Web Encryption value: a
// header and a Payload available once Decrypt succeeds, wrapping the
// Unencrypted/Encrypted/Decrypted state machine jwe.Object implements.
type JWEObject struct {
	inner *jwe.Object
}

// EncryptJWE builds and encrypts a JWEObject for alg/enc over plaintext
// using key. aad is the detached Additional Authenticated Data input; pass
// nil for ordinary compact serialization, which carries no detached-AAD
// segment.
func EncryptJWE(backend *cryptobackend.Backend, alg jwa.KeyAlgorithm, enc jwa.EncryptionAlgorithm, key jwk.Key, plaintext *Payload, aad []byte, opts jwe.EncryptOptions) (*JWEObject, error) {
	inner, err := jwe.Encrypt(backend, alg, enc, key, plaintext.Bytes(), aad, opts)
	if err != nil {
		return nil, err
	}
	return &JWEObject{inner: inner}, nil
}

// Header returns the object's header.
func (o *JWEObject) Header() header.Header { return o.inner.Header() }

// IsDecrypted reports whether Decrypt has succeeded on this object.
func (o *JWEObject) IsDecrypted() bool { return o.inner.IsDecrypted() }

// Plaintext returns the decrypted Payload. Only meaningful once
// IsDecrypted reports true.
func (o *JWEObject) Plaintext() *Payload { return NewPayload(o.inner.Plaintext()) }

// Decrypt unwraps the content encryption key and decrypts the object's
// ciphertext using key, transitioning it to Decrypted on success. aad must
// match whatever detached Additional Authenticated Data Encrypt was given.
func (o *JWEObject) Decrypt(backend *cryptobackend.Backend, key jwk.Key, aad []byte) error {
	return o.inner.Decrypt(backend, key, aad)
}

// Serialize renders the object as a compact, five-segment JWE.
func (o *JWEObject) Serialize() (string, error) { return o.inner.Serialize() }

// ParseJWECompact parses compact as a JWE, returning it in the Encrypted
// state. Call Decrypt before trusting Plaintext.
func ParseJWECompact(compact string) (*JWEObject, error) {
	inner, err := jwe.ParseCompact(compact)
	if err != nil {
		return nil, err
	}
	return &JWEObject{inner: inner}, nil
}
