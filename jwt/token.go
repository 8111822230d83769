package jwt

import (
	"encoding/json"

	"github.com/arkline/jose/cryptobackend"
	"github.com/arkline/jose/header"
	"github.com/arkline/jose/joseerr"
	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/jwk"
	"github.com/arkline/jose/jws"
)

// Token implements an assembled JWT. It wraps a jws.Object with convenient
// access to its claims, matching jws's own Unsigned/Signed/Verified
// lifecycle: Decode yields a Token whose claims and StandardClaims are
// already parsed, but whose signature is not yet checked.
type Token struct {
	obj            *jws.Object
	standardClaims StandardClaims
}

// Header returns the token's JWS header.
func (t *Token) Header() header.Header { return t.obj.Header() }

// StandardClaims returns a copy of the token's standard claims.
func (t *Token) StandardClaims() StandardClaims {
	return t.standardClaims
}

// Claims unmarshals the claims JSON data contained in t into claims, which
// must be a pointer to some datastructure that json.Unmarshal can handle.
func (t *Token) Claims(claims any) error {
	return json.Unmarshal(t.obj.Payload(), claims)
}

// VerifySignature checks the token's signature using verifier, transitioning
// the underlying jws.Object to Verified on success.
func (t *Token) VerifySignature(verifier jws.Verifier) error {
	return t.obj.Verify(verifier)
}

// Verify runs each of verifiers against t in order, stopping at and
// returning the first failure.
func (t *Token) Verify(verifiers ...Verifier) error {
	for _, v := range verifiers {
		if err := v.Verify(t); err != nil {
			return err
		}
	}

	return nil
}

// Serialize renders the token as a compact JWS. It works for a Token from
// Sign and for one from Decode, whether or not Verify has run.
func (t *Token) Serialize() (string, error) {
	return t.obj.Serialize()
}

// Sign marshals claims to JSON, wraps it in a "typ": "JWT" header for alg,
// and signs it with key via backend. claims is also decoded into the
// resulting Token's StandardClaims, either directly (when claims already is
// a StandardClaims / *StandardClaims) or by re-unmarshaling the serialized
// JSON, so that arbitrary application claim structs still populate the
// registered RFC 7519 fields they declare.
func Sign(backend *cryptobackend.Backend, alg jwa.JWSAlgorithm, key jwk.Key, claims any) (*Token, error) {
	serializedClaims, err := json.Marshal(claims)
	if err != nil {
		return nil, err
	}

	var standardClaims StandardClaims
	switch c := claims.(type) {
	case StandardClaims:
		standardClaims = c
	case *StandardClaims:
		standardClaims = *c
	default:
		if err := json.Unmarshal(serializedClaims, &standardClaims); err != nil {
			return nil, err
		}
	}

	h, err := header.New(alg).Type("JWT").Build()
	if err != nil {
		return nil, err
	}
	obj, err := jws.New(h, serializedClaims)
	if err != nil {
		return nil, err
	}
	signer, err := jws.NewSigner(backend, alg, key)
	if err != nil {
		return nil, err
	}
	if err := obj.Sign(signer); err != nil {
		return nil, err
	}

	return &Token{obj: obj, standardClaims: standardClaims}, nil
}

// Decode parses the given compact token string, reading its header and
// standard claims without checking its signature. Callers must call Verify
// (with Signature among the verifiers) before trusting the result.
func Decode(compact string) (*Token, error) {
	obj, err := jws.ParseCompact(compact)
	if err != nil {
		return nil, err
	}

	var standardClaims StandardClaims
	if err := json.Unmarshal(obj.Payload(), &standardClaims); err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, "token payload is not a valid claims object", err)
	}

	return &Token{obj: obj, standardClaims: standardClaims}, nil
}
