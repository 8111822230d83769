// Package header implements the JOSE header model shared by Plain, JWS and
// JWE objects (RFC 7515 section 4, RFC 7516 section 4). A single Header
// struct carries every registered parameter for all three kinds; a Kind
// discriminator says which subset is legal, enforced by Builder and Parse
// rather than by three separate Go types.
package header

import (
	"encoding/json"

	"github.com/arkline/jose/jwa"
)

// Kind discriminates which JOSE object a Header belongs to.
type Kind int

const (
	KindPlain Kind = iota + 1
	KindJWS
	KindJWE
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindJWS:
		return "jws"
	case KindJWE:
		return "jwe"
	default:
		return "unknown"
	}
}

// Header is the in-memory representation of a JOSE header. Zero-valued
// optional fields are omitted from serialization. Custom holds any
// parameter name not recognized as registered for Kind, keyed by name with
// its raw JSON value; Order preserves the insertion order used when
// serializing a Header built via Builder (parsed headers reproduce their
// original bytes and ignore Order).
type Header struct {
	Kind Kind

	// Registered by every kind.
	Alg  string // "alg": JWS/Plain alg name, or JWE key-management alg name
	Typ  string
	Cty  string
	Crit []string

	// JWS + JWE.
	Jku     string
	Jwk     json.RawMessage // embedded JWK, parsed on demand by callers
	Kid     string
	X5u     string
	X5t     string
	X5tS256 string
	X5c     []string
	B64     *bool // RFC 7797 unencoded-payload option, JWS only

	// JWE only.
	Enc jwa.EncryptionAlgorithm
	Zip jwa.CompressionAlgorithm
	Epk json.RawMessage // ephemeral EC/OKP public key for ECDH-ES
	Apu []byte          // PartyUInfo, decoded
	Apv []byte          // PartyVInfo, decoded
	P2s []byte          // PBES2 salt input, decoded
	P2c int             // PBES2 iteration count
	Iv  []byte          // GCM-KW IV, decoded
	Tag []byte          // GCM-KW authentication tag, decoded

	Custom map[string]json.RawMessage
	Order  []string

	parsedB64 string // original base64url bytes; empty unless this Header came from Parse
}

// JWSAlgorithm returns Alg typed as a JWS signature algorithm. Only
// meaningful when Kind is KindPlain or KindJWS.
func (h Header) JWSAlgorithm() jwa.JWSAlgorithm {
	return jwa.JWSAlgorithm(h.Alg)
}

// KeyAlgorithm returns Alg typed as a JWE key-management algorithm. Only
// meaningful when Kind is KindJWE.
func (h Header) KeyAlgorithm() jwa.KeyAlgorithm {
	return jwa.KeyAlgorithm(h.Alg)
}

// IsParsed reports whether h was produced by Parse (and so carries its
// original base64url bytes) as opposed to being built in-memory.
func (h Header) IsParsed() bool {
	return h.parsedB64 != ""
}

// registeredNames lists every header parameter name this package treats as
// registered, used by both Builder.Custom (to reject collisions) and crit
// validation (to reject crit entries that name a registered parameter).
var registeredNames = map[string]bool{
	"alg": true, "typ": true, "cty": true, "crit": true,
	"jku": true, "jwk": true, "kid": true,
	"x5u": true, "x5t": true, "x5t#S256": true, "x5c": true,
	"b64": true,
	"enc": true, "zip": true, "epk": true, "apu": true, "apv": true,
	"p2s": true, "p2c": true, "iv": true, "tag": true,
}

func isRegisteredName(name string) bool {
	return registeredNames[name]
}
