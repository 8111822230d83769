package header

import (
	"encoding/json"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

// Builder constructs a Header value by value, the way the rest of this
// module's headers are "set": there are no mutating setters on Header
// itself, only Builder methods that accumulate state and a terminal Build
// that validates and freezes it.
type Builder struct {
	h   Header
	err error
}

// New starts building a JWS header (or, when alg is "none", a Plain
// header — Plain objects are always alg=none and are otherwise shaped
// exactly like a JWS header).
func New(alg jwa.JWSAlgorithm) *Builder {
	kind := KindJWS
	if alg == jwa.None {
		kind = KindPlain
	}
	return &Builder{h: Header{Kind: kind, Alg: string(alg)}}
}

// NewJWE starts building a JWE header.
func NewJWE(alg jwa.KeyAlgorithm, enc jwa.EncryptionAlgorithm) *Builder {
	return &Builder{h: Header{Kind: KindJWE, Alg: string(alg), Enc: enc}}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) Type(typ string) *Builder {
	b.h.Typ = typ
	return b
}

func (b *Builder) ContentType(cty string) *Builder {
	b.h.Cty = cty
	return b
}

func (b *Builder) KeyID(kid string) *Builder {
	b.h.Kid = kid
	return b
}

func (b *Builder) JWKSetURL(jku string) *Builder {
	b.h.Jku = jku
	return b
}

func (b *Builder) JWK(rawJWK json.RawMessage) *Builder {
	b.h.Jwk = rawJWK
	return b
}

func (b *Builder) X509URL(x5u string) *Builder {
	b.h.X5u = x5u
	return b
}

func (b *Builder) X509CertificateChain(x5c []string) *Builder {
	b.h.X5c = x5c
	return b
}

func (b *Builder) X509Thumbprint(x5t string) *Builder {
	b.h.X5t = x5t
	return b
}

func (b *Builder) X509ThumbprintSHA256(x5tS256 string) *Builder {
	b.h.X5tS256 = x5tS256
	return b
}

// B64 sets the RFC 7797 "b64" parameter. Callers must also add "b64" to
// Critical for the unencoded-payload option to take effect, per RFC 7797
// section 3.
func (b *Builder) B64(v bool) *Builder {
	b.h.B64 = &v
	return b
}

func (b *Builder) Critical(names ...string) *Builder {
	b.h.Crit = names
	return b
}

func (b *Builder) EphemeralPublicKey(rawJWK json.RawMessage) *Builder {
	b.h.Epk = rawJWK
	return b
}

func (b *Builder) PartyUInfo(apu []byte) *Builder {
	b.h.Apu = apu
	return b
}

func (b *Builder) PartyVInfo(apv []byte) *Builder {
	b.h.Apv = apv
	return b
}

func (b *Builder) PBES2Salt(p2s []byte) *Builder {
	b.h.P2s = p2s
	return b
}

func (b *Builder) PBES2Count(p2c int) *Builder {
	b.h.P2c = p2c
	return b
}

func (b *Builder) IV(iv []byte) *Builder {
	b.h.Iv = iv
	return b
}

func (b *Builder) Tag(tag []byte) *Builder {
	b.h.Tag = tag
	return b
}

func (b *Builder) Compression(zip jwa.CompressionAlgorithm) *Builder {
	b.h.Zip = zip
	return b
}

// Custom adds a non-registered header parameter. It fails Build if name
// collides with a registered parameter name.
func (b *Builder) Custom(name string, value any) *Builder {
	if isRegisteredName(name) {
		return b.fail(joseerr.Newf(joseerr.HeaderInvalid, "custom parameter name %q collides with a registered parameter", name))
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return b.fail(joseerr.Wrap(joseerr.HeaderInvalid, "custom parameter value not serializable", err))
	}

	if b.h.Custom == nil {
		b.h.Custom = map[string]json.RawMessage{}
	}
	if _, exists := b.h.Custom[name]; !exists {
		b.h.Order = append(b.h.Order, name)
	}
	b.h.Custom[name] = raw

	return b
}

// Build validates and returns the Header. alg=="none" is rejected for JWS
// and JWE headers (it is only legal via New(jwa.None), which yields a
// KindPlain header instead).
func (b *Builder) Build() (Header, error) {
	if b.err != nil {
		return Header{}, b.err
	}

	if b.h.Kind != KindPlain && b.h.Alg == string(jwa.None) {
		return Header{}, joseerr.New(joseerr.HeaderInvalid, `alg "none" is not legal in a JWS or JWE header`)
	}

	if err := validateCrit(b.h); err != nil {
		return Header{}, err
	}

	return b.h, nil
}
