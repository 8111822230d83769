package header

import (
	"encoding/json"

	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

// rawFields mirrors the registered parameter names for unmarshaling; any
// key not present here falls through to Custom.
type rawFields struct {
	Alg     *string         `json:"alg"`
	Enc     *string         `json:"enc"`
	Typ     *string         `json:"typ"`
	Cty     *string         `json:"cty"`
	Zip     *string         `json:"zip"`
	Crit    []string        `json:"crit"`
	Jku     *string         `json:"jku"`
	Jwk     json.RawMessage `json:"jwk"`
	Kid     *string         `json:"kid"`
	X5u     *string         `json:"x5u"`
	X5t     *string         `json:"x5t"`
	X5tS256 *string         `json:"x5t#S256"`
	X5c     []string        `json:"x5c"`
	B64     *bool           `json:"b64"`
	Epk     json.RawMessage `json:"epk"`
	Apu     *string         `json:"apu"`
	Apv     *string         `json:"apv"`
	P2s     *string         `json:"p2s"`
	P2c     *int            `json:"p2c"`
	Iv      *string         `json:"iv"`
	Tag     *string         `json:"tag"`
}

// Parse decodes a Base64URL-encoded JOSE header segment (as it appears
// verbatim in a compact serialization) into a Header. The header's Kind is
// determined by the presence of "enc" (JWE) vs. alg=="none" with no "enc"
// (Plain) vs. otherwise (JWS), per RFC 7515/7516. The original segment
// bytes are retained so ToBase64URL can reproduce them exactly — required
// for JWS signature verification, whose signing input is defined over the
// received bytes, not a re-serialization of them.
func Parse(segment string) (Header, error) {
	decoded, err := base64url.Decode(segment)
	if err != nil {
		return Header{}, joseerr.Wrap(joseerr.Malformed, "invalid base64url header segment", err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(decoded, &all); err != nil {
		return Header{}, joseerr.Wrap(joseerr.Malformed, "invalid header JSON", err)
	}

	var rf rawFields
	if err := json.Unmarshal(decoded, &rf); err != nil {
		return Header{}, joseerr.Wrap(joseerr.Malformed, "invalid header JSON", err)
	}

	if rf.Alg == nil {
		return Header{}, joseerr.New(joseerr.Malformed, "missing required \"alg\" header parameter")
	}

	h := Header{
		Alg:       *rf.Alg,
		Jwk:       rf.Jwk,
		Epk:       rf.Epk,
		Crit:      rf.Crit,
		X5c:       rf.X5c,
		P2c:       derefInt(rf.P2c),
		parsedB64: segment,
	}

	switch {
	case rf.Enc != nil:
		h.Kind = KindJWE
		h.Enc = jwa.EncryptionAlgorithm(*rf.Enc)
	case *rf.Alg == string(jwa.None):
		h.Kind = KindPlain
	default:
		h.Kind = KindJWS
	}

	if rf.Typ != nil {
		h.Typ = *rf.Typ
	}
	if rf.Cty != nil {
		h.Cty = *rf.Cty
	}
	if rf.Zip != nil {
		h.Zip = jwa.CompressionAlgorithm(*rf.Zip)
	}
	if rf.Jku != nil {
		h.Jku = *rf.Jku
	}
	if rf.Kid != nil {
		h.Kid = *rf.Kid
	}
	if rf.X5u != nil {
		h.X5u = *rf.X5u
	}
	if rf.X5t != nil {
		h.X5t = *rf.X5t
	}
	if rf.X5tS256 != nil {
		h.X5tS256 = *rf.X5tS256
	}
	h.B64 = rf.B64

	if rf.Apu != nil {
		b, err := base64url.Decode(*rf.Apu)
		if err != nil {
			return Header{}, joseerr.Wrap(joseerr.Malformed, "invalid apu", err)
		}
		h.Apu = b
	}
	if rf.Apv != nil {
		b, err := base64url.Decode(*rf.Apv)
		if err != nil {
			return Header{}, joseerr.Wrap(joseerr.Malformed, "invalid apv", err)
		}
		h.Apv = b
	}
	if rf.P2s != nil {
		b, err := base64url.Decode(*rf.P2s)
		if err != nil {
			return Header{}, joseerr.Wrap(joseerr.Malformed, "invalid p2s", err)
		}
		h.P2s = b
	}
	if rf.Iv != nil {
		b, err := base64url.Decode(*rf.Iv)
		if err != nil {
			return Header{}, joseerr.Wrap(joseerr.Malformed, "invalid iv", err)
		}
		h.Iv = b
	}
	if rf.Tag != nil {
		b, err := base64url.Decode(*rf.Tag)
		if err != nil {
			return Header{}, joseerr.Wrap(joseerr.Malformed, "invalid tag", err)
		}
		h.Tag = b
	}

	custom := map[string]json.RawMessage{}
	for name, v := range all {
		if isRegisteredName(name) {
			continue
		}
		custom[name] = v
	}
	if len(custom) > 0 {
		h.Custom = custom
	}

	if err := validateCrit(h); err != nil {
		return Header{}, err
	}

	return h, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// validateCrit enforces RFC 7515 section 4.1.11: crit, if present, must be
// non-empty, must not name a registered parameter (except JWS's "b64",
// RFC 7797), and every name it lists must itself be present as a header
// parameter.
func validateCrit(h Header) error {
	if h.Crit == nil {
		return nil
	}
	if len(h.Crit) == 0 {
		return joseerr.New(joseerr.HeaderInvalid, "crit must not be empty when present")
	}

	for _, name := range h.Crit {
		if name == "b64" && h.Kind == KindJWS {
			if h.B64 == nil {
				return joseerr.Newf(joseerr.HeaderInvalid, "crit references %q but it is not present", name)
			}
			continue
		}
		if isRegisteredName(name) {
			return joseerr.Newf(joseerr.HeaderInvalid, "crit must not contain registered parameter name %q", name)
		}
		if _, ok := h.Custom[name]; !ok {
			return joseerr.Newf(joseerr.HeaderInvalid, "crit references %q but it is not present in the header", name)
		}
	}

	return nil
}
