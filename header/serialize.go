package header

import (
	"encoding/json"
	"strings"

	"github.com/arkline/jose/internal/base64url"
)

// ToBase64URL renders h as the Base64URL-encoded JSON header segment used in
// compact serialization. If h was produced by Parse, the original bytes are
// returned verbatim — re-deriving them from the typed fields would risk
// reordering or re-whitespacing bytes that a signature was computed over,
// silently invalidating it. For a Header built in-memory, registered fields
// are emitted first in a fixed, deterministic order, followed by custom
// fields in the order they were added via Builder.Custom.
func (h Header) ToBase64URL() string {
	if h.IsParsed() {
		return h.parsedB64
	}
	return base64url.Encode(h.marshal())
}

type pair struct {
	name  string
	value json.RawMessage
}

func raw(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err) // v is always a value this package constructed; marshaling cannot fail
	}
	return b
}

func (h Header) marshal() []byte {
	var pairs []pair

	add := func(name string, value any) {
		pairs = append(pairs, pair{name, raw(value)})
	}
	addRaw := func(name string, value json.RawMessage) {
		if len(value) == 0 {
			return
		}
		pairs = append(pairs, pair{name, value})
	}
	addB64Bytes := func(name string, value []byte) {
		if len(value) == 0 {
			return
		}
		add(name, base64url.Encode(value))
	}

	add("alg", h.Alg)
	if h.Kind == KindJWE {
		add("enc", string(h.Enc))
	}
	if h.Typ != "" {
		add("typ", h.Typ)
	}
	if h.Cty != "" {
		add("cty", h.Cty)
	}
	if h.Kind == KindJWE && h.Zip != "" {
		add("zip", string(h.Zip))
	}
	if len(h.Crit) > 0 {
		add("crit", h.Crit)
	}
	if h.Jku != "" {
		add("jku", h.Jku)
	}
	addRaw("jwk", h.Jwk)
	if h.Kid != "" {
		add("kid", h.Kid)
	}
	if h.X5u != "" {
		add("x5u", h.X5u)
	}
	if h.X5t != "" {
		add("x5t", h.X5t)
	}
	if h.X5tS256 != "" {
		add("x5t#S256", h.X5tS256)
	}
	if len(h.X5c) > 0 {
		add("x5c", h.X5c)
	}
	if h.Kind == KindJWS && h.B64 != nil {
		add("b64", *h.B64)
	}
	if h.Kind == KindJWE {
		addRaw("epk", h.Epk)
		addB64Bytes("apu", h.Apu)
		addB64Bytes("apv", h.Apv)
		addB64Bytes("p2s", h.P2s)
		if h.P2c > 0 {
			add("p2c", h.P2c)
		}
		addB64Bytes("iv", h.Iv)
		addB64Bytes("tag", h.Tag)
	}

	for _, name := range h.Order {
		v, ok := h.Custom[name]
		if !ok {
			continue
		}
		pairs = append(pairs, pair{name, v})
	}

	var buf strings.Builder
	buf.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(raw(p.name))
		buf.WriteByte(':')
		buf.Write(p.value)
	}
	buf.WriteByte('}')

	return []byte(buf.String())
}
