package header

import (
	"testing"

	"github.com/arkline/jose/jwa"
)

func TestParse_preservesOriginalBytes(t *testing.T) {
	// RFC 7515 Appendix A.1 header segment.
	const seg = "eyJ0eXAiOiJKV1QiLA0KICJhbGciOiJIUzI1NiJ9"

	h, err := Parse(seg)
	if err != nil {
		t.Fatal(err)
	}

	if h.Kind != KindJWS {
		t.Fatalf("want KindJWS, got %v", h.Kind)
	}
	if h.Alg != "HS256" {
		t.Errorf("want alg HS256, got %s", h.Alg)
	}
	if h.Typ != "JWT" {
		t.Errorf("want typ JWT, got %s", h.Typ)
	}
	if got := h.ToBase64URL(); got != seg {
		t.Errorf("want byte-exact reproduction %q, got %q", seg, got)
	}
}

func TestParse_determinesKind(t *testing.T) {
	plainHeader, err := New(jwa.None).Build()
	if err != nil {
		t.Fatal(err)
	}
	plain, err := Parse(plainHeader.ToBase64URL())
	if err != nil {
		t.Fatal(err)
	}
	if plain.Kind != KindPlain {
		t.Errorf("want KindPlain, got %v", plain.Kind)
	}

	jwsHeader, err := New(jwa.HS256).Build()
	if err != nil {
		t.Fatal(err)
	}
	parsedJWS, err := Parse(jwsHeader.ToBase64URL())
	if err != nil {
		t.Fatal(err)
	}
	if parsedJWS.Kind != KindJWS {
		t.Errorf("want KindJWS, got %v", parsedJWS.Kind)
	}

	jweHeader, err := NewJWE(jwa.Direct, jwa.A128GCM).Build()
	if err != nil {
		t.Fatal(err)
	}
	parsedJWE, err := Parse(jweHeader.ToBase64URL())
	if err != nil {
		t.Fatal(err)
	}
	if parsedJWE.Kind != KindJWE {
		t.Errorf("want KindJWE, got %v", parsedJWE.Kind)
	}
}

func TestBuild_allowsAlgNoneForPlain(t *testing.T) {
	_, err := New(jwa.None).Type("JWT").Build()
	// New(jwa.None) yields KindPlain, not KindJWS, so this must succeed.
	if err != nil {
		t.Fatalf("unexpected error for Plain header: %v", err)
	}
}

func TestBuild_rejectsCritRegisteredName(t *testing.T) {
	_, err := New(jwa.HS256).Critical("kid").Build()
	if err == nil {
		t.Fatal("expected error for crit containing a registered name")
	}
}

func TestBuild_rejectsCritUndefinedName(t *testing.T) {
	_, err := New(jwa.HS256).Critical("x-custom").Build()
	if err == nil {
		t.Fatal("expected error for crit referencing an absent parameter")
	}
}

func TestBuild_customCollidesWithRegistered(t *testing.T) {
	_, err := New(jwa.HS256).Custom("kid", "x").Build()
	if err == nil {
		t.Fatal("expected error for custom parameter colliding with registered name")
	}
}

func TestBuild_customAndCritRoundtrip(t *testing.T) {
	h, err := New(jwa.HS256).Custom("x-app", "v1").Critical("x-app").Build()
	if err != nil {
		t.Fatal(err)
	}

	encoded := h.ToBase64URL()
	parsed, err := Parse(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Crit) != 1 || parsed.Crit[0] != "x-app" {
		t.Errorf("crit not preserved: %v", parsed.Crit)
	}
}

func TestBuild_b64Critical(t *testing.T) {
	h, err := New(jwa.HS256).B64(false).Critical("b64").Build()
	if err != nil {
		t.Fatal(err)
	}
	if h.B64 == nil || *h.B64 != false {
		t.Errorf("b64 not set")
	}
}
