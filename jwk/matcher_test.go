package jwk

import (
	"testing"

	"github.com/arkline/jose/header"
	"github.com/arkline/jose/jwa"
)

func TestMatcherForJWS_hmac(t *testing.T) {
	h, err := header.New(jwa.HS256).KeyID("k1").Build()
	if err != nil {
		t.Fatal(err)
	}

	m := MatcherForJWS(h)
	if m.KeyType == nil || *m.KeyType != KeyTypeOct {
		t.Errorf("want kty oct for HS256, got %v", m.KeyType)
	}
	if m.KeyID == nil || *m.KeyID != "k1" {
		t.Errorf("kid not carried through")
	}

	oct := NewSymmetricKey([]byte("secret"))
	oct.KeyDescription.KeyID = "k1"
	oct.KeyDescription.KeyUse = UseSignature
	oct.KeyDescription.KeyAlgorithm = string(jwa.HS256)
	if !m.Matches(oct) {
		t.Errorf("expected matcher to match the oct key")
	}

	rsaKey := &RSAKey{KeyDescription: KeyDescription{KeyID: "k1", KeyUse: UseSignature}, N: rfc7638N, E: rfc7638E}
	if m.Matches(rsaKey) {
		t.Errorf("expected matcher to reject an RSA key for an HS256 header")
	}
}

func TestMatcherForJWS_rsa(t *testing.T) {
	h, err := header.New(jwa.RS256).Build()
	if err != nil {
		t.Fatal(err)
	}
	m := MatcherForJWS(h)
	if m.KeyType == nil || *m.KeyType != KeyTypeRSA {
		t.Errorf("want kty RSA for RS256, got %v", m.KeyType)
	}
}

func TestMatcherForJWE_direct(t *testing.T) {
	h, err := header.NewJWE(jwa.Direct, jwa.A128GCM).Build()
	if err != nil {
		t.Fatal(err)
	}
	m := MatcherForJWE(h)
	if m.KeyType == nil || *m.KeyType != KeyTypeOct {
		t.Errorf("want kty oct for dir, got %v", m.KeyType)
	}
}

func TestSet_selectUsingMatcher(t *testing.T) {
	set := Set{
		&RSAKey{KeyDescription: KeyDescription{KeyID: "sig1", KeyUse: UseSignature, KeyAlgorithm: string(jwa.RS256)}, N: rfc7638N, E: rfc7638E},
		&RSAKey{KeyDescription: KeyDescription{KeyID: "enc1", KeyUse: UseEncryption, KeyAlgorithm: string(jwa.RS256)}, N: rfc7638N, E: rfc7638E},
	}

	h, err := header.New(jwa.RS256).KeyID("sig1").Build()
	if err != nil {
		t.Fatal(err)
	}

	selected := set.Select(MatcherForJWS(h))
	if len(selected) != 1 || selected[0].ID() != "sig1" {
		t.Fatalf("want exactly sig1 selected, got %d", len(selected))
	}
}
