package jwk

import "testing"

// RFC 7638 appendix example.
const (
	rfc7638N = "0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw"
	rfc7638E = "AQAB"
	rfc7638Thumbprint = "NzbLsXh8uDCcd-6MNwXF4W_7noWXFZAfHkxZsRGC9Xs"
)

func TestThumbprint_rfc7638Vector(t *testing.T) {
	k := &RSAKey{N: rfc7638N, E: rfc7638E}
	got, err := Thumbprint(k)
	if err != nil {
		t.Fatal(err)
	}
	if got != rfc7638Thumbprint {
		t.Errorf("want %s, got %s", rfc7638Thumbprint, got)
	}
}

func TestThumbprint_invariantUnderExtraMembers(t *testing.T) {
	bare := &RSAKey{N: rfc7638N, E: rfc7638E}
	decorated := &RSAKey{
		KeyDescription: KeyDescription{KeyUse: UseSignature, KeyID: "2011-04-29"},
		N:              rfc7638N,
		E:              rfc7638E,
	}

	want, err := Thumbprint(bare)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Thumbprint(decorated)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("thumbprint must be invariant under use/kid: want %s, got %s", want, got)
	}
}

func TestMarshalUnmarshalRSAKey_roundtrip(t *testing.T) {
	k := &RSAKey{
		KeyDescription: KeyDescription{KeyUse: UseSignature, KeyID: "k1"},
		N:              rfc7638N,
		E:              rfc7638E,
	}

	data, err := MarshalKey(k)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := UnmarshalKey(data)
	if err != nil {
		t.Fatal(err)
	}

	rsaKey, ok := parsed.(*RSAKey)
	if !ok {
		t.Fatalf("want *RSAKey, got %T", parsed)
	}
	if rsaKey.N != k.N || rsaKey.E != k.E {
		t.Errorf("n/e not preserved")
	}
	if rsaKey.ID() != "k1" || rsaKey.Use() != UseSignature {
		t.Errorf("metadata not preserved")
	}
}

func TestUnmarshalKey_unsupportedKty(t *testing.T) {
	_, err := UnmarshalKey([]byte(`{"kty":"bogus"}`))
	if err == nil {
		t.Fatal("expected error for unsupported kty")
	}
}

func TestSet_selectByKeyID(t *testing.T) {
	set := Set{
		&RSAKey{KeyDescription: KeyDescription{KeyID: "a"}, N: rfc7638N, E: rfc7638E},
		&RSAKey{KeyDescription: KeyDescription{KeyID: "b"}, N: rfc7638N, E: rfc7638E},
	}

	kid := "b"
	found := set.First(Matcher{KeyID: &kid})
	if found == nil || found.ID() != "b" {
		t.Fatalf("expected to find key b, got %v", found)
	}
}

func TestSet_selectEmptyIsNotError(t *testing.T) {
	set := Set{&RSAKey{KeyDescription: KeyDescription{KeyID: "a"}, N: rfc7638N, E: rfc7638E}}

	kid := "absent"
	selected := set.Select(Matcher{KeyID: &kid})
	if len(selected) != 0 {
		t.Errorf("expected no matches, got %d", len(selected))
	}
}

func TestSet_jsonRoundtrip(t *testing.T) {
	set := Set{
		NewSymmetricKey([]byte("super-secret-key-material-32bytes!!")),
		&RSAKey{KeyDescription: KeyDescription{KeyID: "k1"}, N: rfc7638N, E: rfc7638E},
	}

	data, err := set.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	var parsed Set
	if err := parsed.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}

	if len(parsed) != 2 {
		t.Fatalf("want 2 keys, got %d", len(parsed))
	}
	if parsed[0].Type() != KeyTypeOct {
		t.Errorf("want first key oct, got %v", parsed[0].Type())
	}
	if parsed[1].Type() != KeyTypeRSA {
		t.Errorf("want second key RSA, got %v", parsed[1].Type())
	}
}
