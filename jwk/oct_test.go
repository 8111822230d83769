package jwk

import "testing"

func TestSymmetricKey_roundtrip(t *testing.T) {
	secret := []byte("a 32 byte symmetric secret!!!!!")
	k := NewSymmetricKey(secret)

	data, err := MarshalKey(k)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := UnmarshalKey(data)
	if err != nil {
		t.Fatal(err)
	}

	symKey, ok := parsed.(*SymmetricKey)
	if !ok {
		t.Fatalf("want *SymmetricKey, got %T", parsed)
	}

	got, err := symKey.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(secret) {
		t.Errorf("secret bytes not preserved")
	}
}

func TestSymmetricKey_rejectsMissingK(t *testing.T) {
	_, err := UnmarshalKey([]byte(`{"kty":"oct"}`))
	if err == nil {
		t.Fatal("expected error for missing k")
	}
}
