package cryptobackend

import (
	"bytes"
	"testing"

	"github.com/arkline/jose/jwa"
)

func TestECDHSharedSecret_agreesBothDirections(t *testing.T) {
	b := New()
	alice, err := b.GenerateEphemeralECDH(jwa.P256)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := b.GenerateEphemeralECDH(jwa.P256)
	if err != nil {
		t.Fatal(err)
	}

	z1, err := b.ECDHSharedSecret(jwa.P256, alice, &bob.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	z2, err := b.ECDHSharedSecret(jwa.P256, bob, &alice.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(z1, z2) {
		t.Errorf("shared secrets disagree: %x vs %x", z1, z2)
	}
}

func TestConcatKDF_derivesRequestedLength(t *testing.T) {
	z := bytes.Repeat([]byte{0x9e}, 32)
	params := ConcatKDFParams{
		AlgorithmID: "A128GCM",
		PartyUInfo:  []byte("Alice"),
		PartyVInfo:  []byte("Bob"),
		KeyDataLen:  128,
	}

	derived := ConcatKDF(z, params)
	if len(derived) != 16 {
		t.Fatalf("derived key length = %d, want 16", len(derived))
	}

	again := ConcatKDF(z, params)
	if !bytes.Equal(derived, again) {
		t.Error("ConcatKDF is not deterministic for identical inputs")
	}

	params.PartyVInfo = []byte("Carol")
	different := ConcatKDF(z, params)
	if bytes.Equal(derived, different) {
		t.Error("changing PartyVInfo must change the derived key")
	}
}

func TestConcatKDF_multiRoundDerivation(t *testing.T) {
	z := bytes.Repeat([]byte{0x01}, 32)
	params := ConcatKDFParams{AlgorithmID: "A256CBC-HS512", KeyDataLen: 512}

	derived := ConcatKDF(z, params)
	if len(derived) != 64 {
		t.Fatalf("derived key length = %d, want 64 for a 512-bit CEK spanning multiple SHA-256 rounds", len(derived))
	}
}
