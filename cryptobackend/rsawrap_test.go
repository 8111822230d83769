package cryptobackend

import (
	"bytes"
	"testing"

	"github.com/arkline/jose/jwa"
)

func TestRSAWrapUnwrap_roundtrip(t *testing.T) {
	algs := []jwa.KeyAlgorithm{jwa.RSA1_5, jwa.RSA_OAEP, jwa.RSA_OAEP_256}
	priv := generateTestRSAKey(t)

	for _, alg := range algs {
		b := New()
		cek, err := b.GenerateCEK(jwa.A128GCM)
		if err != nil {
			t.Fatal(err)
		}

		wrapped, err := b.RSAWrap(alg, &priv.PublicKey, cek)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		got, err := b.RSAUnwrap(alg, priv, wrapped, len(cek))
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if !bytes.Equal(got, cek) {
			t.Errorf("%s: got %x, want %x", alg, got, cek)
		}
	}
}

func TestRSAUnwrap_rsa15ReturnsSubstituteOnTamperedCiphertext(t *testing.T) {
	priv := generateTestRSAKey(t)
	b := New()
	cek, err := b.GenerateCEK(jwa.A128GCM)
	if err != nil {
		t.Fatal(err)
	}

	wrapped, err := b.RSAWrap(jwa.RSA1_5, &priv.PublicKey, cek)
	if err != nil {
		t.Fatal(err)
	}
	wrapped[0] ^= 0xff

	got, err := b.RSAUnwrap(jwa.RSA1_5, priv, wrapped, len(cek))
	if err != nil {
		t.Fatalf("RSA1_5 unwrap must never return an error, got %v", err)
	}
	if bytes.Equal(got, cek) {
		t.Error("tampered ciphertext must not decrypt back to the original CEK")
	}
	if len(got) != len(cek) {
		t.Errorf("substitute key length = %d, want %d", len(got), len(cek))
	}
}

func TestRSAUnwrap_oaepRejectsTamperedCiphertext(t *testing.T) {
	priv := generateTestRSAKey(t)
	b := New()
	cek, err := b.GenerateCEK(jwa.A128GCM)
	if err != nil {
		t.Fatal(err)
	}

	wrapped, err := b.RSAWrap(jwa.RSA_OAEP, &priv.PublicKey, cek)
	if err != nil {
		t.Fatal(err)
	}
	wrapped[0] ^= 0xff

	if _, err := b.RSAUnwrap(jwa.RSA_OAEP, priv, wrapped, len(cek)); err == nil {
		t.Error("expected RSA-OAEP unwrap of tampered ciphertext to fail")
	}
}
