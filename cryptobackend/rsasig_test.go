package cryptobackend

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/arkline/jose/jwa"
)

func generateTestRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return priv
}

func TestRSASignVerify_pkcs1v15Roundtrip(t *testing.T) {
	b := New()
	priv := generateTestRSAKey(t)
	data := []byte("hello, world")

	sig, err := b.RSASign(jwa.RS256, priv, data)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.RSAVerify(jwa.RS256, &priv.PublicKey, data, sig); err != nil {
		t.Errorf("verification of a genuine signature failed: %v", err)
	}
}

func TestRSASignVerify_pssRoundtrip(t *testing.T) {
	b := New()
	priv := generateTestRSAKey(t)
	data := []byte("hello, world")

	sig, err := b.RSASign(jwa.PS256, priv, data)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.RSAVerify(jwa.PS256, &priv.PublicKey, data, sig); err != nil {
		t.Errorf("verification of a genuine signature failed: %v", err)
	}
}

func TestRSAVerify_rejectsTamperedSignature(t *testing.T) {
	b := New()
	priv := generateTestRSAKey(t)
	data := []byte("hello, world")

	sig, err := b.RSASign(jwa.RS256, priv, data)
	if err != nil {
		t.Fatal(err)
	}
	sig[0] ^= 0xff

	if err := b.RSAVerify(jwa.RS256, &priv.PublicKey, data, sig); err == nil {
		t.Error("expected verification of a tampered signature to fail")
	}
}
