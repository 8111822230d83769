package cryptobackend

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/arkline/jose/jwa"
)

func TestECDSASignVerify_roundtrip(t *testing.T) {
	cases := []struct {
		alg   jwa.JWSAlgorithm
		curve elliptic.Curve
	}{
		{jwa.ES256, elliptic.P256()},
		{jwa.ES384, elliptic.P384()},
		{jwa.ES512, elliptic.P521()},
	}

	for _, c := range cases {
		priv, err := ecdsa.GenerateKey(c.curve, rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		b := New()
		data := []byte("hello, world")

		sig, err := b.ECDSASign(c.alg, priv, data)
		if err != nil {
			t.Fatalf("%s: %v", c.alg, err)
		}
		if err := b.ECDSAVerify(c.alg, &priv.PublicKey, data, sig); err != nil {
			t.Errorf("%s: verification of a genuine signature failed: %v", c.alg, err)
		}
	}
}

func TestECDSAVerify_rejectsTamperedSignature(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	b := New()
	data := []byte("hello, world")

	sig, err := b.ECDSASign(jwa.ES256, priv, data)
	if err != nil {
		t.Fatal(err)
	}
	sig[0] ^= 0xff

	if err := b.ECDSAVerify(jwa.ES256, &priv.PublicKey, data, sig); err == nil {
		t.Error("expected verification of a tampered signature to fail")
	}
}

func TestSecp256k1SignVerify_roundtrip(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	b := New()
	data := []byte("hello, world")

	sig, err := b.Secp256k1Sign(priv, data)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig) != 64 {
		t.Fatalf("expected a 64-byte raw R||S signature, got %d bytes", len(sig))
	}
	if err := b.Secp256k1Verify(priv.PubKey(), data, sig); err != nil {
		t.Errorf("verification of a genuine signature failed: %v", err)
	}
}

func TestSecp256k1Verify_rejectsTamperedSignature(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	b := New()
	data := []byte("hello, world")

	sig, err := b.Secp256k1Sign(priv, data)
	if err != nil {
		t.Fatal(err)
	}
	sig[0] ^= 0xff

	if err := b.Secp256k1Verify(priv.PubKey(), data, sig); err == nil {
		t.Error("expected verification of a tampered signature to fail")
	}
}
