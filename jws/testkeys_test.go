package jws

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/jwk"
)

func generateTestRSAKeyForJWS(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return priv
}

func rsaJWKFromPrivateKey(priv *rsa.PrivateKey) *jwk.RSAKey {
	return &jwk.RSAKey{
		N: base64url.Encode(priv.PublicKey.N.Bytes()),
		E: base64url.Encode(bigEndianUint(priv.PublicKey.E)),
		D: base64url.Encode(priv.D.Bytes()),
	}
}

func bigEndianUint(n int) []byte {
	if n <= 0xFFFFFF {
		return []byte{byte(n >> 16), byte(n >> 8), byte(n)}
	}
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}
