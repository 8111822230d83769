package cryptobackend

import (
	"bytes"
	"testing"

	"github.com/arkline/jose/jwa"
)

func TestGCMEncryptDecrypt_roundtrip(t *testing.T) {
	b := New()
	cek, err := b.GenerateCEK(jwa.A128GCM)
	if err != nil {
		t.Fatal(err)
	}
	iv, err := b.GenerateIV(jwa.A128GCM)
	if err != nil {
		t.Fatal(err)
	}
	aad := []byte("header")
	plaintext := []byte("the true sign of intelligence is not knowledge but imagination")

	ct, tag, err := b.GCMEncrypt(jwa.A128GCM, cek, iv, aad, plaintext)
	if err != nil {
		t.Fatal(err)
	}

	got, err := b.GCMDecrypt(jwa.A128GCM, cek, iv, aad, ct, tag)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("got %q, want %q", got, plaintext)
	}
}

func TestGCMDecrypt_rejectsTamperedTag(t *testing.T) {
	b := New()
	cek, _ := b.GenerateCEK(jwa.A256GCM)
	iv, _ := b.GenerateIV(jwa.A256GCM)
	aad := []byte("header")

	ct, tag, err := b.GCMEncrypt(jwa.A256GCM, cek, iv, aad, []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	tag[0] ^= 0xff

	if _, err := b.GCMDecrypt(jwa.A256GCM, cek, iv, aad, ct, tag); err == nil {
		t.Error("expected decryption with a tampered tag to fail")
	}
}

func TestGCMEncrypt_rejectsWrongCEKLength(t *testing.T) {
	b := New()
	iv, _ := b.GenerateIV(jwa.A128GCM)
	if _, _, err := b.GCMEncrypt(jwa.A128GCM, make([]byte, 10), iv, nil, []byte("x")); err == nil {
		t.Error("expected a CEK of the wrong length to be rejected")
	}
}
