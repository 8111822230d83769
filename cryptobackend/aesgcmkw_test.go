package cryptobackend

import (
	"bytes"
	"testing"

	"github.com/arkline/jose/jwa"
)

func TestGCMKWEncryptDecrypt_roundtrip(t *testing.T) {
	b := New()
	kek := bytes.Repeat([]byte{0x11}, 16)
	cek, err := b.GenerateCEK(jwa.A128GCM)
	if err != nil {
		t.Fatal(err)
	}

	wrapped, iv, tag, err := b.GCMKWEncrypt(jwa.A128GCMKW, kek, cek)
	if err != nil {
		t.Fatal(err)
	}

	got, err := b.GCMKWDecrypt(jwa.A128GCMKW, kek, wrapped, iv, tag)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, cek) {
		t.Errorf("got %x, want %x", got, cek)
	}
}

func TestGCMKWDecrypt_rejectsTamperedTag(t *testing.T) {
	b := New()
	kek := bytes.Repeat([]byte{0x11}, 32)
	cek := bytes.Repeat([]byte{0x22}, 32)

	wrapped, iv, tag, err := b.GCMKWEncrypt(jwa.A256GCMKW, kek, cek)
	if err != nil {
		t.Fatal(err)
	}
	tag[0] ^= 0xff

	if _, err := b.GCMKWDecrypt(jwa.A256GCMKW, kek, wrapped, iv, tag); err == nil {
		t.Error("expected unwrap with a tampered tag to fail")
	}
}
