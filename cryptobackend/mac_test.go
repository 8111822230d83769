package cryptobackend

import (
	"bytes"
	"testing"

	"github.com/arkline/jose/jwa"
)

func TestMACSignVerify_roundtrip(t *testing.T) {
	b := New()
	key := bytes.Repeat([]byte{0x0b}, 32)
	data := []byte("hello, world")

	sig, err := b.MACSign(jwa.HS256, key, data)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.MACVerify(jwa.HS256, key, data, sig); err != nil {
		t.Errorf("verification of a genuine signature failed: %v", err)
	}
}

func TestMACVerify_rejectsTamperedSignature(t *testing.T) {
	b := New()
	key := bytes.Repeat([]byte{0x0b}, 32)
	data := []byte("hello, world")

	sig, err := b.MACSign(jwa.HS256, key, data)
	if err != nil {
		t.Fatal(err)
	}
	sig[0] ^= 0xff

	if err := b.MACVerify(jwa.HS256, key, data, sig); err == nil {
		t.Error("expected verification of a tampered signature to fail")
	}
}

func TestMACSign_rejectsShortKey(t *testing.T) {
	b := New()
	if _, err := b.MACSign(jwa.HS256, []byte("short"), []byte("data")); err == nil {
		t.Error("expected a key shorter than the hash output to be rejected")
	}
}

func TestConstantTimeEqual(t *testing.T) {
	cases := []struct {
		a, b []byte
		want bool
	}{
		{[]byte("abc"), []byte("abc"), true},
		{[]byte("abc"), []byte("abd"), false},
		{[]byte("abc"), []byte("ab"), false},
		{[]byte{}, []byte{}, true},
	}
	for _, c := range cases {
		if got := ConstantTimeEqual(c.a, c.b); got != c.want {
			t.Errorf("ConstantTimeEqual(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
