package cryptobackend

import (
	"bytes"
	"testing"

	"github.com/arkline/jose/jwa"
)

func TestPBES2DeriveKey_deterministicForSameInputs(t *testing.T) {
	b := New(WithPBKDF2MinIterations(1000))
	password := []byte("my super secret password")
	p2s := bytes.Repeat([]byte{0x01}, 16)

	k1, err := b.PBES2DeriveKey(jwa.PBES2_HS256_A128KW, password, p2s, 1000)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := b.PBES2DeriveKey(jwa.PBES2_HS256_A128KW, password, p2s, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("PBES2DeriveKey is not deterministic for identical inputs")
	}
	if len(k1) != 16 {
		t.Errorf("derived key length = %d, want 16 for PBES2-HS256+A128KW", len(k1))
	}
}

func TestPBES2DeriveKey_saltBindsAlgorithmName(t *testing.T) {
	b := New(WithPBKDF2MinIterations(1000))
	password := []byte("my super secret password")
	p2s := bytes.Repeat([]byte{0x01}, 16)

	k256, err := b.PBES2DeriveKey(jwa.PBES2_HS256_A128KW, password, p2s, 1000)
	if err != nil {
		t.Fatal(err)
	}

	// Same password/salt/iterations but a different PRF+key size: the
	// algorithm name is mixed into the PBKDF2 salt, so derived keys must
	// differ even where key lengths happen to coincide.
	k384, err := b.PBES2DeriveKey(jwa.PBES2_HS384_A192KW, password, p2s, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(k256, k384[:16]) {
		t.Error("derived keys for different PBES2 algorithms must not collide")
	}
}

func TestPBES2DeriveKey_rejectsIterationsBelowFloor(t *testing.T) {
	b := New(WithPBKDF2MinIterations(310000))
	if _, err := b.PBES2DeriveKey(jwa.PBES2_HS256_A128KW, []byte("pw"), []byte("salt"), 10); err == nil {
		t.Error("expected an iteration count below the configured floor to be rejected")
	}
}
