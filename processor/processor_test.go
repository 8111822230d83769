package processor

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/arkline/jose/cryptobackend"
	"github.com/arkline/jose/header"
	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/jwe"
	"github.com/arkline/jose/jwk"
	"github.com/arkline/jose/joseerr"
	"github.com/arkline/jose/jws"
	"github.com/stretchr/testify/require"
)

// hmacKey builds an oct test key carrying alg=HS256, matching the "alg"
// predicate jwk.MatcherForJWS always sets from the header.
func hmacKey(secret string) *jwk.SymmetricKey {
	k := jwk.NewSymmetricKey([]byte(secret))
	k.KeyAlgorithm = string(jwa.HS256)
	return k
}

func signedCompact(t *testing.T, backend *cryptobackend.Backend, alg jwa.JWSAlgorithm, key jwk.Key, payload []byte) string {
	t.Helper()
	h, err := header.New(alg).Build()
	if err != nil {
		t.Fatal(err)
	}
	obj, err := jws.New(h, payload)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := jws.NewSigner(backend, alg, key)
	if err != nil {
		t.Fatal(err)
	}
	if err := obj.Sign(signer); err != nil {
		t.Fatal(err)
	}
	compact, err := obj.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	return compact
}

func TestProcess_jwsSuccess(t *testing.T) {
	backend := cryptobackend.New()
	secret := hmacKey("a shared processor secret")
	compact := signedCompact(t, backend, jwa.HS256, secret, []byte(`{"hello":"world"}`))

	p := New(
		WithBackend(backend),
		ExpectJWSAlgorithms(jwa.HS256),
		KeySource(jwk.Set{secret}),
	)

	payload, err := p.Process(context.Background(), []byte(compact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != `{"hello":"world"}` {
		t.Errorf("got payload %q", payload)
	}
}

func TestProcess_jwsWrongKeySkipsToNextCandidate(t *testing.T) {
	backend := cryptobackend.New()
	signingKey := hmacKey("the real secret")
	decoyKey := hmacKey("not the right secret")
	compact := signedCompact(t, backend, jwa.HS256, signingKey, []byte("payload"))

	p := New(
		WithBackend(backend),
		ExpectJWSAlgorithms(jwa.HS256),
		KeySource(jwk.Set{decoyKey, signingKey}),
	)

	payload, err := p.Process(context.Background(), []byte(compact))
	if err != nil {
		t.Fatalf("expected the second candidate key to verify, got error: %v", err)
	}
	if string(payload) != "payload" {
		t.Errorf("got payload %q", payload)
	}
}

func TestProcess_jwsAllCandidatesFailYieldsSignatureInvalid(t *testing.T) {
	backend := cryptobackend.New()
	signingKey := hmacKey("the real secret")
	wrongKey := hmacKey("definitely wrong")
	compact := signedCompact(t, backend, jwa.HS256, signingKey, []byte("payload"))

	p := New(
		WithBackend(backend),
		ExpectJWSAlgorithms(jwa.HS256),
		KeySource(jwk.Set{wrongKey}),
	)

	_, err := p.Process(context.Background(), []byte(compact))
	if joseerr.Of(err) != joseerr.SignatureInvalid {
		t.Errorf("got error %v, want SignatureInvalid", err)
	}
}

func TestProcess_jwsAlgorithmConfusionRejectedBeforeKeySelection(t *testing.T) {
	backend := cryptobackend.New()
	secret := hmacKey("a shared secret")
	compact := signedCompact(t, backend, jwa.HS256, secret, []byte("payload"))

	p := New(
		WithBackend(backend),
		ExpectJWSAlgorithms(jwa.RS256), // HS256 is not in the accepted set
		KeySource(jwk.Set{secret}),
	)

	_, err := p.Process(context.Background(), []byte(compact))
	if joseerr.Of(err) != joseerr.AlgorithmMismatch {
		t.Errorf("got error %v, want AlgorithmMismatch", err)
	}
}

func TestProcess_plainRejectedByDefault(t *testing.T) {
	h, err := header.New(jwa.None).Build()
	if err != nil {
		t.Fatal(err)
	}
	obj, err := jws.New(h, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	backend := cryptobackend.New()
	signer, err := jws.NewSigner(backend, jwa.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := obj.Sign(signer); err != nil {
		t.Fatal(err)
	}
	compact, err := obj.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	p := New(WithBackend(backend))
	_, err = p.Process(context.Background(), []byte(compact))
	if joseerr.Of(err) != joseerr.PlainObjectRejected {
		t.Errorf("got error %v, want PlainObjectRejected", err)
	}

	pAllowed := New(WithBackend(backend), AllowPlain())
	payload, err := pAllowed.Process(context.Background(), []byte(compact))
	if err != nil {
		t.Fatalf("expected AllowPlain to accept the object, got: %v", err)
	}
	if string(payload) != "payload" {
		t.Errorf("got payload %q", payload)
	}
}

func TestProcess_criticalHeaderNotProcessedRejected(t *testing.T) {
	h, err := header.New(jwa.HS256).Critical("custom-ext").Custom("custom-ext", "value").Build()
	if err != nil {
		t.Fatal(err)
	}
	backend := cryptobackend.New()
	secret := hmacKey("a shared secret")
	obj, err := jws.New(h, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	signer, err := jws.NewSigner(backend, jwa.HS256, secret)
	if err != nil {
		t.Fatal(err)
	}
	if err := obj.Sign(signer); err != nil {
		t.Fatal(err)
	}
	compact, err := obj.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	p := New(WithBackend(backend), ExpectJWSAlgorithms(jwa.HS256), KeySource(jwk.Set{secret}))
	_, err = p.Process(context.Background(), []byte(compact))
	if joseerr.Of(err) != joseerr.CriticalHeaderNotProcessed {
		t.Errorf("got error %v, want CriticalHeaderNotProcessed", err)
	}

	pDeferred := New(WithBackend(backend), ExpectJWSAlgorithms(jwa.HS256), KeySource(jwk.Set{secret}), DeferCriticalHeaders("custom-ext"))
	if _, err := pDeferred.Process(context.Background(), []byte(compact)); err != nil {
		t.Errorf("expected a deferred critical header to be accepted, got: %v", err)
	}
}

func TestProcess_noMatchingKeyYieldsAlgorithmOrKeyNotFound(t *testing.T) {
	backend := cryptobackend.New()
	secret := hmacKey("a shared secret")
	compact := signedCompact(t, backend, jwa.HS256, secret, []byte("payload"))

	p := New(WithBackend(backend), ExpectJWSAlgorithms(jwa.HS256), KeySource(jwk.Set{}))
	_, err := p.Process(context.Background(), []byte(compact))
	if joseerr.Of(err) != joseerr.AlgorithmOrKeyNotFound {
		t.Errorf("got error %v, want AlgorithmOrKeyNotFound", err)
	}
}

func TestProcess_jweSuccess(t *testing.T) {
	backend := cryptobackend.New()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	key := &jwk.RSAKey{
		KeyDescription: jwk.KeyDescription{KeyAlgorithm: string(jwa.RSA_OAEP_256)},
		N:              base64url.Encode(priv.PublicKey.N.Bytes()),
		E:              base64url.Encode([]byte{0x01, 0x00, 0x01}),
		D:              base64url.Encode(priv.D.Bytes()),
	}

	obj, err := jwe.Encrypt(backend, jwa.RSA_OAEP_256, jwa.A256GCM, key, []byte("classified"), nil, jwe.EncryptOptions{})
	if err != nil {
		t.Fatal(err)
	}
	compact, err := obj.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	p := New(
		WithBackend(backend),
		ExpectJWEAlgorithms(jwa.RSA_OAEP_256),
		KeySource(jwk.Set{key}),
	)
	plaintext, err := p.Process(context.Background(), []byte(compact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(plaintext) != "classified" {
		t.Errorf("got plaintext %q", plaintext)
	}
}

func TestProcess_malformedSegmentCount(t *testing.T) {
	p := New()
	_, err := p.Process(context.Background(), []byte("one.two.three.four"))
	if joseerr.Of(err) != joseerr.Malformed {
		t.Errorf("got error %v, want Malformed", err)
	}
}

func TestProcess_cancelledContextStopsCandidateIteration(t *testing.T) {
	backend := cryptobackend.New()
	signingKey := hmacKey("the real secret")
	wrongKey := hmacKey("wrong")
	compact := signedCompact(t, backend, jwa.HS256, signingKey, []byte("payload"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Microsecond)

	p := New(WithBackend(backend), ExpectJWSAlgorithms(jwa.HS256), KeySource(jwk.Set{wrongKey, signingKey}))
	if _, err := p.Process(ctx, []byte(compact)); err == nil {
		t.Error("expected a cancelled context to abort candidate iteration")
	}
}

func TestProcess_onCandidateFailureHookInvoked(t *testing.T) {
	backend := cryptobackend.New()
	signingKey := hmacKey("the real secret")
	wrongKey := hmacKey("wrong")
	wrongKey.KeyID = "wrong-key"
	compact := signedCompact(t, backend, jwa.HS256, signingKey, []byte("payload"))

	var failedKIDs []string
	p := New(
		WithBackend(backend),
		ExpectJWSAlgorithms(jwa.HS256),
		KeySource(jwk.Set{wrongKey, signingKey}),
		OnCandidateFailure(func(kid string, err error) { failedKIDs = append(failedKIDs, kid) }),
	)
	if _, err := p.Process(context.Background(), []byte(compact)); err != nil {
		t.Fatal(err)
	}
	if len(failedKIDs) != 1 || failedKIDs[0] != "wrong-key" {
		t.Errorf("got failed candidates %v, want [wrong-key]", failedKIDs)
	}
}

// TestProcess_algorithmAllowlist is table-driven over allowlist
// configurations for an HS256 token (its own alg alone, alongside others, a
// disjoint set, none configured), using testify/require for the table's
// terse assertions.
func TestProcess_algorithmAllowlist(t *testing.T) {
	backend := cryptobackend.New()
	signingKey := hmacKey("table-driven secret")
	compact := signedCompact(t, backend, jwa.HS256, signingKey, []byte("payload"))

	cases := []struct {
		name      string
		allowed   []jwa.JWSAlgorithm
		expectErr bool
	}{
		{"allowed algorithm accepted", []jwa.JWSAlgorithm{jwa.HS256}, false},
		{"allowed alongside others accepted", []jwa.JWSAlgorithm{jwa.RS256, jwa.HS256, jwa.ES256}, false},
		{"disjoint allowlist rejected", []jwa.JWSAlgorithm{jwa.RS256}, true},
		{"empty allowlist rejected", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := []Option{WithBackend(backend), KeySource(jwk.Set{signingKey})}
			if len(tc.allowed) > 0 {
				opts = append(opts, ExpectJWSAlgorithms(tc.allowed...))
			}
			p := New(opts...)

			payload, err := p.Process(context.Background(), []byte(compact))
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, []byte("payload"), payload)
		})
	}
}
