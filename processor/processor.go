// Package processor implements the end-to-end verify/decrypt pipeline (spec
// section 4.I): split, parse, policy-check, select candidate keys, and try
// each one via jws/jwe until one succeeds or the set is exhausted. A
// Processor is built once with its accepted algorithms and key source, then
// reused across requests — the same shape as the teacher's signer/verifier
// factories, one level up.
package processor

import (
	"context"
	"strings"

	"github.com/arkline/jose/cryptobackend"
	"github.com/arkline/jose/header"
	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/jwe"
	"github.com/arkline/jose/jwk"
	"github.com/arkline/jose/joseerr"
	"github.com/arkline/jose/jws"
)

// Processor validates and unwraps compact-serialized JWS or JWE values
// under a fixed, up-front policy: which algorithms are acceptable, whether
// unsecured Plain objects are allowed, which critical header parameters an
// embedder has promised to handle itself, and where candidate keys come
// from.
type Processor struct {
	backend *cryptobackend.Backend

	jwsAlgorithms map[jwa.JWSAlgorithm]bool
	jweAlgorithms map[jwa.KeyAlgorithm]bool
	allowPlain    bool
	deferredCrit  map[string]bool
	keys          jwk.Set

	onCandidateFailure func(kid string, err error)
}

// Option configures a Processor at construction time.
type Option func(*Processor)

// ExpectJWSAlgorithms restricts Process to JWS headers whose alg is one of
// algs. A header naming any other alg is rejected before key selection —
// the algorithm-confusion defense spec section 4.I requires. Without this
// option every JWS other than an allowed Plain object is rejected with
// AlgorithmMismatch.
func ExpectJWSAlgorithms(algs ...jwa.JWSAlgorithm) Option {
	return func(p *Processor) {
		for _, a := range algs {
			p.jwsAlgorithms[a] = true
		}
	}
}

// ExpectJWEAlgorithms restricts Process to JWE headers whose alg is one of
// algs.
func ExpectJWEAlgorithms(algs ...jwa.KeyAlgorithm) Option {
	return func(p *Processor) {
		for _, a := range algs {
			p.jweAlgorithms[a] = true
		}
	}
}

// AllowPlain permits unsecured (alg=none) JWS objects, which Process
// otherwise rejects with PlainObjectRejected.
func AllowPlain() Option {
	return func(p *Processor) { p.allowPlain = true }
}

// DeferCriticalHeaders marks names as handled by the embedder, so a
// "crit" entry naming one of them does not fail CriticalHeaderNotProcessed.
// The built-in processed set ({"b64"} for JWS) is always honored in
// addition to names passed here.
func DeferCriticalHeaders(names ...string) Option {
	return func(p *Processor) {
		for _, n := range names {
			p.deferredCrit[n] = true
		}
	}
}

// KeySource supplies the candidate keys Process selects from.
func KeySource(set jwk.Set) Option {
	return func(p *Processor) { p.keys = set }
}

// WithBackend overrides the cryptobackend.Backend used for every
// cryptographic operation. Defaults to cryptobackend.New().
func WithBackend(backend *cryptobackend.Backend) Option {
	return func(p *Processor) { p.backend = backend }
}

// OnCandidateFailure registers a hook invoked after each candidate key that
// fails verification/decryption, naming its kid and the error it produced.
// It never affects control flow and exists purely so an embedder can
// audit-log key-selection attempts without this package deciding how or
// where to log.
func OnCandidateFailure(f func(kid string, err error)) Option {
	return func(p *Processor) { p.onCandidateFailure = f }
}

// New builds a Processor from opts.
func New(opts ...Option) *Processor {
	p := &Processor{
		backend:       cryptobackend.New(),
		jwsAlgorithms: map[jwa.JWSAlgorithm]bool{},
		jweAlgorithms: map[jwa.KeyAlgorithm]bool{},
		deferredCrit:  map[string]bool{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// builtinProcessedCrit names the header parameters this package itself
// understands and enforces without requiring the embedder to defer them.
var builtinProcessedCrit = map[string]bool{"b64": true}

// Process implements spec section 4.I steps 1-7 over compact, a compact
// JWS or JWE serialization. ctx is honored for cancellation between
// candidate-key attempts; no single cryptographic operation blocks.
func (p *Processor) Process(ctx context.Context, compact []byte) ([]byte, error) {
	segments := strings.Count(string(compact), ".") + 1

	switch segments {
	case 3:
		return p.processJWS(ctx, string(compact))
	case 5:
		return p.processJWE(ctx, string(compact))
	default:
		return nil, joseerr.Newf(joseerr.Malformed, "compact input has %d segments, want 3 (JWS) or 5 (JWE)", segments)
	}
}

func (p *Processor) checkCrit(h header.Header) error {
	for _, name := range h.Crit {
		if builtinProcessedCrit[name] {
			continue
		}
		if p.deferredCrit[name] {
			continue
		}
		return joseerr.Newf(joseerr.CriticalHeaderNotProcessed, "critical header parameter %q is not handled", name)
	}
	return nil
}

func (p *Processor) processJWS(ctx context.Context, compact string) ([]byte, error) {
	obj, err := jws.ParseCompact(compact)
	if err != nil {
		return nil, err
	}
	h := obj.Header()

	if h.Kind == header.KindPlain {
		if !p.allowPlain {
			return nil, joseerr.New(joseerr.PlainObjectRejected, "unsecured (alg=none) JWS objects are rejected by policy")
		}
	} else if !p.jwsAlgorithms[h.JWSAlgorithm()] {
		return nil, joseerr.Newf(joseerr.AlgorithmMismatch, "JWS algorithm %s is not in the accepted set", h.Alg)
	}

	if err := p.checkCrit(h); err != nil {
		return nil, err
	}

	if h.Kind == header.KindPlain {
		return obj.Payload(), nil
	}

	candidates := p.keys.Select(jwk.MatcherForJWS(h))
	if len(candidates) == 0 {
		return nil, joseerr.New(joseerr.AlgorithmOrKeyNotFound, "no candidate key matches the JWS header")
	}

	for _, key := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		verifier, err := jws.NewVerifier(p.backend, h.JWSAlgorithm(), key)
		if err != nil {
			p.reportFailure(key, err)
			continue
		}
		if err := obj.Verify(verifier); err != nil {
			p.reportFailure(key, err)
			continue
		}
		return obj.Payload(), nil
	}

	return nil, joseerr.New(joseerr.SignatureInvalid, "no candidate key verified the JWS signature")
}

func (p *Processor) processJWE(ctx context.Context, compact string) ([]byte, error) {
	obj, err := jwe.ParseCompact(compact)
	if err != nil {
		return nil, err
	}
	h := obj.Header()

	if len(p.jweAlgorithms) > 0 && !p.jweAlgorithms[h.KeyAlgorithm()] {
		return nil, joseerr.Newf(joseerr.AlgorithmMismatch, "JWE algorithm %s is not in the accepted set", h.Alg)
	}

	if err := p.checkCrit(h); err != nil {
		return nil, err
	}

	candidates := p.keys.Select(jwk.MatcherForJWE(h))
	if len(candidates) == 0 {
		return nil, joseerr.New(joseerr.AlgorithmOrKeyNotFound, "no candidate key matches the JWE header")
	}

	for _, key := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := obj.Decrypt(p.backend, key, nil); err != nil {
			p.reportFailure(key, err)
			continue
		}
		return obj.Plaintext(), nil
	}

	return nil, joseerr.New(joseerr.IntegrityFailure, "no candidate key decrypted the JWE value")
}

func (p *Processor) reportFailure(key jwk.Key, err error) {
	if p.onCandidateFailure != nil {
		p.onCandidateFailure(key.ID(), err)
	}
}
