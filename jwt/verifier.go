package jwt

import (
	"time"

	"github.com/arkline/jose/joseerr"
	"github.com/arkline/jose/jws"
)

// Verifier defines the interface for types that verify validity of a
// given token.
type Verifier interface {
	Verify(token *Token) error
}

// VerifierFunc is a convenience type that wraps a single function as a Verifier.
type VerifierFunc func(token *Token) error

func (f VerifierFunc) Verify(token *Token) error {
	return f(token)
}

// --

// Signature returns a verifier that verifies the token's signature using the given signature method.
func Signature(signatureVerifier jws.Verifier) Verifier {
	return VerifierFunc(func(token *Token) error {
		if err := token.VerifySignature(signatureVerifier); err != nil {
			return joseerr.Wrap(joseerr.SignatureInvalid, "token signature did not verify", err)
		}
		return nil
	})
}

// Issuer returns a verifier that verifies the issuer for a given value.
func Issuer(issuer string) Verifier {
	return VerifierFunc(func(token *Token) error {
		iss := token.StandardClaims().Issuer
		if iss != issuer {
			return joseerr.Newf(joseerr.ClaimInvalid, "unexpected issuer: %s", iss)
		}
		return nil
	})
}

// Audience returns a verifier that verifies whether the audience claim contains a given value.
func Audience(audience string) Verifier {
	return VerifierFunc(func(token *Token) error {
		for _, aud := range token.StandardClaims().Audience {
			if aud == audience {
				return nil
			}
		}
		return joseerr.Newf(joseerr.ClaimInvalid, "missing audience: %s", audience)
	})
}

// NotBefore returns a verifier that verifies that a token is not used before the given not before time.
// The function accepts a leeway to compensate for differences in server time.
// If the token does not carry a not before claim, this verifier rejects the token.
func NotBefore(leeway time.Duration) Verifier {
	return VerifierFunc(func(token *Token) error {
		sc := token.StandardClaims()
		if sc.NotBefore == 0 {
			return joseerr.New(joseerr.ClaimInvalid, "token is missing nbf")
		}

		now := time.Now().Add(leeway)
		if sc.GetNotBefore().After(now) {
			return joseerr.Newf(joseerr.ClaimInvalid, "token used before nbf: %s", sc.GetNotBefore().Format(time.RFC3339))
		}

		return nil
	})
}

// ExpirationTime returns a verifier that verifies that a token is not expired.
// The function accepts a leeway to compensate for differences in server time.
// If the token does not carry a expiration time claim, this verifier rejects the token.
func ExpirationTime(leeway time.Duration) Verifier {
	return VerifierFunc(func(token *Token) error {
		sc := token.StandardClaims()
		if sc.ExpirationTime == 0 {
			return joseerr.New(joseerr.ClaimInvalid, "token is missing exp")
		}

		now := time.Now().Add(-leeway)

		if sc.GetExpirationTime().Before(now) {
			return joseerr.Newf(joseerr.ClaimInvalid, "token used after exp: %s", sc.GetExpirationTime().Format(time.RFC3339))
		}

		return nil
	})
}

// MaxAge returns a verifier that verifies that a token is not older than the given duration.
// The verifier uses the issued at claim. If the token does not carry an issued at claim, this verifier
// rejects the token.
func MaxAge(maxAge time.Duration) Verifier {
	return VerifierFunc(func(token *Token) error {
		sc := token.StandardClaims()
		if sc.IssuedAt == 0 {
			return joseerr.New(joseerr.ClaimInvalid, "token is missing iat")
		}

		if sc.GetIssuedAt().Before(time.Now().Add(-maxAge)) {
			return joseerr.Newf(joseerr.ClaimInvalid, "token too old: %s", sc.GetIssuedAt().Format(time.RFC3339))
		}

		return nil
	})
}
