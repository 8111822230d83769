// Package joseerr defines the stable error taxonomy shared by every package
// in this module. All cryptographic and parsing failures are reported as an
// *Error carrying one of the Kinds declared here so that callers can branch
// with Of or Is regardless of which package raised the error.
package joseerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a failure, stable across all API
// surfaces of this module.
type Kind int

const (
	// Malformed indicates a syntactic defect: wrong segment count, bad
	// base64url, invalid JSON, a missing required header parameter.
	Malformed Kind = iota + 1

	// HeaderInvalid indicates a structural defect: crit contains a
	// registered name, alg=none where forbidden, an unknown algorithm in
	// strict mode.
	HeaderInvalid

	// AlgorithmUnsupported indicates the algorithm is recognized but this
	// build has no primitive for it.
	AlgorithmUnsupported

	// AlgorithmMismatch indicates header.alg is not in the configured
	// expected set.
	AlgorithmMismatch

	// KeyTypeMismatch indicates the JWK/key does not fit the class
	// required by the algorithm.
	KeyTypeMismatch

	// KeyLengthMismatch indicates the key length does not match the enc
	// or alg requirement. Expected carries the expected bit-length.
	KeyLengthMismatch

	// AlgorithmOrKeyNotFound indicates no candidate key was available.
	AlgorithmOrKeyNotFound

	// CriticalHeaderNotProcessed indicates crit names a parameter that is
	// neither processed nor deferred.
	CriticalHeaderNotProcessed

	// SignatureInvalid indicates a MAC or signature did not verify.
	SignatureInvalid

	// IntegrityFailure indicates an authenticated encryption tag mismatch
	// or key unwrap failure. Deliberately coarse.
	IntegrityFailure

	// InvalidState indicates a programming error: sign-after-sign,
	// verify-before-sign, and similar misuse of the object state machine.
	InvalidState

	// BackendError wraps an implementation fault from the crypto backend.
	BackendError

	// PlainObjectRejected indicates an unsecured (alg=none) object was
	// rejected by policy.
	PlainObjectRejected

	// ClaimInvalid indicates a registered or application JWT claim (RFC
	// 7519 section 4.1) failed validation: missing, wrong-typed, or
	// outside its allowed time window.
	ClaimInvalid
)

func (k Kind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case HeaderInvalid:
		return "header_invalid"
	case AlgorithmUnsupported:
		return "algorithm_unsupported"
	case AlgorithmMismatch:
		return "algorithm_mismatch"
	case KeyTypeMismatch:
		return "key_type_mismatch"
	case KeyLengthMismatch:
		return "key_length_mismatch"
	case AlgorithmOrKeyNotFound:
		return "algorithm_or_key_not_found"
	case CriticalHeaderNotProcessed:
		return "critical_header_not_processed"
	case SignatureInvalid:
		return "signature_invalid"
	case IntegrityFailure:
		return "integrity_failure"
	case InvalidState:
		return "invalid_state"
	case BackendError:
		return "backend_error"
	case PlainObjectRejected:
		return "plain_object_rejected"
	case ClaimInvalid:
		return "claim_invalid"
	default:
		return "unknown"
	}
}

// Error is the concrete error type produced by this module. Use Of or Is to
// classify it and errors.As to match it.
type Error struct {
	K        Kind
	Detail   string
	Expected int // expected bit-length, only meaningful for KeyLengthMismatch
	Wrapped  error
}

func (e *Error) Error() string {
	if e.Expected > 0 {
		return fmt.Sprintf("jose: %s: %s (expected %d bits)", e.K, e.Detail, e.Expected)
	}
	if e.Detail == "" {
		return fmt.Sprintf("jose: %s", e.K)
	}
	return fmt.Sprintf("jose: %s: %s", e.K, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// New creates an Error of the given kind with a detail message.
func New(k Kind, detail string) error {
	return &Error{K: k, Detail: detail}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(k Kind, format string, args ...any) error {
	return &Error{K: k, Detail: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a Kind, preserving err for errors.Unwrap/errors.As.
func Wrap(k Kind, detail string, err error) error {
	return &Error{K: k, Detail: detail, Wrapped: err}
}

// KeyLength reports a KeyLengthMismatch with the expected bit-length.
func KeyLength(detail string, expectedBits int) error {
	return &Error{K: KeyLengthMismatch, Detail: detail, Expected: expectedBits}
}

// Of extracts the Kind of err, or 0 if err does not carry one.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.K
	}
	return 0
}

// Is reports whether the first *Error in err's chain carries the given Kind.
// An *Error wrapped inside another *Error is not consulted.
func Is(err error, k Kind) bool {
	return Of(err) == k
}
