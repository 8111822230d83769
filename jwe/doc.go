// Package jwe implements JSON Web Encryption (RFC 7516): producing and
// consuming compact-serialized encrypted objects across every registered
// key management algorithm (RFC 7518 section 4) and content encryption
// method (RFC 7518 section 5). Key management and content encryption are
// deliberately decoupled: keymgmt.go derives or unwraps the content
// encryption key for whichever "alg" the header names, and object.go
// always finishes with the same GCM/CBC-HMAC content encryption step
// regardless of how the CEK arrived.
package jwe
