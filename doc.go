// Package jose implements the top-level JOSE object model: Payload (the
// multi-view value carried by every signed or encrypted object) and the
// PlainObject/JWSObject/JWEObject facade over the jws and jwe packages.
// Signing, verification, encryption, and decryption themselves live in
// jws/jwe; this package is the thin, spec-shaped surface an application
// actually imports.
package jose
