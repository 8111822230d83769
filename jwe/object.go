package jwe

import (
	"strings"

	"github.com/arkline/jose/cryptobackend"
	"github.com/arkline/jose/header"
	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/jwk"
	"github.com/arkline/jose/joseerr"
)

// state tracks where an Object sits in its encryption lifecycle, mirroring
// the jws package's runtime-checked state machine.
type state int

const (
	stateUnencrypted state = iota
	stateEncrypted
	stateDecrypted
)

// Object represents a JSON Web Encryption value. Encrypt builds an Object
// directly in the Encrypted state, holding the ciphertext/tag/encryptedKey.
// ParseCompact yields an Object already
// in the Encrypted state whose plaintext is not yet available — call
// Decrypt before trusting Plaintext.
type Object struct {
	st state
	h  header.Header

	plaintext []byte

	encryptedKey []byte
	iv           []byte
	ciphertext   []byte
	tag          []byte
}

// Encrypt builds and encrypts a JWE Object for alg/enc over plaintext using
// key, returning it in the Encrypted state. aad is the JWE "Additional
// Authenticated Data" input (RFC 7516 section 2); pass nil when the compact
// serialization (which has no detached-AAD segment) is all that's needed.
func Encrypt(backend *cryptobackend.Backend, alg jwa.KeyAlgorithm, enc jwa.EncryptionAlgorithm, key jwk.Key, plaintext, aad []byte, opts EncryptOptions) (*Object, error) {
	hb := header.NewJWE(alg, enc)
	if opts.Type != "" {
		hb.Type(opts.Type)
	}
	if opts.ContentType != "" {
		hb.ContentType(opts.ContentType)
	}
	if opts.KeyID != "" {
		hb.KeyID(opts.KeyID)
	}
	if opts.Compression != "" {
		hb.Compression(opts.Compression)
	}

	cek, encryptedKey, err := deriveEncryptCEK(backend, hb, alg, enc, key, opts)
	if err != nil {
		return nil, err
	}

	h, err := hb.Build()
	if err != nil {
		return nil, err
	}

	iv, err := backend.GenerateIV(enc)
	if err != nil {
		return nil, err
	}

	content := plaintext
	if opts.Compression == jwa.Deflate {
		content, err = deflateCompress(plaintext)
		if err != nil {
			return nil, err
		}
	}

	aead := aadInput(h, aad)

	var ciphertext, authTag []byte
	switch {
	case enc.IsGCM():
		ciphertext, authTag, err = backend.GCMEncrypt(enc, cek, iv, aead, content)
	case enc.IsCBCHMAC():
		ciphertext, authTag, err = backend.CBCHMACEncrypt(enc, cek, iv, aead, content)
	default:
		err = joseerr.Newf(joseerr.AlgorithmUnsupported, "no content encryption for %s", enc)
	}
	if err != nil {
		return nil, err
	}

	return &Object{
		st:           stateEncrypted,
		h:            h,
		encryptedKey: encryptedKey,
		iv:           iv,
		ciphertext:   ciphertext,
		tag:          authTag,
	}, nil
}

// Header returns the object's header.
func (o *Object) Header() header.Header { return o.h }

// Plaintext returns the decrypted content. It is only populated once
// Decrypt has succeeded.
func (o *Object) Plaintext() []byte { return o.plaintext }

// IsDecrypted reports whether Decrypt has succeeded on this object.
func (o *Object) IsDecrypted() bool { return o.st == stateDecrypted }

// aadInput builds the AEAD additional authenticated data RFC 7516 section
// 5.1 step 14 specifies: ASCII(BASE64URL(UTF8(JWE Protected Header))),
// optionally extended with a detached AAD value joined by ".".
func aadInput(h header.Header, aad []byte) []byte {
	protected := []byte(h.ToBase64URL())
	if len(aad) == 0 {
		return protected
	}
	out := make([]byte, 0, len(protected)+1+len(aad))
	out = append(out, protected...)
	out = append(out, '.')
	out = append(out, aad...)
	return out
}

// Decrypt recovers the object's plaintext using key and transitions it to
// the Decrypted state on success. Decrypt may be retried after a prior
// failed attempt but never after a successful decryption.
func (o *Object) Decrypt(backend *cryptobackend.Backend, key jwk.Key, aad []byte) error {
	if o.st == stateDecrypted {
		return joseerr.New(joseerr.InvalidState, "jwe: Decrypt called on an already-decrypted object")
	}

	cek, err := resolveDecryptCEK(backend, o.h, key, o.encryptedKey)
	if err != nil {
		return err
	}

	enc := o.h.Enc
	aead := aadInput(o.h, aad)

	var content []byte
	switch {
	case enc.IsGCM():
		content, err = backend.GCMDecrypt(enc, cek, o.iv, aead, o.ciphertext, o.tag)
	case enc.IsCBCHMAC():
		content, err = backend.CBCHMACDecrypt(enc, cek, o.iv, aead, o.ciphertext, o.tag)
	default:
		err = joseerr.Newf(joseerr.AlgorithmUnsupported, "no content encryption for %s", enc)
	}
	if err != nil {
		return err
	}

	if o.h.Zip == jwa.Deflate {
		content, err = deflateDecompress(content)
		if err != nil {
			return err
		}
	}

	o.plaintext = content
	o.st = stateDecrypted
	return nil
}

// Serialize renders the object in the JWE compact serialization (RFC 7516
// section 7.1): five base64url segments separated by ".". It requires no
// detached AAD to have been used, since the compact form carries none.
func (o *Object) Serialize() (string, error) {
	if o.st == stateUnencrypted {
		return "", joseerr.New(joseerr.InvalidState, "jwe: Serialize called before Encrypt")
	}

	return strings.Join([]string{
		o.h.ToBase64URL(),
		base64url.Encode(o.encryptedKey),
		base64url.Encode(o.iv),
		base64url.Encode(o.ciphertext),
		base64url.Encode(o.tag),
	}, "."), nil
}

// ParseCompact parses a JWE compact serialization into an Object whose
// ciphertext is held but NOT decrypted. Callers must call Decrypt with the
// appropriate recipient key before trusting Plaintext.
func ParseCompact(compact string) (*Object, error) {
	parts := strings.Split(compact, ".")
	if len(parts) != 5 {
		return nil, joseerr.Newf(joseerr.Malformed, "invalid compact JWE: want 5 segments, got %d", len(parts))
	}

	h, err := header.Parse(parts[0])
	if err != nil {
		return nil, err
	}
	if h.Kind != header.KindJWE {
		return nil, joseerr.New(joseerr.Malformed, "compact input is not a JWE")
	}

	encryptedKey, err := decodeOptionalSegment(parts[1], "encrypted key")
	if err != nil {
		return nil, err
	}
	iv, err := decodeOptionalSegment(parts[2], "initialization vector")
	if err != nil {
		return nil, err
	}
	ciphertext, err := base64url.Decode(parts[3])
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, "invalid ciphertext segment", err)
	}
	tag, err := decodeOptionalSegment(parts[4], "authentication tag")
	if err != nil {
		return nil, err
	}

	return &Object{
		st:           stateEncrypted,
		h:            h,
		encryptedKey: encryptedKey,
		iv:           iv,
		ciphertext:   ciphertext,
		tag:          tag,
	}, nil
}

func decodeOptionalSegment(s, what string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64url.Decode(s)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, "invalid "+what+" segment", err)
	}
	return b, nil
}
