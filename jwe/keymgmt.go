package jwe

import (
	"crypto/ecdsa"

	"github.com/arkline/jose/cryptobackend"
	"github.com/arkline/jose/header"
	"github.com/arkline/jose/internal/base64url"
	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/jwk"
	"github.com/arkline/jose/joseerr"
)

const defaultPBES2Iterations = 310000

// EncryptOptions carries the header parameters and algorithm-specific
// inputs an Encrypt caller may need to set beyond the bare alg/enc pair.
type EncryptOptions struct {
	KeyID           string
	Type            string
	ContentType     string
	Compression     jwa.CompressionAlgorithm
	PartyUInfo      []byte // apu, consumed by ECDH-ES key agreement
	PartyVInfo      []byte // apv
	PBES2Iterations int    // p2c; defaults to defaultPBES2Iterations when 0
}

// deriveEncryptCEK produces the content encryption key for alg/enc against
// key, plus the encrypted_key segment (empty for direct-CEK algorithms),
// and applies any header parameters the key management algorithm must
// carry (epk/apu/apv/p2s/p2c/iv/tag) to hb before the header is built.
func deriveEncryptCEK(backend *cryptobackend.Backend, hb *header.Builder, alg jwa.KeyAlgorithm, enc jwa.EncryptionAlgorithm, key jwk.Key, opts EncryptOptions) (cek, encryptedKey []byte, err error) {
	switch {
	case alg == jwa.Direct:
		k, ok := key.(*jwk.SymmetricKey)
		if !ok {
			return nil, nil, joseerr.Newf(joseerr.KeyTypeMismatch, "dir requires an oct key, got %T", key)
		}
		cek, err = k.Bytes()
		if err != nil {
			return nil, nil, err
		}
		if len(cek)*8 != enc.CEKBits() {
			return nil, nil, joseerr.KeyLength("direct CEK length does not match "+string(enc), enc.CEKBits())
		}
		return cek, nil, nil

	case alg.IsECDH():
		return deriveECDHEncryptCEK(backend, hb, alg, enc, key, opts)

	case alg.IsRSAWrap():
		k, ok := key.(*jwk.RSAKey)
		if !ok {
			return nil, nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an RSA key, got %T", alg, key)
		}
		pub, err := k.PublicKey()
		if err != nil {
			return nil, nil, err
		}
		cek, err = backend.GenerateCEK(enc)
		if err != nil {
			return nil, nil, err
		}
		encryptedKey, err = backend.RSAWrap(alg, pub, cek)
		if err != nil {
			return nil, nil, err
		}
		return cek, encryptedKey, nil

	case alg.IsGCMKW():
		k, ok := key.(*jwk.SymmetricKey)
		if !ok {
			return nil, nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an oct key, got %T", alg, key)
		}
		kek, err := k.Bytes()
		if err != nil {
			return nil, nil, err
		}
		cek, err = backend.GenerateCEK(enc)
		if err != nil {
			return nil, nil, err
		}
		wrapped, iv, tag, err := backend.GCMKWEncrypt(alg, kek, cek)
		if err != nil {
			return nil, nil, err
		}
		hb.IV(iv).Tag(tag)
		return cek, wrapped, nil

	case alg.IsPBES2():
		return derivePBES2EncryptCEK(backend, hb, alg, enc, key, opts)

	case alg.AESKWBits() != 0:
		// Plain A*KW: no PBES2/ECDH stage in front of it (those algorithm
		// families are dispatched above and also report a nonzero
		// AESKWBits, since they feed the same wrap step as their second
		// stage).
		k, ok := key.(*jwk.SymmetricKey)
		if !ok {
			return nil, nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an oct key, got %T", alg, key)
		}
		kek, err := k.Bytes()
		if err != nil {
			return nil, nil, err
		}
		cek, err = backend.GenerateCEK(enc)
		if err != nil {
			return nil, nil, err
		}
		encryptedKey, err = backend.AESKWWrap(alg, kek, cek)
		if err != nil {
			return nil, nil, err
		}
		return cek, encryptedKey, nil

	default:
		return nil, nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "no key management for algorithm %s", alg)
	}
}

func derivePBES2EncryptCEK(backend *cryptobackend.Backend, hb *header.Builder, alg jwa.KeyAlgorithm, enc jwa.EncryptionAlgorithm, key jwk.Key, opts EncryptOptions) (cek, encryptedKey []byte, err error) {
	k, ok := key.(*jwk.SymmetricKey)
	if !ok {
		return nil, nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an oct key carrying the password, got %T", alg, key)
	}
	password, err := k.Bytes()
	if err != nil {
		return nil, nil, err
	}

	iterations := opts.PBES2Iterations
	if iterations == 0 {
		iterations = defaultPBES2Iterations
	}
	p2s, err := backend.GenerateRandom(16)
	if err != nil {
		return nil, nil, err
	}

	kek, err := backend.PBES2DeriveKey(alg, password, p2s, iterations)
	if err != nil {
		return nil, nil, err
	}

	cek, err = backend.GenerateCEK(enc)
	if err != nil {
		return nil, nil, err
	}
	encryptedKey, err = backend.AESKWWrap(alg, kek, cek)
	if err != nil {
		return nil, nil, err
	}

	hb.PBES2Salt(p2s).PBES2Count(iterations)
	return cek, encryptedKey, nil
}

func deriveECDHEncryptCEK(backend *cryptobackend.Backend, hb *header.Builder, alg jwa.KeyAlgorithm, enc jwa.EncryptionAlgorithm, key jwk.Key, opts EncryptOptions) (cek, encryptedKey []byte, err error) {
	k, ok := key.(*jwk.ECKey)
	if !ok {
		return nil, nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an EC key, got %T", alg, key)
	}
	recipientPub, err := k.PublicKey()
	if err != nil {
		return nil, nil, err
	}

	crv := jwa.EllipticCurve(k.Crv)
	ephemeral, err := backend.GenerateEphemeralECDH(crv)
	if err != nil {
		return nil, nil, err
	}

	z, err := backend.ECDHSharedSecret(crv, ephemeral, recipientPub)
	if err != nil {
		return nil, nil, err
	}

	epkJWK, err := ecdsaPublicKeyToJWK(&ephemeral.PublicKey, k.Crv)
	if err != nil {
		return nil, nil, err
	}
	hb.EphemeralPublicKey(epkJWK)
	if opts.PartyUInfo != nil {
		hb.PartyUInfo(opts.PartyUInfo)
	}
	if opts.PartyVInfo != nil {
		hb.PartyVInfo(opts.PartyVInfo)
	}

	if alg == jwa.ECDH_ES {
		derived := cryptobackend.ConcatKDF(z, cryptobackend.ConcatKDFParams{
			AlgorithmID: string(enc),
			PartyUInfo:  opts.PartyUInfo,
			PartyVInfo:  opts.PartyVInfo,
			KeyDataLen:  enc.CEKBits(),
		})
		return derived, nil, nil
	}

	kek := cryptobackend.ConcatKDF(z, cryptobackend.ConcatKDFParams{
		AlgorithmID: string(alg),
		PartyUInfo:  opts.PartyUInfo,
		PartyVInfo:  opts.PartyVInfo,
		KeyDataLen:  alg.AESKWBits(),
	})

	cek, err = backend.GenerateCEK(enc)
	if err != nil {
		return nil, nil, err
	}
	encryptedKey, err = backend.AESKWWrap(alg, kek, cek)
	if err != nil {
		return nil, nil, err
	}
	return cek, encryptedKey, nil
}

// resolveDecryptCEK is the decrypt-side mirror of deriveEncryptCEK: it
// recovers the CEK from the header parameters a producer set plus the
// recipient's own private key.
func resolveDecryptCEK(backend *cryptobackend.Backend, h header.Header, key jwk.Key, encryptedKey []byte) ([]byte, error) {
	alg := h.KeyAlgorithm()
	enc := h.Enc

	switch {
	case alg == jwa.Direct:
		k, ok := key.(*jwk.SymmetricKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "dir requires an oct key, got %T", key)
		}
		cek, err := k.Bytes()
		if err != nil {
			return nil, err
		}
		if len(cek)*8 != enc.CEKBits() {
			return nil, joseerr.KeyLength("direct CEK length does not match "+string(enc), enc.CEKBits())
		}
		return cek, nil

	case alg.IsECDH():
		return resolveECDHDecryptCEK(backend, h, alg, enc, key, encryptedKey)

	case alg.IsRSAWrap():
		k, ok := key.(*jwk.RSAKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an RSA key, got %T", alg, key)
		}
		priv, err := k.PrivateKey()
		if err != nil {
			return nil, err
		}
		return backend.RSAUnwrap(alg, priv, encryptedKey, enc.CEKBits()/8)

	case alg.IsGCMKW():
		k, ok := key.(*jwk.SymmetricKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an oct key, got %T", alg, key)
		}
		kek, err := k.Bytes()
		if err != nil {
			return nil, err
		}
		return backend.GCMKWDecrypt(alg, kek, encryptedKey, h.Iv, h.Tag)

	case alg.IsPBES2():
		k, ok := key.(*jwk.SymmetricKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an oct key carrying the password, got %T", alg, key)
		}
		password, err := k.Bytes()
		if err != nil {
			return nil, err
		}
		kek, err := backend.PBES2DeriveKey(alg, password, h.P2s, h.P2c)
		if err != nil {
			return nil, err
		}
		return backend.AESKWUnwrap(alg, kek, encryptedKey)

	case alg.AESKWBits() != 0:
		// Plain A*KW only; PBES2/ECDH combos are dispatched above despite
		// also reporting a nonzero AESKWBits for their second stage.
		k, ok := key.(*jwk.SymmetricKey)
		if !ok {
			return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an oct key, got %T", alg, key)
		}
		kek, err := k.Bytes()
		if err != nil {
			return nil, err
		}
		return backend.AESKWUnwrap(alg, kek, encryptedKey)

	default:
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "no key management for algorithm %s", alg)
	}
}

func resolveECDHDecryptCEK(backend *cryptobackend.Backend, h header.Header, alg jwa.KeyAlgorithm, enc jwa.EncryptionAlgorithm, key jwk.Key, encryptedKey []byte) ([]byte, error) {
	k, ok := key.(*jwk.ECKey)
	if !ok {
		return nil, joseerr.Newf(joseerr.KeyTypeMismatch, "%s requires an EC key, got %T", alg, key)
	}
	priv, err := k.PrivateKey()
	if err != nil {
		return nil, err
	}

	epk, err := jwkFromRawMessage(h.Epk)
	if err != nil {
		return nil, err
	}
	epkEC, ok := epk.(*jwk.ECKey)
	if !ok {
		return nil, joseerr.New(joseerr.HeaderInvalid, "epk header parameter is not an EC key")
	}
	ephemeralPub, err := epkEC.PublicKey()
	if err != nil {
		return nil, err
	}

	crv := jwa.EllipticCurve(k.Crv)
	z, err := backend.ECDHSharedSecret(crv, priv, ephemeralPub)
	if err != nil {
		return nil, err
	}

	if alg == jwa.ECDH_ES {
		return cryptobackend.ConcatKDF(z, cryptobackend.ConcatKDFParams{
			AlgorithmID: string(enc),
			PartyUInfo:  h.Apu,
			PartyVInfo:  h.Apv,
			KeyDataLen:  enc.CEKBits(),
		}), nil
	}

	kek := cryptobackend.ConcatKDF(z, cryptobackend.ConcatKDFParams{
		AlgorithmID: string(alg),
		PartyUInfo:  h.Apu,
		PartyVInfo:  h.Apv,
		KeyDataLen:  alg.AESKWBits(),
	})
	return backend.AESKWUnwrap(alg, kek, encryptedKey)
}

func ecdsaPublicKeyToJWK(pub *ecdsa.PublicKey, crv string) ([]byte, error) {
	byteLen, err := jwk.CurveByteLength(crv)
	if err != nil {
		return nil, err
	}
	k := &jwk.ECKey{
		Crv: crv,
		X:   base64url.Encode(fixedWidthBytes(pub.X.Bytes(), byteLen)),
		Y:   base64url.Encode(fixedWidthBytes(pub.Y.Bytes(), byteLen)),
	}
	return jwk.MarshalKey(k)
}

// fixedWidthBytes left-pads b with zeroes to exactly n bytes, matching the
// fixed-width coordinate encoding RFC 7518 section 6.2.1 requires.
func fixedWidthBytes(b []byte, n int) []byte {
	if len(b) >= n {
		return b[len(b)-n:]
	}
	padded := make([]byte, n)
	copy(padded[n-len(b):], b)
	return padded
}

func jwkFromRawMessage(raw []byte) (jwk.Key, error) {
	if len(raw) == 0 {
		return nil, joseerr.New(joseerr.HeaderInvalid, "missing epk header parameter")
	}
	return jwk.UnmarshalKey(raw)
}
