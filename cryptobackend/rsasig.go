package cryptobackend

import (
	"crypto"
	"crypto/rsa"
	"hash"

	"github.com/arkline/jose/jwa"
	"github.com/arkline/jose/joseerr"
)

func rsaHash(alg jwa.JWSAlgorithm) (crypto.Hash, func() hash.Hash, bool) {
	switch alg {
	case jwa.RS256, jwa.PS256:
		return crypto.SHA256, crypto.SHA256.New, true
	case jwa.RS384, jwa.PS384:
		return crypto.SHA384, crypto.SHA384.New, true
	case jwa.RS512, jwa.PS512:
		return crypto.SHA512, crypto.SHA512.New, true
	default:
		return 0, nil, false
	}
}

// RSASign signs data with priv using alg, which must be an RS* or PS*
// algorithm (RFC 7518 section 3.3/3.5).
func (b *Backend) RSASign(alg jwa.JWSAlgorithm, priv *rsa.PrivateKey, data []byte) ([]byte, error) {
	ch, hf, ok := rsaHash(alg)
	if !ok {
		return nil, joseerr.Newf(joseerr.AlgorithmUnsupported, "no RSA signature primitive for %s", alg)
	}

	h := hf()
	h.Write(data)
	digest := h.Sum(nil)

	if alg.IsRSAPSS() {
		opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: ch}
		return rsa.SignPSS(b.rand, priv, ch, digest, opts)
	}
	return rsa.SignPKCS1v15(b.rand, priv, ch, digest)
}

// RSAVerify verifies sig over data against pub using alg.
func (b *Backend) RSAVerify(alg jwa.JWSAlgorithm, pub *rsa.PublicKey, data, sig []byte) error {
	ch, hf, ok := rsaHash(alg)
	if !ok {
		return joseerr.Newf(joseerr.AlgorithmUnsupported, "no RSA signature primitive for %s", alg)
	}

	h := hf()
	h.Write(data)
	digest := h.Sum(nil)

	var err error
	if alg.IsRSAPSS() {
		opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: ch}
		err = rsa.VerifyPSS(pub, ch, digest, sig, opts)
	} else {
		err = rsa.VerifyPKCS1v15(pub, ch, digest, sig)
	}
	if err != nil {
		return joseerr.Wrap(joseerr.SignatureInvalid, "RSA signature verification failed", err)
	}
	return nil
}
