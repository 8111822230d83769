package jwe

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/arkline/jose/joseerr"
)

// deflateCompress implements the "DEF" zip algorithm (RFC 7518 section
// 4.1.3): raw DEFLATE, RFC 1951, with no zlib or gzip framing.
func deflateCompress(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "failed to initialize DEFLATE compressor", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "DEFLATE compression failed", err)
	}
	if err := w.Close(); err != nil {
		return nil, joseerr.Wrap(joseerr.BackendError, "DEFLATE compression failed", err)
	}
	return buf.Bytes(), nil
}

func deflateDecompress(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, joseerr.Wrap(joseerr.Malformed, "invalid DEFLATE content", err)
	}
	return out, nil
}
