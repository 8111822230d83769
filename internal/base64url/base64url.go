// Package base64url implements the Base64URL encoding without padding
// defined in RFC 7515 section 2 (https://datatracker.ietf.org/doc/html/rfc7515#section-2),
// which is itself RFC 4648 section 5 (https://datatracker.ietf.org/doc/html/rfc4648#section-5)
// with trailing '=' padding omitted.
package base64url

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

var encNoPad = base64.URLEncoding.WithPadding(base64.NoPadding)

// Encode encodes data using Base64URL with no padding.
func Encode(data []byte) string {
	return encNoPad.EncodeToString(data)
}

// Decode decodes a Base64URL string. Padding is accepted if present (some
// producers emit it despite RFC 7515's "no padding" rule) but embedded line
// breaks or any character outside the URL-safe alphabet are rejected.
func Decode(s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, fmt.Errorf("base64url: embedded line break")
	}

	if b, err := encNoPad.DecodeString(s); err == nil {
		return b, nil
	}

	return base64.URLEncoding.DecodeString(s)
}

// CanonicalJSON renders members as a JSON object with keys sorted
// lexicographically by their Unicode code points and no insignificant
// whitespace, as required by RFC 7638 section 3.1 for computing a JWK
// thumbprint.
func CanonicalJSON(members map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')

		vb, err := json.Marshal(members[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')

	return []byte(buf.String()), nil
}
