package jwk

import (
	"encoding/json"
)

// Set implements a JWK Set as specified in RFC 7517 section 5.
type Set []Key

const ParamKeys = "keys"

// Has reports whether s contains at least one Key matching m.
func (s Set) Has(m Matcher) bool {
	return s.First(m) != nil
}

// First returns the first Key in s matching m, or nil if none matches.
func (s Set) First(m Matcher) Key {
	for _, k := range s {
		if m.Matches(k) {
			return k
		}
	}
	return nil
}

// Select returns, in s's natural order, every Key matching m. An empty
// result is not an error in itself; callers (the processor) decide how to
// report "no candidate key".
func (s Set) Select(m Matcher) []Key {
	var out []Key
	for _, k := range s {
		if m.Matches(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	type wrapper struct {
		Keys []Key `json:"keys"`
	}
	return json.Marshal(wrapper{Keys: s})
}

func (s *Set) UnmarshalJSON(data []byte) error {
	type rawSet struct {
		Keys []json.RawMessage `json:"keys"`
	}

	var w rawSet
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := make(Set, len(w.Keys))
	for i, raw := range w.Keys {
		k, err := UnmarshalKey(raw)
		if err != nil {
			return err
		}
		out[i] = k
	}
	*s = out
	return nil
}
