package jwk

import (
	"testing"

	"github.com/arkline/jose/header"
	"github.com/arkline/jose/jwa"
	"github.com/stretchr/testify/suite"
)

// SetSelectionTestSuite exercises Set.Has/First/Select against a mixed-kty
// key set, the same matcher-driven candidate selection the processor
// package relies on.
type SetSelectionTestSuite struct {
	suite.Suite

	set Set
}

func TestSetSelectionTestSuite(t *testing.T) {
	suite.Run(t, new(SetSelectionTestSuite))
}

func (s *SetSelectionTestSuite) SetupTest() {
	oct := NewSymmetricKey([]byte("shared-secret"))
	oct.KeyDescription.KeyID = "hmac-1"
	oct.KeyDescription.KeyAlgorithm = string(jwa.HS256)

	rsaKey := &RSAKey{
		KeyDescription: KeyDescription{KeyID: "rsa-1", KeyAlgorithm: string(jwa.RS256)},
		N:              rfc7638N,
		E:              rfc7638E,
	}

	s.set = Set{oct, rsaKey}
}

func (s *SetSelectionTestSuite) TestSelectByAlgorithm() {
	h, err := header.New(jwa.HS256).Build()
	s.Require().NoError(err)

	m := MatcherForJWS(h)
	selected := s.set.Select(m)
	s.Require().Len(selected, 1)
	s.Equal("hmac-1", selected[0].ID())
}

func (s *SetSelectionTestSuite) TestHasReturnsFalseForUnknownAlgorithm() {
	h, err := header.New(jwa.ES256).Build()
	s.Require().NoError(err)

	s.False(s.set.Has(MatcherForJWS(h)))
}

func (s *SetSelectionTestSuite) TestFirstPicksNaturalOrder() {
	h, err := header.New(jwa.RS256).Build()
	s.Require().NoError(err)

	key := s.set.First(MatcherForJWS(h))
	s.Require().NotNil(key)
	s.Equal("rsa-1", key.ID())
}
