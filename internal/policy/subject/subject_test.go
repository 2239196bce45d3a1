package subject

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

var testSecret = []byte("test-secret")

type SubjectSuite struct {
	suite.Suite
	builder *Builder
	userID  string
}

func TestSubjectSuite(t *testing.T) {
	suite.Run(t, new(SubjectSuite))
}

func (s *SubjectSuite) SetupTest() {
	builder, err := NewBuilder(func(*jwt.Token) (any, error) { return testSecret, nil })
	s.Require().NoError(err)
	s.builder = builder
	s.userID = uuid.NewString()
}

func (s *SubjectSuite) signToken(claims *AccessClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	s.Require().NoError(err)
	return token
}

func (s *SubjectSuite) validClaims() *AccessClaims {
	return &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		CompanyID:   uuid.NewString(),
		CompanyType: "supplier",
		Roles:       []string{"manager", " viewer ", ""},
	}
}

func (s *SubjectSuite) TestNewBuilder() {
	_, err := NewBuilder(nil)
	s.Require().Error(err)
}

func (s *SubjectSuite) TestFromToken() {
	s.Run("verified token builds subject", func() {
		subject, err := s.builder.FromToken(s.signToken(s.validClaims()))
		s.Require().NoError(err)
		s.Equal(s.userID, subject.UserID.String())
		s.Equal(domain.CompanyTypeSupplier, subject.CompanyType)
		s.Equal([]string{"manager", "viewer"}, subject.Roles, "roles are trimmed and blanks dropped")
	})

	s.Run("wrong key rejected", func() {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, s.validClaims()).SignedString([]byte("other"))
		s.Require().NoError(err)

		_, err = s.builder.FromToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("expired token rejected", func() {
		claims := s.validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := s.builder.FromToken(s.signToken(claims))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("token without expiry rejected", func() {
		claims := s.validClaims()
		claims.ExpiresAt = nil

		_, err := s.builder.FromToken(s.signToken(claims))
		s.Require().Error(err)
	})

	s.Run("unexpected algorithm rejected", func() {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, s.validClaims()).SignedString(testSecret)
		s.Require().NoError(err)

		_, err = s.builder.FromToken(token)
		s.Require().Error(err)
	})

	s.Run("garbage rejected", func() {
		_, err := s.builder.FromToken("not.a.token")
		s.Require().Error(err)
	})
}

func (s *SubjectSuite) TestFromClaims() {
	s.Run("invalid subject rejected", func() {
		claims := s.validClaims()
		claims.Subject = "not-a-uuid"
		_, err := s.builder.FromClaims(claims)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("invalid company id rejected", func() {
		claims := s.validClaims()
		claims.CompanyID = "nope"
		_, err := s.builder.FromClaims(claims)
		s.Require().Error(err)
	})

	s.Run("invalid company type rejected", func() {
		claims := s.validClaims()
		claims.CompanyType = "franchise"
		_, err := s.builder.FromClaims(claims)
		s.Require().Error(err)
	})

	s.Run("company fields are optional", func() {
		claims := s.validClaims()
		claims.CompanyID = ""
		claims.CompanyType = ""

		subject, err := s.builder.FromClaims(claims)
		s.Require().NoError(err)
		s.True(subject.CompanyID.IsNil())
		s.Empty(subject.CompanyType)
	})
}

func (s *SubjectSuite) TestDeviceSummary() {
	s.Run("empty header", func() {
		s.Equal("unknown", DeviceSummary(""))
	})

	s.Run("desktop chrome", func() {
		summary := DeviceSummary("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
		s.Contains(summary, "Chrome 126")
		s.NotContains(summary, "(mobile)")
	})

	s.Run("mobile safari flagged", func() {
		summary := DeviceSummary("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
		s.Contains(summary, "(mobile)")
	})

	s.Run("bot summarized by name", func() {
		summary := DeviceSummary("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		s.Contains(summary, "bot")
	})
}
