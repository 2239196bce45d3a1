// Package subject builds policy subjects from authenticated access tokens.
// Verification lives here so the engine can trust that a subject's identity,
// company, and roles came from a signed token rather than request input.
package subject

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mssola/useragent"

	"verdict/internal/policy/models"
	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// AccessClaims is the token shape this service accepts. Subject carries the
// user ID; the company fields and roles are custom claims stamped at login.
type AccessClaims struct {
	jwt.RegisteredClaims
	CompanyID   string   `json:"company_id,omitempty"`
	CompanyType string   `json:"company_type,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// Builder turns verified claims into policy subjects.
type Builder struct {
	keyFunc jwt.Keyfunc
	methods []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithSigningMethods restricts accepted JWT algorithms. Defaults to HS256.
func WithSigningMethods(methods ...string) Option {
	return func(b *Builder) {
		if len(methods) > 0 {
			b.methods = methods
		}
	}
}

// NewBuilder constructs a subject builder around a verification key source.
func NewBuilder(keyFunc jwt.Keyfunc, opts ...Option) (*Builder, error) {
	if keyFunc == nil {
		return nil, fmt.Errorf("key func is required")
	}
	b := &Builder{
		keyFunc: keyFunc,
		methods: []string{jwt.SigningMethodHS256.Alg()},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// FromToken verifies an access token and builds the subject it describes.
//
// Errors: CodeUnauthorized when the token fails verification or is expired;
// CodeInvalidInput when verified claims do not form a valid subject. Company
// fields are optional in the token; when absent the subject carries a nil
// company and the guard denies with its null-company reason.
func (b *Builder) FromToken(tokenString string) (models.Subject, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, b.keyFunc,
		jwt.WithValidMethods(b.methods),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Subject{}, dErrors.Wrap(dErrors.CodeUnauthorized, "verify access token", err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return models.Subject{}, dErrors.New(dErrors.CodeUnauthorized, "unexpected token claims")
	}
	return b.FromClaims(claims)
}

// FromClaims builds a subject from already-verified claims.
func (b *Builder) FromClaims(claims *AccessClaims) (models.Subject, error) {
	userID, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return models.Subject{}, dErrors.Wrap(dErrors.CodeInvalidInput, "token subject", err)
	}

	subject := models.Subject{
		UserID: userID,
		Roles:  normalizeRoles(claims.Roles),
	}

	if claims.CompanyID != "" {
		companyID, err := domain.ParseCompanyID(claims.CompanyID)
		if err != nil {
			return models.Subject{}, dErrors.Wrap(dErrors.CodeInvalidInput, "token company id", err)
		}
		subject.CompanyID = companyID
	}
	if claims.CompanyType != "" {
		companyType, err := domain.ParseCompanyType(claims.CompanyType)
		if err != nil {
			return models.Subject{}, dErrors.Wrap(dErrors.CodeInvalidInput, "token company type", err)
		}
		subject.CompanyType = companyType
	}
	return subject, nil
}

func normalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

// DeviceSummary condenses a raw User-Agent header into the short form stored
// with audit records, e.g. "Chrome 126 / Linux" or "bot:Googlebot".
func DeviceSummary(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}

	ua := useragent.New(rawUA)
	if ua.Bot() {
		name, _ := ua.Browser()
		if name == "" {
			return "bot"
		}
		return "bot:" + name
	}

	name, version := ua.Browser()
	if name == "" {
		return "unknown"
	}
	if idx := strings.Index(version, "."); idx > 0 {
		version = version[:idx]
	}

	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := ua.OSInfo().Name; os != "" {
		summary += " / " + os
	}
	if ua.Mobile() {
		summary += " (mobile)"
	}
	return summary
}
