package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

type countingLoader struct {
	policies []*EndpointPolicy
	err      error
	calls    int
}

func (l *countingLoader) LoadPolicies(context.Context) ([]*EndpointPolicy, error) {
	l.calls++
	return l.policies, l.err
}

type RegistrySuite struct {
	suite.Suite
	ctx context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *RegistrySuite) newPolicy(endpoint string) *EndpointPolicy {
	p, err := NewEndpointPolicy(endpoint, domain.OperationWrite, domain.ScopeCrossCompany, nil, nil)
	s.Require().NoError(err)
	return p
}

func (s *RegistrySuite) TestNewEndpointPolicy() {
	s.Run("rejects blank endpoint", func() {
		_, err := NewEndpointPolicy("  ", domain.OperationRead, "", nil, nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects invalid operation", func() {
		_, err := NewEndpointPolicy("/api/orders", "browse", "", nil, nil)
		s.Require().Error(err)
	})

	s.Run("rejects invalid scope", func() {
		_, err := NewEndpointPolicy("/api/orders", domain.OperationRead, "tenant", nil, nil)
		s.Require().Error(err)
	})

	s.Run("rejects invalid company type", func() {
		_, err := NewEndpointPolicy("/api/orders", domain.OperationRead, "", []domain.CompanyType{"franchise"}, nil)
		s.Require().Error(err)
	})

	s.Run("unset scope is legal", func() {
		p, err := NewEndpointPolicy("/api/orders", domain.OperationRead, "", nil, nil)
		s.Require().NoError(err)
		s.Empty(p.Scope)
	})
}

func (s *RegistrySuite) TestAllowsCompanyType() {
	p := s.newPolicy("/api/orders")
	s.True(p.AllowsCompanyType(domain.CompanyTypeCustomer), "empty allowlist admits everyone")

	restricted, err := NewEndpointPolicy("/api/po", domain.OperationWrite, "",
		[]domain.CompanyType{domain.CompanyTypeInternal, domain.CompanyTypeSupplier}, nil)
	s.Require().NoError(err)
	s.True(restricted.AllowsCompanyType(domain.CompanyTypeSupplier))
	s.False(restricted.AllowsCompanyType(domain.CompanyTypeCustomer))
}

func (s *RegistrySuite) TestLookup() {
	loader := &countingLoader{policies: []*EndpointPolicy{s.newPolicy("/api/orders")}}
	r := New(loader)

	s.Run("finds catalogued endpoint", func() {
		p, ok, err := r.Lookup(s.ctx, "/api/orders")
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal(domain.OperationWrite, p.Operation)
	})

	s.Run("reports unknown endpoint", func() {
		_, ok, err := r.Lookup(s.ctx, "/api/unknown")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("serves from cache within ttl", func() {
		calls := loader.calls
		_, _, err := r.Lookup(s.ctx, "/api/orders")
		s.Require().NoError(err)
		s.Equal(calls, loader.calls)
	})

	s.Run("refreshes after ttl", func() {
		short := New(loader, WithTTL(time.Nanosecond))
		_, _, err := short.Lookup(s.ctx, "/api/orders")
		s.Require().NoError(err)
		calls := loader.calls

		time.Sleep(time.Millisecond)
		_, _, err = short.Lookup(s.ctx, "/api/orders")
		s.Require().NoError(err)
		s.Greater(loader.calls, calls)
	})

	s.Run("loader failure surfaces", func() {
		broken := New(&countingLoader{err: errors.New("catalog unavailable")})
		_, _, err := broken.Lookup(s.ctx, "/api/orders")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *RegistrySuite) TestPopulateTarget() {
	loader := &countingLoader{policies: []*EndpointPolicy{s.newPolicy("/api/orders")}}
	r := New(loader)

	s.Run("catalogued endpoint wins over inference", func() {
		target, err := r.PopulateTarget(s.ctx, "/api/orders", "GET")
		s.Require().NoError(err)
		s.Equal(domain.OperationWrite, target.Operation)
		s.Equal(domain.ScopeCrossCompany, target.Scope)
	})

	s.Run("unknown endpoint falls back to method and path inference", func() {
		target, err := r.PopulateTarget(s.ctx, "/api/me/profile", "GET")
		s.Require().NoError(err)
		s.Equal(domain.OperationRead, target.Operation)
		s.Equal(domain.ScopeSelf, target.Scope)
	})

	s.Run("mutating method infers write", func() {
		target, err := r.PopulateTarget(s.ctx, "/api/widgets", "POST")
		s.Require().NoError(err)
		s.Equal(domain.OperationWrite, target.Operation)
		s.Equal(domain.ScopeCompany, target.Scope)
	})
}
