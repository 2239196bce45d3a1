// Package registry provides the administrative catalog of endpoint policies:
// which operation, scope, company types, and default roles an endpoint is
// served with. The engine does not need it; callers use it to pre-populate
// and validate contexts.
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"verdict/internal/policy/models"
	"verdict/internal/policy/scope"
	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// CacheTTL bounds how long loaded policies are served before a refresh. In
// regulated environments this should be short; adjust before production use.
var CacheTTL = 5 * time.Minute

// EndpointPolicy describes how one endpoint is evaluated.
type EndpointPolicy struct {
	Endpoint            string
	Operation           domain.OperationType
	Scope               domain.DataScope
	AllowedCompanyTypes []domain.CompanyType
	DefaultRoles        []string
}

// NewEndpointPolicy validates and constructs a registry entry.
//
// Errors: CodeInvalidInput for a blank endpoint or invalid operation; an
// unset scope is legal and falls back to inference at lookup time.
func NewEndpointPolicy(endpoint string, op domain.OperationType, sc domain.DataScope, companyTypes []domain.CompanyType, roles []string) (*EndpointPolicy, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "endpoint policy requires an endpoint")
	}
	if !op.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "endpoint policy requires a valid operation")
	}
	if sc != "" && !sc.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "endpoint policy scope is invalid")
	}
	for _, ct := range companyTypes {
		if !ct.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "endpoint policy company type is invalid")
		}
	}
	return &EndpointPolicy{
		Endpoint:            endpoint,
		Operation:           op,
		Scope:               sc,
		AllowedCompanyTypes: companyTypes,
		DefaultRoles:        roles,
	}, nil
}

// AllowsCompanyType reports whether the entry admits the company type. An
// empty allowlist admits everyone.
func (p *EndpointPolicy) AllowsCompanyType(ct domain.CompanyType) bool {
	if len(p.AllowedCompanyTypes) == 0 {
		return true
	}
	for _, allowed := range p.AllowedCompanyTypes {
		if allowed == ct {
			return true
		}
	}
	return false
}

// Loader supplies the policy catalog, typically from configuration or an
// administrative store.
type Loader interface {
	LoadPolicies(ctx context.Context) ([]*EndpointPolicy, error)
}

// StaticLoader serves a fixed policy list. Useful for tests and for
// deployments that ship the catalog with the binary.
type StaticLoader []*EndpointPolicy

func (l StaticLoader) LoadPolicies(context.Context) ([]*EndpointPolicy, error) {
	return l, nil
}

// Registry caches the loaded catalog with a TTL.
type Registry struct {
	loader Loader
	ttl    time.Duration

	mu       sync.RWMutex
	policies map[string]*EndpointPolicy
	loadedAt time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL overrides the refresh interval.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// New constructs a registry around a loader.
func New(loader Loader, opts ...Option) *Registry {
	r := &Registry{loader: loader, ttl: CacheTTL}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the entry for an endpoint, refreshing the catalog when
// stale. The boolean reports whether the endpoint is catalogued.
func (r *Registry) Lookup(ctx context.Context, endpoint string) (*EndpointPolicy, bool, error) {
	if err := r.refreshIfStale(ctx); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[endpoint]
	return p, ok, nil
}

// PopulateTarget builds a context target for an endpoint, preferring the
// catalogued operation and scope and falling back to HTTP-method mapping and
// endpoint scope inference.
func (r *Registry) PopulateTarget(ctx context.Context, endpoint, method string) (models.Target, error) {
	target := models.Target{
		Endpoint:  endpoint,
		Method:    method,
		Operation: domain.OperationForMethod(method),
		Scope:     scope.InferScopeFromEndpoint(endpoint),
	}

	p, ok, err := r.Lookup(ctx, endpoint)
	if err != nil {
		return models.Target{}, err
	}
	if ok {
		target.Operation = p.Operation
		if p.Scope != "" {
			target.Scope = p.Scope
		}
	}
	return target, nil
}

func (r *Registry) refreshIfStale(ctx context.Context) error {
	r.mu.RLock()
	fresh := r.policies != nil && time.Since(r.loadedAt) < r.ttl
	r.mu.RUnlock()
	if fresh {
		return nil
	}

	loaded, err := r.loader.LoadPolicies(ctx)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "load endpoint policies", err)
	}

	byEndpoint := make(map[string]*EndpointPolicy, len(loaded))
	for _, p := range loaded {
		byEndpoint[p.Endpoint] = p
	}

	r.mu.Lock()
	r.policies = byEndpoint
	r.loadedAt = time.Now()
	r.mu.Unlock()
	return nil
}
