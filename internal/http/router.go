// Package httpapi is the thin HTTP layer over the policy engine. Handlers
// delegate to the engine and query services; no policy logic lives here.
package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "verdict/internal/audit/handler"
	"verdict/internal/policy/engine"
	granthandler "verdict/internal/policy/grant/handler"
	"verdict/internal/policy/models"
	"verdict/internal/policy/registry"
	"verdict/internal/policy/subject"
	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/requestcontext"
)

// Handler holds the dependencies the HTTP surface needs.
type Handler struct {
	engine   *engine.Engine
	subjects *subject.Builder
	registry *registry.Registry
	readyz   func() error
}

// Option configures a Handler.
type Option func(*Handler)

// WithReadiness sets the readiness probe. Without one, /readyz always passes.
func WithReadiness(probe func() error) Option {
	return func(h *Handler) { h.readyz = probe }
}

// NewHandler constructs the HTTP layer.
func NewHandler(eng *engine.Engine, subjects *subject.Builder, reg *registry.Registry, opts ...Option) *Handler {
	h := &Handler{engine: eng, subjects: subjects, registry: reg}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter wires the evaluation endpoint, the admin surfaces, and the
// operational probes.
func NewRouter(h *Handler, auditHandler *audithandler.Handler, grantHandler *granthandler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestMetadata)

	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/v1/evaluate", h.handleEvaluate)

	if auditHandler != nil {
		r.Mount("/admin/audit", auditHandler.Routes())
	}
	if grantHandler != nil {
		r.Mount("/admin/grants", grantHandler.Routes())
	}
	return r
}

// requestMetadata stamps correlation and client metadata into the request
// context so every decision and audit record can be traced back.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		ctx = requestcontext.WithCorrelationID(ctx, correlationID)
		ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
		ctx = requestcontext.WithClientMetadata(ctx, clientIP(r), r.UserAgent())

		w.Header().Set("X-Correlation-ID", correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// evaluateRequest describes the access being checked. The subject comes from
// the bearer token, never from the body.
type evaluateRequest struct {
	Endpoint          string `json:"endpoint"`
	Method            string `json:"method"`
	Operation         string `json:"operation,omitempty"`
	Scope             string `json:"scope,omitempty"`
	ResourceOwnerID   string `json:"resource_owner_id,omitempty"`
	ResourceCompanyID string `json:"resource_company_id,omitempty"`
}

type evaluateResponse struct {
	Allowed       bool   `json:"allowed"`
	Reason        string `json:"reason"`
	PolicyVersion string `json:"policy_version"`
	CorrelationID string `json:"correlation_id"`
	DecidedAt     string `json:"decided_at"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, err := httputil.BearerToken(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sub, err := h.subjects.FromToken(token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req evaluateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	target, err := h.buildTarget(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resource, err := buildResource(req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	pctx, err := models.NewPolicyContext(sub, target, resource, models.Trace{
		CorrelationID: requestcontext.CorrelationID(ctx),
		RequestID:     requestcontext.RequestID(ctx),
		RequestIP:     requestcontext.ClientIP(ctx),
		UserAgent:     requestcontext.UserAgent(ctx),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	decision := h.engine.Evaluate(ctx, pctx)
	httputil.WriteJSON(w, http.StatusOK, evaluateResponse{
		Allowed:       decision.Allowed,
		Reason:        decision.Reason,
		PolicyVersion: decision.PolicyVersion,
		CorrelationID: decision.CorrelationID,
		DecidedAt:     decision.DecidedAt.UTC().Format(time.RFC3339Nano),
	})
}

// buildTarget resolves the operation and scope: explicit request fields win,
// then the endpoint registry, then inference from method and path.
func (h *Handler) buildTarget(ctx context.Context, req evaluateRequest) (models.Target, error) {
	var target models.Target
	var err error

	if h.registry != nil {
		target, err = h.registry.PopulateTarget(ctx, req.Endpoint, req.Method)
		if err != nil {
			return models.Target{}, err
		}
	} else {
		target = models.Target{
			Endpoint:  req.Endpoint,
			Method:    req.Method,
			Operation: domain.OperationForMethod(req.Method),
		}
	}

	if req.Operation != "" {
		op, err := domain.ParseOperationType(req.Operation)
		if err != nil {
			return models.Target{}, err
		}
		target.Operation = op
	}
	if req.Scope != "" {
		sc, err := domain.ParseDataScope(req.Scope)
		if err != nil {
			return models.Target{}, err
		}
		target.Scope = sc
	}
	return target, nil
}

func buildResource(req evaluateRequest) (models.Resource, error) {
	var resource models.Resource

	if req.ResourceOwnerID != "" {
		ownerID, err := domain.ParseUserID(req.ResourceOwnerID)
		if err != nil {
			return models.Resource{}, dErrors.Wrap(dErrors.CodeInvalidInput, "resource owner id", err)
		}
		resource.OwnerID = ownerID
	}
	if req.ResourceCompanyID != "" {
		companyID, err := domain.ParseCompanyID(req.ResourceCompanyID)
		if err != nil {
			return models.Resource{}, dErrors.Wrap(dErrors.CodeInvalidInput, "resource company id", err)
		}
		resource.CompanyID = companyID
	}
	return resource, nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.readyz != nil {
		if err := h.readyz(); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
