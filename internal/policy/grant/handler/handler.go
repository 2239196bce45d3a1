// Package handler exposes grant administration over HTTP. Mount it behind
// admin authentication; it is not a public API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"verdict/internal/policy/grant"
	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/platform/sentinel"
)

// Handler serves grant create/revoke/list for administrators.
type Handler struct {
	service *grant.Service
}

func New(service *grant.Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the grant admin router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Delete("/{grantID}", h.revoke)
	r.Get("/user/{userID}", h.listByUser)
	return r
}

type createRequest struct {
	UserID         string `json:"user_id"`
	Endpoint       string `json:"endpoint"`
	Operation      string `json:"operation"`
	PermissionType string `json:"permission_type"`
	ExpiresAt      string `json:"expires_at,omitempty"`
}

type grantResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Endpoint  string `json:"endpoint"`
	Operation string `json:"operation"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	userID, err := domain.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	op, err := domain.ParseOperationType(req.Operation)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	typ, err := domain.ParsePermissionType(req.PermissionType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(dErrors.CodeBadRequest, "parse expires_at", err))
			return
		}
		expiresAt = &t
	}

	g, err := h.service.Create(r.Context(), userID, req.Endpoint, op, typ, expiresAt)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(g))
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	grantID, err := domain.ParseGrantID(chi.URLParam(r, "grantID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	userID, err := domain.ParseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Revoke(r.Context(), grantID, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.Wrap(dErrors.CodeNotFound, "grant", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	grants, err := h.service.List(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]grantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, toResponse(g))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func toResponse(g *grant.Grant) grantResponse {
	resp := grantResponse{
		ID:        g.ID.String(),
		UserID:    g.UserID.String(),
		Endpoint:  g.Endpoint,
		Operation: g.Operation.String(),
		Type:      g.Type.String(),
		Status:    g.Status.String(),
		CreatedAt: g.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if g.ExpiresAt != nil {
		resp.ExpiresAt = g.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	return resp
}
