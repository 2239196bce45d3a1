// Package handler exposes the audit query surface over HTTP for operator
// tooling. Mount it behind admin authentication; it is not a public API.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"verdict/internal/audit"
	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/httputil"
)

const defaultWindow = 24 * time.Hour

// Handler serves read-only audit queries.
type Handler struct {
	queries *audit.QueryService
}

func New(queries *audit.QueryService) *Handler {
	return &Handler{queries: queries}
}

// Routes returns the audit admin router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/decisions/user/{userID}", h.recentByUser)
	r.Get("/decisions/denies", h.denies)
	r.Get("/decisions/stats", h.stats)
	r.Get("/decisions/chain/{correlationID}", h.chain)
	return r
}

func (h *Handler) recentByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.queries.RecentByUser(r.Context(), userID, limitParam(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(records))
}

func (h *Handler) denies(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.queries.DeniesSince(r.Context(), since, limitParam(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(records))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.queries.StatsSince(r.Context(), since)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statsResponse{
		Total:         stats.Total,
		Allowed:       stats.Allowed,
		Denied:        stats.Denied,
		FailClosed:    stats.FailClosed,
		AvgLatencyMs:  stats.AvgLatencyMs,
		DenyByReason:  stats.DenyByReason,
		WindowStart:   stats.WindowStart.UTC().Format(time.RFC3339),
		PolicyVersion: stats.PolicyVersion,
	})
}

func (h *Handler) chain(w http.ResponseWriter, r *http.Request) {
	records, err := h.queries.ChainByCorrelation(r.Context(), chi.URLParam(r, "correlationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(records))
}

func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

func sinceParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return time.Now().Add(-defaultWindow), nil
	}
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.Wrap(dErrors.CodeBadRequest, "parse since parameter", err)
	}
	return since, nil
}

type recordResponse struct {
	ID            string   `json:"id"`
	CorrelationID string   `json:"correlation_id"`
	RequestID     string   `json:"request_id,omitempty"`
	UserID        string   `json:"user_id"`
	CompanyID     string   `json:"company_id,omitempty"`
	CompanyType   string   `json:"company_type,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	Endpoint      string   `json:"endpoint"`
	Method        string   `json:"method,omitempty"`
	Operation     string   `json:"operation"`
	Scope         string   `json:"scope,omitempty"`
	Allowed       bool     `json:"allowed"`
	Reason        string   `json:"reason"`
	PolicyVersion string   `json:"policy_version"`
	LatencyMs     int64    `json:"latency_ms"`
	RequestIP     string   `json:"request_ip,omitempty"`
	Device        string   `json:"device,omitempty"`
	DecidedAt     string   `json:"decided_at"`
}

type statsResponse struct {
	Total         int64            `json:"total"`
	Allowed       int64            `json:"allowed"`
	Denied        int64            `json:"denied"`
	FailClosed    int64            `json:"fail_closed"`
	AvgLatencyMs  float64          `json:"avg_latency_ms"`
	DenyByReason  map[string]int64 `json:"deny_by_reason"`
	WindowStart   string           `json:"window_start"`
	PolicyVersion string           `json:"policy_version"`
}

func toResponses(records []audit.DecisionRecord) []recordResponse {
	out := make([]recordResponse, 0, len(records))
	for _, r := range records {
		resp := recordResponse{
			ID:            r.ID.String(),
			CorrelationID: r.CorrelationID,
			RequestID:     r.RequestID,
			UserID:        r.UserID.String(),
			Roles:         r.Roles,
			Endpoint:      r.Endpoint,
			Method:        r.Method,
			Operation:     r.Operation.String(),
			Scope:         string(r.Scope),
			Allowed:       r.Allowed,
			Reason:        r.Reason,
			PolicyVersion: r.PolicyVersion,
			LatencyMs:     r.LatencyMs,
			RequestIP:     r.RequestIP,
			Device:        r.Device,
			DecidedAt:     r.DecidedAt.UTC().Format(time.RFC3339Nano),
		}
		if !r.CompanyID.IsNil() {
			resp.CompanyID = r.CompanyID.String()
		}
		if r.CompanyType != "" {
			resp.CompanyType = r.CompanyType.String()
		}
		out = append(out, resp)
	}
	return out
}
