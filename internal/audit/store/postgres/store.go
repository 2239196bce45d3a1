// Package postgres persists decision records in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE policy_decisions (
//	    id                  UUID PRIMARY KEY,
//	    correlation_id      TEXT NOT NULL,
//	    request_id          TEXT NOT NULL DEFAULT '',
//	    user_id             UUID NOT NULL,
//	    company_id          UUID,
//	    company_type        TEXT NOT NULL DEFAULT '',
//	    roles               TEXT[] NOT NULL DEFAULT '{}',
//	    endpoint            TEXT NOT NULL,
//	    method              TEXT NOT NULL DEFAULT '',
//	    operation           TEXT NOT NULL,
//	    scope               TEXT NOT NULL DEFAULT '',
//	    resource_owner_id   UUID,
//	    resource_company_id UUID,
//	    allowed             BOOLEAN NOT NULL,
//	    reason              TEXT NOT NULL,
//	    policy_version      TEXT NOT NULL,
//	    latency_ms          BIGINT NOT NULL DEFAULT 0,
//	    request_ip          TEXT NOT NULL DEFAULT '',
//	    device              TEXT NOT NULL DEFAULT '',
//	    decided_at          TIMESTAMPTZ NOT NULL,
//	    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX idx_policy_decisions_user ON policy_decisions (user_id, decided_at DESC);
//	CREATE INDEX idx_policy_decisions_denies ON policy_decisions (decided_at DESC) WHERE NOT allowed;
//	CREATE INDEX idx_policy_decisions_correlation ON policy_decisions (correlation_id);
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"verdict/internal/audit"
	"verdict/internal/policy/models"
	"verdict/pkg/domain"
)

// Store implements audit.Store on PostgreSQL. Inserts are idempotent on the
// record ID so a retried append cannot duplicate the trail.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const recordColumns = `
	id, correlation_id, request_id, user_id, company_id, company_type, roles,
	endpoint, method, operation, scope, resource_owner_id, resource_company_id,
	allowed, reason, policy_version, latency_ms, request_ip, device,
	decided_at, created_at`

func (s *Store) Append(ctx context.Context, record audit.DecisionRecord) error {
	query := `
		INSERT INTO policy_decisions (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		record.CorrelationID,
		record.RequestID,
		uuid.UUID(record.UserID),
		nullableID(uuid.UUID(record.CompanyID)),
		string(record.CompanyType),
		pq.Array(record.Roles),
		record.Endpoint,
		record.Method,
		string(record.Operation),
		string(record.Scope),
		nullableID(uuid.UUID(record.ResourceOwnerID)),
		nullableID(uuid.UUID(record.ResourceCompanyID)),
		record.Allowed,
		record.Reason,
		record.PolicyVersion,
		record.LatencyMs,
		record.RequestIP,
		record.Device,
		record.DecidedAt,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert policy decision: %w", err)
	}
	return nil
}

func (s *Store) RecentByUser(ctx context.Context, userID domain.UserID, limit int) ([]audit.DecisionRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM policy_decisions
		WHERE user_id = $1
		ORDER BY decided_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions by user: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *Store) DeniesSince(ctx context.Context, since time.Time, limit int) ([]audit.DecisionRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM policy_decisions
		WHERE NOT allowed AND decided_at >= $1
		ORDER BY decided_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query denied decisions: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *Store) StatsSince(ctx context.Context, since time.Time) (audit.Stats, error) {
	stats := audit.Stats{
		DenyByReason: make(map[string]int64),
		WindowStart:  since,
	}

	summary := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE allowed),
		       COUNT(*) FILTER (WHERE NOT allowed),
		       COUNT(*) FILTER (WHERE reason = $2),
		       COALESCE(AVG(latency_ms), 0)::float8,
		       COALESCE(MAX(policy_version), '')
		FROM policy_decisions
		WHERE decided_at >= $1
	`
	err := s.db.QueryRowContext(ctx, summary, since, models.ReasonPolicyEvaluationError).Scan(
		&stats.Total, &stats.Allowed, &stats.Denied, &stats.FailClosed, &stats.AvgLatencyMs, &stats.PolicyVersion,
	)
	if err != nil {
		return audit.Stats{}, fmt.Errorf("aggregate decisions: %w", err)
	}

	byReason := `
		SELECT reason, COUNT(*)
		FROM policy_decisions
		WHERE NOT allowed AND decided_at >= $1
		GROUP BY reason
	`
	rows, err := s.db.QueryContext(ctx, byReason, since)
	if err != nil {
		return audit.Stats{}, fmt.Errorf("aggregate deny reasons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reason string
		var count int64
		if err := rows.Scan(&reason, &count); err != nil {
			return audit.Stats{}, fmt.Errorf("scan deny reason: %w", err)
		}
		stats.DenyByReason[reason] = count
	}
	if err := rows.Err(); err != nil {
		return audit.Stats{}, fmt.Errorf("iterate deny reasons: %w", err)
	}
	return stats, nil
}

func (s *Store) ChainByCorrelation(ctx context.Context, correlationID string) ([]audit.DecisionRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM policy_decisions
		WHERE correlation_id = $1
		ORDER BY decided_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, correlationID)
	if err != nil {
		return nil, fmt.Errorf("query decision chain: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]audit.DecisionRecord, error) {
	var records []audit.DecisionRecord

	for rows.Next() {
		var (
			r                 audit.DecisionRecord
			id, userID        uuid.UUID
			companyID         *uuid.UUID
			resourceOwnerID   *uuid.UUID
			resourceCompanyID *uuid.UUID
			companyType       string
			operation         string
			scope             string
			roles             pq.StringArray
		)

		err := rows.Scan(
			&id, &r.CorrelationID, &r.RequestID, &userID, &companyID, &companyType, &roles,
			&r.Endpoint, &r.Method, &operation, &scope, &resourceOwnerID, &resourceCompanyID,
			&r.Allowed, &r.Reason, &r.PolicyVersion, &r.LatencyMs, &r.RequestIP, &r.Device,
			&r.DecidedAt, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan policy decision: %w", err)
		}

		r.ID = id
		r.UserID = domain.UserID(userID)
		if companyID != nil {
			r.CompanyID = domain.CompanyID(*companyID)
		}
		if resourceOwnerID != nil {
			r.ResourceOwnerID = domain.UserID(*resourceOwnerID)
		}
		if resourceCompanyID != nil {
			r.ResourceCompanyID = domain.CompanyID(*resourceCompanyID)
		}
		r.CompanyType = domain.CompanyType(companyType)
		r.Operation = domain.OperationType(operation)
		r.Scope = domain.DataScope(scope)
		r.Roles = roles

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy decisions: %w", err)
	}
	return records, nil
}

func nullableID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
