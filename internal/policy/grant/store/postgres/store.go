package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"verdict/internal/policy/grant"
	"verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

// Store persists user permission grants in PostgreSQL.
type Store struct {
	db    *sql.DB
	clock grant.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock function for testability.
func WithClock(clock grant.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a PostgreSQL-backed grant store.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindMatching returns grants for the exact triple, pre-filtered to active,
// non-expired rows. The resolver re-checks ActiveAt against its own clock.
func (s *Store) FindMatching(ctx context.Context, userID domain.UserID, endpoint string, op domain.OperationType, typ domain.PermissionType) ([]*grant.Grant, error) {
	query := `
		SELECT id, user_id, endpoint, operation, permission_type, status, expires_at, created_at
		FROM user_permission_grants
		WHERE user_id = $1
		  AND endpoint = $2
		  AND operation = $3
		  AND permission_type = $4
		  AND status = 'active'
		  AND (expires_at IS NULL OR expires_at > $5)
	`
	rows, err := s.db.QueryContext(ctx, query,
		uuid.UUID(userID), endpoint, string(op), string(typ), s.clock())
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

func (s *Store) Create(ctx context.Context, g *grant.Grant) error {
	query := `
		INSERT INTO user_permission_grants
			(id, user_id, endpoint, operation, permission_type, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(g.ID),
		uuid.UUID(g.UserID),
		g.Endpoint,
		string(g.Operation),
		string(g.Type),
		string(g.Status),
		g.ExpiresAt,
		g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

func (s *Store) Revoke(ctx context.Context, id domain.GrantID) error {
	query := `
		UPDATE user_permission_grants
		SET status = 'revoked'
		WHERE id = $1 AND status = 'active'
	`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("revoke grant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke grant: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID domain.UserID) ([]*grant.Grant, error) {
	query := `
		SELECT id, user_id, endpoint, operation, permission_type, status, expires_at, created_at
		FROM user_permission_grants
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

func scanGrants(rows *sql.Rows) ([]*grant.Grant, error) {
	var grants []*grant.Grant

	for rows.Next() {
		var (
			g         grant.Grant
			id        uuid.UUID
			userID    uuid.UUID
			op        string
			typ       string
			status    string
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&id, &userID, &g.Endpoint, &op, &typ, &status, &expiresAt, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		g.ID = domain.GrantID(id)
		g.UserID = domain.UserID(userID)
		g.Operation = domain.OperationType(op)
		g.Type = domain.PermissionType(typ)
		g.Status = domain.GrantStatus(status)
		if expiresAt.Valid {
			t := expiresAt.Time
			g.ExpiresAt = &t
		}
		grants = append(grants, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	return grants, nil
}
