package relationship

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"verdict/pkg/domain"
)

// PostgresStore reads company relationships from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed relationship store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) RelationshipActive(ctx context.Context, a, b domain.CompanyID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM company_relationships
			WHERE status = 'active'
			  AND ((company_a = $1 AND company_b = $2)
			    OR (company_a = $2 AND company_b = $1))
		)
	`
	var active bool
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(a), uuid.UUID(b)).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("query relationship: %w", err)
	}
	return active, nil
}
