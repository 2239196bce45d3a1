//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"verdict/internal/policy/grant"
	"verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
	"verdict/pkg/testutil/containers"
)

const grantSchema = `
	CREATE TABLE user_permission_grants (
	    id              UUID PRIMARY KEY,
	    user_id         UUID NOT NULL,
	    endpoint        TEXT NOT NULL,
	    operation       TEXT NOT NULL,
	    permission_type TEXT NOT NULL,
	    status          TEXT NOT NULL,
	    expires_at      TIMESTAMPTZ,
	    created_at      TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX idx_grants_triple ON user_permission_grants (user_id, endpoint, operation);
`

type PostgresStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *containers.PostgresContainer
	store     *Store
	userID    domain.UserID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.container = containers.NewPostgresContainer(s.T(), grantSchema)
	s.store = New(s.container.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.container.TruncateTables(s.ctx, "user_permission_grants"))
	s.userID = domain.UserID(uuid.New())
}

func (s *PostgresStoreSuite) newGrant(typ domain.PermissionType, expiresAt *time.Time) *grant.Grant {
	g, err := grant.NewGrant(s.userID, "/api/orders", domain.OperationWrite, typ, expiresAt, time.Now())
	s.Require().NoError(err)
	return g
}

func (s *PostgresStoreSuite) TestCreateAndFindMatching() {
	g := s.newGrant(domain.PermissionDeny, nil)
	s.Require().NoError(s.store.Create(s.ctx, g))

	s.Run("exact triple matches", func() {
		found, err := s.store.FindMatching(s.ctx, s.userID, "/api/orders", domain.OperationWrite, domain.PermissionDeny)
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal(g.ID, found[0].ID)
		s.Equal(domain.GrantStatusActive, found[0].Status)
	})

	s.Run("different operation does not match", func() {
		found, err := s.store.FindMatching(s.ctx, s.userID, "/api/orders", domain.OperationRead, domain.PermissionDeny)
		s.Require().NoError(err)
		s.Empty(found)
	})

	s.Run("different permission type does not match", func() {
		found, err := s.store.FindMatching(s.ctx, s.userID, "/api/orders", domain.OperationWrite, domain.PermissionAllow)
		s.Require().NoError(err)
		s.Empty(found)
	})
}

func (s *PostgresStoreSuite) TestExpiredGrantFilteredOut() {
	soon := time.Now().Add(50 * time.Millisecond)
	g := s.newGrant(domain.PermissionAllow, &soon)
	s.Require().NoError(s.store.Create(s.ctx, g))

	time.Sleep(100 * time.Millisecond)

	found, err := s.store.FindMatching(s.ctx, s.userID, "/api/orders", domain.OperationWrite, domain.PermissionAllow)
	s.Require().NoError(err)
	s.Empty(found, "expired grants never reach the resolver")
}

func (s *PostgresStoreSuite) TestRevoke() {
	g := s.newGrant(domain.PermissionAllow, nil)
	s.Require().NoError(s.store.Create(s.ctx, g))

	s.Run("revoked grant stops matching", func() {
		s.Require().NoError(s.store.Revoke(s.ctx, g.ID))

		found, err := s.store.FindMatching(s.ctx, s.userID, "/api/orders", domain.OperationWrite, domain.PermissionAllow)
		s.Require().NoError(err)
		s.Empty(found)

		listed, err := s.store.ListByUser(s.ctx, s.userID)
		s.Require().NoError(err)
		s.Require().Len(listed, 1)
		s.Equal(domain.GrantStatusRevoked, listed[0].Status)
	})

	s.Run("revoking again reports not found", func() {
		s.Require().ErrorIs(s.store.Revoke(s.ctx, g.ID), sentinel.ErrNotFound)
	})

	s.Run("unknown id reports not found", func() {
		s.Require().ErrorIs(s.store.Revoke(s.ctx, domain.NewGrantID()), sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestListByUserOrdering() {
	older, err := grant.NewGrant(s.userID, "/api/orders", domain.OperationRead, domain.PermissionAllow, nil, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	newer, err := grant.NewGrant(s.userID, "/api/reports", domain.OperationExport, domain.PermissionAllow, nil, time.Now())
	s.Require().NoError(err)

	s.Require().NoError(s.store.Create(s.ctx, older))
	s.Require().NoError(s.store.Create(s.ctx, newer))

	listed, err := s.store.ListByUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal(newer.ID, listed[0].ID, "most recent first")
}
