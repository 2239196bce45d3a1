package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"verdict/internal/audit"
	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// limitCapturingStore records the limit each query was issued with.
type limitCapturingStore struct {
	failingStore
	lastLimit int
}

func (s *limitCapturingStore) RecentByUser(_ context.Context, _ domain.UserID, limit int) ([]audit.DecisionRecord, error) {
	s.lastLimit = limit
	return nil, nil
}

func (s *limitCapturingStore) DeniesSince(_ context.Context, _ time.Time, limit int) ([]audit.DecisionRecord, error) {
	s.lastLimit = limit
	return nil, nil
}

type QueryServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *limitCapturingStore
	queries *audit.QueryService
}

func TestQueryServiceSuite(t *testing.T) {
	suite.Run(t, new(QueryServiceSuite))
}

func (s *QueryServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = &limitCapturingStore{}
	queries, err := audit.NewQueryService(s.store)
	s.Require().NoError(err)
	s.queries = queries
}

func (s *QueryServiceSuite) TestNewQueryService() {
	_, err := audit.NewQueryService(nil)
	s.Require().Error(err)
}

func (s *QueryServiceSuite) TestValidation() {
	s.Run("recent by user requires a user id", func() {
		_, err := s.queries.RecentByUser(s.ctx, domain.UserID{}, 10)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("denies requires a window start", func() {
		_, err := s.queries.DeniesSince(s.ctx, time.Time{}, 10)
		s.Require().Error(err)
	})

	s.Run("stats requires a window start", func() {
		_, err := s.queries.StatsSince(s.ctx, time.Time{})
		s.Require().Error(err)
	})

	s.Run("chain requires a correlation id", func() {
		_, err := s.queries.ChainByCorrelation(s.ctx, "")
		s.Require().Error(err)
	})
}

func (s *QueryServiceSuite) TestLimitClamping() {
	userID := domain.UserID(uuid.New())

	s.Run("zero limit gets the default", func() {
		_, err := s.queries.RecentByUser(s.ctx, userID, 0)
		s.Require().NoError(err)
		s.Equal(50, s.store.lastLimit)
	})

	s.Run("oversized limit is capped", func() {
		_, err := s.queries.DeniesSince(s.ctx, time.Now().Add(-time.Hour), 9999)
		s.Require().NoError(err)
		s.Equal(500, s.store.lastLimit)
	})

	s.Run("in-range limit passes through", func() {
		_, err := s.queries.RecentByUser(s.ctx, userID, 25)
		s.Require().NoError(err)
		s.Equal(25, s.store.lastLimit)
	})
}
