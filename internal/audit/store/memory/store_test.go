package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"verdict/internal/audit"
	"verdict/internal/policy/models"
	"verdict/pkg/domain"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx    context.Context
	store  *Store
	userID domain.UserID
	base   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
	s.userID = domain.UserID(uuid.New())
	s.base = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newRecord(allowed bool, reason, correlationID string, decidedAt time.Time) audit.DecisionRecord {
	return audit.DecisionRecord{
		ID:            uuid.New(),
		CorrelationID: correlationID,
		UserID:        s.userID,
		Endpoint:      "/api/orders",
		Operation:     domain.OperationRead,
		Allowed:       allowed,
		Reason:        reason,
		PolicyVersion: "v1",
		LatencyMs:     4,
		DecidedAt:     decidedAt,
		CreatedAt:     decidedAt,
	}
}

func (s *MemoryStoreSuite) TestRecentByUser() {
	older := s.newRecord(true, models.ReasonRoleDefaultAllowed, "c1", s.base)
	newer := s.newRecord(false, models.ReasonRoleNoDefaultAccess, "c2", s.base.Add(time.Minute))
	other := s.newRecord(true, models.ReasonRoleDefaultAllowed, "c3", s.base)
	other.UserID = domain.UserID(uuid.New())

	s.Require().NoError(s.store.Append(s.ctx, older))
	s.Require().NoError(s.store.Append(s.ctx, newer))
	s.Require().NoError(s.store.Append(s.ctx, other))

	records, err := s.store.RecentByUser(s.ctx, s.userID, 10)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("c2", records[0].CorrelationID, "newest first")

	s.Run("limit truncates", func() {
		records, err := s.store.RecentByUser(s.ctx, s.userID, 1)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("c2", records[0].CorrelationID)
	})
}

func (s *MemoryStoreSuite) TestDeniesSince() {
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(true, models.ReasonRoleDefaultAllowed, "c1", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonScopeSelfNotOwner, "c2", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonUserGrantExplicitDeny, "c3", s.base.Add(-time.Hour))))

	denies, err := s.store.DeniesSince(s.ctx, s.base.Add(-time.Minute), 10)
	s.Require().NoError(err)
	s.Require().Len(denies, 1)
	s.Equal("c2", denies[0].CorrelationID, "allowed and out-of-window records excluded")
}

func (s *MemoryStoreSuite) TestStatsSince() {
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(true, models.ReasonRoleDefaultAllowed, "c1", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonScopeSelfNotOwner, "c2", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonScopeSelfNotOwner, "c3", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonPolicyEvaluationError, "c4", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonScopeSelfNotOwner, "old", s.base.Add(-time.Hour))))

	stats, err := s.store.StatsSince(s.ctx, s.base.Add(-time.Minute))
	s.Require().NoError(err)
	s.EqualValues(4, stats.Total)
	s.EqualValues(1, stats.Allowed)
	s.EqualValues(3, stats.Denied)
	s.EqualValues(1, stats.FailClosed)
	s.EqualValues(2, stats.DenyByReason[models.ReasonScopeSelfNotOwner])
	s.InDelta(4.0, stats.AvgLatencyMs, 0.001)
	s.Equal("v1", stats.PolicyVersion)
}

func (s *MemoryStoreSuite) TestChainByCorrelation() {
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonRoleNoDefaultAccess, "chain", s.base.Add(time.Second))))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(true, models.ReasonRoleDefaultAllowed, "chain", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(true, models.ReasonRoleDefaultAllowed, "other", s.base)))

	chain, err := s.store.ChainByCorrelation(s.ctx, "chain")
	s.Require().NoError(err)
	s.Require().Len(chain, 2)
	s.True(chain[0].DecidedAt.Before(chain[1].DecidedAt), "oldest first")
}
