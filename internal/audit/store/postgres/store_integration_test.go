//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"verdict/internal/audit"
	"verdict/internal/policy/models"
	"verdict/pkg/domain"
	"verdict/pkg/testutil/containers"
)

const decisionSchema = `
	CREATE TABLE policy_decisions (
	    id                  UUID PRIMARY KEY,
	    correlation_id      TEXT NOT NULL,
	    request_id          TEXT NOT NULL DEFAULT '',
	    user_id             UUID NOT NULL,
	    company_id          UUID,
	    company_type        TEXT NOT NULL DEFAULT '',
	    roles               TEXT[] NOT NULL DEFAULT '{}',
	    endpoint            TEXT NOT NULL,
	    method              TEXT NOT NULL DEFAULT '',
	    operation           TEXT NOT NULL,
	    scope               TEXT NOT NULL DEFAULT '',
	    resource_owner_id   UUID,
	    resource_company_id UUID,
	    allowed             BOOLEAN NOT NULL,
	    reason              TEXT NOT NULL,
	    policy_version      TEXT NOT NULL,
	    latency_ms          BIGINT NOT NULL DEFAULT 0,
	    request_ip          TEXT NOT NULL DEFAULT '',
	    device              TEXT NOT NULL DEFAULT '',
	    decided_at          TIMESTAMPTZ NOT NULL,
	    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX idx_policy_decisions_user ON policy_decisions (user_id, decided_at DESC);
	CREATE INDEX idx_policy_decisions_denies ON policy_decisions (decided_at DESC) WHERE NOT allowed;
	CREATE INDEX idx_policy_decisions_correlation ON policy_decisions (correlation_id);
`

type AuditPostgresSuite struct {
	suite.Suite
	ctx       context.Context
	container *containers.PostgresContainer
	store     *Store
	userID    domain.UserID
	base      time.Time
}

func TestAuditPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditPostgresSuite))
}

func (s *AuditPostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.container = containers.NewPostgresContainer(s.T(), decisionSchema)
	s.store = New(s.container.DB)
}

func (s *AuditPostgresSuite) SetupTest() {
	s.Require().NoError(s.container.TruncateTables(s.ctx, "policy_decisions"))
	s.userID = domain.UserID(uuid.New())
	s.base = time.Now().UTC().Truncate(time.Millisecond)
}

func (s *AuditPostgresSuite) newRecord(allowed bool, reason, correlationID string, decidedAt time.Time) audit.DecisionRecord {
	return audit.DecisionRecord{
		ID:            uuid.New(),
		CorrelationID: correlationID,
		RequestID:     "req-1",
		UserID:        s.userID,
		CompanyID:     domain.CompanyID(uuid.New()),
		CompanyType:   domain.CompanyTypeSupplier,
		Roles:         []string{"manager", "viewer"},
		Endpoint:      "/api/purchase-orders",
		Method:        "POST",
		Operation:     domain.OperationWrite,
		Scope:         domain.ScopeCompany,
		Allowed:       allowed,
		Reason:        reason,
		PolicyVersion: "v1",
		LatencyMs:     2,
		RequestIP:     "10.1.2.3",
		Device:        "Chrome 126 / Linux",
		DecidedAt:     decidedAt,
		CreatedAt:     decidedAt,
	}
}

func (s *AuditPostgresSuite) TestAppendAndRoundTrip() {
	record := s.newRecord(true, models.ReasonRoleDefaultAllowed, "corr-1", s.base)
	s.Require().NoError(s.store.Append(s.ctx, record))

	records, err := s.store.RecentByUser(s.ctx, s.userID, 10)
	s.Require().NoError(err)
	s.Require().Len(records, 1)

	got := records[0]
	s.Equal(record.ID, got.ID)
	s.Equal(record.CorrelationID, got.CorrelationID)
	s.Equal(record.CompanyID, got.CompanyID)
	s.Equal(record.CompanyType, got.CompanyType)
	s.Equal([]string{"manager", "viewer"}, got.Roles)
	s.Equal(record.Operation, got.Operation)
	s.Equal(record.Scope, got.Scope)
	s.Equal(record.Reason, got.Reason)
	s.EqualValues(2, got.LatencyMs)
	s.Equal(record.Device, got.Device)
	s.True(record.DecidedAt.Equal(got.DecidedAt))
}

func (s *AuditPostgresSuite) TestAppendIsIdempotent() {
	record := s.newRecord(true, models.ReasonRoleDefaultAllowed, "corr-1", s.base)
	s.Require().NoError(s.store.Append(s.ctx, record))
	s.Require().NoError(s.store.Append(s.ctx, record), "replay of the same id is a no-op")

	records, err := s.store.RecentByUser(s.ctx, s.userID, 10)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *AuditPostgresSuite) TestNullableIDs() {
	record := s.newRecord(false, models.ReasonRoleNoDefaultAccess, "corr-2", s.base)
	record.CompanyID = domain.CompanyID{}
	record.ResourceOwnerID = domain.UserID{}
	s.Require().NoError(s.store.Append(s.ctx, record))

	records, err := s.store.RecentByUser(s.ctx, s.userID, 10)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.True(records[0].CompanyID.IsNil())
	s.True(records[0].ResourceOwnerID.IsNil())
}

func (s *AuditPostgresSuite) TestDeniesSince() {
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(true, models.ReasonRoleDefaultAllowed, "c1", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonScopeSelfNotOwner, "c2", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonUserGrantExplicitDeny, "c3", s.base.Add(-2*time.Hour))))

	denies, err := s.store.DeniesSince(s.ctx, s.base.Add(-time.Hour), 10)
	s.Require().NoError(err)
	s.Require().Len(denies, 1)
	s.Equal("c2", denies[0].CorrelationID)
}

func (s *AuditPostgresSuite) TestStatsSince() {
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(true, models.ReasonRoleDefaultAllowed, "c1", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonScopeSelfNotOwner, "c2", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonScopeSelfNotOwner, "c3", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonPolicyEvaluationError, "c4", s.base)))

	stats, err := s.store.StatsSince(s.ctx, s.base.Add(-time.Minute))
	s.Require().NoError(err)
	s.EqualValues(4, stats.Total)
	s.EqualValues(1, stats.Allowed)
	s.EqualValues(3, stats.Denied)
	s.EqualValues(1, stats.FailClosed)
	s.InDelta(2.0, stats.AvgLatencyMs, 0.001)
	s.EqualValues(2, stats.DenyByReason[models.ReasonScopeSelfNotOwner])
}

func (s *AuditPostgresSuite) TestChainByCorrelation() {
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(false, models.ReasonRoleNoDefaultAccess, "chain", s.base.Add(time.Second))))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(true, models.ReasonRoleDefaultAllowed, "chain", s.base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newRecord(true, models.ReasonRoleDefaultAllowed, "other", s.base)))

	chain, err := s.store.ChainByCorrelation(s.ctx, "chain")
	s.Require().NoError(err)
	s.Require().Len(chain, 2)
	s.True(chain[0].DecidedAt.Before(chain[1].DecidedAt), "oldest first")
}
