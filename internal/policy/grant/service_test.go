package grant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"verdict/internal/policy/grant"
	"verdict/internal/policy/grant/store/memory"
	"verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

type recordingCache struct {
	invalidated []domain.UserID
	err         error
}

func (c *recordingCache) InvalidateUser(_ context.Context, userID domain.UserID) error {
	c.invalidated = append(c.invalidated, userID)
	return c.err
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	cache   *recordingCache
	service *grant.Service
	userID  domain.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.cache = &recordingCache{}
	svc, err := grant.NewService(s.store, grant.WithDecisionCache(s.cache))
	s.Require().NoError(err)
	s.service = svc
	s.userID = domain.UserID(uuid.New())
}

func (s *ServiceSuite) TestNewService() {
	_, err := grant.NewService(nil)
	s.Require().Error(err)
}

func (s *ServiceSuite) TestCreate() {
	s.Run("persists and invalidates cache", func() {
		g, err := s.service.Create(s.ctx, s.userID, "/api/orders", domain.OperationWrite, domain.PermissionDeny, nil)
		s.Require().NoError(err)
		s.False(g.ID.IsNil())

		listed, err := s.service.List(s.ctx, s.userID)
		s.Require().NoError(err)
		s.Len(listed, 1)
		s.Equal([]domain.UserID{s.userID}, s.cache.invalidated)
	})

	s.Run("rejects invalid input without touching the cache", func() {
		before := len(s.cache.invalidated)
		_, err := s.service.Create(s.ctx, s.userID, "", domain.OperationWrite, domain.PermissionDeny, nil)
		s.Require().Error(err)
		s.Len(s.cache.invalidated, before)
	})

	s.Run("cache failure does not fail the create", func() {
		s.cache.err = errors.New("redis down")
		_, err := s.service.Create(s.ctx, s.userID, "/api/orders", domain.OperationRead, domain.PermissionAllow, nil)
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestRevoke() {
	g, err := s.service.Create(s.ctx, s.userID, "/api/orders", domain.OperationWrite, domain.PermissionAllow, nil)
	s.Require().NoError(err)

	s.Run("revokes and invalidates", func() {
		before := len(s.cache.invalidated)
		s.Require().NoError(s.service.Revoke(s.ctx, g.ID, s.userID))

		listed, err := s.service.List(s.ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(domain.GrantStatusRevoked, listed[0].Status)
		s.Len(s.cache.invalidated, before+1)
	})

	s.Run("unknown grant surfaces not found", func() {
		err := s.service.Revoke(s.ctx, domain.NewGrantID(), s.userID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestExpiryValidation pins the service clock to verify expiry handling.
func (s *ServiceSuite) TestExpiryValidation() {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, err := grant.NewService(s.store, grant.WithServiceClock(func() time.Time { return now }))
	s.Require().NoError(err)

	past := now.Add(-time.Hour)
	_, err = svc.Create(s.ctx, s.userID, "/api/orders", domain.OperationRead, domain.PermissionAllow, &past)
	s.Require().Error(err)

	future := now.Add(time.Hour)
	g, err := svc.Create(s.ctx, s.userID, "/api/orders", domain.OperationRead, domain.PermissionAllow, &future)
	s.Require().NoError(err)
	s.True(g.ActiveAt(now))
	s.False(g.ActiveAt(future))
}
