package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"verdict/internal/policy/models"
	"verdict/pkg/domain"
)

// Cache is a read-through store of recent decisions keyed by the context
// fingerprint. Purely an optimization: a nil cache changes nothing but
// latency. Entries MUST be invalidated whenever a user grant or company
// relationship changes, or a revoked grant can keep allowing until expiry.
type Cache interface {
	Get(ctx context.Context, pctx *models.PolicyContext) (models.PolicyDecision, bool)
	Set(ctx context.Context, pctx *models.PolicyContext, d models.PolicyDecision)

	// InvalidateUser drops every cached decision for a user. Call on any
	// grant change for that user.
	InvalidateUser(ctx context.Context, userID domain.UserID) error

	// InvalidateCompanyPair drops cached decisions involving the pair. Call
	// on any relationship change between the two companies.
	InvalidateCompanyPair(ctx context.Context, a, b domain.CompanyID) error
}

const (
	decisionKeyPrefix = "verdict:decision:"
	userIndexPrefix   = "verdict:decision:user:"
	pairIndexPrefix   = "verdict:decision:pair:"
)

// RedisCache implements Cache on Redis. Alongside each decision it maintains
// per-user and per-company-pair index sets so invalidation can find the keys.
type RedisCache struct {
	client        *redis.Client
	ttl           time.Duration
	policyVersion string
	logger        *slog.Logger
}

// NewRedisCache constructs a decision cache. The TTL bounds staleness; the
// policy version participates in keys so a rule-set bump abandons all
// previously cached decisions.
func NewRedisCache(client *redis.Client, ttl time.Duration, policyVersion string, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, policyVersion: policyVersion, logger: logger}
}

func (c *RedisCache) key(pctx *models.PolicyContext) string {
	return decisionKeyPrefix + c.policyVersion + ":" + pctx.Fingerprint()
}

func (c *RedisCache) Get(ctx context.Context, pctx *models.PolicyContext) (models.PolicyDecision, bool) {
	raw, err := c.client.Get(ctx, c.key(pctx)).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.WarnContext(ctx, "decision cache read failed", "error", err)
		}
		return models.PolicyDecision{}, false
	}

	var d models.PolicyDecision
	if err := json.Unmarshal(raw, &d); err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "decision cache entry corrupt", "error", err)
		}
		return models.PolicyDecision{}, false
	}
	if d.IsExpired(c.ttl, time.Now()) {
		return models.PolicyDecision{}, false
	}
	return d, true
}

func (c *RedisCache) Set(ctx context.Context, pctx *models.PolicyContext, d models.PolicyDecision) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}

	key := c.key(pctx)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, raw, c.ttl)

	userIdx := userIndexPrefix + pctx.Subject.UserID.String()
	pipe.SAdd(ctx, userIdx, key)
	pipe.Expire(ctx, userIdx, c.ttl)

	if !pctx.Subject.CompanyID.IsNil() && !pctx.Resource.CompanyID.IsNil() {
		pairIdx := pairIndexPrefix + companyPairKey(pctx.Subject.CompanyID, pctx.Resource.CompanyID)
		pipe.SAdd(ctx, pairIdx, key)
		pipe.Expire(ctx, pairIdx, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "decision cache write failed", "error", err)
	}
}

func (c *RedisCache) InvalidateUser(ctx context.Context, userID domain.UserID) error {
	return c.invalidateIndex(ctx, userIndexPrefix+userID.String())
}

func (c *RedisCache) InvalidateCompanyPair(ctx context.Context, a, b domain.CompanyID) error {
	return c.invalidateIndex(ctx, pairIndexPrefix+companyPairKey(a, b))
}

func (c *RedisCache) invalidateIndex(ctx context.Context, indexKey string) error {
	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	keys = append(keys, indexKey)
	return c.client.Del(ctx, keys...).Err()
}

func companyPairKey(a, b domain.CompanyID) string {
	as, bs := a.String(), b.String()
	if bs < as {
		as, bs = bs, as
	}
	return as + ":" + bs
}
