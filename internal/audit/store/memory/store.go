// Package memory provides an in-memory audit store for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"verdict/internal/audit"
	"verdict/internal/policy/models"
	"verdict/pkg/domain"
)

// Store keeps decision records in memory. Append-only; safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records []audit.DecisionRecord
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, record audit.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *Store) RecentByUser(_ context.Context, userID domain.UserID, limit int) ([]audit.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.DecisionRecord
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sortNewestFirst(out)
	return truncate(out, limit), nil
}

func (s *Store) DeniesSince(_ context.Context, since time.Time, limit int) ([]audit.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.DecisionRecord
	for _, r := range s.records {
		if !r.Allowed && !r.DecidedAt.Before(since) {
			out = append(out, r)
		}
	}
	sortNewestFirst(out)
	return truncate(out, limit), nil
}

func (s *Store) StatsSince(_ context.Context, since time.Time) (audit.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := audit.Stats{
		DenyByReason: make(map[string]int64),
		WindowStart:  since,
	}
	var latencySum int64
	for _, r := range s.records {
		if r.DecidedAt.Before(since) {
			continue
		}
		stats.Total++
		stats.PolicyVersion = r.PolicyVersion
		latencySum += r.LatencyMs
		if r.Allowed {
			stats.Allowed++
			continue
		}
		stats.Denied++
		stats.DenyByReason[r.Reason]++
		if r.Reason == models.ReasonPolicyEvaluationError {
			stats.FailClosed++
		}
	}
	if stats.Total > 0 {
		stats.AvgLatencyMs = float64(latencySum) / float64(stats.Total)
	}
	return stats, nil
}

func (s *Store) ChainByCorrelation(_ context.Context, correlationID string) ([]audit.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.DecisionRecord
	for _, r := range s.records {
		if r.CorrelationID == correlationID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DecidedAt.Before(out[j].DecidedAt)
	})
	return out, nil
}

// Len reports the number of stored records. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func sortNewestFirst(records []audit.DecisionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DecidedAt.After(records[j].DecidedAt)
	})
}

func truncate(records []audit.DecisionRecord, limit int) []audit.DecisionRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
