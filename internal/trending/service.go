// Package trending serves the ordered hot-topic snapshot for the landing
// page: topics ranked by editorial score with recency as the tie-break,
// behind a short TTL cache so list reads stay off the database.
package trending

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/appstorewatch/insights/internal/cache"
	"github.com/appstorewatch/insights/internal/database"
)

// DefaultLimit bounds the snapshot when the caller does not ask for one
const DefaultLimit = 20

// Snapshot is one cached trending view
type Snapshot struct {
	Topics      []*database.TrendingTopic `json:"topics"`
	Total       int                       `json:"total"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// Service handles trending topic queries
type Service struct {
	repo  *database.Repository
	cache *cache.Cache
}

// NewService creates a trending service with a 5 minute snapshot TTL
func NewService(repo *database.Repository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.NewCache(5 * time.Minute),
	}
}

func snapshotKey(limit int) string {
	return fmt.Sprintf("trending:%d", limit)
}

// GetTrending returns the top trending topics, served from the snapshot
// cache when fresh
func (s *Service) GetTrending(limit int) (*Snapshot, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	key := snapshotKey(limit)
	if data, found := s.cache.Get(key); found {
		var snapshot Snapshot
		if err := json.Unmarshal(data, &snapshot); err == nil {
			slog.Debug("Trending cache hit", "limit", limit)
			return &snapshot, nil
		}
		slog.Warn("Discarding undecodable trending snapshot", "key", key)
	}

	topics, err := s.repo.ListTrendingTopics(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build trending snapshot: %w", err)
	}

	snapshot := &Snapshot{
		Topics:      topics,
		Total:       len(topics),
		GeneratedAt: time.Now(),
	}

	if data, err := json.Marshal(snapshot); err == nil {
		s.cache.Set(key, data)
	} else {
		slog.Error("Failed to marshal trending snapshot for cache", "error", err)
	}

	return snapshot, nil
}

// Invalidate drops every cached snapshot. Called after admin writes so edits
// show up immediately instead of after TTL expiry.
func (s *Service) Invalidate() {
	s.cache.Clear()
	slog.Debug("Trending snapshots invalidated")
}

// CacheStats returns snapshot cache statistics
func (s *Service) CacheStats() map[string]interface{} {
	return s.cache.Stats()
}

// AutoRefresh rebuilds the default snapshot on an interval so the first
// request after expiry never pays the rebuild cost
func (s *Service) AutoRefresh(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			s.Invalidate()
			if _, err := s.GetTrending(DefaultLimit); err != nil {
				slog.Error("Trending snapshot refresh failed", "error", err)
			}
		}
	}()
}
