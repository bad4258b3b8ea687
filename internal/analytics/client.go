// Package analytics fetches page-view statistics from an external analytics
// service. The adapter is isolation-first: it lives behind a circuit breaker
// and every failure is returned as a value for the dashboard to degrade one
// section, never to fail the whole response.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/appstorewatch/insights/internal/errors"
	"github.com/appstorewatch/insights/internal/resilience"
)

// Stats is the page-view summary shown on the dashboard
type Stats struct {
	PageViews int       `json:"page_views"`
	Visitors  int       `json:"visitors"`
	TopPages  []TopPage `json:"top_pages"`
	FetchedAt time.Time `json:"fetched_at"`
}

// TopPage is one entry of the most-viewed list
type TopPage struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// statsResponse mirrors the external API payload
type statsResponse struct {
	PageViews int `json:"pageviews"`
	Visitors  int `json:"visitors"`
	Pages     []struct {
		Path  string `json:"path"`
		Views int    `json:"views"`
	} `json:"pages"`
}

// Client fetches analytics data with connection pooling
type Client struct {
	baseURL string
	siteID  string
	token   string
	pool    *resilience.ConnectionPool
}

// NewClient creates an analytics client with circuit breaker protection
func NewClient(baseURL, siteID, token string) *Client {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	})

	pool := resilience.NewConnectionPool(10, 20, 30*time.Second, cb)

	return &Client{
		baseURL: baseURL,
		siteID:  siteID,
		token:   token,
		pool:    pool,
	}
}

// Enabled reports whether the client is configured to fetch anything
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.siteID != ""
}

// FetchStats fetches the page-view summary for a trailing window
func (c *Client) FetchStats(ctx context.Context, days int) (*Stats, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("analytics client not configured")
	}
	if days <= 0 {
		days = 7
	}

	url := fmt.Sprintf("%s/api/stats/%s?period=%dd", c.baseURL, c.siteID, days)

	headers := map[string]string{"Accept": "application/json"}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}

	// Reads retry on transient upstream failures; the circuit breaker inside
	// the pool stops the hammering once the upstream is genuinely down.
	var payload statsResponse
	err := resilience.Retry(ctx, func() error {
		resp, err := c.pool.DoRequest(ctx, http.MethodGet, url, headers)
		if err != nil {
			return apperrors.NewExternalAPIError("analytics", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			err := fmt.Errorf("analytics API error: status %d, body: %s", resp.StatusCode, string(body))
			if resp.StatusCode >= http.StatusInternalServerError {
				return apperrors.NewExternalAPIError("analytics", err)
			}
			return err
		}

		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return fmt.Errorf("failed to decode analytics stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analytics stats: %w", err)
	}

	stats := &Stats{
		PageViews: payload.PageViews,
		Visitors:  payload.Visitors,
		TopPages:  make([]TopPage, 0, len(payload.Pages)),
		FetchedAt: time.Now(),
	}
	for _, p := range payload.Pages {
		stats.TopPages = append(stats.TopPages, TopPage{Path: p.Path, Views: p.Views})
	}

	return stats, nil
}

// PoolStats returns connection pool statistics for the metrics endpoint
func (c *Client) PoolStats() map[string]interface{} {
	return c.pool.GetStats()
}

// Close releases pooled connections
func (c *Client) Close() error {
	return c.pool.Close()
}
