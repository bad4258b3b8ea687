package database

import (
	"time"

	"github.com/google/uuid"
)

// Article statuses.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

// Fact-check session statuses.
const (
	FactCheckStatusInProgress = "in_progress"
	FactCheckStatusCompleted  = "completed"
	FactCheckStatusCancelled  = "cancelled"
)

// Fact-check item result statuses.
const (
	FactCheckItemVerified = "verified"
	FactCheckItemUpdated  = "updated"
	FactCheckItemFailed   = "failed"
	FactCheckItemSkipped  = "skipped"
)

// Article is one published or draft insight piece
type Article struct {
	ID          string     `json:"id" db:"id"`
	Slug        string     `json:"slug" db:"slug"`
	Title       string     `json:"title" db:"title"`
	Summary     string     `json:"summary" db:"summary"`
	Body        string     `json:"body" db:"body"`
	Category    string     `json:"category" db:"category"`
	Region      string     `json:"region" db:"region"`
	Status      string     `json:"status" db:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// StoreListing is one app store's reference row. CommissionRate and MinPayout
// are display strings ("30% (小規模 15%)", "¥1,000"); numeric sorting goes
// through listquery.ExtractNumber.
type StoreListing struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Operator       string    `json:"operator" db:"operator"`
	Region         string    `json:"region" db:"region"`
	CommissionRate string    `json:"commission_rate" db:"commission_rate"`
	MinPayout      string    `json:"min_payout" db:"min_payout"`
	AppCount       int       `json:"app_count" db:"app_count"`
	Status         string    `json:"status" db:"status"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TrendingTopic is a curated hot topic shown on the landing page
type TrendingTopic struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Category  string    `json:"category" db:"category"`
	Priority  string    `json:"priority" db:"priority"`
	Score     int       `json:"score" db:"score"`
	Summary   string    `json:"summary,omitempty" db:"summary"`
	SourceURL string    `json:"source_url,omitempty" db:"source_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TimelineEvent is one dated entry of the industry timeline
type TimelineEvent struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Category    string    `json:"category" db:"category"`
	OccurredOn  string    `json:"occurred_on" db:"occurred_on"` // 2006-01-02
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// FactCheckSession tracks one verification pass over the published data
type FactCheckSession struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Status        string     `json:"status" db:"status"`
	TotalItems    int        `json:"total_items" db:"total_items"`
	VerifiedCount int        `json:"verified_count" db:"verified_count"`
	UpdatedCount  int        `json:"updated_count" db:"updated_count"`
	FailedCount   int        `json:"failed_count" db:"failed_count"`
	SkippedCount  int        `json:"skipped_count" db:"skipped_count"`
	Notes         string     `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// FactCheckRecord is one immutable audit entry of a session. Records are
// append-only; corrections append a new record rather than editing.
type FactCheckRecord struct {
	ID            string    `json:"id" db:"id"`
	SessionID     string    `json:"session_id" db:"session_id"`
	ItemID        string    `json:"item_id" db:"item_id"`
	Status        string    `json:"status" db:"status"`
	PreviousValue string    `json:"previous_value,omitempty" db:"previous_value"`
	NewValue      string    `json:"new_value,omitempty" db:"new_value"`
	Notes         string    `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SiteStatistics aggregates entity counts for the dashboard
type SiteStatistics struct {
	Articles          int `json:"articles"`
	PublishedArticles int `json:"published_articles"`
	StoreListings     int `json:"store_listings"`
	TrendingTopics    int `json:"trending_topics"`
	TimelineEvents    int `json:"timeline_events"`
	FactCheckSessions int `json:"factcheck_sessions"`
}

// NewArticle creates a draft article with a generated ID
func NewArticle(slug, title, summary, body, category, region string) *Article {
	now := time.Now()
	return &Article{
		ID:        uuid.New().String(),
		Slug:      slug,
		Title:     title,
		Summary:   summary,
		Body:      body,
		Category:  category,
		Region:    region,
		Status:    ArticleStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewStoreListing creates a store listing with a generated ID
func NewStoreListing(name, operator, region string) *StoreListing {
	now := time.Now()
	return &StoreListing{
		ID:        uuid.New().String(),
		Name:      name,
		Operator:  operator,
		Region:    region,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTrendingTopic creates a trending topic with a generated ID
func NewTrendingTopic(title, category, priority string, score int) *TrendingTopic {
	now := time.Now()
	return &TrendingTopic{
		ID:        uuid.New().String(),
		Title:     title,
		Category:  category,
		Priority:  priority,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTimelineEvent creates a timeline event with a generated ID
func NewTimelineEvent(title, description, category, occurredOn string) *TimelineEvent {
	return &TimelineEvent{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Category:    category,
		OccurredOn:  occurredOn,
		CreatedAt:   time.Now(),
	}
}

// NewFactCheckSession creates an in-progress session with zeroed counters
func NewFactCheckSession(title string, totalItems int) *FactCheckSession {
	return &FactCheckSession{
		ID:         uuid.New().String(),
		Title:      title,
		Status:     FactCheckStatusInProgress,
		TotalItems: totalItems,
		CreatedAt:  time.Now(),
	}
}

// NewFactCheckRecord creates an audit record for one checked item
func NewFactCheckRecord(sessionID, itemID, status, prev, next, notes string) *FactCheckRecord {
	return &FactCheckRecord{
		ID:            uuid.New().String(),
		SessionID:     sessionID,
		ItemID:        itemID,
		Status:        status,
		PreviousValue: prev,
		NewValue:      next,
		Notes:         notes,
		CreatedAt:     time.Now(),
	}
}
