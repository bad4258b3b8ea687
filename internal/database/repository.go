package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested record does not exist. Handlers
// map it to a 404 view.
var ErrNotFound = errors.New("record not found")

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

const articleColumns = `id, slug, title, summary, body, category, region, status, published_at, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (*Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Summary, &a.Body, &a.Category,
		&a.Region, &a.Status, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateArticle inserts an article and returns it
func (r *Repository) CreateArticle(a *Article) (*Article, error) {
	_, err := r.db.Exec(`
		INSERT INTO articles (id, slug, title, summary, body, category, region, status, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Slug, a.Title, a.Summary, a.Body, a.Category, a.Region, a.Status, a.PublishedAt, a.CreatedAt, a.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	return a, nil
}

// GetArticle gets an article by ID
func (r *Repository) GetArticle(id string) (*Article, error) {
	a, err := scanArticle(r.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

// GetArticleBySlug gets an article by its public slug
func (r *Repository) GetArticleBySlug(slug string) (*Article, error) {
	stmt, err := r.db.GetPreparedStatement("get_article_by_slug")
	if err != nil {
		return nil, err
	}

	a, err := scanArticle(stmt.QueryRow(slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by slug: %w", err)
	}
	return a, nil
}

// ListArticles lists all articles, newest first
func (r *Repository) ListArticles() ([]*Article, error) {
	rows, err := r.db.Query(`SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// ListPublishedArticles lists published articles, newest publication first
func (r *Repository) ListPublishedArticles() ([]*Article, error) {
	stmt, err := r.db.GetPreparedStatement("list_published_articles")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list published articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

func collectArticles(rows *sql.Rows) ([]*Article, error) {
	articles := make([]*Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

// UpdateArticle overwrites the mutable fields of an article and returns the
// stored row. Last write wins.
func (r *Repository) UpdateArticle(a *Article) (*Article, error) {
	a.UpdatedAt = time.Now()

	res, err := r.db.Exec(`
		UPDATE articles SET slug = ?, title = ?, summary = ?, body = ?, category = ?,
			region = ?, status = ?, published_at = ?, updated_at = ?
		WHERE id = ?
	`, a.Slug, a.Title, a.Summary, a.Body, a.Category, a.Region, a.Status, a.PublishedAt, a.UpdatedAt, a.ID)

	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return a, nil
}

// DeleteArticle deletes an article by ID
func (r *Repository) DeleteArticle(id string) error {
	res, err := r.db.Exec(`DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const storeColumns = `id, name, operator, region, commission_rate, min_payout, app_count, status, notes, created_at, updated_at`

func scanStoreListing(row interface{ Scan(...any) error }) (*StoreListing, error) {
	var s StoreListing
	err := row.Scan(&s.ID, &s.Name, &s.Operator, &s.Region, &s.CommissionRate,
		&s.MinPayout, &s.AppCount, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStoreListing inserts a store listing and returns it
func (r *Repository) CreateStoreListing(s *StoreListing) (*StoreListing, error) {
	_, err := r.db.Exec(`
		INSERT INTO store_listings (id, name, operator, region, commission_rate, min_payout, app_count, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Operator, s.Region, s.CommissionRate, s.MinPayout, s.AppCount, s.Status, s.Notes, s.CreatedAt, s.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create store listing: %w", err)
	}

	return s, nil
}

// GetStoreListing gets a store listing by ID
func (r *Repository) GetStoreListing(id string) (*StoreListing, error) {
	s, err := scanStoreListing(r.db.QueryRow(`SELECT `+storeColumns+` FROM store_listings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store listing: %w", err)
	}
	return s, nil
}

// ListStoreListings lists all store listings in name order
func (r *Repository) ListStoreListings() ([]*StoreListing, error) {
	rows, err := r.db.Query(`SELECT ` + storeColumns + ` FROM store_listings ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list store listings: %w", err)
	}
	defer rows.Close()

	listings := make([]*StoreListing, 0)
	for rows.Next() {
		s, err := scanStoreListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store listing: %w", err)
		}
		listings = append(listings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate store listings: %w", err)
	}
	return listings, nil
}

// UpdateStoreListing overwrites a store listing and returns the stored row
func (r *Repository) UpdateStoreListing(s *StoreListing) (*StoreListing, error) {
	s.UpdatedAt = time.Now()

	res, err := r.db.Exec(`
		UPDATE store_listings SET name = ?, operator = ?, region = ?, commission_rate = ?,
			min_payout = ?, app_count = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, s.Name, s.Operator, s.Region, s.CommissionRate, s.MinPayout, s.AppCount, s.Status, s.Notes, s.UpdatedAt, s.ID)

	if err != nil {
		return nil, fmt.Errorf("failed to update store listing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s, nil
}

// DeleteStoreListing deletes a store listing by ID
func (r *Repository) DeleteStoreListing(id string) error {
	res, err := r.db.Exec(`DELETE FROM store_listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete store listing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const topicColumns = `id, title, category, priority, score, summary, source_url, created_at, updated_at`

func scanTrendingTopic(row interface{ Scan(...any) error }) (*TrendingTopic, error) {
	var t TrendingTopic
	err := row.Scan(&t.ID, &t.Title, &t.Category, &t.Priority, &t.Score,
		&t.Summary, &t.SourceURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTrendingTopic inserts a trending topic and returns it
func (r *Repository) CreateTrendingTopic(t *TrendingTopic) (*TrendingTopic, error) {
	_, err := r.db.Exec(`
		INSERT INTO trending_topics (id, title, category, priority, score, summary, source_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Category, t.Priority, t.Score, t.Summary, t.SourceURL, t.CreatedAt, t.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create trending topic: %w", err)
	}

	return t, nil
}

// GetTrendingTopic gets a trending topic by ID
func (r *Repository) GetTrendingTopic(id string) (*TrendingTopic, error) {
	t, err := scanTrendingTopic(r.db.QueryRow(`SELECT `+topicColumns+` FROM trending_topics WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trending topic: %w", err)
	}
	return t, nil
}

// ListTrendingTopics lists all trending topics, highest score first
func (r *Repository) ListTrendingTopics(limit int) ([]*TrendingTopic, error) {
	stmt, err := r.db.GetPreparedStatement("list_trending_by_score")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trending topics: %w", err)
	}
	defer rows.Close()

	topics := make([]*TrendingTopic, 0)
	for rows.Next() {
		t, err := scanTrendingTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trending topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trending topics: %w", err)
	}
	return topics, nil
}

// UpdateTrendingTopic overwrites a trending topic and returns the stored row
func (r *Repository) UpdateTrendingTopic(t *TrendingTopic) (*TrendingTopic, error) {
	t.UpdatedAt = time.Now()

	res, err := r.db.Exec(`
		UPDATE trending_topics SET title = ?, category = ?, priority = ?, score = ?,
			summary = ?, source_url = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Category, t.Priority, t.Score, t.Summary, t.SourceURL, t.UpdatedAt, t.ID)

	if err != nil {
		return nil, fmt.Errorf("failed to update trending topic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return t, nil
}

// DeleteTrendingTopic deletes a trending topic by ID
func (r *Repository) DeleteTrendingTopic(id string) error {
	res, err := r.db.Exec(`DELETE FROM trending_topics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trending topic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const eventColumns = `id, title, description, category, occurred_on, created_at`

func scanTimelineEvent(row interface{ Scan(...any) error }) (*TimelineEvent, error) {
	var e TimelineEvent
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.OccurredOn, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateTimelineEvent inserts a timeline event and returns it
func (r *Repository) CreateTimelineEvent(e *TimelineEvent) (*TimelineEvent, error) {
	_, err := r.db.Exec(`
		INSERT INTO timeline_events (id, title, description, category, occurred_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Title, e.Description, e.Category, e.OccurredOn, e.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create timeline event: %w", err)
	}

	return e, nil
}

// GetTimelineEvent gets a timeline event by ID
func (r *Repository) GetTimelineEvent(id string) (*TimelineEvent, error) {
	e, err := scanTimelineEvent(r.db.QueryRow(`SELECT `+eventColumns+` FROM timeline_events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline event: %w", err)
	}
	return e, nil
}

// ListTimelineEvents lists all timeline events in chronological order
func (r *Repository) ListTimelineEvents() ([]*TimelineEvent, error) {
	rows, err := r.db.Query(`SELECT ` + eventColumns + ` FROM timeline_events ORDER BY occurred_on ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline events: %w", err)
	}
	defer rows.Close()

	events := make([]*TimelineEvent, 0)
	for rows.Next() {
		e, err := scanTimelineEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timeline event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timeline events: %w", err)
	}
	return events, nil
}

// UpdateTimelineEvent overwrites a timeline event and returns the stored row
func (r *Repository) UpdateTimelineEvent(e *TimelineEvent) (*TimelineEvent, error) {
	res, err := r.db.Exec(`
		UPDATE timeline_events SET title = ?, description = ?, category = ?, occurred_on = ?
		WHERE id = ?
	`, e.Title, e.Description, e.Category, e.OccurredOn, e.ID)

	if err != nil {
		return nil, fmt.Errorf("failed to update timeline event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return e, nil
}

// DeleteTimelineEvent deletes a timeline event by ID
func (r *Repository) DeleteTimelineEvent(id string) error {
	res, err := r.db.Exec(`DELETE FROM timeline_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete timeline event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const sessionColumns = `id, title, status, total_items, verified_count, updated_count, failed_count, skipped_count, notes, created_at, completed_at`

func scanFactCheckSession(row interface{ Scan(...any) error }) (*FactCheckSession, error) {
	var s FactCheckSession
	err := row.Scan(&s.ID, &s.Title, &s.Status, &s.TotalItems, &s.VerifiedCount,
		&s.UpdatedCount, &s.FailedCount, &s.SkippedCount, &s.Notes, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateFactCheckSession inserts a fact-check session and returns it
func (r *Repository) CreateFactCheckSession(s *FactCheckSession) (*FactCheckSession, error) {
	_, err := r.db.Exec(`
		INSERT INTO factcheck_sessions (id, title, status, total_items, verified_count, updated_count, failed_count, skipped_count, notes, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Title, s.Status, s.TotalItems, s.VerifiedCount, s.UpdatedCount, s.FailedCount, s.SkippedCount, s.Notes, s.CreatedAt, s.CompletedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create fact-check session: %w", err)
	}

	return s, nil
}

// GetFactCheckSession gets a fact-check session by ID
func (r *Repository) GetFactCheckSession(id string) (*FactCheckSession, error) {
	s, err := scanFactCheckSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM factcheck_sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fact-check session: %w", err)
	}
	return s, nil
}

// ListFactCheckSessions lists all fact-check sessions, newest first
func (r *Repository) ListFactCheckSessions() ([]*FactCheckSession, error) {
	rows, err := r.db.Query(`SELECT ` + sessionColumns + ` FROM factcheck_sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fact-check sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*FactCheckSession, 0)
	for rows.Next() {
		s, err := scanFactCheckSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fact-check session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fact-check sessions: %w", err)
	}
	return sessions, nil
}

// UpdateFactCheckSession overwrites a fact-check session and returns the
// stored row
func (r *Repository) UpdateFactCheckSession(s *FactCheckSession) (*FactCheckSession, error) {
	res, err := r.db.Exec(`
		UPDATE factcheck_sessions SET title = ?, status = ?, total_items = ?,
			verified_count = ?, updated_count = ?, failed_count = ?, skipped_count = ?,
			notes = ?, completed_at = ?
		WHERE id = ?
	`, s.Title, s.Status, s.TotalItems, s.VerifiedCount, s.UpdatedCount,
		s.FailedCount, s.SkippedCount, s.Notes, s.CompletedAt, s.ID)

	if err != nil {
		return nil, fmt.Errorf("failed to update fact-check session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s, nil
}

// AppendFactCheckRecord inserts an immutable history record
func (r *Repository) AppendFactCheckRecord(rec *FactCheckRecord) (*FactCheckRecord, error) {
	stmt, err := r.db.GetPreparedStatement("insert_factcheck_record")
	if err != nil {
		return nil, err
	}

	_, err = stmt.Exec(rec.ID, rec.SessionID, rec.ItemID, rec.Status,
		rec.PreviousValue, rec.NewValue, rec.Notes, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append fact-check record: %w", err)
	}

	return rec, nil
}

// ListFactCheckRecords lists a session's history records in append order
func (r *Repository) ListFactCheckRecords(sessionID string) ([]*FactCheckRecord, error) {
	stmt, err := r.db.GetPreparedStatement("get_factcheck_history")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fact-check records: %w", err)
	}
	defer rows.Close()

	records := make([]*FactCheckRecord, 0)
	for rows.Next() {
		var rec FactCheckRecord
		err := rows.Scan(&rec.ID, &rec.SessionID, &rec.ItemID, &rec.Status,
			&rec.PreviousValue, &rec.NewValue, &rec.Notes, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fact-check record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fact-check records: %w", err)
	}
	return records, nil
}

// GetSiteStatistics counts each content entity for the dashboard
func (r *Repository) GetSiteStatistics() (*SiteStatistics, error) {
	stats := &SiteStatistics{}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM articles`, &stats.Articles},
		{`SELECT COUNT(*) FROM articles WHERE status = 'published'`, &stats.PublishedArticles},
		{`SELECT COUNT(*) FROM store_listings`, &stats.StoreListings},
		{`SELECT COUNT(*) FROM trending_topics`, &stats.TrendingTopics},
		{`SELECT COUNT(*) FROM timeline_events`, &stats.TimelineEvents},
		{`SELECT COUNT(*) FROM factcheck_sessions`, &stats.FactCheckSessions},
	}

	for _, c := range counts {
		if err := r.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	return stats, nil
}
