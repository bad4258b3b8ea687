package types

// QuizScoreRequest carries the selected option ids per question
type QuizScoreRequest struct {
	Answers map[string][]string `json:"answers" binding:"required"`
}

// LoginRequest represents admin login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token string `json:"token"`
}

// ArticleRequest is the admin payload for creating or updating an article
type ArticleRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Summary     string `json:"summary"`
	Body        string `json:"body"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Region      string `json:"region"`
	PublishedAt string `json:"published_at"` // RFC 3339, empty for drafts
}

// StoreListingRequest is the admin payload for creating or updating a store listing
type StoreListingRequest struct {
	Name           string `json:"name" binding:"required"`
	Operator       string `json:"operator"`
	Region         string `json:"region"`
	CommissionRate string `json:"commission_rate"`
	MinPayout      string `json:"min_payout"`
	AppCount       int    `json:"app_count"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
}

// TrendingTopicRequest is the admin payload for creating or updating a trending topic
type TrendingTopicRequest struct {
	Title     string `json:"title" binding:"required"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
	Summary   string `json:"summary"`
	SourceURL string `json:"source_url"`
	Score     int    `json:"score"`
}

// TimelineEventRequest is the admin payload for creating a timeline event
type TimelineEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	OccurredOn  string `json:"occurred_on" binding:"required"` // 2006-01-02
}

// FactCheckCreateRequest starts a fact-check session
type FactCheckCreateRequest struct {
	Title      string `json:"title" binding:"required"`
	TotalItems int    `json:"total_items"`
	Notes      string `json:"notes"`
}

// FactCheckItemRequest records the outcome of checking one item
type FactCheckItemRequest struct {
	ItemID        string `json:"item_id" binding:"required"`
	Status        string `json:"status" binding:"required"`
	PreviousValue string `json:"previous_value"`
	NewValue      string `json:"new_value"`
	Notes         string `json:"notes"`
}

// FactCheckUpdateRequest mutates an in-progress session; nil fields are left unchanged
type FactCheckUpdateRequest struct {
	Title      *string `json:"title"`
	Notes      *string `json:"notes"`
	TotalItems *int    `json:"total_items"`
}

// ChecklistRequest stores serialized checklist progress for a key
type ChecklistRequest struct {
	Value string `json:"value" binding:"required"`
}
