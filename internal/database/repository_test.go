package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db)
}

func TestArticleCRUD(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.CreateArticle(NewArticle(
		"commission-changes-2026", "Commission changes", "summary", "body", "fees", "global"))
	require.NoError(t, err)
	assert.Equal(t, ArticleStatusDraft, created.Status)
	assert.Nil(t, created.PublishedAt)

	got, err := repo.GetArticle(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Slug, got.Slug)

	bySlug, err := repo.GetArticleBySlug("commission-changes-2026")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	now := time.Now()
	got.Status = ArticleStatusPublished
	got.PublishedAt = &now
	updated, err := repo.UpdateArticle(got)
	require.NoError(t, err)
	assert.Equal(t, ArticleStatusPublished, updated.Status)
	require.NotNil(t, updated.PublishedAt)

	published, err := repo.ListPublishedArticles()
	require.NoError(t, err)
	require.Len(t, published, 1)

	all, err := repo.ListArticles()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.DeleteArticle(created.ID))

	_, err = repo.GetArticle(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetArticle("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetArticleBySlug("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.UpdateArticle(&Article{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteArticle("missing"), ErrNotFound)
}

func TestPublishedArticlesExcludeDrafts(t *testing.T) {
	repo := newTestRepo(t)

	draft := NewArticle("draft-post", "Draft", "", "", "news", "")
	_, err := repo.CreateArticle(draft)
	require.NoError(t, err)

	pub := NewArticle("published-post", "Published", "", "", "news", "")
	pub.Status = ArticleStatusPublished
	now := time.Now()
	pub.PublishedAt = &now
	_, err = repo.CreateArticle(pub)
	require.NoError(t, err)

	published, err := repo.ListPublishedArticles()
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "published-post", published[0].Slug)
}

func TestStoreListingCRUD(t *testing.T) {
	repo := newTestRepo(t)

	listing := NewStoreListing("App Store", "Apple", "global")
	listing.CommissionRate = "30% (小規模 15%)"
	listing.MinPayout = "¥1,000"
	listing.AppCount = 1800000

	created, err := repo.CreateStoreListing(listing)
	require.NoError(t, err)

	got, err := repo.GetStoreListing(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "30% (小規模 15%)", got.CommissionRate)
	assert.Equal(t, 1800000, got.AppCount)

	got.Notes = "rate revised"
	updated, err := repo.UpdateStoreListing(got)
	require.NoError(t, err)
	assert.Equal(t, "rate revised", updated.Notes)

	listings, err := repo.ListStoreListings()
	require.NoError(t, err)
	assert.Len(t, listings, 1)

	require.NoError(t, repo.DeleteStoreListing(created.ID))
	_, err = repo.GetStoreListing(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrendingTopicOrderedByScore(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.CreateTrendingTopic(NewTrendingTopic("low", "fees", "normal", 10))
	require.NoError(t, err)
	_, err = repo.CreateTrendingTopic(NewTrendingTopic("high", "fees", "high", 90))
	require.NoError(t, err)
	_, err = repo.CreateTrendingTopic(NewTrendingTopic("mid", "policy", "normal", 50))
	require.NoError(t, err)

	topics, err := repo.ListTrendingTopics(10)
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, "high", topics[0].Title)
	assert.Equal(t, "mid", topics[1].Title)
	assert.Equal(t, "low", topics[2].Title)

	limited, err := repo.ListTrendingTopics(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestTrendingTopicUpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)

	topic, err := repo.CreateTrendingTopic(NewTrendingTopic("fees", "fees", "normal", 5))
	require.NoError(t, err)

	topic.Score = 99
	updated, err := repo.UpdateTrendingTopic(topic)
	require.NoError(t, err)
	assert.Equal(t, 99, updated.Score)

	require.NoError(t, repo.DeleteTrendingTopic(topic.ID))
	_, err = repo.GetTrendingTopic(topic.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimelineEventsChronological(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.CreateTimelineEvent(NewTimelineEvent("later", "", "policy", "2026-03-01"))
	require.NoError(t, err)
	_, err = repo.CreateTimelineEvent(NewTimelineEvent("earlier", "", "policy", "2025-01-15"))
	require.NoError(t, err)

	events, err := repo.ListTimelineEvents()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "earlier", events[0].Title)
	assert.Equal(t, "later", events[1].Title)
}

func TestFactCheckSessionAndHistory(t *testing.T) {
	repo := newTestRepo(t)

	session, err := repo.CreateFactCheckSession(NewFactCheckSession("Q3 audit", 5))
	require.NoError(t, err)
	assert.Equal(t, FactCheckStatusInProgress, session.Status)

	_, err = repo.AppendFactCheckRecord(NewFactCheckRecord(session.ID, "store-1", FactCheckItemVerified, "", "", ""))
	require.NoError(t, err)
	_, err = repo.AppendFactCheckRecord(NewFactCheckRecord(session.ID, "store-2", FactCheckItemUpdated, "30%", "27%", "rate cut"))
	require.NoError(t, err)

	records, err := repo.ListFactCheckRecords(session.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "store-1", records[0].ItemID)
	assert.Equal(t, "27%", records[1].NewValue)

	session.VerifiedCount = 1
	session.UpdatedCount = 1
	_, err = repo.UpdateFactCheckSession(session)
	require.NoError(t, err)

	got, err := repo.GetFactCheckSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VerifiedCount)
	assert.Equal(t, 1, got.UpdatedCount)

	sessions, err := repo.ListFactCheckSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestGetSiteStatistics(t *testing.T) {
	repo := newTestRepo(t)

	pub := NewArticle("pub", "Published", "", "", "news", "")
	pub.Status = ArticleStatusPublished
	_, err := repo.CreateArticle(pub)
	require.NoError(t, err)
	_, err = repo.CreateArticle(NewArticle("draft", "Draft", "", "", "news", ""))
	require.NoError(t, err)
	_, err = repo.CreateStoreListing(NewStoreListing("Play", "Google", "global"))
	require.NoError(t, err)
	_, err = repo.CreateTrendingTopic(NewTrendingTopic("t", "fees", "normal", 1))
	require.NoError(t, err)
	_, err = repo.CreateTimelineEvent(NewTimelineEvent("e", "", "policy", "2025-06-01"))
	require.NoError(t, err)
	_, err = repo.CreateFactCheckSession(NewFactCheckSession("audit", 3))
	require.NoError(t, err)

	stats, err := repo.GetSiteStatistics()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Articles)
	assert.Equal(t, 1, stats.PublishedArticles)
	assert.Equal(t, 1, stats.StoreListings)
	assert.Equal(t, 1, stats.TrendingTopics)
	assert.Equal(t, 1, stats.TimelineEvents)
	assert.Equal(t, 1, stats.FactCheckSessions)
}

func TestAdminServiceTokens(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAdminService(repo, "test-secret", "editor", "hunter2")

	_, err := svc.Authenticate("editor", "wrong")
	assert.Error(t, err)
	_, err = svc.Authenticate("nobody", "hunter2")
	assert.Error(t, err)

	token, err := svc.Authenticate("editor", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "editor", subject)

	_, err = svc.ValidateSessionToken("not-a-token")
	assert.Error(t, err)

	other := NewAdminService(repo, "different-secret", "editor", "hunter2")
	_, err = other.ValidateSessionToken(token)
	assert.Error(t, err)
}
