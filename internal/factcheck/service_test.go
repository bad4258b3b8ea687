package factcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appstorewatch/insights/internal/database"
)

func newTestService(t *testing.T, config Config) *Service {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewService(database.NewRepository(db), config)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, Config{})

	_, err := svc.Create("", 5, "")
	assert.Error(t, err)

	_, err = svc.Create("audit", -1, "")
	assert.Error(t, err)

	session, err := svc.Create("audit", 5, "")
	require.NoError(t, err)
	assert.Equal(t, database.FactCheckStatusInProgress, session.Status)
	assert.Equal(t, 5, session.TotalItems)
	assert.Zero(t, session.VerifiedCount)
	assert.Nil(t, session.CompletedAt)
}

func TestCreateStoresNotes(t *testing.T) {
	svc := newTestService(t, Config{})

	session, err := svc.Create("audit", 2, "focus on commission rows")
	require.NoError(t, err)
	assert.Equal(t, "focus on commission rows", session.Notes)

	stored, err := svc.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "focus on commission rows", stored.Notes)
}

func TestFullSessionLifecycle(t *testing.T) {
	svc := newTestService(t, Config{})

	session, err := svc.Create("Q3 store data audit", 5, "")
	require.NoError(t, err)

	results := []struct {
		itemID string
		status string
		prev   string
		next   string
	}{
		{"store-1", database.FactCheckItemVerified, "", ""},
		{"store-2", database.FactCheckItemVerified, "", ""},
		{"store-3", database.FactCheckItemVerified, "", ""},
		{"store-4", database.FactCheckItemUpdated, "30%", "27%"},
		{"store-5", database.FactCheckItemFailed, "", ""},
	}
	for _, r := range results {
		_, err := svc.RecordItemResult(session.ID, r.itemID, r.status, r.prev, r.next, "")
		require.NoError(t, err)
	}

	completed, err := svc.Complete(session.ID)
	require.NoError(t, err)
	assert.Equal(t, database.FactCheckStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, 3, completed.VerifiedCount)
	assert.Equal(t, 1, completed.UpdatedCount)
	assert.Equal(t, 1, completed.FailedCount)

	report, err := svc.Report(session.ID)
	require.NoError(t, err)
	require.Len(t, report.Records, 5)
	assert.Equal(t, "store-1", report.Records[0].ItemID)
	assert.Equal(t, "27%", report.Records[3].NewValue)
	assert.Equal(t, database.FactCheckStatusCompleted, report.Session.Status)
}

func TestRecordItemResultValidation(t *testing.T) {
	svc := newTestService(t, Config{})

	session, err := svc.Create("audit", 2, "")
	require.NoError(t, err)

	_, err = svc.RecordItemResult(session.ID, "", database.FactCheckItemVerified, "", "", "")
	assert.Error(t, err)

	_, err = svc.RecordItemResult(session.ID, "store-1", "confirmed", "", "", "")
	assert.Error(t, err)

	_, err = svc.RecordItemResult("missing", "store-1", database.FactCheckItemVerified, "", "", "")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCompletedSessionRejectsResultsByDefault(t *testing.T) {
	svc := newTestService(t, Config{})

	session, err := svc.Create("audit", 1, "")
	require.NoError(t, err)
	_, err = svc.Complete(session.ID)
	require.NoError(t, err)

	_, err = svc.RecordItemResult(session.ID, "store-1", database.FactCheckItemVerified, "", "", "")
	require.Error(t, err)

	report, err := svc.Report(session.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Records)
}

func TestCompletedSessionAcceptsResultsWhenConfigured(t *testing.T) {
	svc := newTestService(t, Config{AllowAppendAfterComplete: true})

	session, err := svc.Create("audit", 1, "")
	require.NoError(t, err)
	_, err = svc.Complete(session.ID)
	require.NoError(t, err)

	_, err = svc.RecordItemResult(session.ID, "store-1", database.FactCheckItemVerified, "", "", "late check")
	require.NoError(t, err)

	report, err := svc.Report(session.ID)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	got, err := svc.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VerifiedCount)
}

func TestCancelledSessionRejectsResultsRegardless(t *testing.T) {
	svc := newTestService(t, Config{AllowAppendAfterComplete: true})

	session, err := svc.Create("audit", 1, "")
	require.NoError(t, err)
	_, err = svc.Cancel(session.ID)
	require.NoError(t, err)

	_, err = svc.RecordItemResult(session.ID, "store-1", database.FactCheckItemVerified, "", "", "")
	assert.Error(t, err)
}

func TestTransitionsAreIrreversible(t *testing.T) {
	svc := newTestService(t, Config{})

	session, err := svc.Create("audit", 1, "")
	require.NoError(t, err)

	_, err = svc.Complete(session.ID)
	require.NoError(t, err)

	_, err = svc.Complete(session.ID)
	assert.Error(t, err)
	_, err = svc.Cancel(session.ID)
	assert.Error(t, err)
}

func TestUpdateOnlyWhileInProgress(t *testing.T) {
	svc := newTestService(t, Config{})

	session, err := svc.Create("audit", 3, "")
	require.NoError(t, err)

	title := "renamed audit"
	notes := "second pass"
	total := 10
	updated, err := svc.Update(session.ID, SessionUpdate{Title: &title, Notes: &notes, TotalItems: &total})
	require.NoError(t, err)
	assert.Equal(t, "renamed audit", updated.Title)
	assert.Equal(t, "second pass", updated.Notes)
	assert.Equal(t, 10, updated.TotalItems)

	empty := ""
	_, err = svc.Update(session.ID, SessionUpdate{Title: &empty})
	assert.Error(t, err)

	negative := -1
	_, err = svc.Update(session.ID, SessionUpdate{TotalItems: &negative})
	assert.Error(t, err)

	_, err = svc.Complete(session.ID)
	require.NoError(t, err)

	_, err = svc.Update(session.ID, SessionUpdate{Notes: &notes})
	assert.Error(t, err)
}

func TestListSessions(t *testing.T) {
	svc := newTestService(t, Config{})

	_, err := svc.Create("first", 1, "")
	require.NoError(t, err)
	_, err = svc.Create("second", 2, "")
	require.NoError(t, err)

	sessions, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
