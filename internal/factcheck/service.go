// Package factcheck implements the editorial verification workflow: a session
// is opened over a set of published data items, each item's check result is
// recorded into an append-only history, and the session is closed out with an
// aggregate report.
package factcheck

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/appstorewatch/insights/internal/database"
	apperrors "github.com/appstorewatch/insights/internal/errors"
)

// Config controls workflow edge cases.
type Config struct {
	// AllowAppendAfterComplete permits recording item results into a
	// completed session, turning the history into a pure audit log. Off by
	// default: a completed session rejects further results with a conflict.
	AllowAppendAfterComplete bool
}

// Service drives fact-check sessions over the repository
type Service struct {
	repo   *database.Repository
	config Config
}

// Report bundles a session with its full item history
type Report struct {
	Session *database.FactCheckSession  `json:"session"`
	Records []*database.FactCheckRecord `json:"records"`
}

// SessionUpdate carries the mutable fields of an in-progress session.
// Nil pointers leave the stored value untouched.
type SessionUpdate struct {
	Title      *string `json:"title,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	TotalItems *int    `json:"total_items,omitempty"`
}

// NewService creates a fact-check service
func NewService(repo *database.Repository, config Config) *Service {
	return &Service{repo: repo, config: config}
}

// Create opens a new in-progress session with zeroed counters
func (s *Service) Create(title string, totalItems int, notes string) (*database.FactCheckSession, error) {
	if title == "" {
		return nil, apperrors.NewValidationError("session title is required")
	}
	if totalItems < 0 {
		return nil, apperrors.NewValidationError("total items must not be negative")
	}

	session := database.NewFactCheckSession(title, totalItems)
	session.Notes = notes

	session, err := s.repo.CreateFactCheckSession(session)
	if err != nil {
		return nil, err
	}

	slog.Info("Fact-check session created",
		"session_id", session.ID,
		"title", session.Title,
		"total_items", session.TotalItems)

	return session, nil
}

// Get returns a single session
func (s *Service) Get(sessionID string) (*database.FactCheckSession, error) {
	return s.repo.GetFactCheckSession(sessionID)
}

// List returns all sessions, newest first
func (s *Service) List() ([]*database.FactCheckSession, error) {
	return s.repo.ListFactCheckSessions()
}

// RecordItemResult appends one item's check result to the session history and
// bumps the matching counter. History records are immutable; a correction is
// a second record for the same item.
func (s *Service) RecordItemResult(sessionID, itemID, status, prev, next, notes string) (*database.FactCheckRecord, error) {
	if itemID == "" {
		return nil, apperrors.NewValidationError("item id is required")
	}
	if !validItemStatus(status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown item status %q", status))
	}

	session, err := s.repo.GetFactCheckSession(sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case database.FactCheckStatusInProgress:
		// normal path
	case database.FactCheckStatusCompleted:
		if !s.config.AllowAppendAfterComplete {
			return nil, apperrors.NewConflictError("session is already completed")
		}
	default:
		return nil, apperrors.NewConflictError("session is cancelled")
	}

	record, err := s.repo.AppendFactCheckRecord(
		database.NewFactCheckRecord(sessionID, itemID, status, prev, next, notes))
	if err != nil {
		return nil, err
	}

	bumpCounter(session, status)
	if _, err := s.repo.UpdateFactCheckSession(session); err != nil {
		return nil, err
	}

	return record, nil
}

// Update mutates the free-form fields of an in-progress session
func (s *Service) Update(sessionID string, update SessionUpdate) (*database.FactCheckSession, error) {
	session, err := s.repo.GetFactCheckSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != database.FactCheckStatusInProgress {
		return nil, apperrors.NewConflictError("only in-progress sessions can be updated")
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, apperrors.NewValidationError("session title is required")
		}
		session.Title = *update.Title
	}
	if update.Notes != nil {
		session.Notes = *update.Notes
	}
	if update.TotalItems != nil {
		if *update.TotalItems < 0 {
			return nil, apperrors.NewValidationError("total items must not be negative")
		}
		session.TotalItems = *update.TotalItems
	}

	return s.repo.UpdateFactCheckSession(session)
}

// Complete finalizes an in-progress session. Irreversible.
func (s *Service) Complete(sessionID string) (*database.FactCheckSession, error) {
	return s.transition(sessionID, database.FactCheckStatusCompleted)
}

// Cancel abandons an in-progress session. Irreversible.
func (s *Service) Cancel(sessionID string) (*database.FactCheckSession, error) {
	return s.transition(sessionID, database.FactCheckStatusCancelled)
}

func (s *Service) transition(sessionID, target string) (*database.FactCheckSession, error) {
	session, err := s.repo.GetFactCheckSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != database.FactCheckStatusInProgress {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("session is %s and cannot transition to %s", session.Status, target))
	}

	now := time.Now()
	session.Status = target
	session.CompletedAt = &now

	updated, err := s.repo.UpdateFactCheckSession(session)
	if err != nil {
		return nil, err
	}

	slog.Info("Fact-check session closed",
		"session_id", session.ID,
		"status", target,
		"verified", session.VerifiedCount,
		"updated", session.UpdatedCount,
		"failed", session.FailedCount,
		"skipped", session.SkippedCount)

	return updated, nil
}

// Report returns the session together with every history record in append
// order
func (s *Service) Report(sessionID string) (*Report, error) {
	session, err := s.repo.GetFactCheckSession(sessionID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListFactCheckRecords(sessionID)
	if err != nil {
		return nil, err
	}

	return &Report{Session: session, Records: records}, nil
}

func validItemStatus(status string) bool {
	switch status {
	case database.FactCheckItemVerified,
		database.FactCheckItemUpdated,
		database.FactCheckItemFailed,
		database.FactCheckItemSkipped:
		return true
	}
	return false
}

func bumpCounter(session *database.FactCheckSession, status string) {
	switch status {
	case database.FactCheckItemVerified:
		session.VerifiedCount++
	case database.FactCheckItemUpdated:
		session.UpdatedCount++
	case database.FactCheckItemFailed:
		session.FailedCount++
	case database.FactCheckItemSkipped:
		session.SkippedCount++
	}
}
