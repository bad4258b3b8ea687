// Package kvstore persists small JSON blobs keyed by string, backing the
// public checklist-progress endpoints. The server-side store replaces the
// browser-local storage the admin tools used to rely on.
package kvstore

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/appstorewatch/insights/internal/database"
	apperrors "github.com/appstorewatch/insights/internal/errors"
)

// ErrNotFound is returned when a key has no stored value
var ErrNotFound = errors.New("key not found")

// Entry is one stored value with its last-write timestamp
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the key-value persistence interface
type Store interface {
	Get(key string) (*Entry, error)
	Set(key, value string) (*Entry, error)
	Delete(key string) error
}

// SQLStore persists entries in the kv_entries table
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a sqlite-backed store
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Get retrieves an entry by key
func (s *SQLStore) Get(key string) (*Entry, error) {
	stmt, err := s.db.GetPreparedStatement("get_kv_entry")
	if err != nil {
		return nil, err
	}

	entry := Entry{Key: key}
	err = stmt.QueryRow(key).Scan(&entry.Value, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to get kv entry")
	}

	return &entry, nil
}

// Set stores a value under a key, overwriting any prior value
func (s *SQLStore) Set(key, value string) (*Entry, error) {
	stmt, err := s.db.GetPreparedStatement("upsert_kv_entry")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := stmt.Exec(key, value, now); err != nil {
		return nil, apperrors.WrapError(err, "failed to set kv entry")
	}

	return &Entry{Key: key, Value: value, UpdatedAt: now}, nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *SQLStore) Delete(key string) error {
	stmt, err := s.db.GetPreparedStatement("delete_kv_entry")
	if err != nil {
		return err
	}

	if _, err := stmt.Exec(key); err != nil {
		return apperrors.WrapError(err, "failed to delete kv entry")
	}

	return nil
}

// MemoryStore is an in-process Store for tests and fallback operation
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Get retrieves an entry by key
func (s *MemoryStore) Get(key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *entry
	return &copied, nil
}

// Set stores a value under a key, overwriting any prior value
func (s *MemoryStore) Set(key, value string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	s.entries[key] = entry

	copied := *entry
	return &copied, nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
