// Package inmemory provides a map-backed storage driver.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/papercomputeco/genai/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of sessions
	mu sync.RWMutex

	// sessions maps a session id to its records, ordered by sequence
	sessions map[string][]*storage.Record

	// order holds session ids in first-seen order
	order []string
}

// NewDriver creates a new in-memory storer.
func NewDriver() *Driver {
	return &Driver{
		sessions: make(map[string][]*storage.Record),
	}
}

// PutRecord stores a copy of record. Returns false if the session already
// holds a record with the same sequence.
func (s *Driver) PutRecord(_ context.Context, record *storage.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.sessions[record.SessionID]
	if !ok {
		s.order = append(s.order, record.SessionID)
	}

	i, found := slices.BinarySearchFunc(records, record.Sequence, func(r *storage.Record, seq int) int {
		return r.Sequence - seq
	})
	if found {
		return false, nil
	}

	stored := *record
	s.sessions[record.SessionID] = slices.Insert(records, i, &stored)
	return true, nil
}

// Records returns copies of the records of a session.
func (s *Driver) Records(_ context.Context, sessionID string) ([]*storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.sessions[sessionID]
	if !ok {
		return nil, storage.NotFoundError{SessionID: sessionID}
	}

	result := make([]*storage.Record, len(records))
	for i, r := range records {
		cp := *r
		result[i] = &cp
	}
	return result, nil
}

// Sessions summarizes every session, oldest first. Sessions that started
// at the same time keep their first-seen order.
func (s *Driver) Sessions(_ context.Context) ([]*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.Session, 0, len(s.order))
	for _, id := range s.order {
		records := s.sessions[id]
		session := &storage.Session{
			ID:        id,
			Provider:  records[0].Provider,
			Model:     records[0].Model,
			Records:   len(records),
			StartedAt: records[0].RecordedAt,
			LastAt:    records[0].RecordedAt,
		}
		for _, r := range records[1:] {
			if r.RecordedAt.Before(session.StartedAt) {
				session.StartedAt = r.RecordedAt
			}
			if r.RecordedAt.After(session.LastAt) {
				session.LastAt = r.RecordedAt
			}
		}
		result = append(result, session)
	}

	slices.SortStableFunc(result, func(a, b *storage.Session) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return result, nil
}

// Close is a no-op.
func (s *Driver) Close() error {
	return nil
}
