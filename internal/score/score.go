// Package score keeps the per-continent/category score records and the
// running totals across all of them.
package score

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pavelanni/geoquiz/internal/model"
)

// Backend is the durable medium behind the store. Writes are best-effort:
// a failed write never rolls back in-memory state.
type Backend interface {
	LoadScores() (map[model.ScoreKey]model.ScoreRecord, error)
	SaveScore(key model.ScoreKey, rec model.ScoreRecord) error
}

// Store holds one ScoreRecord per key plus running totals. A new completed
// session overwrites the prior record for its key; the store keeps the
// most recent attempt, not the historical best.
type Store struct {
	backend Backend

	mu             sync.Mutex
	records        map[model.ScoreKey]model.ScoreRecord
	totalCorrect   int
	totalAttempted int
	now            func() time.Time
}

// New creates a Store loaded from backend. A nil backend gives a
// memory-only store. If the backend cannot be read the store starts empty
// and keeps running without persistence.
func New(backend Backend) *Store {
	s := &Store{
		backend: backend,
		records: make(map[model.ScoreKey]model.ScoreRecord),
		now:     time.Now,
	}
	if backend == nil {
		return s
	}

	loaded, err := backend.LoadScores()
	if err != nil {
		slog.Warn("score store unavailable, starting empty", "error", err)
		return s
	}
	for key, rec := range loaded {
		s.records[key] = rec
		s.totalCorrect += rec.Correct
		s.totalAttempted += rec.Total
	}
	return s
}

// Record upserts the score for key. The old record's contribution is
// removed from the running totals before the new one is added, so a key
// is never counted twice.
func (s *Store) Record(key model.ScoreKey, correct, total int) {
	s.mu.Lock()

	if prev, ok := s.records[key]; ok {
		s.totalCorrect -= prev.Correct
		s.totalAttempted -= prev.Total
	}
	rec := model.ScoreRecord{Correct: correct, Total: total, RecordedAt: s.now()}
	s.records[key] = rec
	s.totalCorrect += correct
	s.totalAttempted += total
	s.mu.Unlock()

	if s.backend == nil {
		return
	}
	if err := s.backend.SaveScore(key, rec); err != nil {
		slog.Warn("failed to persist score", "continent", key.Continent, "category", key.Category, "error", err)
	}
}

// Get returns the record for key, if any.
func (s *Store) Get(key model.ScoreKey) (model.ScoreRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	return rec, ok
}

// Totals returns the running sums across all records.
func (s *Store) Totals() (totalCorrect, totalAttempted int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalCorrect, s.totalAttempted
}

// All returns a copy of every record.
func (s *Store) All() map[model.ScoreKey]model.ScoreRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.ScoreKey]model.ScoreRecord, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}
