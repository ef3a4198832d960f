package quiz

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pavelanni/geoquiz/internal/match"
	"github.com/pavelanni/geoquiz/internal/model"
)

// DefaultSessionTTL is how long an idle session survives before the next
// sweep removes it. Abandoned sessions are discarded, never resumed.
const DefaultSessionTTL = 30 * time.Minute

// Manager owns the live sessions, keyed by random session IDs.
type Manager struct {
	matcher  *match.Matcher
	recorder Recorder
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewManager creates a session manager. A ttl of zero means
// DefaultSessionTTL.
func NewManager(m *match.Matcher, rec Recorder, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		matcher:  m,
		recorder: rec,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Start creates and registers a new session over items.
func (mgr *Manager) Start(key model.ScoreKey, items []model.QuizItem) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	sess := newSessionWithClock(id, key, items, mgr.matcher, mgr.recorder, mgr.now)

	mgr.mu.Lock()
	mgr.sweepLocked()
	mgr.sessions[id] = sess
	mgr.mu.Unlock()

	return sess, nil
}

// Get returns the session with the given ID, or nil.
func (mgr *Manager) Get(id string) *Session {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.sessions[id]
}

// Delete removes a session. Missing IDs are ignored.
func (mgr *Manager) Delete(id string) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	delete(mgr.sessions, id)
}

// Len returns the number of live sessions.
func (mgr *Manager) Len() int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return len(mgr.sessions)
}

// sweepLocked drops sessions idle past the TTL. Runs opportunistically on
// Start rather than from a background goroutine; session churn is low and
// every operation is otherwise synchronous.
func (mgr *Manager) sweepLocked() {
	cutoff := mgr.now().Add(-mgr.ttl)
	for id, sess := range mgr.sessions {
		if sess.IdleSince().Before(cutoff) {
			delete(mgr.sessions, id)
			slog.Debug("swept idle session", "id", id)
		}
	}
}

func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
