// Package quiz implements the session engine: per-item answer state over a
// fixed set of quiz items, completion detection, and score hand-off.
package quiz

import (
	"sync"
	"time"

	"github.com/pavelanni/geoquiz/internal/match"
	"github.com/pavelanni/geoquiz/internal/model"
)

// Phase is the session state machine phase.
type Phase string

const (
	// PhaseActive means unanswered items remain and no item is open.
	PhaseActive Phase = "active"
	// PhaseAwaitingAnswer means exactly one item is open for input.
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	// PhaseComplete means every item has been answered.
	PhaseComplete Phase = "complete"
)

// Outcome is the per-item answer state. Once an item leaves
// OutcomeUnanswered it never goes back; answers are final.
type Outcome string

const (
	OutcomeUnanswered Outcome = "unanswered"
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
)

// Recorder receives the final tally when a session completes.
type Recorder interface {
	Record(key model.ScoreKey, correct, total int)
}

// Result reports the effect of a submit or skip. Applied is false when the
// operation was invoked in a state where it does not apply; the UI wires
// events speculatively, so this is an expected no-op rather than an error.
type Result struct {
	Applied       bool   `json:"applied"`
	ItemID        string `json:"item_id,omitempty"`
	Correct       bool   `json:"correct"`
	Skipped       bool   `json:"skipped,omitempty"`
	CanonicalName string `json:"canonical_name,omitempty"`
	Phase         Phase  `json:"phase"`
}

// ItemState is the observable per-item progress.
type ItemState struct {
	ItemID     string  `json:"item_id"`
	Outcome    Outcome `json:"outcome"`
	UserAnswer string  `json:"user_answer"`
}

// Snapshot is the full observable session state.
type Snapshot struct {
	ID         string         `json:"id"`
	Key        model.ScoreKey `json:"key"`
	Phase      Phase          `json:"phase"`
	ActiveItem string         `json:"active_item,omitempty"`
	Answered   int            `json:"answered"`
	Correct    int            `json:"correct"`
	Total      int            `json:"total"`
	Items      []ItemState    `json:"items"`
	LastResult *Result        `json:"last_result,omitempty"`
}

type itemState struct {
	outcome    Outcome
	userAnswer string
}

// Session is one quiz attempt over a fixed item set.
type Session struct {
	id      string
	key     model.ScoreKey
	items   []model.QuizItem
	index   map[string]int
	matcher *match.Matcher

	mu         sync.Mutex
	states     []itemState
	activeIdx  int // -1 when no item is open
	recorder   Recorder
	recorded   bool
	lastResult *Result
	touchedAt  time.Time
	now        func() time.Time
}

// NewSession creates a session over items. The recorder may be nil, in
// which case completion is not reported anywhere.
func NewSession(id string, key model.ScoreKey, items []model.QuizItem, m *match.Matcher, rec Recorder) *Session {
	return newSessionWithClock(id, key, items, m, rec, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(id string, key model.ScoreKey, items []model.QuizItem, m *match.Matcher, rec Recorder, now func() time.Time) *Session {
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[item.ID] = i
	}
	return &Session{
		id:        id,
		key:       key,
		items:     items,
		index:     index,
		matcher:   m,
		states:    make([]itemState, len(items)),
		activeIdx: -1,
		recorder:  rec,
		touchedAt: now(),
		now:       now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Key returns the continent+category key this session scores against.
func (s *Session) Key() model.ScoreKey { return s.key }

// Select opens an item for input. It is rejected (ok=false) when the item
// is unknown, already answered, another item is already open, or the
// session is complete. The open item stays open on a rejected select; a
// stray double-click must not discard input in progress.
func (s *Session) Select(itemID string) (hint string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx, found := s.index[itemID]
	if !found || s.activeIdx != -1 || s.phaseLocked() == PhaseComplete {
		return "", false
	}
	if s.states[idx].outcome != OutcomeUnanswered {
		return "", false
	}

	s.activeIdx = idx
	return s.items[idx].Hint, true
}

// Submit scores the open item against text. With no open item it is a
// no-op with Applied=false.
func (s *Session) Submit(text string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.activeIdx == -1 {
		return Result{Applied: false, Phase: s.phaseLocked()}
	}

	item := s.items[s.activeIdx]
	correct := false
	skipped := match.Normalize(text) == ""
	if !skipped {
		correct = s.matcher.IsCorrect(text, item.AcceptedAnswers)
	}

	outcome := OutcomeIncorrect
	if correct {
		outcome = OutcomeCorrect
	}
	s.states[s.activeIdx] = itemState{outcome: outcome, userAnswer: text}
	s.activeIdx = -1

	res := Result{
		Applied:       true,
		ItemID:        item.ID,
		Correct:       correct,
		Skipped:       skipped,
		CanonicalName: item.Name,
		Phase:         s.phaseLocked(),
	}
	s.lastResult = &res
	s.maybeRecordLocked()
	return res
}

// Skip answers the open item with nothing; always incorrect.
func (s *Session) Skip() Result {
	return s.Submit("")
}

// SkipRemaining closes the open item (if any) and marks every still
// unanswered item incorrect with an empty answer. It returns how many
// items were affected. The UI timer calls this on expiry; the engine
// itself has no notion of wall-clock time.
func (s *Session) SkipRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	affected := 0
	s.activeIdx = -1
	for i := range s.states {
		if s.states[i].outcome == OutcomeUnanswered {
			s.states[i] = itemState{outcome: OutcomeIncorrect}
			affected++
		}
	}
	if affected > 0 {
		s.lastResult = nil
	}
	s.maybeRecordLocked()
	return affected
}

// Reset clears all per-item state and returns the session to the active
// phase. A subsequent completion records a fresh score.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.states = make([]itemState, len(s.items))
	s.activeIdx = -1
	s.recorded = false
	s.lastResult = nil
}

// Progress returns how many items are answered, how many of those were
// correct, and the total item count.
func (s *Session) Progress() (answered, correct, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

// Phase returns the current state machine phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked()
}

// Snapshot returns the full observable state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answered, correct, total := s.progressLocked()
	snap := Snapshot{
		ID:       s.id,
		Key:      s.key,
		Phase:    s.phaseLocked(),
		Answered: answered,
		Correct:  correct,
		Total:    total,
		Items:    make([]ItemState, len(s.items)),
	}
	if s.activeIdx != -1 {
		snap.ActiveItem = s.items[s.activeIdx].ID
	}
	for i, item := range s.items {
		snap.Items[i] = ItemState{
			ItemID:     item.ID,
			Outcome:    s.states[i].outcome,
			UserAnswer: s.states[i].userAnswer,
		}
	}
	if s.lastResult != nil {
		res := *s.lastResult
		snap.LastResult = &res
	}
	return snap
}

// IdleSince reports the last time any operation touched the session.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

func (s *Session) touch() {
	s.touchedAt = s.now()
}

func (s *Session) progressLocked() (answered, correct, total int) {
	for _, st := range s.states {
		if st.outcome != OutcomeUnanswered {
			answered++
		}
		if st.outcome == OutcomeCorrect {
			correct++
		}
	}
	return answered, correct, len(s.items)
}

func (s *Session) phaseLocked() Phase {
	answered, _, total := s.progressLocked()
	if total > 0 && answered == total {
		return PhaseComplete
	}
	if s.activeIdx != -1 {
		return PhaseAwaitingAnswer
	}
	return PhaseActive
}

// maybeRecordLocked hands the final tally to the recorder the first time
// the session enters the complete phase. Re-entering complete without an
// intervening Reset never records again.
func (s *Session) maybeRecordLocked() {
	if s.recorded || s.recorder == nil {
		return
	}
	if s.phaseLocked() != PhaseComplete {
		return
	}
	_, correct, total := s.progressLocked()
	s.recorder.Record(s.key, correct, total)
	s.recorded = true
}
