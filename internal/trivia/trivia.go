// Package trivia serves the "Lucky" mode: random multiple-choice geography
// questions with exact option matching.
package trivia

import (
	"math/rand"

	"github.com/pavelanni/geoquiz/internal/model"
)

// Question is a trivia question as presented to the player: options are
// shuffled and the correct answer withheld.
type Question struct {
	ID       int64    `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Pool holds the loaded trivia questions. The pool is immutable after
// construction.
type Pool struct {
	questions []model.TriviaQuestion
	byID      map[int64]model.TriviaQuestion
}

// NewPool builds a pool from questions.
func NewPool(questions []model.TriviaQuestion) *Pool {
	byID := make(map[int64]model.TriviaQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &Pool{questions: questions, byID: byID}
}

// Len returns the number of questions in the pool.
func (p *Pool) Len() int {
	return len(p.questions)
}

// Random returns a random question with shuffled options, or ok=false for
// an empty pool.
func (p *Pool) Random() (Question, bool) {
	if len(p.questions) == 0 {
		return Question{}, false
	}
	q := p.questions[rand.Intn(len(p.questions))]

	options := make([]string, len(q.Options))
	copy(options, q.Options)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Question{ID: q.ID, Question: q.Question, Options: options}, true
}

// Check reports whether option is the correct answer for the question with
// the given ID. The canonical answer is returned either way so the UI can
// reveal it. ok is false for unknown question IDs.
func (p *Pool) Check(questionID int64, option string) (correct bool, answer string, ok bool) {
	q, found := p.byID[questionID]
	if !found {
		return false, "", false
	}
	return option == q.Answer, q.Answer, true
}
