package trivia

import (
	"sort"
	"testing"

	"github.com/pavelanni/geoquiz/internal/model"
)

func testQuestions() []model.TriviaQuestion {
	return []model.TriviaQuestion{
		{ID: 1, Question: "Which is the longest river?", Options: []string{"Nile", "Amazon", "Yangtze", "Mississippi"}, Answer: "Nile"},
		{ID: 2, Question: "Which is the highest mountain?", Options: []string{"K2", "Everest", "Denali"}, Answer: "Everest"},
	}
}

func TestRandomFromEmptyPool(t *testing.T) {
	p := NewPool(nil)
	if p.Len() != 0 {
		t.Fatalf("Len = %d, want 0", p.Len())
	}
	if _, ok := p.Random(); ok {
		t.Error("Random returned a question from an empty pool")
	}
}

func TestRandomShufflesNotMutates(t *testing.T) {
	p := NewPool(testQuestions())

	for i := 0; i < 20; i++ {
		q, ok := p.Random()
		if !ok {
			t.Fatal("Random returned no question")
		}
		orig, found := p.byID[q.ID]
		if !found {
			t.Fatalf("Random returned unknown ID %d", q.ID)
		}
		if len(q.Options) != len(orig.Options) {
			t.Fatalf("option count changed: %d vs %d", len(q.Options), len(orig.Options))
		}
		// Same options, any order.
		got := append([]string(nil), q.Options...)
		want := append([]string(nil), orig.Options...)
		sort.Strings(got)
		sort.Strings(want)
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("options differ: %v vs %v", q.Options, orig.Options)
			}
		}
	}

	// The pool's own option order must be untouched.
	if p.questions[0].Options[0] != "Nile" {
		t.Errorf("pool options mutated: %v", p.questions[0].Options)
	}
}

func TestCheck(t *testing.T) {
	p := NewPool(testQuestions())

	tests := []struct {
		name        string
		id          int64
		option      string
		wantCorrect bool
		wantOK      bool
	}{
		{"correct", 1, "Nile", true, true},
		{"incorrect", 1, "Amazon", false, true},
		{"case sensitive", 1, "nile", false, true},
		{"unknown question", 99, "Nile", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, answer, ok := p.Check(tt.id, tt.option)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if correct != tt.wantCorrect {
				t.Errorf("correct = %v, want %v", correct, tt.wantCorrect)
			}
			if ok && answer == "" {
				t.Error("answer not revealed")
			}
		})
	}
}
