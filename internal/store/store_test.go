package store

import (
	"testing"
	"time"

	"github.com/pavelanni/geoquiz/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestItem(t *testing.T, s *Store, continent string, category model.Category, id, name string) {
	t.Helper()
	err := s.InsertItem(model.QuizItem{
		ID:              id,
		Continent:       continent,
		Category:        category,
		Name:            name,
		AcceptedAnswers: []string{name, "The " + name},
		Coordinates:     model.Coordinates{Lat: 1.5, Lon: -2.5},
		Hint:            "hint for " + name,
	})
	if err != nil {
		t.Fatalf("insertTestItem: %v", err)
	}
}

func TestItemCRUD(t *testing.T) {
	s := newTestStore(t)

	// Empty DB should return zero count and empty list.
	count, err := s.ItemCount()
	if err != nil {
		t.Fatalf("ItemCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 items, got %d", count)
	}

	items, err := s.ListItems("asia", model.CategoryCities)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %d", len(items))
	}

	// Insert and retrieve.
	insertTestItem(t, s, "asia", model.CategoryCities, "tokyo", "Tokyo")
	insertTestItem(t, s, "asia", model.CategoryCities, "seoul", "Seoul")
	insertTestItem(t, s, "asia", model.CategoryRivers, "mekong", "Mekong")

	items, err = s.ListItems("asia", model.CategoryCities)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Insertion order preserved.
	if items[0].ID != "tokyo" || items[1].ID != "seoul" {
		t.Errorf("unexpected order: %s, %s", items[0].ID, items[1].ID)
	}

	got := items[0]
	if got.Name != "Tokyo" {
		t.Errorf("expected name Tokyo, got %q", got.Name)
	}
	if len(got.AcceptedAnswers) != 2 || got.AcceptedAnswers[1] != "The Tokyo" {
		t.Errorf("accepted answers round-trip failed: %v", got.AcceptedAnswers)
	}
	if got.Coordinates.Lat != 1.5 || got.Coordinates.Lon != -2.5 {
		t.Errorf("coordinates round-trip failed: %+v", got.Coordinates)
	}
	if got.Hint != "hint for Tokyo" {
		t.Errorf("hint round-trip failed: %q", got.Hint)
	}

	count, err = s.ItemCount()
	if err != nil {
		t.Fatalf("ItemCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
}

func TestListAvailability(t *testing.T) {
	s := newTestStore(t)

	avail, err := s.ListAvailability()
	if err != nil {
		t.Fatalf("ListAvailability: %v", err)
	}
	if len(avail) != 0 {
		t.Fatalf("expected no availability, got %d", len(avail))
	}

	insertTestItem(t, s, "asia", model.CategoryCities, "tokyo", "Tokyo")
	insertTestItem(t, s, "asia", model.CategoryCities, "seoul", "Seoul")
	insertTestItem(t, s, "europe", model.CategoryRivers, "danube", "Danube")

	avail, err = s.ListAvailability()
	if err != nil {
		t.Fatalf("ListAvailability: %v", err)
	}
	if len(avail) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(avail))
	}
	if avail[0].Continent != "asia" || avail[0].Category != model.CategoryCities || avail[0].Items != 2 {
		t.Errorf("unexpected first pair: %+v", avail[0])
	}
	if avail[1].Continent != "europe" || avail[1].Items != 1 {
		t.Errorf("unexpected second pair: %+v", avail[1])
	}
}

func TestTriviaCRUD(t *testing.T) {
	s := newTestStore(t)

	count, err := s.TriviaCount()
	if err != nil {
		t.Fatalf("TriviaCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 trivia, got %d", count)
	}

	id, err := s.InsertTrivia(model.TriviaQuestion{
		Question: "Which is the longest river?",
		Options:  []string{"Nile", "Amazon", "Yangtze", "Mississippi"},
		Answer:   "Nile",
	})
	if err != nil {
		t.Fatalf("InsertTrivia: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero trivia ID")
	}

	questions, err := s.ListTrivia()
	if err != nil {
		t.Fatalf("ListTrivia: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	q := questions[0]
	if q.ID != id {
		t.Errorf("expected ID %d, got %d", id, q.ID)
	}
	if len(q.Options) != 4 || q.Options[1] != "Amazon" {
		t.Errorf("options round-trip failed: %v", q.Options)
	}
	if q.Answer != "Nile" {
		t.Errorf("expected answer Nile, got %q", q.Answer)
	}
}

func TestScorePersistence(t *testing.T) {
	s := newTestStore(t)

	records, err := s.LoadScores()
	if err != nil {
		t.Fatalf("LoadScores: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty scores, got %d", len(records))
	}

	key := model.ScoreKey{Continent: "asia", Category: model.CategoryCities}
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := s.SaveScore(key, model.ScoreRecord{Correct: 3, Total: 5, RecordedAt: at}); err != nil {
		t.Fatalf("SaveScore: %v", err)
	}

	// Upsert overwrites in place.
	if err := s.SaveScore(key, model.ScoreRecord{Correct: 7, Total: 10, RecordedAt: at.Add(time.Hour)}); err != nil {
		t.Fatalf("SaveScore upsert: %v", err)
	}

	other := model.ScoreKey{Continent: "africa", Category: model.CategoryLakes}
	if err := s.SaveScore(other, model.ScoreRecord{Correct: 1, Total: 4, RecordedAt: at}); err != nil {
		t.Fatalf("SaveScore: %v", err)
	}

	records, err = s.LoadScores()
	if err != nil {
		t.Fatalf("LoadScores: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	rec := records[key]
	if rec.Correct != 7 || rec.Total != 10 {
		t.Errorf("expected 7/10 after upsert, got %d/%d", rec.Correct, rec.Total)
	}
	if !rec.RecordedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("expected recorded_at %v, got %v", at.Add(time.Hour), rec.RecordedAt)
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	// Missing file returns empty string.
	hash, err := s.GetImportedFileHash("/data/asia/cities.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash("/data/asia/cities.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	hash, err = s.GetImportedFileHash("/data/asia/cities.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "abc123" {
		t.Errorf("expected 'abc123', got %q", hash)
	}

	// Update existing.
	if err := s.SetImportedFileHash("/data/asia/cities.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/data/asia/cities.json")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}
