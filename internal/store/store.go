package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/geoquiz/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		continent TEXT NOT NULL,
		category TEXT NOT NULL,
		item_id TEXT NOT NULL,
		name TEXT NOT NULL,
		accepted_answers TEXT NOT NULL DEFAULT '[]',
		lat REAL NOT NULL DEFAULT 0,
		lon REAL NOT NULL DEFAULT 0,
		hint TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (continent, category, item_id)
	);

	CREATE TABLE IF NOT EXISTS trivia (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		options TEXT NOT NULL DEFAULT '[]',
		answer TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scores (
		continent TEXT NOT NULL,
		category TEXT NOT NULL,
		correct INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		recorded_at DATETIME NOT NULL,
		PRIMARY KEY (continent, category)
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertItem stores a quiz item.
func (s *Store) InsertItem(item model.QuizItem) error {
	answers, err := json.Marshal(item.AcceptedAnswers)
	if err != nil {
		return fmt.Errorf("marshal accepted answers: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO items (continent, category, item_id, name, accepted_answers, lat, lon, hint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Continent, item.Category, item.ID, item.Name, string(answers),
		item.Coordinates.Lat, item.Coordinates.Lon, item.Hint,
	)
	return err
}

// ListItems returns all items for a continent and category, in insertion order.
func (s *Store) ListItems(continent string, category model.Category) ([]model.QuizItem, error) {
	rows, err := s.db.Query(
		`SELECT continent, category, item_id, name, accepted_answers, lat, lon, hint
		 FROM items WHERE continent = ? AND category = ? ORDER BY rowid`,
		continent, category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.QuizItem
	for rows.Next() {
		var item model.QuizItem
		var answers string
		if err := rows.Scan(&item.Continent, &item.Category, &item.ID, &item.Name,
			&answers, &item.Coordinates.Lat, &item.Coordinates.Lon, &item.Hint); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &item.AcceptedAnswers); err != nil {
			return nil, fmt.Errorf("unmarshal accepted answers for %s: %w", item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ItemCount returns the number of quiz items in the database.
func (s *Store) ItemCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count)
	return count, err
}

// Availability is the item count for one continent+category pair.
type Availability struct {
	Continent string
	Category  model.Category
	Items     int
}

// ListAvailability returns the distinct continent+category pairs that have
// items, with their counts.
func (s *Store) ListAvailability() ([]Availability, error) {
	rows, err := s.db.Query(
		`SELECT continent, category, COUNT(*) FROM items
		 GROUP BY continent, category ORDER BY continent, category`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var avail []Availability
	for rows.Next() {
		var a Availability
		if err := rows.Scan(&a.Continent, &a.Category, &a.Items); err != nil {
			return nil, err
		}
		avail = append(avail, a)
	}
	return avail, rows.Err()
}

// InsertTrivia stores a trivia question.
func (s *Store) InsertTrivia(q model.TriviaQuestion) (int64, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return 0, fmt.Errorf("marshal options: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO trivia (question, options, answer) VALUES (?, ?, ?)`,
		q.Question, string(options), q.Answer,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListTrivia returns all trivia questions.
func (s *Store) ListTrivia() ([]model.TriviaQuestion, error) {
	rows, err := s.db.Query(`SELECT id, question, options, answer FROM trivia ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.TriviaQuestion
	for rows.Next() {
		var q model.TriviaQuestion
		var options string
		if err := rows.Scan(&q.ID, &q.Question, &options, &q.Answer); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options for trivia %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// TriviaCount returns the number of trivia questions in the database.
func (s *Store) TriviaCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM trivia`).Scan(&count)
	return count, err
}

// SaveScore upserts the score record for a continent+category key.
func (s *Store) SaveScore(key model.ScoreKey, rec model.ScoreRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO scores (continent, category, correct, total, recorded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(continent, category) DO UPDATE SET correct = ?, total = ?, recorded_at = ?`,
		key.Continent, key.Category, rec.Correct, rec.Total, rec.RecordedAt,
		rec.Correct, rec.Total, rec.RecordedAt,
	)
	return err
}

// LoadScores returns all persisted score records.
func (s *Store) LoadScores() (map[model.ScoreKey]model.ScoreRecord, error) {
	rows, err := s.db.Query(`SELECT continent, category, correct, total, recorded_at FROM scores`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make(map[model.ScoreKey]model.ScoreRecord)
	for rows.Next() {
		var key model.ScoreKey
		var rec model.ScoreRecord
		var at time.Time
		if err := rows.Scan(&key.Continent, &key.Category, &rec.Correct, &rec.Total, &at); err != nil {
			return nil, err
		}
		rec.RecordedAt = at
		records[key] = rec
	}
	return records, rows.Err()
}

// GetImportedFileHash returns the stored hash for a data file path.
// Returns empty string and nil error if the path was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the hash of an imported data file.
func (s *Store) SetImportedFileHash(path, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, hash) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = ?`,
		path, hash, hash,
	)
	return err
}
