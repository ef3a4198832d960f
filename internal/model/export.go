package model

import "time"

// ScoreExport is the top-level JSON structure for score history export.
type ScoreExport struct {
	ExportedAt     time.Time    `json:"exported_at"`
	TotalCorrect   int          `json:"total_correct"`
	TotalAttempted int          `json:"total_attempted"`
	Records        []ScoreEntry `json:"records"`
}

// ScoreEntry is one continent+category score in an export.
type ScoreEntry struct {
	Continent  string    `json:"continent"`
	Category   Category  `json:"category"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	RecordedAt time.Time `json:"recorded_at"`
}
