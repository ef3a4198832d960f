package model

import (
	"context"
	"time"
)

// Category is a quiz item category.
type Category string

const (
	CategoryCities    Category = "cities"
	CategoryMountains Category = "mountains"
	CategoryRivers    Category = "rivers"
	CategoryLakes     Category = "lakes"
	CategoryFeatures  Category = "features"
)

// Categories lists all known categories in display order.
var Categories = []Category{
	CategoryCities,
	CategoryMountains,
	CategoryRivers,
	CategoryLakes,
	CategoryFeatures,
}

// IsValidCategory reports whether c is a known category.
func IsValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Continent describes a selectable continent.
type Continent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Continents lists all selectable continents in display order.
var Continents = []Continent{
	{ID: "asia", Name: "Asia"},
	{ID: "europe", Name: "Europe"},
	{ID: "africa", Name: "Africa"},
	{ID: "north-america", Name: "North America"},
	{ID: "south-america", Name: "South America"},
	{ID: "oceania", Name: "Oceania"},
}

// ContinentByID returns the continent with the given ID, or nil.
func ContinentByID(id string) *Continent {
	for i := range Continents {
		if Continents[i].ID == id {
			return &Continents[i]
		}
	}
	return nil
}

// Coordinates is a geographic position used by the map surface to place markers.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// QuizItem is a place to be identified on the map.
type QuizItem struct {
	ID              string      `json:"id"`
	Continent       string      `json:"continent"`
	Category        Category    `json:"category"`
	Name            string      `json:"name"`
	AcceptedAnswers []string    `json:"accepted_answers"`
	Coordinates     Coordinates `json:"coordinates"`
	Hint            string      `json:"hint,omitempty"`
}

// ItemImport is the JSON shape of quiz item data files.
type ItemImport struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	AcceptedAnswers []string  `json:"acceptedAnswers"`
	Coordinates     []float64 `json:"coordinates"`
	Hint            string    `json:"hint,omitempty"`
}

// TriviaQuestion is a multiple-choice question for the Lucky mode.
type TriviaQuestion struct {
	ID       int64    `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// TriviaImport is the JSON shape of the trivia data file.
type TriviaImport struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// ScoreKey identifies a distinct scoreable quiz configuration.
// A composite struct rather than a concatenated string so item IDs reused
// across categories can never collide.
type ScoreKey struct {
	Continent string   `json:"continent"`
	Category  Category `json:"category"`
}

// ScoreRecord is the persisted result of the most recent completed
// session for a ScoreKey.
type ScoreRecord struct {
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	BasePath   string        // URL prefix for sub-path deployments (e.g. "/ru")
	SessionTTL time.Duration // idle sessions older than this are swept
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}
