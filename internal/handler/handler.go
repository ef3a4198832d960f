package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/pavelanni/geoquiz/internal/i18n"
	"github.com/pavelanni/geoquiz/internal/model"
	"github.com/pavelanni/geoquiz/internal/quiz"
	"github.com/pavelanni/geoquiz/internal/score"
	"github.com/pavelanni/geoquiz/internal/store"
	"github.com/pavelanni/geoquiz/internal/trivia"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	scores   *score.Store
	sessions *quiz.Manager
	trivia   *trivia.Pool
	config   model.ServerConfig
}

// New creates a new Handler.
func New(s *store.Store, scores *score.Store, sessions *quiz.Manager, pool *trivia.Pool, cfg model.ServerConfig) *Handler {
	return &Handler{store: s, scores: scores, sessions: sessions, trivia: pool, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/continents", h.handleContinents)
	r.Get("/api/scores", h.handleScores)
	r.Post("/api/quiz", h.handleStartQuiz)
	r.Get("/api/quiz/{sessionID}", h.handleQuizState)
	r.Post("/api/quiz/{sessionID}/select", h.handleSelect)
	r.Post("/api/quiz/{sessionID}/answer", h.handleAnswer)
	r.Post("/api/quiz/{sessionID}/skip", h.handleSkip)
	r.Post("/api/quiz/{sessionID}/expire", h.handleExpire)
	r.Post("/api/quiz/{sessionID}/reset", h.handleReset)
	r.Get("/api/lucky", h.handleLuckyQuestion)
	r.Post("/api/lucky/answer", h.handleLuckyAnswer)
}

// BasePathMiddleware stores the configured base path in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// categoryView is one category's availability and last score for a continent.
type categoryView struct {
	Category model.Category     `json:"category"`
	Items    int                `json:"items"`
	Score    *model.ScoreRecord `json:"score,omitempty"`
}

// continentView is the menu entry for one continent.
type continentView struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Categories []categoryView `json:"categories"`
}

func (h *Handler) handleContinents(w http.ResponseWriter, r *http.Request) {
	avail, err := h.store.ListAvailability()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	counts := make(map[model.ScoreKey]int, len(avail))
	for _, a := range avail {
		counts[model.ScoreKey{Continent: a.Continent, Category: a.Category}] = a.Items
	}

	views := make([]continentView, 0, len(model.Continents))
	for _, c := range model.Continents {
		cv := continentView{ID: c.ID, Name: c.Name}
		for _, cat := range model.Categories {
			key := model.ScoreKey{Continent: c.ID, Category: cat}
			view := categoryView{Category: cat, Items: counts[key]}
			if rec, ok := h.scores.Get(key); ok {
				view.Score = &rec
			}
			cv.Categories = append(cv.Categories, view)
		}
		views = append(views, cv)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) handleScores(w http.ResponseWriter, r *http.Request) {
	totalCorrect, totalAttempted := h.scores.Totals()
	records := h.scores.All()

	entries := make([]model.ScoreEntry, 0, len(records))
	for key, rec := range records {
		entries = append(entries, model.ScoreEntry{
			Continent:  key.Continent,
			Category:   key.Category,
			Correct:    rec.Correct,
			Total:      rec.Total,
			RecordedAt: rec.RecordedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_correct":   totalCorrect,
		"total_attempted": totalAttempted,
		"records":         entries,
	})
}

// markerView is what the map surface needs to place a marker. The item's
// name and accepted answers never leave the server before it is answered.
type markerView struct {
	ID          string            `json:"id"`
	Coordinates model.Coordinates `json:"coordinates"`
	Hint        string            `json:"hint,omitempty"`
}

type startQuizRequest struct {
	Continent string         `json:"continent"`
	Category  model.Category `json:"category"`
}

func (h *Handler) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if model.ContinentByID(req.Continent) == nil {
		writeError(w, http.StatusBadRequest, "unknown continent")
		return
	}
	if !model.IsValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	items, err := h.store.ListItems(req.Continent, req.Category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusNotFound, appI18n.T(r.Context(), "QuizNotAvailable"))
		return
	}

	key := model.ScoreKey{Continent: req.Continent, Category: req.Category}
	sess, err := h.sessions.Start(key, items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	markers := make([]markerView, len(items))
	for i, item := range items {
		markers[i] = markerView{ID: item.ID, Coordinates: item.Coordinates, Hint: item.Hint}
	}

	slog.Info("started quiz session", "id", sess.ID(), "continent", req.Continent, "category", req.Category, "items", len(items))
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID(),
		"total":      len(items),
		"markers":    markers,
	})
}

// session resolves the session from the URL, writing a 404 when it is
// unknown or already swept.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *quiz.Session {
	id := chi.URLParam(r, "sessionID")
	sess := h.sessions.Get(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
	}
	return sess
}

func (h *Handler) handleQuizState(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type selectRequest struct {
	ItemID string `json:"item_id"`
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hint, ok := sess.Select(req.ItemID)
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": ok,
		"hint":    hint,
		"phase":   sess.Phase(),
	})
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := sess.Submit(req.Answer)
	h.writeResult(w, r, sess, res)
}

func (h *Handler) handleSkip(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	res := sess.Skip()
	h.writeResult(w, r, sess, res)
}

// writeResult renders a submit/skip result with a localized feedback
// message and current progress.
func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, sess *quiz.Session, res quiz.Result) {
	answered, correct, total := sess.Progress()
	body := map[string]any{
		"result":   res,
		"answered": answered,
		"correct":  correct,
		"total":    total,
	}
	if res.Applied {
		switch {
		case res.Correct:
			body["message"] = appI18n.Td(r.Context(), "AnswerCorrect", map[string]any{"Name": res.CanonicalName})
		case res.Skipped:
			body["message"] = appI18n.Td(r.Context(), "AnswerSkipped", map[string]any{"Name": res.CanonicalName})
		default:
			body["message"] = appI18n.Td(r.Context(), "AnswerIncorrect", map[string]any{"Name": res.CanonicalName})
		}
		if res.Phase == quiz.PhaseComplete {
			body["message"] = appI18n.Td(r.Context(), "SessionComplete", map[string]any{"Correct": correct, "Total": total})
		} else {
			body["remaining"] = appI18n.Tp(r.Context(), "ItemsRemaining", total-answered)
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) handleExpire(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	skipped := sess.SkipRemaining()
	answered, correct, total := sess.Progress()
	writeJSON(w, http.StatusOK, map[string]any{
		"skipped":  skipped,
		"phase":    sess.Phase(),
		"answered": answered,
		"correct":  correct,
		"total":    total,
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	sess.Reset()
	writeJSON(w, http.StatusOK, map[string]any{"phase": sess.Phase()})
}

func (h *Handler) handleLuckyQuestion(w http.ResponseWriter, r *http.Request) {
	q, ok := h.trivia.Random()
	if !ok {
		writeError(w, http.StatusNotFound, appI18n.T(r.Context(), "QuizNotAvailable"))
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type luckyAnswerRequest struct {
	QuestionID int64  `json:"question_id"`
	Option     string `json:"option"`
}

func (h *Handler) handleLuckyAnswer(w http.ResponseWriter, r *http.Request) {
	var req luckyAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	correct, answer, ok := h.trivia.Check(req.QuestionID, req.Option)
	if !ok {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	msg := appI18n.T(r.Context(), "TriviaCorrect")
	if !correct {
		msg = appI18n.Td(r.Context(), "TriviaIncorrect", map[string]any{"Answer": answer})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"correct": correct,
		"answer":  answer,
		"message": msg,
	})
}
