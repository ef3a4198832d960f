package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/geoquiz/internal/handler"
	appI18n "github.com/pavelanni/geoquiz/internal/i18n"
	"github.com/pavelanni/geoquiz/internal/match"
	"github.com/pavelanni/geoquiz/internal/model"
	"github.com/pavelanni/geoquiz/internal/quiz"
	"github.com/pavelanni/geoquiz/internal/score"
	"github.com/pavelanni/geoquiz/internal/store"
	"github.com/pavelanni/geoquiz/internal/trivia"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "geoquiz",
		Short: "Interactive geography quiz server",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `geoquiz --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "geoquiz.db", "SQLite database path")
	f.StringP("data", "d", "data", "Directory with quiz item files ({continent}/{category}.json)")
	f.String("trivia", "", "Path to trivia questions JSON file (optional)")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.Duration("session-ttl", quiz.DefaultSessionTTL, "Idle time after which abandoned sessions are dropped")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /ru)")
	f.Int("near-min-len", 0, "Minimum answer length for near-match (0 = default)")
	f.Int("near-max-distance", 0, "Maximum edit distance for near-match (0 = default)")
	f.Int("prefix-answer-len", 0, "Minimum answer length for prefix match (0 = default)")
	f.Int("prefix-input-len", 0, "Minimum input length for prefix match (0 = default)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export score history as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "geoquiz.db", "SQLite database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("GEOQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("geoquiz")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/geoquiz")
	v.AddConfigPath("/etc/geoquiz")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func matchConfig(v *viper.Viper) match.Config {
	cfg := match.DefaultConfig()
	if n := v.GetInt("near-min-len"); n > 0 {
		cfg.NearMatchMinAnswerLen = n
	}
	if n := v.GetInt("near-max-distance"); n > 0 {
		cfg.NearMatchMaxDistance = n
	}
	if n := v.GetInt("prefix-answer-len"); n > 0 {
		cfg.PrefixMinAnswerLen = n
	}
	if n := v.GetInt("prefix-input-len"); n > 0 {
		cfg.PrefixMinInputLen = n
	}
	return cfg
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// Open database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Import quiz item data files.
	if err := loadItems(db, v.GetString("data")); err != nil {
		return fmt.Errorf("load quiz items: %w", err)
	}
	if path := v.GetString("trivia"); path != "" {
		if err := loadTrivia(db, path); err != nil {
			return fmt.Errorf("load trivia: %w", err)
		}
	}

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	scores := score.New(db)
	matcher := match.New(matchConfig(v))
	sessions := quiz.NewManager(matcher, scores, v.GetDuration("session-ttl"))

	triviaQuestions, err := db.ListTrivia()
	if err != nil {
		return fmt.Errorf("list trivia: %w", err)
	}
	pool := trivia.NewPool(triviaQuestions)

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	serverCfg := model.ServerConfig{
		BasePath:   basePath,
		SessionTTL: v.GetDuration("session-ttl"),
	}

	h := handler.New(db, scores, sessions, pool, serverCfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	itemCount, err := db.ItemCount()
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"items", itemCount,
		"trivia", pool.Len(),
		"session_ttl", v.GetDuration("session-ttl"),
		"base_path", basePath,
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	records, err := db.LoadScores()
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}

	export := model.ScoreExport{
		ExportedAt: time.Now().UTC(),
		Records:    make([]model.ScoreEntry, 0, len(records)),
	}
	for key, rec := range records {
		export.TotalCorrect += rec.Correct
		export.TotalAttempted += rec.Total
		export.Records = append(export.Records, model.ScoreEntry{
			Continent:  key.Continent,
			Category:   key.Category,
			Correct:    rec.Correct,
			Total:      rec.Total,
			RecordedAt: rec.RecordedAt,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

// loadItems imports every {continent}/{category}.json file under dataDir.
// Files are identified by their content hash; unchanged files are skipped
// and changed files are left alone so recorded scores keep their meaning.
func loadItems(db *store.Store, dataDir string) error {
	for _, continent := range model.Continents {
		for _, category := range model.Categories {
			path := filepath.Join(dataDir, continent.ID, string(category)+".json")
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return fmt.Errorf("read %s: %w", path, err)
			}

			hash := sha256sum(data)
			storedHash, err := db.GetImportedFileHash(path)
			if err != nil {
				return fmt.Errorf("check import status for %s: %w", path, err)
			}

			if storedHash == hash {
				slog.Debug("items file unchanged, skipping", "path", path)
				continue
			}
			if storedHash != "" {
				slog.Warn("items file changed since last import, skipping to keep recorded scores consistent",
					"path", path)
				continue
			}

			var imports []model.ItemImport
			if err := json.Unmarshal(data, &imports); err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}

			for _, im := range imports {
				item, err := itemFromImport(im, continent.ID, category)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := db.InsertItem(item); err != nil {
					return fmt.Errorf("insert item from %s: %w", path, err)
				}
			}

			if err := db.SetImportedFileHash(path, hash); err != nil {
				return fmt.Errorf("record import for %s: %w", path, err)
			}
			slog.Info("imported quiz items", "path", path, "count", len(imports))
		}
	}
	return nil
}

func itemFromImport(im model.ItemImport, continent string, category model.Category) (model.QuizItem, error) {
	if im.ID == "" || im.Name == "" {
		return model.QuizItem{}, fmt.Errorf("item %q: id and name are required", im.ID)
	}
	if len(im.Coordinates) != 2 {
		return model.QuizItem{}, fmt.Errorf("item %q: coordinates must be [lat, lon]", im.ID)
	}
	answers := im.AcceptedAnswers
	if len(answers) == 0 {
		answers = []string{im.Name}
	}
	return model.QuizItem{
		ID:              im.ID,
		Continent:       continent,
		Category:        category,
		Name:            im.Name,
		AcceptedAnswers: answers,
		Coordinates:     model.Coordinates{Lat: im.Coordinates[0], Lon: im.Coordinates[1]},
		Hint:            im.Hint,
	}, nil
}

func loadTrivia(db *store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	hash := sha256sum(data)
	storedHash, err := db.GetImportedFileHash(path)
	if err != nil {
		return fmt.Errorf("check import status for %s: %w", path, err)
	}
	if storedHash == hash {
		slog.Debug("trivia file unchanged, skipping", "path", path)
		return nil
	}
	if storedHash != "" {
		slog.Warn("trivia file changed since last import, skipping", "path", path)
		return nil
	}

	var imports []model.TriviaImport
	if err := json.Unmarshal(data, &imports); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	for _, ti := range imports {
		if len(ti.Options) < 2 {
			return fmt.Errorf("%s: question %q needs at least two options", path, ti.Question)
		}
		if _, err := db.InsertTrivia(model.TriviaQuestion{
			Question: ti.Question,
			Options:  ti.Options,
			Answer:   ti.Answer,
		}); err != nil {
			return fmt.Errorf("insert trivia from %s: %w", path, err)
		}
	}

	if err := db.SetImportedFileHash(path, hash); err != nil {
		return fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported trivia questions", "path", path, "count", len(imports))
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
