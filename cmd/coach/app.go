package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/p-n-ai/exam-coach/internal/ai"
	"github.com/p-n-ai/exam-coach/internal/analysis"
	"github.com/p-n-ai/exam-coach/internal/chat"
	"github.com/p-n-ai/exam-coach/internal/curriculum"
	"github.com/p-n-ai/exam-coach/internal/history"
	"github.com/p-n-ai/exam-coach/internal/ingest"
	"github.com/p-n-ai/exam-coach/internal/platform/cache"
	"github.com/p-n-ai/exam-coach/internal/platform/config"
	"github.com/p-n-ai/exam-coach/internal/platform/database"
	"github.com/p-n-ai/exam-coach/internal/server"
)

// workbookName is the report index written next to the reports.
const workbookName = "index.xlsx"

// app holds the long-lived dependencies shared by watch and analyze.
type app struct {
	cfg      *config.Config
	provider *ai.Router
	store    *curriculum.Store
	catalog  *analysis.Catalog
	reports  *ingest.ReportWriter
	recorder *history.Multi
	lister   history.Lister
	seen     ingest.SeenSet
	db       *database.DB
	cache    *cache.Cache
	hub      *server.Hub
	telegram *chat.TelegramNotifier
}

// newApp connects every configured dependency. Optional stores that fail to
// connect are fatal so a misconfigured deployment does not silently degrade.
func newApp(ctx context.Context, cfg *config.Config, provider *ai.Router) (*app, error) {
	a := &app{cfg: cfg, provider: provider, recorder: history.NewMulti()}

	store, err := curriculum.Load(cfg.Paths.CurriculumPath)
	if err != nil {
		return nil, err
	}
	a.store = store

	a.catalog = analysis.DefaultCatalog()
	if cfg.Paths.AdviceCatalog != "" {
		if a.catalog, err = analysis.LoadCatalog(cfg.Paths.AdviceCatalog); err != nil {
			return nil, err
		}
	}

	for _, dir := range []string{cfg.Paths.WatchDir, cfg.Paths.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	a.reports = ingest.NewReportWriter(cfg.Paths.ReportDir)

	memory := history.NewMemoryStore(history.DefaultMemoryCapacity)
	a.recorder.Add("memory", memory)
	a.lister = memory

	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.db = db
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		pg, err := history.NewPostgresStore(db.Pool)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.recorder.Add("postgres", pg)
		a.lister = pg
	}

	a.seen = ingest.NewMemorySeen()
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		a.cache = c
		a.seen = ingest.NewRedisSeen(c, cfg.Cache.SeenKey)
	}

	if cfg.Workbook.Enabled {
		a.recorder.Add("workbook", history.NewWorkbook(filepath.Join(cfg.Paths.ReportDir, workbookName)))
	}

	if cfg.HasTelegram() {
		tg, err := chat.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.telegram = tg
		a.recorder.Add("telegram", tg)
	}

	if cfg.Server.Enabled {
		a.hub = server.NewHub()
		a.recorder.Add("websocket", a.hub)
	}

	return a, nil
}

func (a *app) analyzer() *ingest.Analyzer {
	return ingest.NewAnalyzer(a.provider, a.store, a.reports,
		ingest.WithSeenSet(a.seen),
		ingest.WithRecorder(a.recorder),
		ingest.WithCatalog(a.catalog),
	)
}

func (a *app) httpServer() *server.Server {
	srv := server.New(a.lister, a.hub)
	srv.AddCheck("ai", a.provider)
	if a.db != nil {
		srv.AddCheck("database", a.db)
	}
	if a.cache != nil {
		srv.AddCheck("cache", a.cache)
	}
	return srv
}

// Close releases connections. It is safe on a partially built app.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Warn("closing cache failed", "error", err)
		}
	}
}

// newProvider builds the vision provider chain: Gemini first, then OpenAI
// when a key is configured.
func newProvider(ctx context.Context, cfg *config.Config) (*ai.Router, error) {
	router := ai.NewRouter()

	switch cfg.AI.Google.Client {
	case config.GoogleClientSDK:
		p, err := ai.NewGenAIProvider(ctx, cfg.AI.Google.APIKey, cfg.AI.Google.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini sdk client: %w", err)
		}
		router.Register("gemini", p)
	default:
		router.Register("gemini", ai.NewGoogleProvider(cfg.AI.Google.APIKey, ai.WithGoogleModel(cfg.AI.Google.Model)))
	}

	if cfg.HasFallbackProvider() {
		router.Register("openai", ai.NewOpenAIProvider(cfg.AI.OpenAI.APIKey, ai.WithOpenAIModel(cfg.AI.OpenAI.Model)))
	}

	slog.Info("AI providers configured", "providers", router.Names(), "client", cfg.AI.Google.Client)
	return router, nil
}
