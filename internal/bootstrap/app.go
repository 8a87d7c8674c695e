package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/analyses"
	"resume-parser/internal/llm"
	"resume-parser/internal/llm/groq"
	"resume-parser/internal/resumes"
	"resume-parser/internal/services/health"
	"resume-parser/internal/shared/config"
	"resume-parser/internal/shared/server"
	"resume-parser/internal/shared/server/middleware"
	"resume-parser/internal/shared/storage/db"
	"resume-parser/internal/shared/storage/object"
	"resume-parser/internal/shared/storage/object/httpfetch"
	localstore "resume-parser/internal/shared/storage/object/local"
	s3store "resume-parser/internal/shared/storage/object/s3"
	"resume-parser/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Repo       resumes.Repo
	Files      *object.Mux
	Storage    *resumes.Storage
	Structurer llm.Structurer
	Processor  *analyses.Processor
	Limiter    *middleware.RateLimiter
}

// Option overrides a dependency before wiring.
type Option func(*buildOptions)

type buildOptions struct {
	repo       resumes.Repo
	structurer llm.Structurer
	fetchers   map[string]object.Fetcher
}

// WithRepo uses repo instead of connecting to Postgres.
func WithRepo(repo resumes.Repo) Option {
	return func(o *buildOptions) { o.repo = repo }
}

// WithStructurer uses s instead of the Groq client.
func WithStructurer(s llm.Structurer) Option {
	return func(o *buildOptions) { o.structurer = s }
}

// WithFetcher registers f for scheme, replacing the default.
func WithFetcher(scheme string, f object.Fetcher) Option {
	return func(o *buildOptions) { o.fetchers[strings.ToLower(scheme)] = f }
}

// Build wires configuration into repositories, clients, handlers and router.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	bo := buildOptions{fetchers: map[string]object.Fetcher{}}
	for _, opt := range opts {
		opt(&bo)
	}

	app := &App{Config: cfg}

	repo := bo.repo
	if repo == nil {
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.DB = sqlDB
		if sqlDB != nil {
			repo = &resumes.PGRepo{DB: sqlDB}
		} else {
			repo = resumes.NewMemoryRepo()
		}
	}
	app.Repo = repo

	files, err := buildFiles(ctx, cfg, bo.fetchers)
	if err != nil {
		return nil, err
	}
	app.Files = files

	structurer := bo.structurer
	if structurer == nil {
		client, err := groq.NewClient(groq.Options{
			APIKey:        cfg.LLMAPIKey,
			BaseURL:       cfg.LLMBaseURL,
			Model:         cfg.LLMModel,
			MaxTokens:     cfg.LLMMaxTokens,
			Temperature:   cfg.LLMTemperature,
			Timeout:       cfg.LLMTimeout,
			MaxInputChars: cfg.LLMMaxInputChars,
		})
		if err != nil {
			return nil, err
		}
		structurer = llm.WithRetry(client, llm.DefaultRetryDelay)
	}
	app.Structurer = structurer

	app.Storage = resumes.NewStorage(repo, files)
	app.Processor = analyses.NewProcessor(app.Storage, structurer)
	app.Limiter = middleware.NewRateLimiter(middleware.PerMinute(cfg.AnalyzeRatePerMin, cfg.AnalyzeBurst), nil)

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Health: health.NewService(nil),
		Handlers: []server.RouteRegistrar{
			resumes.NewHandler(app.Storage),
			analyses.NewHandler(app.Processor, app.Limiter),
		},
	})
	if app.Router == nil {
		return nil, errors.New("failed to initialize router")
	}
	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDev() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseServiceKey, opts)
	if err != nil {
		if cfg.IsDev() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildFiles(ctx context.Context, cfg config.Config, overrides map[string]object.Fetcher) (*object.Mux, error) {
	mux := object.NewMux()
	mux.Handle(httpfetch.New(cfg.DownloadTimeout, cfg.MaxDownloadBytes), "http", "https")

	if _, ok := overrides["s3"]; !ok {
		s3, err := s3store.New(ctx, cfg.AWSRegion, cfg.MaxDownloadBytes)
		if err != nil {
			if !cfg.IsDev() {
				return nil, err
			}
			telemetry.Warn("bootstrap.s3.disabled", map[string]any{"error": err.Error()})
		} else {
			mux.Handle(s3, "s3")
		}
	}
	if cfg.IsDev() && strings.TrimSpace(cfg.LocalStoreDir) != "" {
		mux.Handle(localstore.New(cfg.LocalStoreDir, cfg.MaxDownloadBytes), "file")
	}

	for scheme, f := range overrides {
		mux.Handle(f, scheme)
	}
	return mux, nil
}
