package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/vrsandeep/docscan/internal/config"
	"github.com/vrsandeep/docscan/internal/extract"
	"github.com/vrsandeep/docscan/internal/ingest"
	"github.com/vrsandeep/docscan/internal/jobs"
	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/ocr"
	"github.com/vrsandeep/docscan/internal/pipeline"
	"github.com/vrsandeep/docscan/internal/websocket"
)

const Version = "0.3.0"

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	config     *config.Config
	engine     ocr.Engine
	extractors *extract.Registry
	registry   *jobs.Registry
	hub        *websocket.Hub
	dispatcher *jobs.Dispatcher
	ingest     *ingest.Service
	jobManager *jobs.Manager
	ctx        context.Context
	Version    string
}

// New loads the configuration, sets up logging, connects the configured
// OCR backend and wires the application around it.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	engine, err := ocr.New(ctx, OCRConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR engine: %w", err)
	}

	app, err := Build(cfg, engine)
	if err != nil {
		engine.Close()
		return nil, err
	}
	log.Info().Str("ocr_engine", cfg.OCR.Engine).Str("extract_strategy", cfg.Extract.Strategy).Msg("Core application setup complete.")
	return app, nil
}

// Build wires the application around an already connected OCR engine.
func Build(cfg *config.Config, engine ocr.Engine) (*App, error) {
	extractors, err := Extractors(cfg)
	if err != nil {
		return nil, err
	}

	registry := jobs.NewRegistry()
	hub := websocket.NewHub(websocket.Hooks{
		OnConnect:    registry.OnConnect,
		OnDisconnect: registry.OnDisconnect,
	})
	processor := pipeline.NewProcessor(engine, extractors, hub, cfg.OCRTimeout())
	dispatcher := jobs.NewDispatcher(registry, processor)
	svc := ingest.NewService(IngestConfig(cfg), registry, dispatcher, hub)

	app := &App{
		config:     cfg,
		engine:     engine,
		extractors: extractors,
		registry:   registry,
		hub:        hub,
		dispatcher: dispatcher,
		ingest:     svc,
		jobManager: jobs.NewManager(),
		ctx:        context.Background(),
		Version:    Version,
	}
	jobs.RegisterMaintenance(app.jobManager, dispatcher, app.schedulerConfig())
	return app, nil
}

// Extractors builds the field extractor registry for the configured
// strategy, with any scripts from extract.scripts_path layered on top.
func Extractors(cfg *config.Config) (*extract.Registry, error) {
	r := extract.NewRegistry()
	switch cfg.Extract.Strategy {
	case "llm":
		if cfg.Extract.LLM.APIKey == "" {
			return nil, errors.New("extract.llm.api_key is required for the llm strategy")
		}
		extract.RegisterLLM(r, extract.NewLLM(extract.LLMConfig{
			APIKey:  cfg.Extract.LLM.APIKey,
			BaseURL: cfg.Extract.LLM.BaseURL,
			Model:   cfg.Extract.LLM.Model,
		}))
	default:
		extract.RegisterRegex(r)
	}

	scripts, err := extract.LoadScripts(cfg.Extract.ScriptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load extractor scripts: %w", err)
	}
	extract.RegisterScripts(r, scripts)
	return r, nil
}

// OCRConfig maps the service configuration onto the OCR backend settings.
func OCRConfig(cfg *config.Config) ocr.Config {
	return ocr.Config{
		Engine:          cfg.OCR.Engine,
		CredentialsFile: cfg.OCR.CredentialsFile,
		DocumentAI: ocr.DocumentAIConfig{
			ProjectID:   cfg.OCR.DocumentAI.ProjectID,
			Location:    cfg.OCR.DocumentAI.Location,
			ProcessorID: cfg.OCR.DocumentAI.ProcessorID,
		},
	}
}

// IngestConfig maps the service configuration onto the ingestion settings.
func IngestConfig(cfg *config.Config) ingest.Config {
	return ingest.Config{
		UploadDir:    cfg.Storage.UploadDir,
		PagesDir:     cfg.Storage.PagesDir,
		DPI:          cfg.PDF.DPI,
		JPEGQuality:  cfg.PDF.JPEGQuality,
		MaxDimension: cfg.Image.MaxDimension,
	}
}

func (a *App) schedulerConfig() jobs.SchedulerConfig {
	return jobs.SchedulerConfig{
		SweepInterval: time.Duration(a.config.SweepInterval) * time.Second,
		ArtifactTTL:   a.config.ArtifactTTL(),
		ArtifactDirs:  []string{a.config.Storage.UploadDir, a.config.Storage.PagesDir},
	}
}

// Start runs the websocket hub and the maintenance scheduler until ctx is
// cancelled.
func (a *App) Start(ctx context.Context) (*gocron.Scheduler, error) {
	a.ctx = ctx
	go a.hub.Run(ctx)
	return jobs.StartScheduler(ctx, a.jobManager, a.schedulerConfig())
}

func (a *App) Config() *config.Config { return a.config }

// Context is the application lifetime context. Work that must outlive a
// request, like a manually started maintenance job, runs under it.
func (a *App) Context() context.Context { return a.ctx }

func (a *App) Extractors() *extract.Registry { return a.extractors }
func (a *App) Registry() *jobs.Registry { return a.registry }
func (a *App) WsHub() *websocket.Hub { return a.hub }
func (a *App) Dispatcher() *jobs.Dispatcher { return a.dispatcher }
func (a *App) Ingest() *ingest.Service { return a.ingest }
func (a *App) JobManager() *jobs.Manager { return a.jobManager }

// Close releases the OCR backend.
func (a *App) Close() error {
	if a.engine != nil {
		return a.engine.Close()
	}
	return nil
}
