package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/vrsandeep/docscan/internal/config"
	"github.com/vrsandeep/docscan/internal/core"
	"github.com/vrsandeep/docscan/internal/ingest"
	"github.com/vrsandeep/docscan/internal/jobs"
	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/models"
	"github.com/vrsandeep/docscan/internal/ocr"
	"github.com/vrsandeep/docscan/internal/pipeline"
)

const cliClient = "cli"

var extractCmd = &cobra.Command{
	Use:   "extract <files...>",
	Short: "OCR, classify and extract fields from PDFs, images or archives",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

// lineEmitter prints every terminal status as one JSON line.
type lineEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (e *lineEmitter) Emit(_ context.Context, _ string, status models.FileStatus) error {
	if !status.Status.Terminal() {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(status)
}

// inline leaves draining to the caller.
type inline struct{}

func (inline) Trigger(context.Context, string) {}

// local is the page pipeline wired to stdout instead of a websocket.
type local struct {
	engine     ocr.Engine
	registry   *jobs.Registry
	dispatcher *jobs.Dispatcher
	svc        *ingest.Service
}

// newLocal builds the pipeline for the CLI client. With background set,
// ingestion starts draining on its own; otherwise the caller drains.
func newLocal(ctx context.Context, out io.Writer, background bool) (*local, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	if err := logger.Setup(logger.Config{Level: level, Format: "console", Output: "stderr"}); err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}

	extractors, err := core.Extractors(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := ocr.New(ctx, core.OCRConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect OCR engine: %w", err)
	}

	emitter := &lineEmitter{enc: json.NewEncoder(out)}
	l := &local{engine: engine, registry: jobs.NewRegistry()}
	l.registry.OnConnect(cliClient)
	l.dispatcher = jobs.NewDispatcher(l.registry, pipeline.NewProcessor(engine, extractors, emitter, cfg.OCRTimeout()))

	var trigger ingest.Trigger = inline{}
	if background {
		trigger = l.dispatcher
	}
	l.svc = ingest.NewService(core.IngestConfig(cfg), l.registry, trigger, emitter)
	return l, nil
}

func (l *local) Close() {
	l.registry.OnDisconnect(cliClient)
	l.engine.Close()
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	l, err := newLocal(ctx, cmd.OutOrStdout(), false)
	if err != nil {
		return err
	}
	defer l.Close()

	uploads := make([]ingest.Upload, 0, len(args))
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			closeUploads(uploads)
			return fmt.Errorf("open %s: %w", path, err)
		}
		uploads = append(uploads, ingest.Upload{FileName: f.Name(), Body: f})
	}
	defer closeUploads(uploads)

	if _, err := l.svc.Ingest(ctx, cliClient, uploads); err != nil {
		return err
	}
	l.dispatcher.Trigger(ctx, cliClient)
	return nil
}

func closeUploads(uploads []ingest.Upload) {
	for _, up := range uploads {
		if c, ok := up.Body.(io.Closer); ok {
			c.Close()
		}
	}
}
