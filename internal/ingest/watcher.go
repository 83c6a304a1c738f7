// This file implements a hot folder: documents dropped into a directory
// are ingested as if they had been uploaded by one client.

package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/util"
)

const defaultDebounce = 2 * time.Second

// Watcher feeds files created in a directory to a Service. Events are
// debounced so a file still being copied is picked up once it settles.
type Watcher struct {
	svc      *Service
	clientID string
	dir      string
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	flush   chan struct{}

	log zerolog.Logger
}

// NewWatcher creates a watcher for dir. A debounce of 0 uses the default.
func NewWatcher(svc *Service, clientID, dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		svc:      svc,
		clientID: clientID,
		dir:      dir,
		debounce: debounce,
		pending:  make(map[string]struct{}),
		flush:    make(chan struct{}, 1),
		log:      logger.WithComponent("watcher").With().Str("dir", dir).Logger(),
	}
}

// Run watches until ctx is cancelled. Files already in the directory are
// not ingested.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.log.Info().Msg("Hot folder watcher started")

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("File watcher error")
		case <-w.flush:
			w.ingestPending(ctx)
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if kindOf(filepath.Base(event.Name)) == kindUnsupported {
		return
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.flush <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) ingestPending(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()
	if len(paths) == 0 {
		return
	}
	util.SortNatural(paths)

	uploads := make([]Upload, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			w.log.Warn().Err(err).Str("file", p).Msg("Dropped file vanished before ingestion")
			continue
		}
		defer f.Close()
		uploads = append(uploads, Upload{FileName: filepath.Base(p), Body: f})
	}
	if len(uploads) == 0 {
		return
	}

	sum, err := w.svc.Ingest(ctx, w.clientID, uploads)
	if err != nil {
		w.log.Error().Err(err).Int("files", len(uploads)).Msg("Hot folder batch rejected")
		return
	}
	w.log.Info().Int("jobs", sum.Jobs).Int("failed", sum.Failed).Msg("Hot folder batch queued")
}
