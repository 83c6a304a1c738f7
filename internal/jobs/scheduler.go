package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/util"
)

const (
	JobQueueSweep      = "queue-sweep"
	JobArtifactJanitor = "artifact-janitor"

	janitorInterval = 10 * time.Minute
)

// SchedulerConfig controls the background maintenance jobs.
type SchedulerConfig struct {
	SweepInterval time.Duration // 0 disables the queue sweep
	ArtifactTTL   time.Duration // 0 disables the janitor
	ArtifactDirs  []string
}

// RegisterMaintenance adds the queue sweep and the artifact janitor to the
// manager so they can be run on schedule or by hand.
func RegisterMaintenance(m *Manager, d *Dispatcher, cfg SchedulerConfig) {
	m.Register(JobQueueSweep, "Queue Sweep", func(ctx context.Context) (string, error) {
		n := d.TriggerAll(ctx)
		return fmt.Sprintf("Started %d drain loops.", n), nil
	})
	m.Register(JobArtifactJanitor, "Artifact Janitor", func(ctx context.Context) (string, error) {
		n, err := RemoveStale(cfg.ArtifactDirs, cfg.ArtifactTTL, time.Now(), d.registry.PendingPaths())
		return fmt.Sprintf("Removed %d stale artifacts.", n), err
	})
}

// StartScheduler starts the background job scheduler. The scheduler stops
// when ctx is cancelled.
func StartScheduler(ctx context.Context, m *Manager, cfg SchedulerConfig) (*gocron.Scheduler, error) {
	log := logger.WithComponent("scheduler")
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	schedule := func(id string, every time.Duration) error {
		if every <= 0 {
			log.Info().Str("job", id).Msg("Interval is 0, scheduled job is disabled")
			return nil
		}
		log.Info().Str("job", id).Dur("every", every).Msg("Scheduling job")
		_, err := s.Every(every).Tag(id).Do(func() {
			// Submit through the manager so a manual run and a scheduled
			// run never overlap.
			if err := m.RunJob(ctx, id); err != nil {
				log.Debug().Err(err).Str("job", id).Msg("Scheduled job could not start")
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling %s: %w", id, err)
		}
		return nil
	}

	if err := schedule(JobQueueSweep, cfg.SweepInterval); err != nil {
		return nil, err
	}
	janitorEvery := janitorInterval
	if cfg.ArtifactTTL <= 0 {
		janitorEvery = 0
	}
	if err := schedule(JobArtifactJanitor, janitorEvery); err != nil {
		return nil, err
	}

	log.Info().Msg("Starting background job scheduler")
	s.StartAsync()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return s, nil
}

// RemoveStale deletes regular files older than ttl from dirs, skipping any
// path in keep. Missing directories are ignored.
func RemoveStale(dirs []string, ttl time.Duration, now time.Time, keep map[string]struct{}) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}
	removed := 0
	var errs []error
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if _, ok := keep[path]; ok {
				continue
			}
			info, err := e.Info()
			if err != nil || now.Sub(info.ModTime()) < ttl {
				continue
			}
			util.RemoveQuietly(path)
			removed++
		}
	}
	return removed, errors.Join(errs...)
}
