// Package ingest turns an upload batch into page jobs: it stores the raw
// files, rasterizes PDFs, normalizes images, unpacks archives and commits
// the resulting jobs to the client's queue in one step.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vrsandeep/docscan/internal/jobs"
	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/models"
	"github.com/vrsandeep/docscan/internal/util"
)

var (
	ErrInvalidClient       = jobs.ErrInvalidClient
	ErrNoFiles             = errors.New("no files uploaded")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrStorage             = errors.New("storage unavailable")
)

// Upload is one file of a batch. GroupKey is optional.
type Upload struct {
	FileName string
	Body     io.Reader
	GroupKey string
}

// Summary reports what a batch produced.
type Summary struct {
	Jobs   int `json:"jobs"`
	Failed int `json:"failed"`
}

type Config struct {
	UploadDir    string
	PagesDir     string
	DPI          float64
	JPEGQuality  int
	MaxDimension int
}

// Queues is the client queue registry.
type Queues interface {
	Lookup(clientID string) (*jobs.ClientQueue, bool)
	Enqueue(clientID string, js ...models.Job) error
}

// Trigger starts draining a client's queue.
type Trigger interface {
	Trigger(ctx context.Context, clientID string)
}

// Emitter delivers status events to a client.
type Emitter interface {
	Emit(ctx context.Context, clientID string, status models.FileStatus) error
}

type Service struct {
	cfg     Config
	queues  Queues
	trigger Trigger
	emitter Emitter
	log     zerolog.Logger
}

func NewService(cfg Config, queues Queues, trigger Trigger, emitter Emitter) *Service {
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = 90
	}
	return &Service{
		cfg:     cfg,
		queues:  queues,
		trigger: trigger,
		emitter: emitter,
		log:     logger.WithComponent("ingest"),
	}
}

// Ingest stages every upload of the batch and enqueues the resulting jobs
// for clientID. Files that cannot be converted are reported to the client
// as failed and skipped. An unsupported file type aborts the whole batch:
// nothing is enqueued and every artifact it produced is removed.
// The client's queue is triggered in the background either way.
func (s *Service) Ingest(ctx context.Context, clientID string, uploads []Upload) (Summary, error) {
	if _, ok := s.queues.Lookup(clientID); !ok {
		return Summary{}, ErrInvalidClient
	}
	if len(uploads) == 0 {
		return Summary{}, ErrNoFiles
	}
	for _, dir := range []string{s.cfg.UploadDir, s.cfg.PagesDir} {
		if err := util.EnsureDir(dir); err != nil {
			return Summary{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	defer func() {
		go s.trigger.Trigger(context.WithoutCancel(ctx), clientID)
	}()

	b := &batch{Service: s, clientID: clientID}
	for _, up := range uploads {
		if err := b.add(ctx, up); err != nil {
			b.discard()
			s.log.Warn().Err(err).Str("client_id", clientID).Msg("Batch rejected")
			return Summary{}, err
		}
	}

	if err := s.queues.Enqueue(clientID, b.jobs...); err != nil {
		b.discard()
		return Summary{}, err
	}
	for _, st := range b.failures {
		if err := s.emitter.Emit(ctx, clientID, st); err != nil {
			s.log.Debug().Err(err).Str("client_id", clientID).Msg("Failure event not delivered")
		}
	}

	s.log.Info().
		Str("client_id", clientID).
		Int("files", len(uploads)).
		Int("jobs", len(b.jobs)).
		Int("failed", len(b.failures)).
		Msg("Batch queued")
	return Summary{Jobs: len(b.jobs), Failed: len(b.failures)}, nil
}

// batch collects the jobs and per-file failures of one Ingest call.
type batch struct {
	*Service
	clientID string
	jobs     []models.Job
	failures []models.FileStatus
}

func (b *batch) add(ctx context.Context, up Upload) error {
	name := util.CleanFileName(up.FileName)
	group := models.NormalizeGroupKey(up.GroupKey)
	kind := kindOf(name)

	stored := filepath.Join(b.cfg.UploadDir, uuid.NewString()+"_"+name)
	if err := writeStream(stored, up.Body); err != nil {
		util.RemoveQuietly(stored)
		if kind == kindUnsupported {
			return fmt.Errorf("%w: %s", ErrUnsupportedFileType, name)
		}
		b.fail(models.Job{SourceFileName: name, GroupKey: group, IsFromPDF: kind == kindPDF},
			fmt.Errorf("failed to save upload: %w", err))
		return nil
	}

	switch kind {
	case kindPDF:
		b.addPDF(stored, name, group)
	case kindImage:
		b.addImage(stored, name, group)
	case kindArchive:
		return b.addArchive(ctx, stored, name, group)
	default:
		util.RemoveQuietly(stored)
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, name)
	}
	return nil
}

// addPDF rasterizes the stored PDF and always removes it afterwards.
func (b *batch) addPDF(stored, name, group string) {
	defer util.RemoveQuietly(stored)

	prefix := filepath.Join(b.cfg.PagesDir, filepath.Base(stored))
	pages, err := rasterizePDF(stored, prefix, b.cfg.DPI, b.cfg.JPEGQuality)
	if err != nil {
		b.fail(models.Job{SourceFileName: name, GroupKey: group, IsFromPDF: true}, err)
		return
	}
	for i, p := range pages {
		b.stage(models.Job{
			SourceFileName: name,
			StoragePath:    p,
			GroupKey:       group,
			IsFromPDF:      true,
			PageNumber:     i + 1,
		})
	}
}

// addImage re-encodes the stored image as a JPEG page and removes the
// original.
func (b *batch) addImage(stored, name, group string) {
	defer util.RemoveQuietly(stored)

	page := filepath.Join(b.cfg.PagesDir, util.Stem(filepath.Base(stored))+".jpg")
	if err := normalizeImage(stored, page, b.cfg.MaxDimension, b.cfg.JPEGQuality); err != nil {
		util.RemoveQuietly(page)
		b.fail(models.Job{SourceFileName: name, GroupKey: group}, err)
		return
	}
	b.stage(models.Job{SourceFileName: name, StoragePath: page, GroupKey: group})
}

// addArchive ingests each entry as if it had been uploaded on its own.
// Entries inherit the archive's group key, or the archive name when the
// upload had none.
func (b *batch) addArchive(ctx context.Context, stored, name, group string) error {
	defer util.RemoveQuietly(stored)

	if group == "" {
		group = models.NormalizeGroupKey(util.Stem(name))
	}
	entries, err := b.unpackArchive(ctx, stored, b.cfg.UploadDir)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.fail(models.Job{SourceFileName: name, GroupKey: group}, err)
		return nil
	}
	for _, e := range entries {
		if kindOf(e.name) == kindPDF {
			b.addPDF(e.stored, e.name, group)
		} else {
			b.addImage(e.stored, e.name, group)
		}
	}
	return nil
}

func (b *batch) stage(job models.Job) {
	job.EnqueuedAt = time.Now()
	b.jobs = append(b.jobs, job)
}

func (b *batch) fail(job models.Job, err error) {
	b.log.Warn().Err(err).Str("client_id", b.clientID).Str("file", job.SourceFileName).Msg("File failed")
	b.failures = append(b.failures, job.Status(models.StatusFailed, models.ErrorResult(err)))
}

// discard removes every page staged so far.
func (b *batch) discard() {
	for _, j := range b.jobs {
		util.RemoveQuietly(j.StoragePath)
	}
	b.jobs = nil
}

func writeStream(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type fileKind int

const (
	kindUnsupported fileKind = iota
	kindPDF
	kindImage
	kindArchive
)

func kindOf(name string) fileKind {
	switch util.Ext(name) {
	case ".pdf":
		return kindPDF
	case ".jpg", ".jpeg", ".png":
		return kindImage
	case ".zip", ".tar", ".tar.gz", ".tgz", ".7z", ".rar":
		return kindArchive
	}
	return kindUnsupported
}
