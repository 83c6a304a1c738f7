// Package pipeline runs a single page job: OCR, classification, field
// extraction, notification and cleanup.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vrsandeep/docscan/internal/classify"
	"github.com/vrsandeep/docscan/internal/extract"
	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/models"
	"github.com/vrsandeep/docscan/internal/util"
)

// Emitter delivers status events to a client.
type Emitter interface {
	Emit(ctx context.Context, clientID string, status models.FileStatus) error
}

// Recognizer is the OCR backend as seen by the pipeline.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Extractors resolves the extractor of a category.
type Extractors interface {
	Lookup(category models.Category) (extract.Func, bool)
}

type Processor struct {
	ocr        Recognizer
	extractors Extractors
	emitter    Emitter
	ocrTimeout time.Duration
	classify   func(text string) models.Category
	log        zerolog.Logger
}

func NewProcessor(ocr Recognizer, extractors Extractors, emitter Emitter, ocrTimeout time.Duration) *Processor {
	return &Processor{
		ocr:        ocr,
		extractors: extractors,
		emitter:    emitter,
		ocrTimeout: ocrTimeout,
		classify:   classify.Category,
		log:        logger.WithComponent("processor"),
	}
}

// Process emits the processing event, runs the page and emits exactly one
// terminal event before deleting the page image. It never fails: every
// error becomes a failed event.
func (p *Processor) Process(ctx context.Context, clientID string, job models.Job) {
	start := time.Now()
	log := p.log.With().
		Str("client_id", clientID).
		Str("file", job.SourceFileName).
		Int("page", job.PageNumber).
		Logger()

	p.emit(ctx, clientID, job.Status(models.StatusProcessing, nil))

	status := models.StatusCompleted
	result, err := p.run(ctx, job, start)
	if err != nil {
		status = models.StatusFailed
		result = models.ErrorResult(err)
		log.Warn().Err(err).Msg("Page failed")
	} else {
		log.Info().
			Str("category", result[models.FieldCategory]).
			Dur("took", time.Since(start)).
			Msg("Page completed")
	}

	p.emit(ctx, clientID, job.Status(status, result))
	util.RemoveQuietly(job.StoragePath)
}

func (p *Processor) run(ctx context.Context, job models.Job, start time.Time) (fields models.Fields, err error) {
	defer func() {
		if r := recover(); r != nil {
			fields = nil
			err = fmt.Errorf("page processing panicked: %v", r)
		}
	}()

	text, err := p.recognize(ctx, job.StoragePath)
	if err != nil {
		return nil, err
	}

	category := p.classify(text)
	fields = models.Fields{}
	if fn, ok := p.extractors.Lookup(category); ok {
		extracted, err := fn(ctx, extract.Input{Text: text, ImagePath: job.StoragePath})
		if err != nil {
			return nil, fmt.Errorf("extracting %s fields: %w", category, err)
		}
		for k, v := range extracted {
			fields[k] = v
		}
	}
	fields[models.FieldCategory] = string(category)
	fields[models.FieldCategoryConfidence] = "1.0"
	fields[models.FieldProcessingTime] = fmt.Sprintf("%.2f seconds", time.Since(start).Seconds())
	return fields, nil
}

func (p *Processor) recognize(ctx context.Context, path string) (string, error) {
	if p.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.ocrTimeout)
		defer cancel()
	}
	return p.ocr.Recognize(ctx, path)
}

// emit never fails the job; a departed client simply misses the event.
func (p *Processor) emit(ctx context.Context, clientID string, status models.FileStatus) {
	if err := p.emitter.Emit(ctx, clientID, status); err != nil {
		p.log.Debug().Err(err).Str("client_id", clientID).Stringer("status", status.Status).Msg("Status event not delivered")
	}
}
