// Package ocr recognizes the text of page images with Google Cloud OCR
// backends.
package ocr

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
)

// Engine recognizes the text printed on one page image.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
	Close() error
}

const (
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

type DocumentAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

type Config struct {
	Engine          string
	CredentialsFile string
	DocumentAI      DocumentAIConfig
}

// New connects the configured engine.
func New(ctx context.Context, cfg Config) (Engine, error) {
	opts, err := clientOptions(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	switch cfg.Engine {
	case EngineVision, "":
		return NewVision(ctx, opts...)
	case EngineDocumentAI:
		return NewDocumentAI(ctx, cfg.DocumentAI, opts...)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
}

// clientOptions resolves credentials. An explicit file wins, then inline
// JSON in GOOGLE_CREDENTIALS; otherwise the client libraries fall back to
// application default credentials.
func clientOptions(credentialsFile string) ([]option.ClientOption, error) {
	const op = "LoadCredentials"
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, wrap(op, ErrMissingCredentials, err.Error())
		}
		return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}, nil
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}, nil
	}
	return nil, nil
}

func readImage(op, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(op, err, "failed to read page image")
	}
	if len(data) == 0 {
		return nil, wrap(op, ErrEmptyImage, path)
	}
	return data, nil
}
