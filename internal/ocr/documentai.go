package ocr

import (
	"context"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

type documentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// DocumentAI sends page images to a Document AI OCR processor.
type DocumentAI struct {
	client documentProcessor
	name   string
}

func NewDocumentAI(ctx context.Context, cfg DocumentAIConfig, opts ...option.ClientOption) (*DocumentAI, error) {
	const op = "NewDocumentAI"
	if cfg.ProjectID == "" || cfg.ProcessorID == "" {
		return nil, wrap(op, fmt.Errorf("project_id and processor_id are required"), "")
	}
	location := cfg.Location
	if location == "" {
		location = "us"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	client, err := documentai.NewDocumentProcessorClient(ctx, append([]option.ClientOption{option.WithEndpoint(endpoint)}, opts...)...)
	if err != nil {
		return nil, wrap(op, err, "failed to create Document AI client")
	}
	return &DocumentAI{
		client: client,
		name:   processorName(cfg.ProjectID, location, cfg.ProcessorID),
	}, nil
}

func processorName(projectID, location, processorID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID)
}

func (d *DocumentAI) Recognize(ctx context.Context, imagePath string) (string, error) {
	const op = "DocumentAI.Recognize"
	content, err := readImage(op, imagePath)
	if err != nil {
		return "", err
	}

	resp, err := d.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: "image/jpeg",
			},
		},
		SkipHumanReview: true,
	})
	if err != nil {
		return "", wrap(op, ErrOCRFailed, fmt.Sprintf("Document AI call failed: %v", err))
	}
	if resp.GetDocument() == nil {
		return "", wrap(op, ErrOCRFailed, "empty Document AI response")
	}
	return resp.GetDocument().GetText(), nil
}

func (d *DocumentAI) Close() error {
	return d.client.Close()
}
