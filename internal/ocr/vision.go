package ocr

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// Vision runs dense document text detection with Google Cloud Vision.
type Vision struct {
	client imageAnnotator
}

func NewVision(ctx context.Context, opts ...option.ClientOption) (*Vision, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, wrap("NewVision", ErrMissingCredentials, err.Error())
		}
		return nil, wrap("NewVision", err, "failed to create Vision client")
	}
	return &Vision{client: client}, nil
}

func (v *Vision) Recognize(ctx context.Context, imagePath string) (string, error) {
	const op = "Vision.Recognize"
	content, err := readImage(op, imagePath)
	if err != nil {
		return "", err
	}

	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	})
	if err != nil {
		return "", wrap(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return "", wrap(op, ErrOCRFailed, "no response from Vision API")
	}
	page := resp.Responses[0]
	if page.Error != nil {
		return "", wrap(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", page.Error.Message))
	}
	if page.FullTextAnnotation == nil {
		return "", nil
	}
	return page.FullTextAnnotation.Text, nil
}

func (v *Vision) Close() error {
	return v.client.Close()
}
