package ocr

import (
	"errors"
	"fmt"
)

var (
	// ErrOCRFailed is returned when the OCR backend fails to process a page.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrEmptyImage is returned for a zero-byte page image.
	ErrEmptyImage = errors.New("page image is empty")

	// ErrMissingCredentials is returned when no Google Cloud credentials
	// could be found.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set ocr.credentials_file or GOOGLE_APPLICATION_CREDENTIALS")

	// ErrUnknownEngine is returned by New for an unsupported engine name.
	ErrUnknownEngine = errors.New("unknown OCR engine")
)

// Error wraps an OCR failure with the operation that failed.
type Error struct {
	Op      string
	Err     error
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap returns err as an *Error unless it already is one.
func wrap(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var ocrErr *Error
	if errors.As(err, &ocrErr) {
		return err
	}
	return &Error{Op: op, Err: err, Details: details}
}
