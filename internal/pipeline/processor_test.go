package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/docscan/internal/extract"
	"github.com/vrsandeep/docscan/internal/models"
	"github.com/vrsandeep/docscan/internal/testutil"
	"github.com/vrsandeep/docscan/internal/websocket"
)

func newJob(t *testing.T, name string, page int, group string) models.Job {
	t.Helper()
	path := testutil.WriteFile(t, t.TempDir(), name, []byte("jpeg"))
	return models.Job{
		SourceFileName: "trip.pdf",
		StoragePath:    path,
		GroupKey:       group,
		IsFromPDF:      page > 0,
		PageNumber:     page,
	}
}

func regexRegistry() *extract.Registry {
	r := extract.NewRegistry()
	extract.RegisterRegex(r)
	return r
}

func TestProcessCompletedPage(t *testing.T) {
	ocr := &testutil.FakeOCR{Default: "DELIVERY CHALLAN\nDC No: 77\nVehicle No: MH12AB1234"}
	em := &testutil.RecordingEmitter{}
	p := NewProcessor(ocr, regexRegistry(), em, time.Second)

	job := newJob(t, "trip_page_2.jpg", 2, "Trip 9")
	p.Process(context.Background(), "c1", job)

	events := em.For("c1")
	require.Len(t, events, 2)

	processing, done := events[0], events[1]
	assert.Equal(t, models.StatusProcessing, processing.Status)
	assert.Nil(t, processing.Result)
	assert.Equal(t, models.StatusCompleted, done.Status)

	for _, ev := range events {
		assert.Equal(t, "trip.pdf", ev.FileName)
		assert.True(t, ev.PDF)
		assert.Equal(t, 2, ev.Page)
		require.NotNil(t, ev.Parent)
		assert.Equal(t, "Trip 9", *ev.Parent)
	}

	assert.Equal(t, "Delivery Challan", done.Result[models.FieldCategory])
	assert.Equal(t, "1.0", done.Result[models.FieldCategoryConfidence])
	assert.Regexp(t, `^\d+\.\d{2} seconds$`, done.Result[models.FieldProcessingTime])
	assert.Equal(t, "77", done.Result["No."])
	assert.Equal(t, "MH12AB1234", done.Result["Vehicle Number"])

	assert.NoFileExists(t, job.StoragePath)
	assert.Equal(t, []string{"trip_page_2.jpg"}, ocr.Calls())
}

func TestProcessUnknownCategory(t *testing.T) {
	em := &testutil.RecordingEmitter{}
	p := NewProcessor(&testutil.FakeOCR{Default: "grocery list"}, regexRegistry(), em, time.Second)

	job := newJob(t, "note.jpg", 0, "")
	p.Process(context.Background(), "c1", job)

	events := em.For("c1")
	require.Len(t, events, 2)
	done := events[1]
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Nil(t, done.Parent)
	assert.False(t, done.PDF)
	assert.Len(t, done.Result, 3)
	assert.Equal(t, "Unknown", done.Result[models.FieldCategory])
}

func TestProcessFailures(t *testing.T) {
	failing := func(context.Context, extract.Input) (models.Fields, error) {
		return nil, errors.New("model refused")
	}
	panicking := func(context.Context, extract.Input) (models.Fields, error) {
		panic("index out of range")
	}

	testCases := []struct {
		name       string
		ocr        *testutil.FakeOCR
		extractor  extract.Func
		ocrTimeout time.Duration
		errText    string
	}{
		{
			name:    "OCR error",
			ocr:     &testutil.FakeOCR{Errs: map[string]error{"page.jpg": errors.New("ocr: Vision.Recognize failed")}},
			errText: "Vision.Recognize failed",
		},
		{
			name:       "OCR timeout",
			ocr:        &testutil.FakeOCR{Delay: time.Second},
			ocrTimeout: 20 * time.Millisecond,
			errText:    context.DeadlineExceeded.Error(),
		},
		{
			name:      "Extractor error",
			ocr:       &testutil.FakeOCR{Default: "TAX INVOICE"},
			extractor: failing,
			errText:   "extracting Tax Invoice fields: model refused",
		},
		{
			name:      "Extractor panic",
			ocr:       &testutil.FakeOCR{Default: "TAX INVOICE"},
			extractor: panicking,
			errText:   "panicked",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reg := regexRegistry()
			if tc.extractor != nil {
				reg.Register(models.CategoryTaxInvoice, "test", tc.extractor)
			}
			em := &testutil.RecordingEmitter{}
			timeout := tc.ocrTimeout
			if timeout == 0 {
				timeout = time.Second
			}
			p := NewProcessor(tc.ocr, reg, em, timeout)

			job := newJob(t, "page.jpg", 1, "")
			p.Process(context.Background(), "c1", job)

			events := em.For("c1")
			require.Len(t, events, 2)
			assert.Equal(t, models.StatusProcessing, events[0].Status)
			assert.Equal(t, models.StatusFailed, events[1].Status)
			assert.Len(t, events[1].Result, 1)
			assert.Contains(t, events[1].Result[models.FieldError], tc.errText)
			assert.NoFileExists(t, job.StoragePath)
		})
	}
}

func TestProcessClientGone(t *testing.T) {
	em := &testutil.RecordingEmitter{Err: websocket.ErrClientGone}
	p := NewProcessor(&testutil.FakeOCR{Default: "TAX INVOICE"}, regexRegistry(), em, time.Second)

	job := newJob(t, "page.jpg", 0, "")
	assert.NotPanics(t, func() { p.Process(context.Background(), "gone", job) })
	assert.Len(t, em.Events(), 2)
	assert.NoFileExists(t, job.StoragePath)
}

func TestProcessMissingArtifact(t *testing.T) {
	em := &testutil.RecordingEmitter{}
	p := NewProcessor(&testutil.FakeOCR{Default: "x"}, regexRegistry(), em, time.Second)

	job := models.Job{SourceFileName: "a.jpg", StoragePath: filepath.Join(t.TempDir(), "missing.jpg")}
	p.Process(context.Background(), "c1", job)
	require.Len(t, em.For("c1"), 2)
}
