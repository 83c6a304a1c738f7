package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/docscan/internal/config"
	"github.com/vrsandeep/docscan/internal/extract"
	"github.com/vrsandeep/docscan/internal/jobs"
	"github.com/vrsandeep/docscan/internal/models"
	"github.com/vrsandeep/docscan/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.UploadDir = filepath.Join(t.TempDir(), "uploads")
	cfg.Storage.PagesDir = filepath.Join(t.TempDir(), "pages")
	cfg.OCR.Engine = "vision"
	cfg.Extract.Strategy = "regex"
	cfg.PDF.DPI = 300
	return cfg
}

func TestBuild(t *testing.T) {
	app, err := Build(testConfig(t), &testutil.FakeOCR{})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, Version, app.Version)
	assert.NotNil(t, app.WsHub())
	assert.NotNil(t, app.Ingest())
	assert.NotNil(t, app.Dispatcher())

	var ids []string
	for _, s := range app.JobManager().GetStatus() {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{jobs.JobQueueSweep, jobs.JobArtifactJanitor}, ids)

	for _, b := range app.Extractors().Bindings() {
		if b.Category == models.CategoryUnknown {
			assert.Empty(t, b.Source)
			continue
		}
		assert.Equal(t, extract.SourceRegex, b.Source, b.Category)
	}
}

func TestExtractors(t *testing.T) {
	t.Run("llm strategy needs a key", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Extract.Strategy = "llm"
		_, err := Extractors(cfg)
		assert.ErrorContains(t, err, "api_key")
	})

	t.Run("llm strategy", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Extract.Strategy = "llm"
		cfg.Extract.LLM.APIKey = "sk-test"
		r, err := Extractors(cfg)
		require.NoError(t, err)
		_, ok := r.Lookup(models.CategoryEWayBill)
		assert.True(t, ok)
		assert.Equal(t, extract.SourceLLM, r.Bindings()[0].Source)
	})

	t.Run("scripts override the strategy", func(t *testing.T) {
		dir := t.TempDir()
		script := `
exports.category = "Weighbridge";
exports.extract = function (input) { return { "Net Weight (Tons)": "1.000" }; };
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "wb.js"), []byte(script), 0644))
		cfg := testConfig(t)
		cfg.Extract.ScriptsPath = dir

		r, err := Extractors(cfg)
		require.NoError(t, err)
		for _, b := range r.Bindings() {
			if b.Category == models.CategoryWeighbridge {
				assert.Equal(t, "script:wb.js", b.Source)
			}
		}
	})
}

func TestOCRConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.OCR.Engine = "documentai"
	cfg.OCR.DocumentAI.ProjectID = "p"
	cfg.OCR.DocumentAI.Location = "eu"
	cfg.OCR.DocumentAI.ProcessorID = "x"

	got := OCRConfig(cfg)
	assert.Equal(t, "documentai", got.Engine)
	assert.Equal(t, "eu", got.DocumentAI.Location)
	assert.Equal(t, "x", got.DocumentAI.ProcessorID)
}
