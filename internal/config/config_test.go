// Verifies the configuration loading logic using Viper.

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		os.Remove("config.yml")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "./uploads", cfg.Storage.UploadDir)
		assert.Equal(t, "./temp_pages", cfg.Storage.PagesDir)
		assert.Equal(t, 300.0, cfg.PDF.DPI)
		assert.Equal(t, "vision", cfg.OCR.Engine)
		assert.Equal(t, "regex", cfg.Extract.Strategy)
		assert.Equal(t, 60*time.Second, cfg.OCRTimeout())
		assert.Equal(t, 6*time.Hour, cfg.ArtifactTTL())
	})

	t.Run("Loads from config file", func(t *testing.T) {
		configContent := `
port: 9999
storage:
  upload_dir: "/tmp/docscan-uploads"
ocr:
  engine: documentai
  documentai:
    project_id: transport-ocr
pdf:
  dpi: 150
unknown_setting: "should be ignored"
`
		// Viper looks in the CWD, so the file cannot live in t.TempDir().
		configPath := "config.yml"
		require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
		defer os.Remove(configPath)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9999, cfg.Port)
		assert.Equal(t, "/tmp/docscan-uploads", cfg.Storage.UploadDir)
		assert.Equal(t, "./temp_pages", cfg.Storage.PagesDir)
		assert.Equal(t, "documentai", cfg.OCR.Engine)
		assert.Equal(t, "transport-ocr", cfg.OCR.DocumentAI.ProjectID)
		assert.Equal(t, "us", cfg.OCR.DocumentAI.Location)
		assert.Equal(t, 150.0, cfg.PDF.DPI)
		assert.Equal(t, 5, cfg.SweepInterval)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		os.Remove("config.yml")
		t.Setenv("DOCSCAN_PORT", "7070")
		t.Setenv("DOCSCAN_EXTRACT_STRATEGY", "llm")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Port)
		assert.Equal(t, "llm", cfg.Extract.Strategy)
	})

	t.Run("Rejects unknown OCR engine", func(t *testing.T) {
		os.Remove("config.yml")
		t.Setenv("DOCSCAN_OCR_ENGINE", "abacus")

		_, err := Load()
		assert.Error(t, err)
	})
}
