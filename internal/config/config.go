// Package config loads the service configuration from config.yml, a .env
// file and DOCSCAN_* environment variables.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port int `mapstructure:"port"`
	// SweepInterval is how often, in seconds, every queue is re-triggered
	// and stale artifacts are removed. 0 disables the sweeper.
	SweepInterval int `mapstructure:"sweep_interval_seconds"`

	Storage struct {
		UploadDir          string `mapstructure:"upload_dir"`
		PagesDir           string `mapstructure:"pages_dir"`
		ArtifactTTLMinutes int    `mapstructure:"artifact_ttl_minutes"`
	} `mapstructure:"storage"`

	PDF struct {
		DPI         float64 `mapstructure:"dpi"`
		JPEGQuality int     `mapstructure:"jpeg_quality"`
	} `mapstructure:"pdf"`

	Image struct {
		MaxDimension int `mapstructure:"max_dimension"`
	} `mapstructure:"image"`

	Upload struct {
		MaxBytes int64 `mapstructure:"max_bytes"`
	} `mapstructure:"upload"`

	OCR struct {
		Engine          string `mapstructure:"engine"` // vision or documentai
		TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
		CredentialsFile string `mapstructure:"credentials_file"`
		DocumentAI      struct {
			ProjectID   string `mapstructure:"project_id"`
			Location    string `mapstructure:"location"`
			ProcessorID string `mapstructure:"processor_id"`
		} `mapstructure:"documentai"`
	} `mapstructure:"ocr"`

	Extract struct {
		Strategy    string `mapstructure:"strategy"` // regex or llm
		ScriptsPath string `mapstructure:"scripts_path"`
		LLM         struct {
			APIKey  string `mapstructure:"api_key"`
			BaseURL string `mapstructure:"base_url"`
			Model   string `mapstructure:"model"`
		} `mapstructure:"llm"`
	} `mapstructure:"extract"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		Output string `mapstructure:"output"`
	} `mapstructure:"log"`
}

// Load reads configuration from a file named "config.yml" in the current
// directory and unmarshals it into a Config struct. A .env file, when
// present, is loaded into the environment first.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")

	// e.g. DOCSCAN_OCR_ENGINE overrides `ocr.engine`.
	v.SetEnvPrefix("DOCSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("sweep_interval_seconds", 5)
	v.SetDefault("storage.upload_dir", "./uploads")
	v.SetDefault("storage.pages_dir", "./temp_pages")
	v.SetDefault("storage.artifact_ttl_minutes", 360)
	v.SetDefault("pdf.dpi", 300.0)
	v.SetDefault("pdf.jpeg_quality", 90)
	v.SetDefault("image.max_dimension", 4000)
	v.SetDefault("upload.max_bytes", 64<<20)
	v.SetDefault("ocr.engine", "vision")
	v.SetDefault("ocr.timeout_seconds", 60)
	v.SetDefault("ocr.credentials_file", "")
	v.SetDefault("ocr.documentai.project_id", "")
	v.SetDefault("ocr.documentai.location", "us")
	v.SetDefault("ocr.documentai.processor_id", "")
	v.SetDefault("extract.strategy", "regex")
	v.SetDefault("extract.scripts_path", "")
	v.SetDefault("extract.llm.api_key", "")
	v.SetDefault("extract.llm.base_url", "")
	v.SetDefault("extract.llm.model", "gpt-4o-mini")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

func (c *Config) validate() error {
	switch c.OCR.Engine {
	case "vision", "documentai":
	default:
		return errors.New("ocr.engine must be one of: vision, documentai")
	}
	switch c.Extract.Strategy {
	case "regex", "llm":
	default:
		return errors.New("extract.strategy must be one of: regex, llm")
	}
	if c.PDF.DPI <= 0 {
		return errors.New("pdf.dpi must be positive")
	}
	return nil
}

// OCRTimeout is the per-page OCR deadline.
func (c *Config) OCRTimeout() time.Duration {
	return time.Duration(c.OCR.TimeoutSeconds) * time.Second
}

// ArtifactTTL is the age after which the sweeper removes leftover files.
func (c *Config) ArtifactTTL() time.Duration {
	return time.Duration(c.Storage.ArtifactTTLMinutes) * time.Minute
}
