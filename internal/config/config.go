package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"empleoformal/internal/models"
)

// UI variants of the dashboard selector
const (
	VariantDropdown = "dropdown"
	VariantRadio    = "radio"
	VariantTabs     = "tabs"
)

// Config holds all configuration for the employment dashboard
type Config struct {
	// Server configuration
	Port  string `env:"PORT,default=8050"`
	Debug bool   `env:"DEBUG,default=true"`

	// Data source: local path, gs://bucket/object or http(s) URL
	DataSource    string `env:"DATA_SOURCE,default=empleo_formal.csv"`
	DataDelimiter string `env:"DATA_DELIMITER"`

	// Dashboard configuration
	Title           string `env:"APP_TITLE,default=Empleo Formal Colombia"`
	DefaultView     string `env:"DEFAULT_VIEW,default=barras"`
	UIVariant       string `env:"UI_VARIANT,default=dropdown"`
	ShowContext     bool   `env:"SHOW_CONTEXT,default=true"`
	ContextImageURL string `env:"CONTEXT_IMAGE_URL,default=https://upload.wikimedia.org/wikipedia/commons/2/21/Flag_of_Colombia.svg"`

	// Export configuration
	GCPProjectID string `env:"GCP_PROJECT_ID"`
	GCSBucket    string `env:"GCS_BUCKET"`
	ExportDir    string `env:"EXPORT_DIR,default=./exports"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=auto"`
}

// Load loads configuration from an optional .env file and environment variables
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the dashboard cannot serve
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataSource) == "" {
		return fmt.Errorf("DATA_SOURCE must not be empty")
	}
	if v := models.ParseView(c.DefaultView); !v.Valid() {
		return fmt.Errorf("invalid DEFAULT_VIEW: %q", c.DefaultView)
	}
	switch c.UIVariant {
	case VariantDropdown, VariantRadio, VariantTabs:
	default:
		return fmt.Errorf("invalid UI_VARIANT: %q", c.UIVariant)
	}
	switch strings.ToLower(c.LogFormat) {
	case "auto", "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %q", c.LogFormat)
	}
	if len([]rune(c.DataDelimiter)) > 1 {
		return fmt.Errorf("DATA_DELIMITER must be a single character, got %q", c.DataDelimiter)
	}
	return nil
}

// ListenAddr returns the host:port string for the HTTP server
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}

// Delimiter returns the CSV field separator, comma unless DATA_DELIMITER is set
func (c *Config) Delimiter() rune {
	if c.DataDelimiter == "" {
		return ','
	}
	return []rune(c.DataDelimiter)[0]
}

// DefaultViewSelection returns the view shown on first page load
func (c *Config) DefaultViewSelection() models.ViewSelection {
	return models.ParseView(c.DefaultView)
}

// ResolvedLogFormat maps "auto" to text in debug mode and JSON otherwise
func (c *Config) ResolvedLogFormat() string {
	format := strings.ToLower(c.LogFormat)
	if format != "auto" {
		return format
	}
	if c.Debug {
		return "text"
	}
	return "json"
}
