package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete extraction configuration.
type Config struct {
	Country   string          `yaml:"country" envconfig:"COUNTRY" validate:"required,len=3"`
	OutputDir string          `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	HTTP      HTTPConfig      `yaml:"http" envconfig:"HTTP"`
	FRED      FREDConfig      `yaml:"fred" envconfig:"FRED"`
	IMF       IMFConfig       `yaml:"imf" envconfig:"IMF"`
	WorldBank WorldBankConfig `yaml:"worldbank" envconfig:"WORLDBANK"`
	Run       RunConfig       `yaml:"run" envconfig:"RUN"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// HTTPConfig contains settings shared by all provider clients.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	Retries      int           `yaml:"retries" envconfig:"RETRIES" validate:"gte=0"`
	RetryBackoff time.Duration `yaml:"retry_backoff" envconfig:"RETRY_BACKOFF" validate:"gt=0"`
	MaxBackoff   time.Duration `yaml:"max_backoff" envconfig:"MAX_BACKOFF" validate:"gt=0"`
	UserAgent    string        `yaml:"user_agent" envconfig:"USER_AGENT"`
}

// FREDConfig configures the FRED pipeline.
type FREDConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	APIKey         string        `yaml:"api_key" envconfig:"API_KEY"`
	RootCategoryID int           `yaml:"root_category_id" envconfig:"ROOT_CATEGORY_ID" validate:"gt=0"`
	SeriesDelay    time.Duration `yaml:"series_delay" envconfig:"SERIES_DELAY"`
	ChildrenDelay  time.Duration `yaml:"children_delay" envconfig:"CHILDREN_DELAY"`
}

// IMFConfig configures the IMF DataMapper pipeline.
type IMFConfig struct {
	BaseURL    string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	BatchSize  int           `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"gt=0"`
	BatchPause time.Duration `yaml:"batch_pause" envconfig:"BATCH_PAUSE"`
}

// WorldBankConfig configures the World Bank WDI pipeline.
type WorldBankConfig struct {
	BaseURL    string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	SourceID   int           `yaml:"source_id" envconfig:"SOURCE_ID" validate:"gt=0"`
	PageSize   int           `yaml:"page_size" envconfig:"PAGE_SIZE" validate:"gt=0"`
	CallDelay  time.Duration `yaml:"call_delay" envconfig:"CALL_DELAY"`
	BatchSize  int           `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"gt=0"`
	BatchPause time.Duration `yaml:"batch_pause" envconfig:"BATCH_PAUSE"`
}

// RunConfig contains orchestration settings.
type RunConfig struct {
	ProviderTimeout time.Duration `yaml:"provider_timeout" envconfig:"PROVIDER_TIMEOUT" validate:"gt=0"`
}

// Default returns the built-in configuration. Values mirror the public API
// limits each provider documents.
func Default() *Config {
	return &Config{
		Country:   "ECU",
		OutputDir: "ecuador_data",
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stderr",
			FilePath: "logs/ecuador-macro.log",
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			Retries:      3,
			RetryBackoff: time.Second,
			MaxBackoff:   30 * time.Second,
			UserAgent:    "ecuador-macro/0.1",
		},
		FRED: FREDConfig{
			BaseURL:        "https://api.stlouisfed.org/fred",
			RootCategoryID: 32696,
			SeriesDelay:    300 * time.Millisecond,
			ChildrenDelay:  200 * time.Millisecond,
		},
		IMF: IMFConfig{
			BaseURL:    "https://www.imf.org/external/datamapper/api/v1",
			BatchSize:  8,
			BatchPause: 1500 * time.Millisecond,
		},
		WorldBank: WorldBankConfig{
			BaseURL:    "https://api.worldbank.org/v2",
			SourceID:   2,
			PageSize:   1000,
			CallDelay:  150 * time.Millisecond,
			BatchSize:  15,
			BatchPause: time.Second,
		},
		Run: RunConfig{
			ProviderTimeout: 30 * time.Minute,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file if present,
// then ECUADOR_* environment variables on top.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	// No default tags on the struct, so Process only touches fields whose
	// environment variable is actually set.
	if err := envconfig.Process("ECUADOR", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays configuration from a YAML file.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks the configuration using struct tags.
func (c *Config) validate() error {
	return validator.New().Struct(c)
}

// Paths resolves the per-provider output directories under the output root.
func (c *Config) Paths() *Paths {
	return NewPaths(c.OutputDir)
}

// Paths is the single source of truth for output locations.
type Paths struct {
	OutputDir    string
	IMFDir       string
	WorldBankDir string
	FREDDir      string
}

// NewPaths builds the provider directory layout under root.
func NewPaths(root string) *Paths {
	return &Paths{
		OutputDir:    root,
		IMFDir:       filepath.Join(root, "imf"),
		WorldBankDir: filepath.Join(root, "worldbank"),
		FREDDir:      filepath.Join(root, "fred"),
	}
}

// ProviderDir returns the output directory for a provider name.
func (p *Paths) ProviderDir(name string) string {
	switch name {
	case "imf":
		return p.IMFDir
	case "worldbank":
		return p.WorldBankDir
	case "fred":
		return p.FREDDir
	default:
		return filepath.Join(p.OutputDir, name)
	}
}

// EnsureDirectories creates all output directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.IMFDir, p.WorldBankDir, p.FREDDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
