package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rustyeddy/altchart/chart"
	"github.com/rustyeddy/altchart/feed"
	"github.com/rustyeddy/altchart/source"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "ALTCHART_"

// Config represents the complete CLI configuration
type Config struct {
	Source  SourceConfig  `json:"source" yaml:"source" envPrefix:"SOURCE_"`
	Chart   ChartConfig   `json:"chart" yaml:"chart" envPrefix:"CHART_"`
	Display DisplayConfig `json:"display" yaml:"display" envPrefix:"DISPLAY_"`
	Feed    FeedConfig    `json:"feed" yaml:"feed" envPrefix:"FEED_"`
	Archive ArchiveConfig `json:"archive" yaml:"archive" envPrefix:"ARCHIVE_"`
	Log     LogConfig     `json:"log" yaml:"log" envPrefix:"LOG_"`
}

// SourceConfig selects where candles come from
type SourceConfig struct {
	Type        string `json:"type" yaml:"type" env:"TYPE"` // "http", "csv" or "sqlite"
	BaseURL     string `json:"base_url,omitempty" yaml:"base_url,omitempty" env:"BASE_URL"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty" env:"PATH"`
	Timeout     string `json:"timeout,omitempty" yaml:"timeout,omitempty" env:"TIMEOUT"` // e.g. "30s"
	CSVFile     string `json:"csv_file,omitempty" yaml:"csv_file,omitempty" env:"CSV_FILE"`
	Ticker      string `json:"ticker" yaml:"ticker" env:"TICKER"`
	Period      string `json:"period" yaml:"period" env:"PERIOD"`
	DropInvalid bool   `json:"drop_invalid,omitempty" yaml:"drop_invalid,omitempty" env:"DROP_INVALID"`
}

// TimeoutDuration converts the timeout string to time.Duration
func (s SourceConfig) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Timeout)
}

// ChartConfig holds the transformation parameters
type ChartConfig struct {
	BrickSize      float64 `json:"brick_size" yaml:"brick_size" env:"BRICK_SIZE"`
	ReversalAmount float64 `json:"reversal_amount" yaml:"reversal_amount" env:"REVERSAL_AMOUNT"`
	BoxSize        float64 `json:"box_size" yaml:"box_size" env:"BOX_SIZE"`
	ReversalBoxes  int     `json:"reversal_boxes" yaml:"reversal_boxes" env:"REVERSAL_BOXES"`
	RangeSize      float64 `json:"range_size" yaml:"range_size" env:"RANGE_SIZE"`
	Precision      int     `json:"precision,omitempty" yaml:"precision,omitempty" env:"PRECISION"`
	FlushPartial   bool    `json:"flush_partial,omitempty" yaml:"flush_partial,omitempty" env:"FLUSH_PARTIAL"`
}

// Params converts the chart section into transformation parameters
func (c ChartConfig) Params() chart.Params {
	return chart.Params{
		BrickSize:      c.BrickSize,
		ReversalAmount: c.ReversalAmount,
		BoxSize:        c.BoxSize,
		ReversalBoxes:  c.ReversalBoxes,
		RangeSize:      c.RangeSize,
		Precision:      c.Precision,
		FlushPartial:   c.FlushPartial,
	}
}

// DisplayConfig limits how many of the most recent primitives are shown.
// Zero shows everything.
type DisplayConfig struct {
	Renko       int `json:"renko" yaml:"renko" env:"RENKO"`
	Kagi        int `json:"kagi" yaml:"kagi" env:"KAGI"`
	PointFigure int `json:"point_figure" yaml:"point_figure" env:"POINT_FIGURE"`
	Range       int `json:"range" yaml:"range" env:"RANGE"`
}

// Limit returns the display limit for kind
func (d DisplayConfig) Limit(kind chart.Kind) int {
	switch kind {
	case chart.KindRenko:
		return d.Renko
	case chart.KindKagi:
		return d.Kagi
	case chart.KindPointFigure:
		return d.PointFigure
	case chart.KindRange:
		return d.Range
	}
	return 0
}

// FeedConfig points at the live market feed
type FeedConfig struct {
	URL        string   `json:"url" yaml:"url" env:"URL"`
	EventTypes []string `json:"event_types,omitempty" yaml:"event_types,omitempty" env:"EVENT_TYPES" envSeparator:","`
	Debounce   string   `json:"debounce,omitempty" yaml:"debounce,omitempty" env:"DEBOUNCE"` // e.g. "2s"
}

// DebounceDuration converts the debounce string to time.Duration
func (f FeedConfig) DebounceDuration() (time.Duration, error) {
	if f.Debounce == "" {
		return 0, nil
	}
	return time.ParseDuration(f.Debounce)
}

// ArchiveConfig locates the SQLite candle archive
type ArchiveConfig struct {
	DBPath string `json:"db_path" yaml:"db_path" env:"DB_PATH"`
}

// LogConfig controls the logger
type LogConfig struct {
	Level    string `json:"level" yaml:"level" env:"LEVEL"`
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty" env:"ENCODING"` // "json" or "console"
}

// Load is Resolve followed by Validate.
func Load(path string) (*Config, error) {
	cfg, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Resolve returns Default() when path is empty, otherwise the file at path,
// with environment variables applied on top. The result is not validated:
// commands validate after their flags have been applied.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = readFile(path); err != nil {
			return nil, err
		}
	}

	if err := LoadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Unset keys keep their defaults
	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}
	return cfg, nil
}

// LoadEnv overlays ALTCHART_* environment variables onto cfg. A .env file
// in the working directory is read first if present.
func LoadEnv(cfg *Config) error {
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Source.Type {
	case source.TypeHTTP:
		if c.Source.BaseURL == "" {
			return fmt.Errorf("source.base_url required for http source")
		}
	case source.TypeCSV:
		if c.Source.CSVFile == "" {
			return fmt.Errorf("source.csv_file required for csv source")
		}
	case source.TypeSQLite:
		if c.Archive.DBPath == "" {
			return fmt.Errorf("archive.db_path required for sqlite source")
		}
	default:
		return fmt.Errorf("source.type must be 'http', 'csv' or 'sqlite'")
	}
	if _, err := c.Source.TimeoutDuration(); err != nil {
		return fmt.Errorf("source.timeout: %w", err)
	}
	if c.Source.Period != "" {
		if err := source.ValidatePeriod(c.Source.Period); err != nil {
			return fmt.Errorf("source.period: %w", err)
		}
	}

	p := c.Chart.Params()
	for _, kind := range chart.Kinds {
		if err := p.Validate(kind); err != nil {
			return fmt.Errorf("chart: %w", err)
		}
	}

	d := c.Display
	if d.Renko < 0 || d.Kagi < 0 || d.PointFigure < 0 || d.Range < 0 {
		return fmt.Errorf("display limits must not be negative")
	}

	if _, err := c.Feed.DebounceDuration(); err != nil {
		return fmt.Errorf("feed.debounce: %w", err)
	}

	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.encoding must be 'json' or 'console'")
	}
	return nil
}

// Default returns the settings the dashboard charts use
func Default() *Config {
	p := chart.DefaultParams()
	return &Config{
		Source: SourceConfig{
			Type:    source.TypeHTTP,
			BaseURL: "http://localhost:8000",
			Path:    source.DefaultPath,
			Timeout: "30s",
			Ticker:  "BTC-USD",
			Period:  "3mo",
		},
		Chart: ChartConfig{
			BrickSize:      p.BrickSize,
			ReversalAmount: p.ReversalAmount,
			BoxSize:        p.BoxSize,
			ReversalBoxes:  p.ReversalBoxes,
			RangeSize:      p.RangeSize,
		},
		Display: DisplayConfig{
			Renko:       30,
			Kagi:        40,
			PointFigure: 50,
			Range:       30,
		},
		Feed: FeedConfig{
			URL:        feed.DefaultURL,
			EventTypes: []string{feed.PriceChange},
			Debounce:   "1s",
		},
		Archive: ArchiveConfig{
			DBPath: "./altchart.sqlite",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}
