package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyChartWidth            = "chart.width"
	KeyChartHeight           = "chart.height"
	KeyChartBins             = "chart.bins"
	KeyChartHistogramColumns = "chart.histogram_columns"
	KeyChartGrid             = "chart.grid"
	KeyChartMarkers          = "chart.markers"

	KeyOutputDir  = "output.dir"
	KeyOutputOpen = "output.open"

	KeyImportHeader = "import.header"
	KeyImportSheet  = "import.sheet"

	KeyTerminalWidth  = "terminal.width"
	KeyTerminalHeight = "terminal.height"

	KeyServePort = "serve.port"

	KeyHistoryEnabled = "history.enabled"
	KeyHistoryDB      = "history.db"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyLogSeqURL = "log.seq_url"
)

type Config struct {
	Chart    ChartConfig    `mapstructure:"chart"`
	Output   OutputConfig   `mapstructure:"output"`
	Import   ImportConfig   `mapstructure:"import"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	Serve    ServeConfig    `mapstructure:"serve"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
}

// ChartConfig holds image dimensions in inches.
type ChartConfig struct {
	Width            float64 `mapstructure:"width" validate:"gt=0"`
	Height           float64 `mapstructure:"height" validate:"gt=0"`
	Bins             int     `mapstructure:"bins" validate:"gte=1"`
	HistogramColumns int     `mapstructure:"histogram_columns" validate:"gte=1,lte=10"`
	Grid             bool    `mapstructure:"grid"`
	Markers          bool    `mapstructure:"markers"`
}

type OutputConfig struct {
	Dir  string `mapstructure:"dir"`
	Open bool   `mapstructure:"open"`
}

type ImportConfig struct {
	Header string `mapstructure:"header" validate:"oneof=auto present absent"`
	Sheet  string `mapstructure:"sheet"`
}

type TerminalConfig struct {
	Width  int `mapstructure:"width" validate:"gte=0"`
	Height int `mapstructure:"height" validate:"gte=1"`
}

type ServeConfig struct {
	Port int `mapstructure:"port" validate:"gte=1,lte=65535"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DB      string `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	SeqURL string `mapstructure:"seq_url" validate:"omitempty,url"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# goplot configuration
chart:
  width: 12          # inches
  height: 8          # inches
  bins: 20
  histogram_columns: 3
  grid: true
  markers: true

output:
  dir: "."
  open: true

import:
  header: "auto"     # auto | present | absent
  sheet: ""          # empty = first sheet

terminal:
  width: 0           # 0 = as wide as the data
  height: 15

serve:
  port: 8080

history:
  enabled: true
  db: ""             # empty = $HOME/.goplot.db

log:
  level: "warn"      # debug | info | warn | error
  format: "text"     # text | json
  seq_url: ""
`
}

// DefaultHistoryPath is used when history.db is empty.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".goplot.db"
	}
	return filepath.Join(home, ".goplot.db")
}

// HistoryPath resolves the configured history database.
func (c *Config) HistoryPath() string {
	if path := strings.TrimSpace(c.History.DB); path != "" {
		return path
	}
	return DefaultHistoryPath()
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Import.Header = strings.ToLower(strings.TrimSpace(cfg.Import.Header))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyChartWidth, 12.0)
	v.SetDefault(KeyChartHeight, 8.0)
	v.SetDefault(KeyChartBins, 20)
	v.SetDefault(KeyChartHistogramColumns, 3)
	v.SetDefault(KeyChartGrid, true)
	v.SetDefault(KeyChartMarkers, true)
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyOutputOpen, true)
	v.SetDefault(KeyImportHeader, "auto")
	v.SetDefault(KeyImportSheet, "")
	v.SetDefault(KeyTerminalWidth, 0)
	v.SetDefault(KeyTerminalHeight, 15)
	v.SetDefault(KeyServePort, 8080)
	v.SetDefault(KeyHistoryEnabled, true)
	v.SetDefault(KeyHistoryDB, "")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogSeqURL, "")
}
