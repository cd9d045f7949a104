package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"owidreport/internal/validation"
)

// EnvPrefix namespaces every environment variable, e.g. OWID_DATA_SOURCE
const EnvPrefix = "OWID"

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// DataConfig selects the dataset and how it is cleaned
type DataConfig struct {
	Source             string   `yaml:"source" envconfig:"SOURCE" default:"owid-covid-data.csv" validate:"required"`
	Countries          []string `yaml:"countries" envconfig:"COUNTRIES" default:"Kenya,United States,India" validate:"min=1,dive,required"`
	RequiredFields     []string `yaml:"required_fields" envconfig:"REQUIRED_FIELDS" default:"date,total_cases,total_deaths" validate:"dive,required,column"`
	NumericColumns     []string `yaml:"numeric_columns" envconfig:"NUMERIC_COLUMNS" default:"total_cases,total_deaths,new_cases,new_deaths,total_vaccinations" validate:"dive,required,numericcolumn"`
	InterpolationScope string   `yaml:"interpolation_scope" envconfig:"INTERPOLATION_SCOPE" default:"entity" validate:"oneof=entity global"`
}

// OutputConfig controls rendered charts and exported tables
type OutputConfig struct {
	Dir            string        `yaml:"dir" envconfig:"DIR"`
	ChartWidth     float64       `yaml:"chart_width" envconfig:"CHART_WIDTH" default:"12" validate:"gt=0"`
	ChartHeight    float64       `yaml:"chart_height" envconfig:"CHART_HEIGHT" default:"6" validate:"gt=0"`
	ExportCSV      bool          `yaml:"export_csv" envconfig:"EXPORT_CSV" default:"true"`
	ExportExcel    bool          `yaml:"export_excel" envconfig:"EXPORT_EXCEL" default:"true"`
	ChoroplethPNG  bool          `yaml:"choropleth_png" envconfig:"CHOROPLETH_PNG" default:"false"`
	BrowserTimeout time.Duration `yaml:"browser_timeout" envconfig:"BROWSER_TIMEOUT" default:"30s" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// ServerConfig contains HTTP report server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"40" validate:"gte=0"`
}

// TelemetryConfig selects OpenTelemetry exporters
type TelemetryConfig struct {
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1" validate:"gte=0,lte=1"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
}

// Load reads configuration from the environment and the optional YAML file at
// configFile. An empty configFile means look in the default locations; an
// explicit path that does not exist is an error.
// Precedence: environment, then file, then defaults.
func Load(configFile string) (*Config, error) {
	var env Config
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg := env
	if configFile == "" {
		configFile = getConfigFilePath()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configFile, err)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		keepExplicitEnv(&cfg, &env)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	var cfg Config
	// Only fails on malformed default tags.
	if err := envconfig.Process("OWID_DEFAULTS_ONLY", &cfg); err != nil {
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	cfg.normalize()
	return &cfg
}

// loadFromFile decodes the YAML file over cfg. Keys absent from the file
// leave cfg untouched, so an explicit false or 0 in the file still applies.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// keepExplicitEnv restores every value whose environment variable was set,
// undoing what the file decoded over it.
func keepExplicitEnv(dst, env *Config) {
	restore("DATA_SOURCE", &dst.Data.Source, env.Data.Source)
	restoreSlice("DATA_COUNTRIES", &dst.Data.Countries, env.Data.Countries)
	restoreSlice("DATA_REQUIRED_FIELDS", &dst.Data.RequiredFields, env.Data.RequiredFields)
	restoreSlice("DATA_NUMERIC_COLUMNS", &dst.Data.NumericColumns, env.Data.NumericColumns)
	restore("DATA_INTERPOLATION_SCOPE", &dst.Data.InterpolationScope, env.Data.InterpolationScope)

	restore("OUTPUT_DIR", &dst.Output.Dir, env.Output.Dir)
	restore("OUTPUT_CHART_WIDTH", &dst.Output.ChartWidth, env.Output.ChartWidth)
	restore("OUTPUT_CHART_HEIGHT", &dst.Output.ChartHeight, env.Output.ChartHeight)
	restore("OUTPUT_EXPORT_CSV", &dst.Output.ExportCSV, env.Output.ExportCSV)
	restore("OUTPUT_EXPORT_EXCEL", &dst.Output.ExportExcel, env.Output.ExportExcel)
	restore("OUTPUT_CHOROPLETH_PNG", &dst.Output.ChoroplethPNG, env.Output.ChoroplethPNG)
	restore("OUTPUT_BROWSER_TIMEOUT", &dst.Output.BrowserTimeout, env.Output.BrowserTimeout)

	restore("LOGGING_LEVEL", &dst.Logging.Level, env.Logging.Level)
	restore("LOGGING_FORMAT", &dst.Logging.Format, env.Logging.Format)
	restore("LOGGING_OUTPUT", &dst.Logging.Output, env.Logging.Output)
	restore("LOGGING_FILE_PATH", &dst.Logging.FilePath, env.Logging.FilePath)
	restore("LOGGING_DEVELOPMENT", &dst.Logging.Development, env.Logging.Development)

	restore("SERVER_PORT", &dst.Server.Port, env.Server.Port)
	restore("SERVER_READ_TIMEOUT", &dst.Server.ReadTimeout, env.Server.ReadTimeout)
	restore("SERVER_WRITE_TIMEOUT", &dst.Server.WriteTimeout, env.Server.WriteTimeout)
	restore("SERVER_IDLE_TIMEOUT", &dst.Server.IdleTimeout, env.Server.IdleTimeout)
	restore("SERVER_SHUTDOWN_TIMEOUT", &dst.Server.ShutdownTimeout, env.Server.ShutdownTimeout)
	restore("SERVER_RATE_LIMIT_ENABLED", &dst.Server.RateLimit.Enabled, env.Server.RateLimit.Enabled)
	restore("SERVER_RATE_LIMIT_RPS", &dst.Server.RateLimit.RPS, env.Server.RateLimit.RPS)
	restore("SERVER_RATE_LIMIT_BURST", &dst.Server.RateLimit.Burst, env.Server.RateLimit.Burst)

	restore("TELEMETRY_TRACE_EXPORTER", &dst.Telemetry.TraceExporter, env.Telemetry.TraceExporter)
	restore("TELEMETRY_METRIC_EXPORTER", &dst.Telemetry.MetricExporter, env.Telemetry.MetricExporter)
	restore("TELEMETRY_SAMPLE_RATIO", &dst.Telemetry.SampleRatio, env.Telemetry.SampleRatio)
	restore("TELEMETRY_ENVIRONMENT", &dst.Telemetry.Environment, env.Telemetry.Environment)

	restore("PATHS_BASE_DIR", &dst.Paths.BaseDir, env.Paths.BaseDir)
}

func restore[T any](key string, dst *T, envVal T) {
	if envSet(key) {
		*dst = envVal
	}
}

func restoreSlice(key string, dst *[]string, envVal []string) {
	if envSet(key) {
		*dst = append([]string(nil), envVal...)
	}
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + key)
	return ok
}

// normalize trims list entries and forces the JSON log format
func (c *Config) normalize() {
	c.Data.Countries = trimAll(c.Data.Countries)
	c.Data.RequiredFields = trimAll(c.Data.RequiredFields)
	c.Data.NumericColumns = trimAll(c.Data.NumericColumns)
	c.Logging.Format = "json"
}

// validate normalizes and validates the configuration
func (c *Config) validate() error {
	c.normalize()
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getConfigFilePath returns the first config file found in the usual locations
func getConfigFilePath() string {
	locations := []string{
		"owidreport.yaml",
		"owidreport.yml",
		"config/owidreport.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Overrides carries command-line values; zero fields leave the config as is
type Overrides struct {
	Source    string
	OutputDir string
	Countries string // comma separated
	Scope     string
	Port      int
}

// Apply merges o into the configuration and validates the result
func (c *Config) Apply(o Overrides) error {
	if o.Source != "" {
		c.Data.Source = o.Source
	}
	if o.OutputDir != "" {
		c.Output.Dir = o.OutputDir
	}
	if o.Countries != "" {
		c.Data.Countries = strings.Split(o.Countries, ",")
	}
	if o.Scope != "" {
		c.Data.InterpolationScope = o.Scope
	}
	if o.Port != 0 {
		c.Server.Port = o.Port
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
