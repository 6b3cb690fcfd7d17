// Package config loads application configuration and bootstraps logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Dataset     DatasetConfig     `yaml:"dataset" mapstructure:"dataset"`
	Calibration CalibrationConfig `yaml:"calibration" mapstructure:"calibration"`
	Quality     QualityConfig     `yaml:"quality" mapstructure:"quality"`
	Predictor   PredictorConfig   `yaml:"predictor" mapstructure:"predictor"`
	Envelope    EnvelopeConfig    `yaml:"envelope" mapstructure:"envelope"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// DatasetConfig locates and describes the reference daily dataset.
// Source may be a local path, an http(s):// URL, or an ftp:// URL;
// format is inferred from the extension when empty.
type DatasetConfig struct {
	Source           string `yaml:"source" mapstructure:"source"`
	Format           string `yaml:"format" mapstructure:"format"` // "csv" or "xlsx"
	Sheet            string `yaml:"sheet" mapstructure:"sheet"`   // xlsx only
	DateColumn       string `yaml:"date_column" mapstructure:"date_column"`
	SpendColumn      string `yaml:"spend_column" mapstructure:"spend_column"`
	ApplyStartColumn string `yaml:"apply_start_column" mapstructure:"apply_start_column"`
	JobRefColumn     string `yaml:"job_ref_column" mapstructure:"job_ref_column"`
	DateFormat       string `yaml:"date_format" mapstructure:"date_format"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CalibrationConfig points at the calibration file holding the reference
// campaign constants and optional seasonality overrides.
type CalibrationConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// QualityConfig locates the job quality review sheet.
type QualityConfig struct {
	Source string `yaml:"source" mapstructure:"source"`
}

// PredictorConfig configures the remote prediction service client.
type PredictorConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// EnvelopeConfig holds the dashboard-facing guardrails applied at the
// serve layer. The core formula is never clipped by these.
type EnvelopeConfig struct {
	MinBudget            float64 `yaml:"min_budget" mapstructure:"min_budget"`
	MinCPAS              float64 `yaml:"min_cpas" mapstructure:"min_cpas"`
	MaxCPAS              float64 `yaml:"max_cpas" mapstructure:"max_cpas"`
	MaxApplyStartsPer30d float64 `yaml:"max_apply_starts_per_30d" mapstructure:"max_apply_starts_per_30d"`
}

// ServerConfig configures the forecast API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.source", "data/reference.csv")
	v.SetDefault("dataset.date_column", "EVENT_PUBLISHER_DATE")
	v.SetDefault("dataset.spend_column", "CDSPEND")
	v.SetDefault("dataset.apply_start_column", "APPLY_START")
	v.SetDefault("dataset.job_ref_column", "MAIN_REF_NUMBER")
	v.SetDefault("dataset.date_format", "2006-01-02")
	v.SetDefault("dataset.timeout_secs", 60)
	v.SetDefault("calibration.path", "")
	v.SetDefault("quality.source", "data/quality.csv")
	v.SetDefault("predictor.base_url", "http://localhost:8000")
	v.SetDefault("predictor.timeout_secs", 30)
	v.SetDefault("predictor.requests_per_sec", 10)
	v.SetDefault("envelope.min_budget", 5000)
	v.SetDefault("envelope.min_cpas", 3.0)
	v.SetDefault("envelope.max_cpas", 15.0)
	v.SetDefault("envelope.max_apply_starts_per_30d", 50000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
