// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/greenbelt-labs/ejatlas/internal/reproject"
	"github.com/greenbelt-labs/ejatlas/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Store    store.Config   `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig names the input files and how to read them.
type DataConfig struct {
	AreasPath        string   `yaml:"areas_path" mapstructure:"areas_path"`
	AreasCRS         string   `yaml:"areas_crs" mapstructure:"areas_crs"`
	StateField       string   `yaml:"state_field" mapstructure:"state_field"`
	CountyField      string   `yaml:"county_field" mapstructure:"county_field"`
	IndicatorFields  []string `yaml:"indicator_fields" mapstructure:"indicator_fields"`
	ZonesPath        string   `yaml:"zones_path" mapstructure:"zones_path"`
	GradeField       string   `yaml:"grade_field" mapstructure:"grade_field"`
	NameField        string   `yaml:"name_field" mapstructure:"name_field"`
	ObservationsPath string   `yaml:"observations_path" mapstructure:"observations_path"`
	ObsDelimiter     string   `yaml:"obs_delimiter" mapstructure:"obs_delimiter"`
}

// AnalysisConfig configures the join and aggregation.
type AnalysisConfig struct {
	TargetCRS string   `yaml:"target_crs" mapstructure:"target_crs"`
	Fields    []string `yaml:"fields" mapstructure:"fields"`
	Workers   int      `yaml:"workers" mapstructure:"workers"`
}

// FetchConfig configures dataset downloads.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DataDir     string  `yaml:"data_dir" mapstructure:"data_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the fields a command mode depends on are usable.
// Modes: "analyze", "fetch", "runs".
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required for the postgres driver")
	}

	switch mode {
	case "analyze":
		if c.Data.AreasPath == "" {
			problems = append(problems, "data.areas_path is required")
		}
		if c.Data.ZonesPath == "" {
			problems = append(problems, "data.zones_path is required")
		}
		if c.Data.ObservationsPath == "" {
			problems = append(problems, "data.observations_path is required")
		}
		if c.Analysis.TargetCRS == "" {
			problems = append(problems, "analysis.target_crs is required")
		}
		if c.Analysis.Workers < 1 || c.Analysis.Workers > 64 {
			problems = append(problems, "analysis.workers must be between 1 and 64")
		}
	case "fetch":
		if c.Fetch.DataDir == "" {
			problems = append(problems, "fetch.data_dir is required")
		}
		if c.Fetch.RatePerSec <= 0 {
			problems = append(problems, "fetch.rate_per_sec must be > 0")
		}
	case "runs":
		// Store checks above are enough.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EJATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.areas_crs", reproject.CRSWGS84)
	v.SetDefault("data.state_field", "state_name")
	v.SetDefault("data.county_field", "cnty_name")
	v.SetDefault("data.grade_field", "grade")
	v.SetDefault("data.name_field", "label")
	v.SetDefault("data.obs_delimiter", "\t")
	v.SetDefault("analysis.target_crs", reproject.CRSConusLCC)
	v.SetDefault("analysis.workers", 4)
	v.SetDefault("fetch.user_agent", "ejatlas/1.0")
	v.SetDefault("fetch.rate_per_sec", 2.0)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.data_dir", "data")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "ejatlas.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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
