// Package config loads tool configuration from file, environment, and
// defaults, and initializes logging.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/matsen/bibdedupe/internal/dedupe"
)

const (
	// DefaultFile is the config file written by `config init` and searched
	// for in the working directory.
	DefaultFile = "config.yml"
	// EnvPrefix prefixes every environment override, e.g. BIBDEDUPE_LOG_LEVEL.
	EnvPrefix = "BIBDEDUPE"
)

// Config holds the full application configuration.
type Config struct {
	Dedupe  dedupe.Config `json:"dedupe" yaml:"dedupe" mapstructure:"dedupe"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Storage StorageConfig `json:"storage" yaml:"storage" mapstructure:"storage"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"` // json or console
}

// StorageConfig configures the SQLite group index.
type StorageConfig struct {
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"` // Empty disables the index
}

// ValidLogFormats lists the supported log.format values.
var ValidLogFormats = []string{"json", "console"}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		Dedupe: dedupe.DefaultConfig(),
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads configuration from the file at path, the environment, and
// defaults. An empty path searches the working directory for config.yml and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yml"))
		v.AddConfigPath(".")
	}
	v.SetConfigType("yaml")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	def := Default()
	v.SetDefault("dedupe.group_by_year", def.Dedupe.GroupByYear)
	v.SetDefault("dedupe.run_in_parallel", def.Dedupe.RunInParallel)
	v.SetDefault("dedupe.source_preferences", []string{})
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("storage.db_path", "")

	// Read config file (optional unless named)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the dedupe options and the log format.
func (c *Config) Validate() error {
	if err := c.Dedupe.Validate(); err != nil {
		return eris.Wrap(err, "config: dedupe")
	}
	for _, f := range ValidLogFormats {
		if c.Log.Format == f {
			return nil
		}
	}
	return eris.Errorf("config: invalid log.format %q (valid: %v)", c.Log.Format, ValidLogFormats)
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "config: encoding yaml")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return eris.Wrap(err, "config: writing file")
	}

	return nil
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
