// Package config loads nexo-routes settings from nexo-routes.yaml and
// NEXO_ROUTES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/abdul-hamid-achik/nexo-routes/pkg/naming"
)

// FileName is the config file looked up in the working directory.
const FileName = "nexo-routes"

// EnvPrefix prefixes environment overrides (NEXO_ROUTES_LOG_LEVEL, ...).
const EnvPrefix = "NEXO_ROUTES"

// Config holds the CLI settings.
type Config struct {
	// Naming is the route name strategy: snake, dot or camel
	Naming string `mapstructure:"naming"`

	// Aliases are extra placeholder aliases. Viper lower-cases map keys.
	Aliases map[string]string `mapstructure:"aliases"`

	// Definitions are the definition files and directories to load
	Definitions []string `mapstructure:"definitions"`

	Log     LogConfig     `mapstructure:"log"`
	OpenAPI OpenAPIConfig `mapstructure:"openapi"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OpenAPIConfig holds document metadata for the openapi command.
type OpenAPIConfig struct {
	Title       string   `mapstructure:"title"`
	Version     string   `mapstructure:"version"`
	Description string   `mapstructure:"description"`
	Servers     []string `mapstructure:"servers"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Naming:      "snake",
		Definitions: []string{"routes"},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		OpenAPI: OpenAPIConfig{
			Title:   "API",
			Version: "1.0.0",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("naming", d.Naming)
	v.SetDefault("aliases", map[string]string{})
	v.SetDefault("definitions", d.Definitions)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("openapi.title", d.OpenAPI.Title)
	v.SetDefault("openapi.version", d.OpenAPI.Version)
	v.SetDefault("openapi.description", "")
	v.SetDefault("openapi.servers", []string{})
}

// Load reads the configuration. With an empty path, nexo-routes.yaml is looked
// up in the working directory and a missing file is not an error. An explicit
// path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if _, err := naming.Lookup(c.Naming); err != nil {
		return fmt.Errorf("invalid naming: %w", err)
	}
	if len(c.Definitions) == 0 {
		return errors.New("no definition paths configured")
	}
	return nil
}

// Strategy returns the configured naming strategy.
func (c *Config) Strategy() naming.Strategy {
	s, err := naming.Lookup(c.Naming)
	if err != nil {
		return naming.SnakeCase
	}
	return s
}
