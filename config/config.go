// Package config holds the CLI configuration, loaded from an optional
// config file with environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Wire format selection for input documents.
const (
	FormatAuto   = "auto"
	FormatCirce  = "circe"
	FormatWebAPI = "webapi"
)

// Settings configures how documents are loaded, validated and reported.
// Every setting can be overridden via COHORTSCHEMA_* environment variables.
type Settings struct {
	// Format selects the input wire convention: auto-detect, circe
	// (PascalCase) or webapi (camelCase).
	Format string `mapstructure:"format" validate:"oneof=auto circe webapi"`

	// Strict escalates error-severity business issues into a failure.
	Strict bool `mapstructure:"strict"`

	// SchemaPrecheck runs the coarse JSON Schema check before decoding.
	SchemaPrecheck bool `mapstructure:"schema_precheck"`

	// NoColor disables colored report output.
	NoColor bool `mapstructure:"no_color"`

	// LogLevel controls diagnostic logging verbosity.
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

// Load reads settings from the given config file (optional; empty means
// defaults plus environment) and validates them.
func Load(configFile string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("format", FormatAuto)
	v.SetDefault("strict", false)
	v.SetDefault("schema_precheck", false)
	v.SetDefault("no_color", false)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("COHORTSCHEMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := validator.New().Struct(&settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &settings, nil
}
