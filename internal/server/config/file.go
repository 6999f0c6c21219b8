package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// parseFile overlays values from a JSON or YAML file onto config. The format
// follows the file extension; keys are snake_case and durations are strings
// such as "15m". Keys absent from the file leave config untouched.
func parseFile(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	// slices are merged element-wise by the decoder, so start from scratch
	if v.IsSet("cors_allowed_origins") {
		config.CORSAllowedOrigins = nil
	}

	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	return nil
}
