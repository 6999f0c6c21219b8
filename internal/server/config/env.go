package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "RABBITS_"

const defaultEnvFile = ".env"

// parseEnv overlays RABBITS_* environment variables onto config.
//
// When envFile is set it must exist and is loaded into the process
// environment first; otherwise an optional ./.env is loaded if present.
// Variables already present in the environment win over the file.
// A non-nil environ replaces the process environment (used by tests).
func parseEnv(config *Config, envFile string, environ map[string]string) error {
	if environ == nil {
		if err := loadDotenv(envFile); err != nil {
			return err
		}
	}

	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	return nil
}

func loadDotenv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", defaultEnvFile, err)
	}
	return nil
}
