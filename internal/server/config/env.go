package config

import (
	"github.com/dmitrijs2005/tegenaria/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable, e.g. TEGENARIA_DATABASE_DSN.
const EnvPrefix = "TEGENARIA"

// parseEnv overlays TEGENARIA_* environment variables. Variables are first
// loaded from the file given with -env, or from ./.env when present; values
// already set in the process environment win over the file.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	// Unset variables leave the current values untouched.
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		panic(err)
	}
}
