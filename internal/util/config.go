package util

import "github.com/caarlos0/env/v11"

// Config holds runtime settings and flags.
type Config struct {
	DSN             string `env:"DATABASE_URL"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	Model           string `env:"ASHFALL_MODEL"`
	SeedRegistryURL string `env:"ASHFALL_SEED_URL"`
	SaveDir         string `env:"ASHFALL_SAVE_DIR" envDefault:".ashfall"`
	Language        string `env:"ASHFALL_LANG" envDefault:"en"`
}

// Load parses config from the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
