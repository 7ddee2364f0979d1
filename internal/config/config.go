// Package config reads application configuration from file and environment
// variables and hands the memory engine its section.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"kora/internal/memory"
)

// Config stores all configuration of the application. The values are read by
// viper from a config file or environment variables.
type Config struct {
	Memory memory.Config `mapstructure:"memory"`
}

// Load reads configuration from the given file, or from the default search
// paths (~/.kora, the working directory) when path is empty. Environment
// variables prefixed KORA_ override file values, e.g.
// KORA_MEMORY_MAX_CONTEXT_TURNS.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.kora")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("KORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := memory.DefaultConfig()
	v.SetDefault("memory.max_context_turns", defaults.MaxContextTurns)
	v.SetDefault("memory.max_context_tokens", defaults.MaxContextTokens)
	v.SetDefault("memory.enable_diff_compression", defaults.EnableDiffCompression)
	v.SetDefault("memory.enable_summarization", defaults.EnableSummarization)
	v.SetDefault("memory.session_storage_path", defaults.SessionStoragePath)
	v.SetDefault("memory.session_max_age_days", defaults.SessionMaxAgeDays)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has a default.
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Memory.MaxContextTurns <= 0 {
		return fmt.Errorf("memory.max_context_turns must be positive, got %d", c.Memory.MaxContextTurns)
	}
	if c.Memory.MaxContextTokens <= 0 {
		return fmt.Errorf("memory.max_context_tokens must be positive, got %d", c.Memory.MaxContextTokens)
	}
	if strings.TrimSpace(c.Memory.SessionStoragePath) == "" {
		return fmt.Errorf("memory.session_storage_path must not be empty")
	}
	return nil
}
