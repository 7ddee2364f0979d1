// Package memory implements the conversation context memory engine: bounded
// conversation windows, diff-based context compression, overflow
// summarization and per-session persistence.
package memory

import (
	"os"
	"path/filepath"
	"strings"
)

// Config controls the behavior of the memory engine. A snapshot of the config
// in effect at creation time is stored inside every session so that persisted
// sessions stay self-describing.
type Config struct {
	// MaxContextTurns is the hard cap on conversation turns kept in a session.
	MaxContextTurns int `json:"max_context_turns" yaml:"max_context_turns" mapstructure:"max_context_turns"`
	// MaxContextTokens is the soft token budget that triggers summarization.
	MaxContextTokens int `json:"max_context_tokens" yaml:"max_context_tokens" mapstructure:"max_context_tokens"`
	// EnableDiffCompression folds new context into the cumulative context via
	// the diff engine instead of storing every snapshot in full.
	EnableDiffCompression bool `json:"enable_diff_compression" yaml:"enable_diff_compression" mapstructure:"enable_diff_compression"`
	// EnableSummarization collapses overflowing turns into a summary turn.
	EnableSummarization bool `json:"enable_summarization" yaml:"enable_summarization" mapstructure:"enable_summarization"`
	// SessionStoragePath is the directory holding one JSON file per session.
	SessionStoragePath string `json:"session_storage_path" yaml:"session_storage_path" mapstructure:"session_storage_path"`
	// SessionMaxAgeDays is the declared retention horizon. The engine does not
	// enforce it; retention is the caller's responsibility (see the CLI prune
	// command).
	SessionMaxAgeDays int `json:"session_max_age_days" yaml:"session_max_age_days" mapstructure:"session_max_age_days"`
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxContextTurns:       3,
		MaxContextTokens:      8000,
		EnableDiffCompression: true,
		EnableSummarization:   true,
		SessionStoragePath:    "~/.kora/sessions",
		SessionMaxAgeDays:     30,
	}
}

// ExpandPath resolves a leading ~/ against the user home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
