// Package config provides configuration loading and structs for the schemeseek server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Session    SessionConfig    `yaml:"session"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig holds raw corpus file settings.
type CorpusConfig struct {
	// Paths are candidate locations for the raw records file, checked in order.
	Paths []string `yaml:"paths"`
	// Watch enables reloading the corpus when the resolved file changes.
	Watch bool `yaml:"watch"`
}

// EmbeddingConfig holds the remote embedding service settings. The API key is
// read from the environment variable named by APIKeyEnv.
type EmbeddingConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	CacheSize   int    `yaml:"cache_size"`
}

// GenerationConfig holds the text-generation service settings.
type GenerationConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	// ChatTopK is the number of schemes retrieved per chat turn.
	ChatTopK int `yaml:"chat_top_k"`
	// KeywordLimit is the default limit for keyword scheme search.
	KeywordLimit int `yaml:"keyword_limit"`
}

// SessionConfig bounds per-user conversation state.
type SessionConfig struct {
	MaxTurns int `yaml:"max_turns"`
	// TTLMinutes evicts idle sessions; 0 disables eviction.
	TTLMinutes int `yaml:"ttl_minutes"`
}

// TTL returns the session time-to-live as a duration.
func (s *SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// Load reads and parses the config file at path, expands corpus paths, and
// applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Corpus.Paths {
		cfg.Corpus.Paths[i] = expandPath(cfg.Corpus.Paths[i], configDir)
	}

	return &cfg, nil
}

// Default returns a config with all defaults applied, for running without a
// config file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// expandPath converts a path to absolute. Paths starting with "./" or "../"
// are resolved relative to configDir; other relative paths are kept as given
// so they resolve against the working directory like the original candidates.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	return path
}
