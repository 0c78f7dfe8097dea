// Package main is the schemeseek CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/margdarshak/schemeseek/internal/config"
	"github.com/margdarshak/schemeseek/internal/embedding"
	"github.com/margdarshak/schemeseek/internal/engine"
	"github.com/margdarshak/schemeseek/internal/generation"
	"github.com/margdarshak/schemeseek/internal/server"
	"github.com/margdarshak/schemeseek/internal/session"
	"github.com/margdarshak/schemeseek/internal/watcher"
	"github.com/margdarshak/schemeseek/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/schemeseek/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. When neither exists, built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				return config.Load(fallback)
			}
		}
		if _, statErr := os.Stat(path); statErr != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	// .env is optional; real deployments set the keys in the environment.
	_ = godotenv.Load()

	switch os.Args[1] {
	case "server":
		runServer()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("schemeseek version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	cfg, err := loadConfig(configPathArg())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var embedder embedding.Embedder
	remote, err := embedding.NewRemoteEmbedder(embedding.RemoteConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     os.Getenv(cfg.Embedding.APIKeyEnv),
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
		CacheSize:  cfg.Embedding.CacheSize,
	})
	if err != nil {
		// No embedder means the index can never become ready; the server still
		// starts and every query reports not-ready instead of crashing.
		logger.Error("embedding service unavailable, queries will fail until restart", zap.Error(err))
	} else {
		embedder = remote
	}

	var generator generation.Generator
	genClient, err := generation.NewClient(generation.Config{
		BaseURL:     cfg.Generation.BaseURL,
		APIKey:      os.Getenv(cfg.Generation.APIKeyEnv),
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Warn("generation service not configured, chat is disabled", zap.Error(err))
	} else {
		generator = genClient
	}

	sessions := session.NewStore(session.Options{
		MaxTurns: cfg.Session.MaxTurns,
		TTL:      cfg.Session.TTL(),
	})
	eng := engine.New(engine.Options{
		ChatTopK:    cfg.Retrieval.ChatTopK,
		CorpusPaths: cfg.Corpus.Paths,
	}, embedder, generator, sessions, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if embedder != nil {
		if err := eng.LoadCorpus(ctx); err != nil {
			logger.Error("corpus build failed, queries will fail until reload", zap.Error(err))
		}
	}

	if cfg.Corpus.Watch && embedder != nil {
		if path, err := eng.CorpusPath(); err == nil {
			w := watcher.New(path, func() {
				if err := eng.Reload(context.Background()); err != nil {
					logger.Error("corpus reload failed", zap.Error(err))
				}
			}, logger)
			if err := w.Start(ctx); err != nil {
				logger.Warn("corpus watcher failed to start", zap.Error(err))
			} else {
				defer w.Stop()
			}
		}
	}

	srv := server.NewServer(eng, cfg, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
		cancel()
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// runStatus queries a running server's status endpoint.
func runStatus() {
	cfg, err := loadConfig(configPathArg())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	url := fmt.Sprintf("http://%s:%d/api/v1/status", cfg.Server.Host, cfg.Server.Port)
	resp, err := http.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server not reachable at %s: %v\n", url, err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read status: %v\n", err)
		os.Exit(1)
	}
	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println(string(body))
}

func configPathArg() string {
	for i := 2; i < len(os.Args)-1; i++ {
		if os.Args[i] == "--config" || os.Args[i] == "-c" {
			return os.Args[i+1]
		}
	}
	return defaultConfigPath
}

func printUsage() {
	fmt.Println(`schemeseek - welfare scheme eligibility and retrieval engine

Usage:
  schemeseek server [--config path]   Start the HTTP API server
  schemeseek status [--config path]   Show a running server's status
  schemeseek version                  Print version
  schemeseek help                     Show this help

Environment:
  EMBEDDING_API_KEY   API key for the embedding service
  GROQ_API_KEY        API key for the text-generation service
  (a .env file in the working directory is read if present)`)
}
