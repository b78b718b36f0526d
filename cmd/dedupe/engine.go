package dedupe

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/soundprediction/dedupe"
	"github.com/soundprediction/dedupe/pkg/alert"
	"github.com/soundprediction/dedupe/pkg/config"
	"github.com/soundprediction/dedupe/pkg/driver"
	"github.com/soundprediction/dedupe/pkg/embedder"
	dedupeLogger "github.com/soundprediction/dedupe/pkg/logger"
	"github.com/soundprediction/dedupe/pkg/nlp"
	"github.com/soundprediction/dedupe/pkg/telemetry"
)

// newEngine wires the graph driver, language model client, embedder, and
// logger into a deduplication client from the loaded configuration.
func newEngine(cfg *config.Config) (*dedupe.Client, error) {
	colorHandler := dedupeLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	})
	logger := slog.New(colorHandler)

	// Error telemetry using Parquet
	trackingPath := cfg.Telemetry.ParquetPath
	if trackingPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		trackingPath = fmt.Sprintf("%s/.dedupe/telemetry", homeDir)
	}
	if err := os.MkdirAll(trackingPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	parquetHandler, err := telemetry.NewParquetHandler(colorHandler, trackingPath)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize error tracking: %v\n", err)
	} else {
		logger = slog.New(parquetHandler)
	}

	// Initialize database driver
	var graphDriver driver.GraphDriver
	switch cfg.Database.Driver {
	case "neo4j":
		graphDriver, err = driver.NewNeo4jDriver(
			cfg.Database.URI,
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.Database,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	// Initialize language model client
	var nlpClient nlp.Client
	if cfg.NLP.APIKey != "" {
		alerter := alert.NewAlerterFromConfig(cfg.Alert)
		nlpClient, err = nlp.NewClientFromConfig(cfg, alerter)
		if err != nil {
			return nil, err
		}
	}

	// Initialize embedder client
	var embedderClient embedder.Client
	if cfg.Embedding.APIKey != "" {
		embedderClient = embedder.NewClientFromConfig(cfg)
	}

	engineConfig := &dedupe.Config{
		GroupID:             cfg.Dedup.GroupID,
		SimilarityThreshold: cfg.Dedup.SimilarityThreshold,
		TopK:                cfg.Dedup.TopK,
		DefaultLimit:        cfg.Dedup.DefaultLimit,
		BackfillBatchSize:   cfg.Dedup.BackfillBatchSize,
		TimeZone:            time.UTC,
	}

	client, err := dedupe.NewClient(graphDriver, nlpClient, embedderClient, engineConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deduplication client: %w", err)
	}

	return client, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
