package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/dedupe/pkg/driver"
	"github.com/soundprediction/dedupe/pkg/embedder"
	"github.com/soundprediction/dedupe/pkg/nlp"
	"github.com/soundprediction/dedupe/pkg/types"
)

// Deduplicator is the main interface for finding and merging duplicate
// entities in the knowledge graph.
type Deduplicator interface {
	// BackfillEmbeddings computes and stores embeddings for entities that
	// are missing them, in batches, until none remain. It returns the
	// number of entities embedded.
	BackfillEmbeddings(ctx context.Context, groupID string, batchSize int) (int, error)

	// FindCandidates returns entities similar to the given entity, ordered
	// by similarity score descending. Scores must be strictly greater than
	// threshold. Pairs already present in exclude are filtered out.
	FindCandidates(ctx context.Context, entity *types.Node, groupID string, exclude *PairSet, topK int, threshold float64) ([]*driver.ScoredNode, error)

	// ConfirmDuplicates asks the language model which of the candidates are
	// duplicates of the entity and returns the confirmed pairs. Inference
	// and response-parsing failures are returned as *nlp.InferenceError;
	// Run logs and skips them, but direct callers must handle them.
	ConfirmDuplicates(ctx context.Context, entity *types.Node, candidates []*driver.ScoredNode) ([]types.DuplicatePair, error)

	// Run scans the most recently created entities and reports the
	// confirmed duplicate pairs among them.
	Run(ctx context.Context, groupID string, limit int) (*types.DeduplicationReport, error)

	// Merge transfers the duplicate's relationships onto the keeper and
	// deletes the duplicate in a single transaction.
	Merge(ctx context.Context, keeperID, duplicateID, groupID, actor string) (*types.MergeResult, error)

	// CreateIndices creates the range and vector indices the pipeline
	// depends on.
	CreateIndices(ctx context.Context) error

	// Close closes all connections and cleans up resources.
	Close(ctx context.Context) error
}

// Client is the main implementation of the Deduplicator interface.
type Client struct {
	driver   driver.GraphDriver
	llm      nlp.Client
	embedder embedder.Client
	config   *Config
	logger   *slog.Logger
}

// Config holds configuration for the deduplication client.
type Config struct {
	// GroupID is used to isolate data for multi-tenant scenarios
	GroupID string
	// SimilarityThreshold is the minimum cosine score for vector candidates.
	// Candidates must score strictly above this value.
	SimilarityThreshold float64
	// TopK is the maximum number of vector candidates per entity
	TopK int
	// DefaultLimit is the number of recent entities scanned per run
	DefaultLimit int
	// BackfillBatchSize is the number of entities embedded per batch
	BackfillBatchSize int
	// TimeZone for audit timestamps
	TimeZone *time.Location
}

// NewDefaultConfig returns a Config with the standard tuning values.
func NewDefaultConfig() *Config {
	return &Config{
		GroupID:             "default",
		SimilarityThreshold: 0.7,
		TopK:                40,
		DefaultLimit:        10,
		BackfillBatchSize:   100,
		TimeZone:            time.UTC,
	}
}

// NewClient creates a new deduplication client.
func NewClient(graphDriver driver.GraphDriver, llmClient nlp.Client, embedderClient embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if config == nil {
		config = NewDefaultConfig()
	}
	if config.GroupID == "" {
		config.GroupID = "default"
	}
	if config.SimilarityThreshold == 0 {
		config.SimilarityThreshold = 0.7
	}
	if config.TopK <= 0 {
		config.TopK = 40
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 10
	}
	if config.BackfillBatchSize <= 0 {
		config.BackfillBatchSize = 100
	}
	if config.TimeZone == nil {
		config.TimeZone = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		driver:   graphDriver,
		llm:      llmClient,
		embedder: embedderClient,
		config:   config,
		logger:   logger,
	}, nil
}

// GetDriver returns the underlying graph driver
func (c *Client) GetDriver() driver.GraphDriver {
	return c.driver
}

// GetLLM returns the language model client
func (c *Client) GetLLM() nlp.Client {
	return c.llm
}

// GetEmbedder returns the embedder client
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// CreateIndices creates database indices for the entity graph. The vector
// index dimension comes from the configured embedder.
func (c *Client) CreateIndices(ctx context.Context) error {
	if c.embedder == nil {
		return fmt.Errorf("an embedder client is required to size the vector index")
	}
	return c.driver.CreateIndices(ctx, c.embedder.Dimensions())
}

// Close closes all connections and cleans up resources.
func (c *Client) Close(ctx context.Context) error {
	if c.llm != nil {
		if err := c.llm.Close(); err != nil {
			c.logger.Warn("failed to close language model client", "error", err)
		}
	}
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			c.logger.Warn("failed to close embedder client", "error", err)
		}
	}
	return c.driver.Close(ctx)
}

var _ Deduplicator = (*Client)(nil)
