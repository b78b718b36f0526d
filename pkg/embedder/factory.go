package embedder

import (
	"github.com/soundprediction/dedupe/pkg/config"
)

// NewClientFromConfig builds the embedding client used for entity vectors.
// The backing service is the OpenAI API, or any OpenAI-compatible endpoint
// when base_url is set.
func NewClientFromConfig(cfg *config.Config) Client {
	return NewOpenAIEmbedder(cfg.Embedding.APIKey, Config{
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})
}
