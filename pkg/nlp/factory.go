package nlp

import (
	"fmt"

	"github.com/soundprediction/dedupe/pkg/alert"
	"github.com/soundprediction/dedupe/pkg/config"
)

// NewClientFromConfig builds the language model client used for duplicate
// confirmation. The backing service is chosen once at startup: the default
// OpenAI API, or any OpenAI-compatible endpoint when base_url is set. The
// client is wrapped with retry logic and, when enabled, a circuit breaker.
func NewClientFromConfig(cfg *config.Config, alerter alert.Alerter) (Client, error) {
	model := cfg.NLP

	clientConfig := Config{
		Model:   model.Model,
		BaseURL: model.BaseURL,
	}
	if model.Temperature != 0 {
		temperature := model.Temperature
		clientConfig.Temperature = &temperature
	}
	if model.MaxTokens != 0 {
		maxTokens := model.MaxTokens
		clientConfig.MaxTokens = &maxTokens
	}

	base, err := NewOpenAIClient(model.APIKey, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create language model client: %w", err)
	}

	var client Client = NewRetryClient(base, DefaultRetryConfig())

	if cfg.CircuitBreaker.Enabled {
		client = NewCircuitBreakerClient(client, cfg.CircuitBreaker, alerter, "nlp")
	}

	return client, nil
}
