// Package nlp provides language model clients for duplicate confirmation.
//
// This package defines the Client interface and an implementation for OpenAI
// and OpenAI-compatible APIs (vLLM, Ollama, and similar services exposing the
// OpenAI chat format).
//
// # Client Wrappers
//
// The package provides wrapper clients for enhanced functionality:
//   - RetryClient: Automatic retry with exponential backoff
//   - CircuitBreakerClient: Circuit breaker pattern for fault tolerance
//
// # Usage
//
//	client, err := nlp.NewOpenAIClient(apiKey, nlp.Config{Model: "gpt-4o"})
//	retryClient := nlp.NewRetryClient(client, nlp.DefaultRetryConfig())
//	response, err := retryClient.Chat(ctx, messages)
//
// # Error Handling
//
// The package defines specific error types for common failure modes:
//   - RateLimitError: API rate limit exceeded
//   - RefusalError: Model refused to generate content
//   - EmptyResponseError: Model returned empty response
//   - InferenceError: Structured generation or response parsing failed
//
// These errors support errors.Is() for type checking.
package nlp
