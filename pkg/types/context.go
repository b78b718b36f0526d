package types

// contextKey is a private type for context values set by the server
// middleware and read by telemetry.
type contextKey string

const (
	// ContextKeyActor carries the authenticated user performing the request.
	ContextKeyActor contextKey = "actor"
	// ContextKeyRequestID carries the per-request correlation id.
	ContextKeyRequestID contextKey = "request_id"
	// ContextKeyRequestSource carries where the request originated (api, cli).
	ContextKeyRequestSource contextKey = "request_source"
)
