// Package llm provides a chat client for OpenAI-compatible completion
// endpoints (Gemini's compatibility endpoint by default).
//
// The naming assistant uses it to probe key/model pairs and to ask for short
// filenames. Generate sends a single user prompt with an optional max_tokens
// limit and returns plain text.
//
// # Retry Behaviour
//
// With more than one attempt configured the client retries on HTTP 408/429/5xx,
// empty completions and network timeouts with exponential backoff (base 1s,
// max 10s). The default is a single attempt because the caller already falls
// through to the next key. Context cancellation aborts retries immediately.
//
// # Errors
//
// Errors are tagged with internal/services markers so callers can log the
// failure kind without inspecting HTTP details.
package llm
