// Package services defines shared utilities consumed by the download
// orchestrator and the external integrations (yt-dlp, the LLM endpoint).
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, task indexes, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures from external
//     tools can be classified with errors.Is and logged by kind.
package services
