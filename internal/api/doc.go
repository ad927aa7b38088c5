// Package api defines the JSON wire types served by the vidqueue HTTP surface
// and a small client the CLI uses to talk to a running server.
//
// Field names follow the snake_case keys the page's JavaScript expects
// ("log", "ai_active", "manual_fmt"). Converters translate internal job and
// preflight models into these DTOs so handlers never encode internal types
// directly.
package api
