// Package notifications delivers download run results via ntfy.
//
// The default implementation publishes to the topic URL configured in
// config.toml and degrades to a no-op when no topic is set. The job registry
// depends only on the small Service interface, so delivery failures are
// logged by the caller and never affect a run.
package notifications
