// Package daemon coordinates the long-running vidqueue server.
//
// It holds the single-instance flock lock for the data directory, owns the
// HTTP surface (page, login, list editing, job control, status polling,
// preflight), and stops the job registry's run context on shutdown so an
// in-flight batch ends before its next task.
//
// Keep request handling here: download, naming and authentication logic
// live in their own packages while the daemon focuses on startup, shutdown,
// and wiring HTTP onto them.
package daemon
