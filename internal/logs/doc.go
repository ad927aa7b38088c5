// Package logs reads the JSON log file the server writes to paths.log_dir.
//
// Tail returns the last lines of the file or everything after a byte offset,
// optionally waiting for new lines, with bounded memory. Parse and Format turn
// the slog JSON records into the compact lines printed by `vidqueue logs`,
// and Filter narrows them to one job or a minimum level.
package logs
