// Package download runs a batch of media downloads.
//
// The Orchestrator reads the link list fresh at the start of every run and
// processes each URL strictly in order: resolve the title, ask the naming
// assistant for a short name (falling back to a sanitized title), confirm the
// target stays inside the save directory, then hand the URL to the media
// engine. Per-task failures are reported and counted; the run continues with
// the next URL. Progress flows through the Reporter interface, which the job
// registry implements.
package download
