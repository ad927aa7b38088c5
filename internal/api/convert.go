package api

import (
	"time"

	"vidqueue/internal/jobs"
	"vidqueue/internal/preflight"
)

// FromJobState converts a registry snapshot into the polling payload.
func FromJobState(state jobs.State) StatusResponse {
	return StatusResponse{
		Log:        state.Message,
		State:      state.State,
		Current:    state.Current,
		Total:      state.Total,
		Failures:   state.Failures,
		JobID:      state.ID,
		StartedAt:  formatTime(state.StartedAt),
		FinishedAt: formatTime(state.FinishedAt),
	}
}

// FromPreflight wraps preflight results.
func FromPreflight(results []preflight.Result) PreflightResponse {
	if results == nil {
		results = []preflight.Result{}
	}
	return PreflightResponse{Results: results, Failed: preflight.Failed(results)}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
