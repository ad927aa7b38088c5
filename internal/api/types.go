package api

import "vidqueue/internal/preflight"

// Status values used in the "status" field of responses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusStarted = "started"
	StatusBusy    = "busy"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// DeviceIDResponse answers GET /get_device_id.
type DeviceIDResponse struct {
	DeviceID string `json:"device_id"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse answers POST /login.
type LoginResponse struct {
	Status  string `json:"status"`
	Expiry  string `json:"expiry,omitempty"`
	Message string `json:"message,omitempty"`
}

// SaveAPIRequest is the body of POST /save_api.
type SaveAPIRequest struct {
	Keys string `json:"keys"`
}

// SaveAPIResponse answers POST /save_api.
type SaveAPIResponse struct {
	Status   string `json:"status"`
	AIActive bool   `json:"ai_active"`
	Model    string `json:"model,omitempty"`
}

// SaveLinksRequest is the body of POST /save_links.
type SaveLinksRequest struct {
	Links string `json:"links"`
}

// SavePathRequest is the body of POST /save_path.
type SavePathRequest struct {
	Path string `json:"path"`
}

// StartDownloadRequest is the body of POST /start_download.
type StartDownloadRequest struct {
	Mode      string `json:"mode"`
	Quality   string `json:"quality"`
	ManualFmt string `json:"manual_fmt,omitempty"`
}

// StartDownloadResponse answers POST /start_download.
type StartDownloadResponse struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusResponse answers GET /get_status.
type StatusResponse struct {
	Log        string `json:"log"`
	State      string `json:"state"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	Failures   int    `json:"failures"`
	JobID      string `json:"job_id,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// PreflightResponse answers GET /api/preflight.
type PreflightResponse struct {
	Results []preflight.Result `json:"results"`
	Failed  int                `json:"failed"`
}

// SimpleResponse carries only a status and an optional message.
type SimpleResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
