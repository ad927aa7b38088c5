package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientStatusSendsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/get_status" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(StatusResponse{Log: "System Ready...", State: "idle"})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/", "secret").Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if resp.Log != "System Ready..." || resp.State != "idle" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestClientStartDownloadBusy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req StartDownloadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quality != "720p" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(StartDownloadResponse{Status: StatusBusy})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").StartDownload(context.Background(), StartDownloadRequest{Mode: "video", Quality: "720p"})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestClientReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","message":"unauthorized"}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").Preflight(context.Background()); err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestBaseURLForBind(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:5000": "http://127.0.0.1:5000",
		"0.0.0.0:8080":   "http://127.0.0.1:8080",
		":9000":          "http://127.0.0.1:9000",
		"[::1]:5000":     "http://[::1]:5000",
	}
	for bind, want := range cases {
		if got := BaseURLForBind(bind); got != want {
			t.Fatalf("BaseURLForBind(%q) = %q, want %q", bind, got, want)
		}
	}
}
