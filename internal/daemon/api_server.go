package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"vidqueue/internal/api"
	"vidqueue/internal/auth"
	"vidqueue/internal/config"
	"vidqueue/internal/download"
	"vidqueue/internal/jobs"
	"vidqueue/internal/logging"
	"vidqueue/internal/preflight"
	"vidqueue/internal/services"
	"vidqueue/internal/webui"
)

const maxRequestBody = 1 << 20

type apiServer struct {
	cfg      *config.Config
	bind     string
	logger   *slog.Logger
	services Services

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, svc Services, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		cfg:      cfg,
		bind:     strings.TrimSpace(cfg.Server.Bind),
		logger:   logging.NewComponentLogger(logger, "http"),
		services: svc,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes() http.Handler {
	token := strings.TrimSpace(s.cfg.Server.APIToken)
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/get_device_id", s.handleDeviceID)
	mux.HandleFunc("/login", authMiddleware(token, s.handleLogin))
	mux.HandleFunc("/save_api", authMiddleware(token, s.handleSaveAPI))
	mux.HandleFunc("/save_links", authMiddleware(token, s.handleSaveLinks))
	mux.HandleFunc("/save_path", authMiddleware(token, s.handleSavePath))
	mux.HandleFunc("/start_download", authMiddleware(token, s.handleStartDownload))
	mux.HandleFunc("/get_status", authMiddleware(token, s.handleStatus))
	mux.HandleFunc("/api/preflight", authMiddleware(token, s.handlePreflight))

	return requestIDMiddleware(mux)
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "http_serve_failed", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	logger := logging.WithContext(r.Context(), s.logger)

	ai := s.services.Assistant.Probe(r.Context())
	current, err := s.services.Settings.Load()
	if err != nil {
		logging.WarnWithContext(logger, "settings unreadable", "settings_load_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "page shows the default save path"),
		)
	}

	data := webui.PageData{
		AIStatus:  ai.Available,
		Model:     ai.Model,
		Path:      current.SavePath,
		FreeSpace: s.freeSpace(r.Context(), current.SavePath),
		Admin:     adminProfile(s.cfg.Admin),
		Qualities: download.Qualities(),
		Status:    s.services.Jobs.Status().Message,
		APIToken:  strings.TrimSpace(s.cfg.Server.APIToken),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.services.Renderer.Render(w, data); err != nil {
		logging.ErrorWithContext(logger, "page render failed", "page_render_failed", logging.Error(err))
	}
}

func (s *apiServer) freeSpace(ctx context.Context, savePath string) string {
	dir, err := config.ExpandPath(savePath)
	if err != nil || dir == "" {
		return ""
	}
	free, _, err := preflight.FreeSpace(ctx, dir)
	if err != nil {
		return ""
	}
	return humanize.IBytes(free)
}

func (s *apiServer) handleDeviceID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.DeviceIDResponse{DeviceID: s.services.DeviceID()})
}

func (s *apiServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	outcome, err := s.services.Gate.Authenticate(r.Context(), req.Username, req.Password, s.services.DeviceID())
	if err != nil {
		s.writeJSON(w, http.StatusOK, api.LoginResponse{Status: api.StatusError, Message: auth.Message(err)})
		return
	}
	s.writeJSON(w, http.StatusOK, api.LoginResponse{Status: api.StatusSuccess, Expiry: outcome.Expiry})
}

func (s *apiServer) handleSaveAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.SaveAPIRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.services.Keys.Write(req.Keys); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := s.services.Assistant.Probe(r.Context())
	s.writeJSON(w, http.StatusOK, api.SaveAPIResponse{
		Status:   api.StatusSuccess,
		AIActive: status.Available,
		Model:    status.Model,
	})
}

func (s *apiServer) handleSaveLinks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.SaveLinksRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.services.Links.Write(req.Links); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.SimpleResponse{Status: api.StatusSuccess})
}

func (s *apiServer) handleSavePath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.SavePathRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := s.services.Settings.SetSavePath(path); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.SimpleResponse{Status: api.StatusSuccess})
}

func (s *apiServer) handleStartDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.StartDownloadRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	handle, err := s.services.Jobs.Start(r.Context(), download.Request{
		Mode:         strings.TrimSpace(req.Mode),
		Quality:      strings.TrimSpace(req.Quality),
		ManualFormat: strings.TrimSpace(req.ManualFmt),
	})
	if errors.Is(err, jobs.ErrAlreadyRunning) {
		s.writeJSON(w, http.StatusConflict, api.StartDownloadResponse{Status: api.StatusBusy, Message: err.Error()})
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.StartDownloadResponse{Status: api.StatusStarted, JobID: handle.ID})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromJobState(s.services.Jobs.Status()))
}

func (s *apiServer) handlePreflight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	in := preflight.Inputs{
		Credentials: s.services.Credentials,
		AI:          s.services.Assistant,
	}
	if current, err := s.services.Settings.Load(); err == nil {
		if dir, err := config.ExpandPath(current.SavePath); err == nil {
			in.SaveDir = dir
		}
	}
	s.writeJSON(w, http.StatusOK, api.FromPreflight(preflight.RunAll(r.Context(), s.cfg, in)))
}

func (s *apiServer) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		s.logger.Warn("api encode failed",
			logging.String(logging.FieldEventType, "api_encode_failed"),
			logging.String(logging.FieldErrorHint, "client may have disconnected"),
			logging.Error(err),
		)
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.SimpleResponse{Status: api.StatusError, Message: message})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func adminProfile(admin config.Admin) webui.Admin {
	profile := webui.Admin{Name: admin.Name, Bio: admin.Bio}
	for _, social := range admin.Socials {
		profile.Socials = append(profile.Socials, webui.Social{Label: social.Label, URL: social.URL})
	}
	return profile
}
