package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the on-disk locations vidqueue reads and writes.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	SettingsFile string `toml:"settings_file"`
	APIKeysFile  string `toml:"api_keys_file"`
	LinksFile    string `toml:"links_file"`
	LogDir       string `toml:"log_dir"`
	FFmpegDir    string `toml:"ffmpeg_dir"`
	LockFile     string `toml:"lock_file"`
}

// Server contains the HTTP bind address and optional bearer token.
type Server struct {
	Bind     string `toml:"bind"`
	APIToken string `toml:"api_token"`
}

// Credential store backends.
const (
	CredentialBackendFile   = "file"
	CredentialBackendRemote = "remote"
	CredentialBackendSQLite = "sqlite"
)

// Credentials selects and configures the credential store backend.
type Credentials struct {
	Backend        string `toml:"backend"`
	Path           string `toml:"path"`
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains the chat-completions endpoint used for filename suggestions.
type LLM struct {
	BaseURL        string   `toml:"base_url"`
	Models         []string `toml:"models"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	RetryAttempts  int      `toml:"retry_attempts"`
	ProbeTokens    int      `toml:"probe_tokens"`
	RenameTokens   int      `toml:"rename_tokens"`
}

// Downloader configures the yt-dlp media engine.
type Downloader struct {
	Binary             string `toml:"binary"`
	NoCheckCertificate bool   `toml:"no_check_certificate"`
	RestrictFilenames  bool   `toml:"restrict_filenames"`
	AudioCodec         string `toml:"audio_codec"`
	DefaultSaveDir     string `toml:"default_save_dir"`
}

// Social is one link shown in the admin profile block.
type Social struct {
	Label string `toml:"label"`
	URL   string `toml:"url"`
}

// Admin describes the operator profile rendered on the page.
type Admin struct {
	Name    string   `toml:"name"`
	Bio     string   `toml:"bio"`
	Socials []Social `toml:"socials"`
}

// Notifications configures ntfy delivery of run results. An empty topic
// disables notifications.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidqueue.
//
// Configuration sections by subsystem:
//   - Paths: data directory and the files kept inside it
//   - Server: HTTP bind address and API token
//   - Credentials: login credential store backend
//   - LLM: filename suggestion endpoint and model priority list
//   - Downloader: yt-dlp binary and engine flags
//   - Admin: operator profile shown on the page
//   - Notifications: optional ntfy topic for run results
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Server        Server        `toml:"server"`
	Credentials   Credentials   `toml:"credentials"`
	LLM           LLM           `toml:"llm"`
	Downloader    Downloader    `toml:"downloader"`
	Admin         Admin         `toml:"admin"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vidqueue/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidqueue.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.SettingsFile),
		filepath.Dir(c.Paths.APIKeysFile),
		filepath.Dir(c.Paths.LinksFile),
		filepath.Dir(c.Paths.LockFile),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DownloaderBinary returns the yt-dlp executable name or path.
func (c *Config) DownloaderBinary() string {
	if bin := strings.TrimSpace(c.Downloader.Binary); bin != "" {
		return bin
	}
	return defaultDownloaderBinary
}

// FFmpegBinary returns the ffmpeg executable used for audio extraction,
// honouring paths.ffmpeg_dir when set.
func (c *Config) FFmpegBinary() string {
	if dir := strings.TrimSpace(c.Paths.FFmpegDir); dir != "" {
		return filepath.Join(dir, "ffmpeg")
	}
	return "ffmpeg"
}

// NotificationTimeout returns the ntfy request timeout.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

// CredentialTimeout returns the remote credential fetch timeout.
func (c *Config) CredentialTimeout() time.Duration {
	return time.Duration(c.Credentials.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the connection settings handed to the chat client.
type LLMConfig struct {
	BaseURL        string
	Models         []string
	TimeoutSeconds int
	RetryAttempts  int
	ProbeTokens    int
	RenameTokens   int
}

// GetLLM returns the LLM connection settings with surrounding whitespace removed.
func (c *Config) GetLLM() LLMConfig {
	models := make([]string, 0, len(c.LLM.Models))
	for _, m := range c.LLM.Models {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			models = append(models, trimmed)
		}
	}
	return LLMConfig{
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Models:         models,
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		RetryAttempts:  c.LLM.RetryAttempts,
		ProbeTokens:    c.LLM.ProbeTokens,
		RenameTokens:   c.LLM.RenameTokens,
	}
}
