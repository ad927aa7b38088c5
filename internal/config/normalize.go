package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the settings that may be supplied through the environment.
// Unset variables leave the file value untouched.
type envOverrides struct {
	Bind              string `envconfig:"VIDQUEUE_BIND"`
	APIToken          string `envconfig:"VIDQUEUE_API_TOKEN"`
	DataDir           string `envconfig:"VIDQUEUE_DATA_DIR"`
	CredentialBackend string `envconfig:"VIDQUEUE_CREDENTIALS_BACKEND"`
	CredentialPath    string `envconfig:"VIDQUEUE_CREDENTIALS_PATH"`
	CredentialURL     string `envconfig:"VIDQUEUE_CREDENTIALS_URL"`
	LLMBaseURL        string `envconfig:"VIDQUEUE_LLM_BASE_URL"`
	FFmpegDir         string `envconfig:"VIDQUEUE_FFMPEG_DIR"`
	NtfyTopic         string `envconfig:"VIDQUEUE_NTFY_TOPIC"`
	LogLevel          string `envconfig:"VIDQUEUE_LOG_LEVEL"`
	LogFormat         string `envconfig:"VIDQUEUE_LOG_FORMAT"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	overrides := []struct {
		value  string
		target *string
	}{
		{env.Bind, &c.Server.Bind},
		{env.APIToken, &c.Server.APIToken},
		{env.DataDir, &c.Paths.DataDir},
		{env.CredentialBackend, &c.Credentials.Backend},
		{env.CredentialPath, &c.Credentials.Path},
		{env.CredentialURL, &c.Credentials.URL},
		{env.LLMBaseURL, &c.LLM.BaseURL},
		{env.FFmpegDir, &c.Paths.FFmpegDir},
		{env.NtfyTopic, &c.Notifications.NtfyTopic},
		{env.LogLevel, &c.Logging.Level},
		{env.LogFormat, &c.Logging.Format},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(o.value); v != "" {
			*o.target = v
		}
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCredentials(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeLLM()
	if err := c.normalizeDownloader(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	inData := []struct {
		key      string
		target   *string
		fallback string
	}{
		{"paths.settings_file", &c.Paths.SettingsFile, defaultSettingsFileName},
		{"paths.api_keys_file", &c.Paths.APIKeysFile, defaultAPIKeysFileName},
		{"paths.links_file", &c.Paths.LinksFile, defaultLinksFileName},
		{"paths.lock_file", &c.Paths.LockFile, defaultLockFileName},
	}
	for _, p := range inData {
		if strings.TrimSpace(*p.target) == "" {
			*p.target = filepath.Join(c.Paths.DataDir, p.fallback)
		}
		if *p.target, err = expandPath(*p.target); err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
	}

	if strings.TrimSpace(c.Paths.FFmpegDir) != "" {
		if c.Paths.FFmpegDir, err = expandPath(c.Paths.FFmpegDir); err != nil {
			return fmt.Errorf("paths.ffmpeg_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeCredentials() error {
	c.Credentials.Backend = strings.ToLower(strings.TrimSpace(c.Credentials.Backend))
	if c.Credentials.Backend == "" {
		c.Credentials.Backend = defaultCredentialBackend
	}
	c.Credentials.URL = strings.TrimSpace(c.Credentials.URL)
	if c.Credentials.TimeoutSeconds <= 0 {
		c.Credentials.TimeoutSeconds = defaultCredentialTimeout
	}
	if c.Credentials.Backend == CredentialBackendRemote {
		return nil
	}
	if strings.TrimSpace(c.Credentials.Path) == "" {
		c.Credentials.Path = filepath.Join(c.Paths.DataDir, defaultCredentialFileName)
	}
	var err error
	if c.Credentials.Path, err = expandPath(c.Credentials.Path); err != nil {
		return fmt.Errorf("credentials.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if len(c.LLM.Models) == 0 {
		c.LLM.Models = append([]string(nil), DefaultLLMModels...)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
	if c.LLM.ProbeTokens <= 0 {
		c.LLM.ProbeTokens = defaultLLMProbeTokens
	}
	if c.LLM.RenameTokens <= 0 {
		c.LLM.RenameTokens = defaultLLMRenameTokens
	}
}

func (c *Config) normalizeDownloader() error {
	c.Downloader.Binary = strings.TrimSpace(c.Downloader.Binary)
	if c.Downloader.Binary == "" {
		c.Downloader.Binary = defaultDownloaderBinary
	}
	c.Downloader.AudioCodec = strings.ToLower(strings.TrimSpace(c.Downloader.AudioCodec))
	if c.Downloader.AudioCodec == "" {
		c.Downloader.AudioCodec = defaultAudioCodec
	}
	if strings.TrimSpace(c.Downloader.DefaultSaveDir) == "" {
		c.Downloader.DefaultSaveDir = filepath.Join(c.Paths.DataDir, defaultSaveDirName)
	}
	var err error
	if c.Downloader.DefaultSaveDir, err = expandPath(c.Downloader.DefaultSaveDir); err != nil {
		return fmt.Errorf("downloader.default_save_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotificationTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "text":
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
