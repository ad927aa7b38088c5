package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCredentials(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateDownloader(); err != nil {
		return err
	}
	if c.Notifications.NtfyTopic != "" {
		if err := validateHTTPURL(c.Notifications.NtfyTopic); err != nil {
			return fmt.Errorf("notifications.ntfy_topic: %w", err)
		}
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q: %w", c.Server.Bind, err)
	}
	return nil
}

func (c *Config) validateCredentials() error {
	switch c.Credentials.Backend {
	case CredentialBackendFile, CredentialBackendSQLite:
		if c.Credentials.Path == "" {
			return fmt.Errorf("credentials.path is required for the %s backend", c.Credentials.Backend)
		}
	case CredentialBackendRemote:
		if c.Credentials.URL == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/vidqueue/config.toml"
			}
			return fmt.Errorf("credentials.url is required for the remote backend. Set VIDQUEUE_CREDENTIALS_URL or edit %s (create with 'vidqueue config init')", defaultPath)
		}
		if err := validateHTTPURL(c.Credentials.URL); err != nil {
			return fmt.Errorf("credentials.url: %w", err)
		}
	default:
		return fmt.Errorf("credentials.backend must be one of file, remote, sqlite; got %q", c.Credentials.Backend)
	}
	if c.Credentials.TimeoutSeconds <= 0 {
		return errors.New("credentials.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if err := validateHTTPURL(c.LLM.BaseURL); err != nil {
		return fmt.Errorf("llm.base_url: %w", err)
	}
	if len(c.GetLLM().Models) == 0 {
		return errors.New("llm.models must list at least one model")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDownloader() error {
	switch c.Downloader.AudioCodec {
	case "mp3", "m4a", "opus", "vorbis", "flac", "wav", "aac":
	default:
		return fmt.Errorf("downloader.audio_codec %q is not supported", c.Downloader.AudioCodec)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("host is required")
	}
	return nil
}
