package credentials

import (
	"context"
	"errors"
	"fmt"

	"vidqueue/internal/config"
)

// ErrUnavailable reports that the credential store could not be read.
var ErrUnavailable = errors.New("credential store unavailable")

// ErrMissing refines ErrUnavailable when a local store file does not exist.
var ErrMissing = fmt.Errorf("%w: store file missing", ErrUnavailable)

// Record is one credential entry.
type Record struct {
	DeviceID     string
	Username     string
	PasswordHash string
	Expiry       string
}

// Source yields every credential record in store order.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
	// Describe names the backend and location for logs and preflight output.
	Describe() string
}

// NewFromConfig builds the Source selected by credentials.backend.
func NewFromConfig(cfg *config.Config) (Source, error) {
	if cfg == nil {
		return nil, errors.New("credentials: config is nil")
	}
	switch cfg.Credentials.Backend {
	case config.CredentialBackendFile, "":
		return NewFileSource(cfg.Credentials.Path), nil
	case config.CredentialBackendRemote:
		return NewRemoteSource(cfg.Credentials.URL, WithTimeout(cfg.CredentialTimeout())), nil
	case config.CredentialBackendSQLite:
		return NewSQLiteSource(cfg.Credentials.Path), nil
	default:
		return nil, fmt.Errorf("credentials: unsupported backend %q", cfg.Credentials.Backend)
	}
}
