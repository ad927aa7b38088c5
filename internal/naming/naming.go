// Package naming turns raw media titles into short filenames with the help of
// a language model.
//
// The Assistant probes every configured API key against a priority list of
// models and remembers the first pair that answers. Suggestions are purely
// advisory: every failure is logged and reported as "no suggestion" so the
// caller can fall back to a deterministic name.
package naming

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"vidqueue/internal/logging"
	"vidqueue/internal/services"
	"vidqueue/internal/textutil"
)

const (
	probePrompt         = "Hi"
	defaultProbeTokens  = 5
	defaultRenameTokens = 0
)

// Provider is a single text generation capability bound to one key and model.
type Provider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ProviderFactory binds an API key and model name to a Provider.
type ProviderFactory func(apiKey, model string) Provider

// KeySource yields the configured API keys in priority order.
type KeySource interface {
	Read() ([]string, error)
}

// Status is the cached probe result shown on the page.
type Status struct {
	Available bool   `json:"available"`
	Model     string `json:"model"`
}

// Assistant caches the usable model and issues rename requests.
type Assistant struct {
	keys         KeySource
	models       []string
	factory      ProviderFactory
	probeTokens  int
	renameTokens int
	logger       *slog.Logger

	mu     sync.RWMutex
	status Status
}

// Option customizes an Assistant.
type Option func(*Assistant)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTokenLimits sets the max_tokens used for probes and rename requests.
// Zero leaves the rename limit to the provider.
func WithTokenLimits(probe, rename int) Option {
	return func(a *Assistant) {
		if probe > 0 {
			a.probeTokens = probe
		}
		if rename >= 0 {
			a.renameTokens = rename
		}
	}
}

// NewAssistant constructs an Assistant. models is the probe priority list.
func NewAssistant(keys KeySource, models []string, factory ProviderFactory, opts ...Option) *Assistant {
	a := &Assistant{
		keys:         keys,
		models:       append([]string(nil), models...),
		factory:      factory,
		probeTokens:  defaultProbeTokens,
		renameTokens: defaultRenameTokens,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "naming")
	return a
}

// Status returns the cached probe result.
func (a *Assistant) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Probe tries every key against every model, keys outermost, and caches the
// first model that answers. With no keys or no working pair the assistant
// becomes unavailable.
func (a *Assistant) Probe(ctx context.Context) Status {
	keys := a.readKeys()
	for ki, key := range keys {
		for _, model := range a.models {
			if err := ctx.Err(); err != nil {
				return a.setStatus(Status{})
			}
			_, err := a.factory(key, model).Generate(ctx, probePrompt, a.probeTokens)
			if err == nil {
				a.logger.Info("language model available",
					logging.String(logging.FieldEventType, "ai_probe_success"),
					logging.String("model", model),
					logging.Int("key_index", ki+1),
				)
				return a.setStatus(Status{Available: true, Model: model})
			}
			a.logger.Debug("probe failed",
				logging.String(logging.FieldEventType, "ai_probe_failure"),
				logging.String("model", model),
				logging.Int("key_index", ki+1),
				logging.String(logging.FieldErrorKind, services.ErrorKind(err)),
				logging.Error(err),
			)
		}
	}
	if len(keys) > 0 {
		logging.WarnWithContext(a.logger, "no usable language model", "ai_unavailable",
			logging.Int("keys", len(keys)),
			logging.Int("models", len(a.models)),
			logging.String(logging.FieldErrorHint, "check the API keys saved on the page"),
			logging.String(logging.FieldImpact, "filenames fall back to sanitized titles"),
		)
	}
	return a.setStatus(Status{})
}

// RenamePrompt builds the request sent for a title.
func RenamePrompt(title string) string {
	return "Rename for Windows filename (Short, No Emojis, No Special Chars): '" + title + "'"
}

// SuggestFilename asks the cached model for a short name, trying each key in
// order. The result has illegal filename characters removed and is trimmed.
// ok is false when the assistant is unavailable or every key fails.
func (a *Assistant) SuggestFilename(ctx context.Context, title string) (string, bool) {
	status := a.Status()
	if !status.Available {
		return "", false
	}
	logger := logging.WithContext(ctx, a.logger)
	prompt := RenamePrompt(title)
	for ki, key := range a.readKeys() {
		if ctx.Err() != nil {
			return "", false
		}
		text, err := a.factory(key, status.Model).Generate(ctx, prompt, a.renameTokens)
		if err == nil {
			if name := textutil.CleanSuggestion(text); name != "" {
				return name, true
			}
		}
		logging.WarnWithContext(logger, "rename request failed", "ai_rename_failure",
			logging.String("model", status.Model),
			logging.Int("key_index", ki+1),
			logging.String(logging.FieldErrorKind, errorKind(err)),
			logging.String(logging.FieldImpact, "trying the next key"),
			logging.String("error", errorText(err)),
		)
	}
	return "", false
}

func (a *Assistant) readKeys() []string {
	if a.keys == nil {
		return nil
	}
	keys, err := a.keys.Read()
	if err != nil {
		a.logger.Debug("api key list unreadable",
			logging.String(logging.FieldEventType, "ai_keys_unreadable"),
			logging.Error(err),
		)
		return nil
	}
	out := keys[:0:0]
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func (a *Assistant) setStatus(s Status) Status {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
	return s
}

func errorKind(err error) string {
	if err == nil {
		return "empty_response"
	}
	return services.ErrorKind(err)
}

func errorText(err error) string {
	if err == nil {
		return "empty suggestion"
	}
	return err.Error()
}
