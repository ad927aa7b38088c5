package naming

import (
	"time"

	"vidqueue/internal/config"
	"vidqueue/internal/services/llm"
)

// LLMFactory returns a ProviderFactory that builds chat clients against the
// configured endpoint.
func LLMFactory(cfg config.LLMConfig) ProviderFactory {
	return func(apiKey, model string) Provider {
		return llm.NewClient(
			llm.Config{
				APIKey:         apiKey,
				BaseURL:        cfg.BaseURL,
				Model:          model,
				TimeoutSeconds: cfg.TimeoutSeconds,
			},
			llm.WithRetryMaxAttempts(cfg.RetryAttempts),
			llm.WithRetryBackoff(time.Second, 10*time.Second),
		)
	}
}
