package ai

import (
	"context"
	"fmt"

	"tripgen/internal/config"
)

// LLMProvider sends one prompt to a model and returns its raw text reply.
// Implementations make exactly one request per call and never retry.
// Failures are *TransportError values.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the provider selected by cfg.Transport.
func NewProvider(ctx context.Context, cfg config.AIConfig) (LLMProvider, error) {
	switch cfg.Transport {
	case "", config.TransportSDK:
		p, err := NewGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.TransportREST:
		p, err := NewRESTProvider(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, &ConfigurationError{Field: "transport", Reason: fmt.Sprintf("%q is not one of sdk, rest", cfg.Transport)}
	}
}
