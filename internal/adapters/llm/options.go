package llm

import (
	"github.com/lendops/paydate/pkg/logger"
)

const (
	defaultModel       = "gpt-4-turbo-preview"
	defaultTemperature = 0.7
	defaultMaxTokens   = 300
)

// Option applies a configuration option to the Explainer.
type Option func(*Explainer)

// WithModel selects the chat model used for explanations.
func WithModel(model string) Option {
	return func(e *Explainer) {
		if model != "" {
			e.model = model
		}
	}
}

// WithMaxTokens caps the explanation length.
func WithMaxTokens(n int) Option {
	return func(e *Explainer) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithLogger sets a custom logger for the explainer.
func WithLogger(log logger.Logger) Option {
	return func(e *Explainer) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClient overrides the chat client, primarily for tests.
func WithClient(client ChatClient) Option {
	return func(e *Explainer) {
		if client != nil {
			e.client = client
		}
	}
}
