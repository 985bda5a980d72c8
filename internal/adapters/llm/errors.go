package llm

import "errors"

// Sentinel kinds for explainer errors.
var (
	// ErrDisabled is returned when no API key was configured.
	ErrDisabled = errors.New("llm explainer disabled")

	// ErrCompletion wraps upstream chat-completion failures.
	ErrCompletion = errors.New("llm completion failed")

	// ErrEmptyResponse is returned when the provider answers with no
	// usable choices.
	ErrEmptyResponse = errors.New("llm returned no content")
)
