package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies an LLM backend.
type Kind string

const (
	KindOpenAI     Kind = "openai"
	KindGemini     Kind = "gemini"
	KindOpenRouter Kind = "openrouter"
	KindAnthropic  Kind = "anthropic"
)

// Kinds lists every backend this package can talk to.
var Kinds = []Kind{KindOpenAI, KindGemini, KindOpenRouter, KindAnthropic}

func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", &UnsupportedProviderError{Kind: k, Reason: "unknown provider"}
}

// Provider is a single chat-completion backend.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Kind() Kind
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	// Model overrides the provider's configured default when set.
	Model string
}

// Completion is the text a provider returned. Content is empty when the
// provider answered without any message content.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
}

// Credentials configures one provider kind.
type Credentials struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Factory builds a provider client for a kind.
type Factory func(kind Kind, creds Credentials) (Provider, error)

// NewProvider is the default Factory.
func NewProvider(kind Kind, creds Credentials) (Provider, error) {
	if strings.TrimSpace(creds.APIKey) == "" {
		return nil, &UnsupportedProviderError{Kind: kind, Reason: "no API key configured"}
	}

	switch kind {
	case KindOpenAI:
		return NewOpenAI(creds), nil
	case KindGemini:
		return NewGemini(creds), nil
	case KindOpenRouter:
		return NewOpenRouter(creds), nil
	case KindAnthropic:
		return NewAnthropic(creds), nil
	default:
		return nil, &UnsupportedProviderError{Kind: kind, Reason: "unknown provider"}
	}
}

// ErrProviderTransport matches every *TransportError.
var ErrProviderTransport = errors.New("llm: provider transport failure")

// UnsupportedProviderError is returned when a kind is unknown or has no credentials.
type UnsupportedProviderError struct {
	Kind   Kind
	Reason string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("llm: provider %q is not supported: %s", e.Kind, e.Reason)
}

// TransportError covers network failures, timeouts, non-200 responses,
// provider-reported errors and undecodable bodies.
type TransportError struct {
	Kind Kind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrProviderTransport
}

func transportErr(kind Kind, format string, args ...any) error {
	return &TransportError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
