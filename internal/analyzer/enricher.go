package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/llm"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

const (
	LegalContextFallback = "Não foi possível recuperar leis relevantes."

	legalContextExcerptLimit = 500
	legalContextTemperature  = 0.3
)

const legalContextTemplate = `Você é um especialista em direito trabalhista brasileiro.
Com base na consulta abaixo, liste as 3 leis ou precedentes mais relevantes da CLT:

%s

Responda apenas com os artigos e precedentes relevantes, sem comentários adicionais.`

// Enricher looks up statutes and precedents that ground the advanced prompt.
type Enricher struct {
	models  map[llm.Kind]string
	timeout time.Duration
	logger  *utils.Logger
}

// NewEnricher builds an Enricher. models picks the lookup model per provider
// kind; a kind with no entry uses its provider default. A zero timeout leaves
// the call bounded only by ctx.
func NewEnricher(models map[llm.Kind]string, timeout time.Duration, logger *utils.Logger) *Enricher {
	return &Enricher{
		models:  models,
		timeout: timeout,
		logger:  logger,
	}
}

// Enrich always returns usable text. Any failure yields LegalContextFallback.
func (e *Enricher) Enrich(ctx context.Context, provider llm.Provider, excerpt string) string {
	if provider == nil {
		return LegalContextFallback
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	completion, err := provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: SystemPrompt,
		UserPrompt:   fmt.Sprintf(legalContextTemplate, firstN(excerpt, legalContextExcerptLimit)),
		Temperature:  legalContextTemperature,
		Model:        e.models[provider.Kind()],
	})
	if err != nil {
		e.logger.Warn("Failed to retrieve legal context", "provider", provider.Kind(), "error", err)
		return LegalContextFallback
	}

	text := strings.TrimSpace(completion.Content)
	if text == "" {
		return LegalContextFallback
	}
	return text
}
