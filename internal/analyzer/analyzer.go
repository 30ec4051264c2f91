package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/llm"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

const (
	analysisTemperature  = 0.7
	defaultMaxCharacters = 6000
	defaultTimeout       = 60 * time.Second
)

type Analyzer interface {
	Analyze(ctx context.Context, text string, opts Options) (Outcome, error)
}

type Options struct {
	Instructions string
	// ForceBasic skips the advanced tier and goes straight to the secondary provider.
	ForceBasic bool
}

type Config struct {
	Primary       llm.Kind
	Secondary     llm.Kind
	MaxCharacters int
	Timeout       time.Duration
	Parser        ResponseParser

	// LegalContextModels overrides the legal-context lookup model per kind.
	LegalContextModels map[llm.Kind]string
}

// AnalysisUnavailableError means no tier produced a completion.
type AnalysisUnavailableError struct {
	Advanced error
	Basic    error
}

func (e *AnalysisUnavailableError) Error() string {
	if e.Advanced == nil {
		return fmt.Sprintf("analysis unavailable: basic tier: %v", e.Basic)
	}
	return fmt.Sprintf("analysis unavailable: advanced tier: %v; basic tier: %v", e.Advanced, e.Basic)
}

func (e *AnalysisUnavailableError) Unwrap() []error {
	var errs []error
	if e.Advanced != nil {
		errs = append(errs, e.Advanced)
	}
	if e.Basic != nil {
		errs = append(errs, e.Basic)
	}
	return errs
}

type analyzer struct {
	catalog       *llm.Catalog
	primary       llm.Kind
	secondary     llm.Kind
	maxCharacters int
	timeout       time.Duration
	parser        ResponseParser
	enricher      *Enricher
	logger        *utils.Logger
}

func NewAnalyzer(catalog *llm.Catalog, cfg Config, logger *utils.Logger) Analyzer {
	if cfg.MaxCharacters <= 0 {
		cfg.MaxCharacters = defaultMaxCharacters
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Parser == nil {
		cfg.Parser = IndexParser{}
	}
	logger = logger.With("component", "analyzer")
	if !catalog.Configured(cfg.Secondary) {
		logger.Warn("Secondary LLM provider has no credentials, fallback will fail", "secondary", cfg.Secondary)
	}

	return &analyzer{
		catalog:       catalog,
		primary:       cfg.Primary,
		secondary:     cfg.Secondary,
		maxCharacters: cfg.MaxCharacters,
		timeout:       cfg.Timeout,
		parser:        cfg.Parser,
		enricher:      NewEnricher(cfg.LegalContextModels, cfg.Timeout, logger),
		logger:        logger,
	}
}

// Analyze runs the advanced tier on the primary provider and, only when that
// call fails at the transport level, the basic tier on the secondary one.
// A parse failure from either tier is returned as a normal Outcome.
func (a *analyzer) Analyze(ctx context.Context, text string, opts Options) (Outcome, error) {
	initial := a.primary
	if opts.ForceBasic {
		initial = a.secondary
	}

	// One selector per call; nothing about the active provider is shared.
	selector, err := a.catalog.NewSelector(initial)
	if err != nil {
		return Outcome{}, err
	}

	var advancedErr error
	if !opts.ForceBasic {
		outcome, err := a.analyzeAdvanced(ctx, selector.Active(), text, opts.Instructions)
		if err == nil {
			return outcome, nil
		}
		if !errors.Is(err, llm.ErrProviderTransport) {
			return Outcome{}, err
		}

		a.logger.Warn("Advanced analysis failed, falling back to basic tier",
			"primary", a.primary,
			"secondary", a.secondary,
			"error", err,
		)
		advancedErr = err

		if err := selector.Switch(a.secondary); err != nil {
			return Outcome{}, err
		}
	}

	outcome, err := a.analyzeBasic(ctx, selector.Active(), text, opts.Instructions)
	if err == nil {
		return outcome, nil
	}
	if !errors.Is(err, llm.ErrProviderTransport) {
		return Outcome{}, err
	}

	a.logger.Error("Basic analysis failed", "provider", a.secondary, "error", err)
	return Outcome{}, &AnalysisUnavailableError{Advanced: advancedErr, Basic: err}
}

func (a *analyzer) analyzeAdvanced(ctx context.Context, provider llm.Provider, text, instructions string) (Outcome, error) {
	truncated := TruncateMiddle(text, a.maxCharacters)
	legalContext := a.enricher.Enrich(ctx, provider, firstN(truncated, legalContextExcerptLimit))
	prompt := BuildAdvancedPrompt(legalContext, truncated, instructions)

	return a.run(ctx, provider, TierAdvanced, prompt)
}

func (a *analyzer) analyzeBasic(ctx context.Context, provider llm.Provider, text, instructions string) (Outcome, error) {
	return a.run(ctx, provider, TierBasic, BuildBasicPrompt(text, instructions))
}

func (a *analyzer) run(ctx context.Context, provider llm.Provider, tier Tier, prompt string) (Outcome, error) {
	content, err := a.complete(ctx, provider, prompt)
	if err != nil {
		return Outcome{}, err
	}

	outcome := a.parser.Parse(content)
	outcome.Tier = tier
	outcome.Provider = provider.Kind()

	if outcome.Succeeded() {
		a.logger.Info("Analysis completed", "tier", tier, "provider", outcome.Provider, "findings", len(outcome.Findings))
	} else {
		a.logger.Warn("Analysis response could not be parsed", "tier", tier, "provider", outcome.Provider, "reason", outcome.Reason)
	}
	return outcome, nil
}

// complete issues one completion under the per-call timeout. Every error,
// whatever the client returned, is reported as a transport error.
func (a *analyzer) complete(ctx context.Context, provider llm.Provider, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	completion, err := provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: SystemPrompt,
		UserPrompt:   prompt,
		Temperature:  analysisTemperature,
	})
	if err != nil {
		if errors.Is(err, llm.ErrProviderTransport) {
			return "", err
		}
		return "", &llm.TransportError{Kind: provider.Kind(), Err: err}
	}
	if completion == nil {
		return "", nil
	}
	return completion.Content, nil
}
