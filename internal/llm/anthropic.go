package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

type anthropicClient struct {
	client anthropic.Client
	model  string
}

func NewAnthropic(creds Credentials) Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(creds.APIKey),
		// Fallback between providers is decided by the analyzer; the SDK must not retry on its own.
		option.WithMaxRetries(0),
	}
	if creds.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(creds.BaseURL, "/")+"/"))
	}

	return &anthropicClient{
		client: anthropic.NewClient(opts...),
		model:  creds.Model,
	}
}

func (c *anthropicClient) Kind() Kind {
	return KindAnthropic
}

func (c *anthropicClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, transportErr(KindAnthropic, "request timed out: %w", err)
		}
		return nil, transportErr(KindAnthropic, "Anthropic API error: %w", err)
	}

	completion := &Completion{
		Model:            string(message.Model),
		PromptTokens:     message.Usage.InputTokens,
		CompletionTokens: message.Usage.OutputTokens,
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			completion.Content = block.Text
			break
		}
	}

	return completion, nil
}
