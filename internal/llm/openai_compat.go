package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
	defaultGeminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// Upper bound for a single HTTP exchange. Callers normally set a shorter
	// deadline on the context.
	httpClientTimeout = 120 * time.Second
)

// chatClient talks to any endpoint that implements the OpenAI chat
// completions API: OpenAI itself, Gemini's compatibility layer and OpenRouter.
type chatClient struct {
	kind    Kind
	apiKey  string
	model   string
	baseURL string
	headers map[string]string
	client  *http.Client
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

type Choice struct {
	Message Message `json:"message"`
}

func NewOpenAI(creds Credentials) Provider {
	return newChatClient(KindOpenAI, creds, defaultOpenAIBaseURL, nil)
}

func NewGemini(creds Credentials) Provider {
	return newChatClient(KindGemini, creds, defaultGeminiBaseURL, nil)
}

func NewOpenRouter(creds Credentials) Provider {
	return newChatClient(KindOpenRouter, creds, defaultOpenRouterBaseURL, map[string]string{
		"HTTP-Referer": "https://github.com/BerylCAtieno/labor-process-analyzer-api",
		"X-Title":      "labor-process-analyzer-api",
	})
}

func newChatClient(kind Kind, creds Credentials, defaultBaseURL string, headers map[string]string) *chatClient {
	baseURL := strings.TrimRight(creds.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &chatClient{
		kind:    kind,
		apiKey:  creds.APIKey,
		model:   creds.Model,
		baseURL: baseURL,
		headers: headers,
		client: &http.Client{
			Timeout: httpClientTimeout,
		},
	}
}

func (c *chatClient) Kind() Kind {
	return c.kind
}

func (c *chatClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature

	reqBody := ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: &temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, transportErr(c.kind, "request timed out: %w", err)
		}
		return nil, transportErr(c.kind, "failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(c.kind, "failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, transportErr(c.kind, "API returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, transportErr(c.kind, "failed to unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, transportErr(c.kind, "API error: %s", chatResp.Error.Message)
	}

	completion := &Completion{Model: chatResp.Model}
	if len(chatResp.Choices) > 0 {
		completion.Content = chatResp.Choices[0].Message.Content
	}
	if chatResp.Usage != nil {
		completion.PromptTokens = chatResp.Usage.PromptTokens
		completion.CompletionTokens = chatResp.Usage.CompletionTokens
	}

	return completion, nil
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
