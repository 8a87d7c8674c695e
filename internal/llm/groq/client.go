package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"resume-parser/internal/llm"
	"resume-parser/internal/resumes"
	"resume-parser/internal/shared/telemetry"
)

// Defaults applied by NewClient to zero Options.
const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "llama-3.3-70b-versatile"
	// DefaultMaxTokens caps the completion length.
	DefaultMaxTokens = 2000
	// DefaultTemperature replaces a non-positive temperature. A zero value
	// cannot be sent because the request field is omitted when empty.
	DefaultTemperature = float32(0.1)
	// DefaultTimeout bounds a single completion attempt.
	DefaultTimeout = 60 * time.Second
)

// Options configures a Client.
type Options struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxTokens     int
	Temperature   float32
	Timeout       time.Duration
	MaxInputChars int
	HTTPClient    *http.Client
}

// Client structures resume text with a chat completion model served through
// Groq's OpenAI-compatible API.
type Client struct {
	api           *openai.Client
	model         string
	maxTokens     int
	temperature   float32
	timeout       time.Duration
	maxInputChars int
}

// NewClient constructs a Client. Zero options take package defaults.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxInputChars == 0 {
		opts.MaxInputChars = llm.DefaultMaxInputChars
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	return &Client{
		api:           openai.NewClientWithConfig(cfg),
		model:         opts.Model,
		maxTokens:     opts.MaxTokens,
		temperature:   opts.Temperature,
		timeout:       opts.Timeout,
		maxInputChars: opts.MaxInputChars,
	}, nil
}

// Structure sends text to the model and parses the completion.
func (c *Client) Structure(ctx context.Context, text string) (resumes.Details, error) {
	input, truncated := llm.Truncate(text, c.maxInputChars)
	if truncated {
		telemetry.Warn("llm.input.truncated", map[string]any{
			"max_chars":      c.maxInputChars,
			"original_chars": len([]rune(text)),
		})
	}

	raw, err := c.complete(ctx, llm.BuildMessages(input))
	if err != nil {
		return resumes.Details{}, err
	}
	return llm.ParseDetails(raw)
}

func (c *Client) complete(ctx context.Context, messages []llm.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    reqMessages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", llm.TransportError(err, statusCode(err))
	}
	if len(resp.Choices) == 0 {
		return "", llm.TransportError(errors.New("response has no choices"), 0)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", llm.TransportError(errors.New("response has empty content"), 0)
	}

	telemetry.Info("llm.usage", map[string]any{
		"model":             c.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	return content, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

var _ llm.Structurer = (*Client)(nil)
