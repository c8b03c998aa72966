package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

const serviceName = "deepseek"

const (
	defaultBaseURL = "https://api.deepseek.com/v1"
	defaultModel   = "deepseek-chat"

	completionTemperature = 0.7
	completionMaxTokens   = 1000
)

// Config holds the chat-completion API settings. An empty APIKey leaves
// the client unconfigured; calls then fail with domain.ErrNotConfigured
// instead of hitting the network.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DeepSeekClient calls the DeepSeek chat-completion endpoint.
type DeepSeekClient struct {
	http   *resty.Client
	apiKey string
	model  string
}

func NewDeepSeekClient(cfg Config) *DeepSeekClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)

	return &DeepSeekClient{http: http, apiKey: cfg.APIKey, model: model}
}

type completionRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type completionError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the full message list and returns the assistant reply.
// An empty choice list yields an empty reply, not an error.
func (c *DeepSeekClient) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrNotConfigured
	}

	var payload completionResponse
	var apiErr completionError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(completionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: completionTemperature,
			MaxTokens:   completionMaxTokens,
		}).
		SetResult(&payload).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", &domain.RemoteError{Service: serviceName, Message: fmt.Sprintf("completion request failed: %v", err)}
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = "unexpected response"
		}
		return "", &domain.RemoteError{Service: serviceName, Status: resp.StatusCode(), Message: msg}
	}

	if len(payload.Choices) == 0 {
		return "", nil
	}
	return payload.Choices[0].Message.Content, nil
}

var _ ports.ChatCompleter = (*DeepSeekClient)(nil)
