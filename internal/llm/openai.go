package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/kotae/internal/config"
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIClient builds a client from the LLM configuration. BaseURL is used
// as configured, with no path rewriting, so providers with non-/v1 prefixes work.
func NewOpenAIClient(cfg *config.LLMConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	// An empty TLSNextProto map disables HTTP/2. Some compatible providers
	// reset h2 streams mid-response.
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSNextProto:        make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// ModelName returns the configured model identifier.
func (c *OpenAIClient) ModelName() string {
	return c.model
}

// Chat sends the messages and returns the full completion with token usage.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, opts Options) (*Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(messages, opts, false))
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	completion := &Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if completion.TotalTokens == 0 {
		completion.TotalTokens = completion.PromptTokens + completion.CompletionTokens
	}
	return completion, nil
}

// ChatStream sends the messages and returns channels delivering content deltas
// as the model produces them.
func (c *OpenAIClient) ChatStream(ctx context.Context, messages []Message, opts Options) (<-chan string, <-chan error) {
	contentCh := make(chan string, 10)
	errCh := make(chan error, 1)

	go func() {
		defer close(contentCh)
		defer close(errCh)

		stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(messages, opts, true))
		if err != nil {
			errCh <- fmt.Errorf("failed to create chat stream: %w", err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- fmt.Errorf("stream error: %w", err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if delta := resp.Choices[0].Delta.Content; delta != "" {
				select {
				case contentCh <- delta:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
		}
	}()

	return contentCh, errCh
}

func (c *OpenAIClient) buildRequest(messages []Message, opts Options, stream bool) openai.ChatCompletionRequest {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    converted,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		TopP:        1,
		Stream:      stream,
	}
}
