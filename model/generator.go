package model

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"contractrag/config"
	"contractrag/types"
)

const systemPrompt = `You are an assistant that helps tenants understand their rental contract.
Answer clearly and to the point, using only the information you are given.
Don't add introductions like 'Of course!' or 'Here's the answer:'.`

// Generator turns a prompt into a single complete response.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type TokenCounter func(text string) (int, error)

func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case "ollama":
		return NewOllamaGenerator(cfg.Endpoint, cfg.Model, client), nil
	case "openai":
		return NewOpenAIGenerator(cfg.Endpoint, cfg.Model, cfg.APIKey, client), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

type OllamaGenerator struct {
	host   string
	model  string
	client *http.Client
	tokens TokenCounter
	logger *slog.Logger
}

type ollamaRequest struct {
	Model  string   `json:"model"`
	System string   `json:"system,omitempty"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Images []string `json:"images,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaGenerator(host, model string, client *http.Client) *OllamaGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaGenerator{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: client,
		tokens: CountTokens,
		logger: slog.Default().With("component", "llm", "provider", "ollama"),
	}
}

func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	req := ollamaRequest{
		Model:  g.model,
		System: systemPrompt,
		Prompt: prompt,
		Stream: false,
	}
	logPromptSize(g.logger, g.tokens, systemPrompt+prompt)

	var resp ollamaResponse
	if err := postJSON(ctx, g.client, g.host+"/api/generate", nil, req, &resp, types.ErrGenerationFailed); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", fmt.Errorf("%w: ollama returned an empty response", types.ErrGenerationFailed)
	}
	g.logger.Info("llm answered", "model", g.model, "took", time.Since(start))
	return strings.TrimSpace(resp.Response), nil
}

type OpenAIGenerator struct {
	base   string
	model  string
	apiKey string
	client *http.Client
	tokens TokenCounter
	logger *slog.Logger
}

func NewOpenAIGenerator(base, model, apiKey string, client *http.Client) *OpenAIGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAIGenerator{
		base:   strings.TrimRight(base, "/"),
		model:  model,
		apiKey: apiKey,
		client: client,
		tokens: CountTokens,
		logger: slog.Default().With("component", "llm", "provider", "openai"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}
	logPromptSize(g.logger, g.tokens, systemPrompt+prompt)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+g.apiKey)

	var resp chatResponse
	if err := postJSON(ctx, g.client, g.base+"/chat/completions", header, req, &resp, types.ErrGenerationFailed); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai API returned no choices", types.ErrGenerationFailed)
	}
	g.logger.Info("llm answered", "model", g.model, "took", time.Since(start))
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func logPromptSize(logger *slog.Logger, count TokenCounter, prompt string) {
	attrs := []any{"chars", len(prompt)}
	if count != nil {
		if n, err := count(prompt); err == nil {
			attrs = append(attrs, "tokens", n)
		} else {
			logger.Debug("token count unavailable", "error", err)
		}
	}
	logger.Info("prompt size", attrs...)
}
