package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// chatModelProvider adapts a langchaingo llms.Model to Provider. OpenAI,
// Anthropic and Ollama share it; only client construction differs.
type chatModelProvider struct {
	name      string
	modelName string
	chat      llms.Model
	embed     llms.Model
	defaults  config.AIConfig
}

// NewOpenAIProvider creates an OpenAI chat-completions provider
func NewOpenAIProvider(cfg config.AIConfig, httpClient *http.Client) (Provider, error) {
	pc := cfg.OpenAI
	if pc.Model == "" {
		return nil, fmt.Errorf("openai model is required (set ai.openai.model)")
	}

	opts := []openai.Option{
		openai.WithToken(pc.APIKey),
		openai.WithModel(pc.Model),
		openai.WithHTTPClient(httpClient),
	}
	if pc.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(strings.TrimRight(pc.BaseURL, "/")))
	}
	if pc.EmbedModel != "" {
		opts = append(opts, openai.WithEmbeddingModel(pc.EmbedModel))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &chatModelProvider{
		name:      "openai",
		modelName: pc.Model,
		chat:      client,
		embed:     client,
		defaults:  cfg,
	}, nil
}

// NewClaudeProvider creates an Anthropic messages-API provider
func NewClaudeProvider(cfg config.AIConfig, httpClient *http.Client) (Provider, error) {
	pc := cfg.Claude
	if pc.Model == "" {
		return nil, fmt.Errorf("claude model is required (set ai.claude.model)")
	}

	opts := []anthropic.Option{
		anthropic.WithToken(pc.APIKey),
		anthropic.WithModel(pc.Model),
		anthropic.WithHTTPClient(httpClient),
	}
	if pc.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(anthropicBaseURL(pc.BaseURL)))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
	}

	return &chatModelProvider{
		name:      "claude",
		modelName: pc.Model,
		chat:      client,
		defaults:  cfg,
	}, nil
}

// anthropicBaseURL appends the API version segment the SDK expects
func anthropicBaseURL(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}

// Generate sends the system prompt (if any) and the user prompt as one chat turn
func (p *chatModelProvider) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := resolveOptions(p.defaults, opts...)

	messages := make([]llms.MessageContent, 0, 2)
	if o.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, o.SystemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := p.chat.GenerateContent(ctx, messages, convertOptions(o)...)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", p.name, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s generate: empty response", p.name)
	}

	return resp.Choices[0].Content, nil
}

// Embed generates embeddings when the underlying client supports them
func (p *chatModelProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	embedder, ok := p.embed.(interface {
		CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	})
	if !ok {
		return nil, fmt.Errorf("%s provider does not support embeddings", p.name)
	}

	embeddings, err := embedder.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	return toFloat64(embeddings[0]), nil
}

// Name returns the provider name
func (p *chatModelProvider) Name() string {
	return p.name
}

// Model returns the chat model name
func (p *chatModelProvider) Model() string {
	return p.modelName
}

// convertOptions converts resolved options to langchaingo CallOptions
func convertOptions(o GenerateOptions) []llms.CallOption {
	var lcOpts []llms.CallOption

	if o.Temperature != 0 {
		lcOpts = append(lcOpts, llms.WithTemperature(o.Temperature))
	}
	if o.MaxTokens != 0 {
		lcOpts = append(lcOpts, llms.WithMaxTokens(o.MaxTokens))
	}
	if len(o.StopWords) > 0 {
		lcOpts = append(lcOpts, llms.WithStopWords(o.StopWords))
	}

	return lcOpts
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
