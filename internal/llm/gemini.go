package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/codeWithUali/laradoc/internal/config"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google's generateContent API
type GeminiProvider struct {
	client     *genai.Client
	model      string
	embedModel string
	defaults   config.AIConfig
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(ctx context.Context, cfg config.AIConfig, httpClient *http.Client) (*GeminiProvider, error) {
	pc := cfg.Gemini
	if pc.Model == "" {
		return nil, fmt.Errorf("gemini model is required (set ai.gemini.model)")
	}
	if pc.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required (set GOOGLE_API_KEY)")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     pc.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if pc.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(pc.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	embedModel := pc.EmbedModel
	if embedModel == "" {
		embedModel = "text-embedding-004"
	}

	return &GeminiProvider{
		client:     client,
		model:      pc.Model,
		embedModel: embedModel,
		defaults:   cfg,
	}, nil
}

// Generate generates text using the configured Gemini model
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := resolveOptions(p.defaults, opts...)

	genCfg := &genai.GenerateContentConfig{}
	if o.Temperature != 0 {
		genCfg.Temperature = genai.Ptr(float32(o.Temperature))
	}
	if o.MaxTokens != 0 {
		genCfg.MaxOutputTokens = int32(o.MaxTokens)
	}
	if len(o.StopWords) > 0 {
		genCfg.StopSequences = o.StopWords
	}
	if o.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(o.SystemPrompt, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return text, nil
}

// Embed generates embeddings using the configured embedding model
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := p.client.Models.EmbedContent(ctx, p.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}
	return toFloat64(resp.Embeddings[0].Values), nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the chat model name
func (p *GeminiProvider) Model() string {
	return p.model
}
