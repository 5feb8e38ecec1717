package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/codeWithUali/laradoc/internal/utils"
)

// Provider represents an LLM provider interface
type Provider interface {
	// Generate generates a text completion for a single user prompt
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// Embed generates embeddings for the given text
	Embed(ctx context.Context, text string) ([]float64, error)

	// Name returns the provider name (openai, claude, gemini, ollama)
	Name() string

	// Model returns the configured chat model
	Model() string
}

// GenerateOptions contains options for text generation
type GenerateOptions struct {
	Temperature  float64
	MaxTokens    int
	StopWords    []string
	SystemPrompt string
}

// GenerateOption is a function that modifies GenerateOptions
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the temperature
func WithTemperature(temp float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Temperature = temp
	}
}

// WithMaxTokens sets the max tokens
func WithMaxTokens(tokens int) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.MaxTokens = tokens
	}
}

// WithStopWords sets the stop words
func WithStopWords(words []string) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.StopWords = words
	}
}

// WithSystemPrompt sets the system message sent ahead of the prompt
func WithSystemPrompt(prompt string) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.SystemPrompt = prompt
	}
}

// resolveOptions applies opts over the configured defaults
func resolveOptions(defaults config.AIConfig, opts ...GenerateOption) GenerateOptions {
	o := GenerateOptions{
		Temperature: defaults.Temperature,
		MaxTokens:   defaults.MaxTokens,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SupportedProviders lists the provider names NewProvider accepts
var SupportedProviders = []string{"openai", "claude", "gemini", "ollama"}

// NewProvider creates the configured LLM provider, wrapped with the
// configured timeout and attempt count
func NewProvider(cfg *config.AIConfig) (Provider, error) {
	return NewProviderWithClient(cfg, nil)
}

// NewProviderWithClient is NewProvider with an explicit HTTP client for the
// provider SDKs. A nil client uses a client bounded by cfg.Timeout.
func NewProviderWithClient(cfg *config.AIConfig, httpClient *http.Client) (Provider, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "openai":
		p, err = NewOpenAIProvider(*cfg, httpClient)
	case "claude":
		p, err = NewClaudeProvider(*cfg, httpClient)
	case "gemini":
		p, err = NewGeminiProvider(context.Background(), *cfg, httpClient)
	case "ollama":
		p, err = NewOllamaLLMProvider(*cfg, httpClient)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: openai, claude, gemini, ollama)", cfg.Provider)
	}
	if err != nil {
		// Ensure we don't return a non-nil Provider when err != nil
		return nil, err
	}

	return NewRetryableProvider(p, cfg.MaxRetries, cfg.Timeout), nil
}

// RetryableProvider wraps a provider with a per-call timeout and retry logic
type RetryableProvider struct {
	provider   Provider
	maxRetries int
	timeout    time.Duration
}

// NewRetryableProvider creates a new retryable provider. maxRetries is the
// total number of attempts.
func NewRetryableProvider(provider Provider, maxRetries int, timeout time.Duration) *RetryableProvider {
	return &RetryableProvider{
		provider:   provider,
		maxRetries: maxRetries,
		timeout:    timeout,
	}
}

// Generate generates text with retry logic
func (r *RetryableProvider) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	var result string
	err := utils.Retry(ctx, r.maxRetries, time.Second, func() error {
		timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		var err error
		result, err = r.provider.Generate(timeoutCtx, prompt, opts...)
		return err
	})
	return result, err
}

// Embed generates embeddings with retry logic
func (r *RetryableProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	var result []float64
	err := utils.Retry(ctx, r.maxRetries, time.Second, func() error {
		timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		var err error
		result, err = r.provider.Embed(timeoutCtx, text)
		return err
	})
	return result, err
}

// Name returns the provider name
func (r *RetryableProvider) Name() string {
	return r.provider.Name()
}

// Model returns the wrapped provider's model
func (r *RetryableProvider) Model() string {
	return r.provider.Model()
}

var _ Provider = (*RetryableProvider)(nil)
var _ io.Closer = (*RetryableProvider)(nil)

// Close implements io.Closer
func (r *RetryableProvider) Close() error {
	if closer, ok := r.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
