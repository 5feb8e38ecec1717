package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSystemPrompt is the chatbot system prompt used when none is configured
const DefaultSystemPrompt = "You are a helpful assistant for a Laravel application. " +
	"You have access to the project documentation and can help users understand " +
	"the codebase, features, and functionality. Provide clear, accurate, and helpful responses."

// LoadOption adjusts the configuration after environment overrides
type LoadOption func(*Config)

// WithBasePath points the configuration at another Laravel project
func WithBasePath(basePath string) LoadOption {
	return func(cfg *Config) {
		if basePath != "" {
			cfg.Project.BasePath = basePath
		}
	}
}

// Load reads and parses the configuration file.
// Precedence: options > environment > project .env (database only) > YAML > defaults.
func Load(path string, opts ...LoadOption) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	for _, opt := range opts {
		opt(cfg)
	}

	if err := loadProjectEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			BasePath: ".",
			EnvFile:  ".env",
			Paths: PathsConfig{
				Controllers: "app/Http/Controllers",
				Models:      "app/Models",
				Middleware:  "app/Http/Middleware",
				Providers:   "app/Providers",
				Policies:    "app/Policies",
				Requests:    "app/Http/Requests",
				Migrations:  "database/migrations",
				Views:       "resources/views",
				Routes:      "routes",
				AuthConfig:  "config/auth.php",
				HTTPKernel:  "app/Http/Kernel.php",
			},
			RouteFiles: []string{"web.php", "api.php", "console.php", "channels.php"},
			Database: DatabaseConfig{
				Enabled: false,
			},
		},
		AI: AIConfig{
			Provider: "openai",
			OpenAI: ProviderConfig{
				Model:      "gpt-4",
				BaseURL:    "https://api.openai.com/v1",
				EmbedModel: "text-embedding-3-small",
			},
			Claude: ProviderConfig{
				Model:   "claude-3-sonnet-20240229",
				BaseURL: "https://api.anthropic.com",
			},
			Gemini: ProviderConfig{
				Model:   "gemini-pro",
				BaseURL: "https://generativelanguage.googleapis.com",
			},
			Ollama: ProviderConfig{
				Model:      "llama3",
				BaseURL:    "http://localhost:11434",
				EmbedModel: "nomic-embed-text",
			},
			Temperature: 0.7,
			MaxTokens:   4000,
			Timeout:     60 * time.Second,
			MaxRetries:  1,
		},
		Search: SearchConfig{
			Driver: "meilisearch",
			Limit:  20,
			Meilisearch: MeilisearchConfig{
				Host:  "http://localhost:7700",
				Index: "laradoc",
			},
			Database: SearchDatabaseConfig{
				Driver: "sqlite",
				DSN:    "storage/laradoc/search.db",
				Table:  "laradoc_search",
			},
			Qdrant: QdrantConfig{
				URL:        "http://localhost:6333",
				Collection: "laradoc",
			},
		},
		Documentation: DocumentationConfig{
			OutputPath: "storage/laradoc",
			Modules:    DefaultModules(),
		},
		Chatbot: ChatbotConfig{
			MaxContextLength: 4000,
			Temperature:      0.7,
			MaxTokens:        1000,
			SystemPrompt:     DefaultSystemPrompt,
			HistorySize:      10,
			ContextChars:     2000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultModules returns the built-in documentation modules in display order
func DefaultModules() []ModuleConfig {
	return []ModuleConfig{
		{
			Key:         "authentication",
			Title:       "Authentication & Authorization",
			Description: "User authentication, authorization, roles, and permissions",
		},
		{
			Key:         "api",
			Title:       "API Documentation",
			Description: "REST API endpoints, request/response formats, and authentication",
		},
		{
			Key:         "database",
			Title:       "Database & Models",
			Description: "Database structure, models, relationships, and migrations",
		},
		{
			Key:         "frontend",
			Title:       "Frontend & Views",
			Description: "Blade templates, components, and frontend assets",
		},
		{
			Key:         "business_logic",
			Title:       "Business Logic",
			Description: "Services, controllers, and business rules",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if basePath := os.Getenv("LARADOC_BASE_PATH"); basePath != "" {
		cfg.Project.BasePath = basePath
	}

	// AI provider overrides
	if provider := os.Getenv("LARADOC_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.AI.OpenAI.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.AI.OpenAI.Model = model
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.AI.Claude.APIKey = key
	}
	if model := os.Getenv("ANTHROPIC_MODEL"); model != "" {
		cfg.AI.Claude.Model = model
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.AI.Gemini.APIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.AI.Gemini.Model = model
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		cfg.AI.Ollama.BaseURL = baseURL
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		cfg.AI.Ollama.Model = model
	}
	if timeout := os.Getenv("LARADOC_AI_TIMEOUT"); timeout != "" {
		if v, err := time.ParseDuration(timeout); err == nil {
			cfg.AI.Timeout = v
		}
	}

	// Search overrides
	if driver := os.Getenv("LARADOC_SEARCH_DRIVER"); driver != "" {
		cfg.Search.Driver = driver
	}
	if host := os.Getenv("MEILISEARCH_HOST"); host != "" {
		cfg.Search.Meilisearch.Host = host
	}
	if key := os.Getenv("MEILISEARCH_KEY"); key != "" {
		cfg.Search.Meilisearch.Key = key
	}
	if index := os.Getenv("MEILISEARCH_INDEX"); index != "" {
		cfg.Search.Meilisearch.Index = index
	}
	if dsn := os.Getenv("LARADOC_SEARCH_DSN"); dsn != "" {
		cfg.Search.Database.DSN = dsn
	}
	if url := os.Getenv("QDRANT_URL"); url != "" {
		cfg.Search.Qdrant.URL = url
	}
	if apiKey := os.Getenv("QDRANT_API_KEY"); apiKey != "" {
		cfg.Search.Qdrant.APIKey = apiKey
	}

	// Documentation overrides
	if output := os.Getenv("LARADOC_OUTPUT_PATH"); output != "" {
		cfg.Documentation.OutputPath = output
	}

	// Schema inspection toggle
	if enabled := os.Getenv("LARADOC_DB_INSPECT"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			cfg.Project.Database.Enabled = v
		}
	}

	if level := os.Getenv("LARADOC_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("LARADOC_LOG_FILE"); path != "" {
		cfg.Logging.Path = path
	}
}

// loadProjectEnv reads the Laravel project's .env file and fills database
// settings that were not configured explicitly
func loadProjectEnv(cfg *Config) error {
	cfg.Project.Env = map[string]string{}
	if cfg.Project.EnvFile == "" {
		return nil
	}

	envPath := cfg.Project.EnvFile
	if !filepath.IsAbs(envPath) {
		envPath = filepath.Join(cfg.Project.BasePath, envPath)
	}

	env, err := godotenv.Read(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read project env file %s: %w", envPath, err)
	}
	cfg.Project.Env = env

	db := &cfg.Project.Database
	if db.Connection == "" {
		db.Connection = env["DB_CONNECTION"]
	}
	if db.Host == "" {
		db.Host = env["DB_HOST"]
	}
	if db.Port == 0 {
		if port, err := strconv.Atoi(env["DB_PORT"]); err == nil {
			db.Port = port
		}
	}
	if db.Database == "" {
		db.Database = env["DB_DATABASE"]
	}
	if db.Username == "" {
		db.Username = env["DB_USERNAME"]
	}
	if db.Password == "" {
		db.Password = env["DB_PASSWORD"]
	}

	return nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	switch cfg.AI.Provider {
	case "openai", "claude", "gemini", "ollama":
	default:
		return fmt.Errorf("ai.provider must be one of openai, claude, gemini, ollama (got %q)", cfg.AI.Provider)
	}
	if cfg.AI.Active().Model == "" {
		return fmt.Errorf("ai.%s.model is required", cfg.AI.Provider)
	}
	if cfg.AI.MaxRetries < 1 {
		cfg.AI.MaxRetries = 1
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 60 * time.Second
	}

	switch cfg.Search.Driver {
	case "meilisearch", "database", "qdrant":
	default:
		return fmt.Errorf("search.driver must be one of meilisearch, database, qdrant (got %q)", cfg.Search.Driver)
	}
	switch cfg.Search.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("search.database.driver must be mysql or sqlite (got %q)", cfg.Search.Database.Driver)
	}
	if cfg.Search.Limit <= 0 {
		cfg.Search.Limit = 20
	}

	if strings.TrimSpace(cfg.Documentation.OutputPath) == "" {
		return fmt.Errorf("documentation.output_path is required")
	}
	if len(cfg.Documentation.Modules) == 0 {
		cfg.Documentation.Modules = DefaultModules()
	}
	seen := make(map[string]bool, len(cfg.Documentation.Modules))
	for _, m := range cfg.Documentation.Modules {
		if m.Key == "" {
			return fmt.Errorf("documentation.modules: every module needs a key")
		}
		if m.Key == "overview" || strings.ContainsAny(m.Key, `/\.`) {
			return fmt.Errorf("documentation.modules: invalid module key %q", m.Key)
		}
		if seen[m.Key] {
			return fmt.Errorf("documentation.modules: duplicate module key %q", m.Key)
		}
		seen[m.Key] = true
	}

	return nil
}

// ResolvePath returns p relative to the project base path unless it is absolute
func (c ProjectConfig) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BasePath, p)
}
