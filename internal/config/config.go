package config

import (
	"time"
)

// Config represents the global application configuration
type Config struct {
	// Project describes the Laravel application being documented
	Project ProjectConfig `yaml:"project"`

	// AI provider configuration
	AI AIConfig `yaml:"ai"`

	// Search backend configuration
	Search SearchConfig `yaml:"search"`

	// Documentation output and module configuration
	Documentation DocumentationConfig `yaml:"documentation"`

	// Chatbot configuration
	Chatbot ChatbotConfig `yaml:"chatbot"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// ProjectConfig points the analyzer at a Laravel source tree
type ProjectConfig struct {
	BasePath string `yaml:"base_path"`
	EnvFile  string `yaml:"env_file"` // relative to base_path, default .env

	Paths      PathsConfig `yaml:"paths"`
	RouteFiles []string    `yaml:"route_files"`

	Database DatabaseConfig `yaml:"database"`

	// Env holds the parsed project .env file. It is filled by Load and never
	// read from YAML.
	Env map[string]string `yaml:"-"`
}

// PathsConfig lists source directories relative to the project base path
type PathsConfig struct {
	Controllers string `yaml:"controllers"`
	Models      string `yaml:"models"`
	Middleware  string `yaml:"middleware"`
	Providers   string `yaml:"providers"`
	Policies    string `yaml:"policies"`
	Requests    string `yaml:"requests"`
	Migrations  string `yaml:"migrations"`
	Views       string `yaml:"views"`
	Routes      string `yaml:"routes"`
	AuthConfig  string `yaml:"auth_config"`
	HTTPKernel  string `yaml:"http_kernel"`
}

// DatabaseConfig describes the live database used for schema inspection
type DatabaseConfig struct {
	// Enabled turns on live schema inspection (SHOW TABLES, DESCRIBE, ...)
	Enabled bool `yaml:"enabled"`

	// Connection: mysql, mariadb, pgsql, sqlite (Laravel DB_CONNECTION names)
	Connection string `yaml:"connection"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Database   string `yaml:"database"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`

	// DSN overrides the individual fields when set
	DSN string `yaml:"dsn"`
}

// AIConfig contains AI provider settings
type AIConfig struct {
	// Provider: openai, claude, gemini, ollama
	Provider string `yaml:"provider"`

	OpenAI ProviderConfig `yaml:"openai"`
	Claude ProviderConfig `yaml:"claude"`
	Gemini ProviderConfig `yaml:"gemini"`
	Ollama ProviderConfig `yaml:"ollama"`

	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`

	// MaxRetries is the total number of attempts per call; 1 means no retry
	MaxRetries int `yaml:"max_retries"`
}

// ProviderConfig holds the credentials and endpoint of one provider
type ProviderConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	EmbedModel string `yaml:"embed_model"`
}

// Active returns the settings of the selected provider
func (c AIConfig) Active() ProviderConfig {
	return c.For(c.Provider)
}

// For returns the settings of the named provider
func (c AIConfig) For(name string) ProviderConfig {
	switch name {
	case "openai":
		return c.OpenAI
	case "claude":
		return c.Claude
	case "gemini":
		return c.Gemini
	case "ollama":
		return c.Ollama
	}
	return ProviderConfig{}
}

// SearchConfig contains search backend settings
type SearchConfig struct {
	// Driver: meilisearch, database, qdrant
	Driver string `yaml:"driver"`
	Limit  int    `yaml:"limit"`

	Meilisearch MeilisearchConfig    `yaml:"meilisearch"`
	Database    SearchDatabaseConfig `yaml:"database"`
	Qdrant      QdrantConfig         `yaml:"qdrant"`
}

// MeilisearchConfig contains Meilisearch settings
type MeilisearchConfig struct {
	Host  string `yaml:"host"`
	Key   string `yaml:"key"`
	Index string `yaml:"index"`
}

// SearchDatabaseConfig contains the SQL full-text fallback settings
type SearchDatabaseConfig struct {
	// Driver: mysql (FULLTEXT) or sqlite (FTS5)
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

// QdrantConfig contains vector database settings
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// DocumentationConfig controls where documentation is written and which
// modules are generated
type DocumentationConfig struct {
	OutputPath string         `yaml:"output_path"`
	Modules    []ModuleConfig `yaml:"modules"`
}

// ModuleConfig describes one configured documentation module
type ModuleConfig struct {
	Key         string `yaml:"key"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Module returns the configured module with the given key
func (c DocumentationConfig) Module(key string) (ModuleConfig, bool) {
	for _, m := range c.Modules {
		if m.Key == key {
			return m, true
		}
	}
	return ModuleConfig{}, false
}

// ChatbotConfig contains chat settings
type ChatbotConfig struct {
	MaxContextLength int     `yaml:"max_context_length"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	SystemPrompt     string  `yaml:"system_prompt"`

	// HistorySize is the number of previous messages sent along with a question
	HistorySize int `yaml:"history_size"`
	// ContextChars truncates the documentation context passed to the model
	ContextChars int `yaml:"context_chars"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Path  string `yaml:"path"`  // optional log file
}
