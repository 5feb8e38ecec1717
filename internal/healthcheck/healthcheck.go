package healthcheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codeWithUali/laradoc/internal/analyzer/schema"
	"github.com/codeWithUali/laradoc/internal/config"
)

// Check statuses
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

const checkTimeout = 5 * time.Second

// CheckResult represents the result of a health check
type CheckResult struct {
	Service string
	Status  string
	Message string
	Error   error
}

// Check runs one health check
type Check func(ctx context.Context) CheckResult

// ConnectionTester is an AI service able to make a test completion
type ConnectionTester interface {
	TestConnection(ctx context.Context) (string, error)
	Provider() string
}

// Pinger is a search service able to reach its backend
type Pinger interface {
	Ping(ctx context.Context) error
	Driver() string
}

// CheckAI sends a short test prompt to the configured provider
func CheckAI(ai ConnectionTester) Check {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Service: "AI provider", Status: "unknown"}

		reply, err := ai.TestConnection(ctx)
		if err != nil {
			result.Status = StatusError
			result.Error = err
			result.Message = fmt.Sprintf("%s did not answer: %v", ai.Provider(), err)
			return result
		}

		result.Status = StatusOK
		result.Message = fmt.Sprintf("%s answered: %s", ai.Provider(), firstLine(reply))
		return result
	}
}

// CheckOllama verifies Ollama is running and accessible
func CheckOllama(baseURL string) Check {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Service: "Ollama", Status: "unknown"}

		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		baseURL = strings.TrimRight(baseURL, "/")

		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
		if err != nil {
			result.Status = StatusError
			result.Error = err
			result.Message = fmt.Sprintf("Failed to create request: %v", err)
			return result
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			result.Status = StatusError
			result.Error = err
			result.Message = fmt.Sprintf("Cannot connect to Ollama at %s", baseURL)
			return result
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			result.Status = StatusOK
			result.Message = fmt.Sprintf("Connected to Ollama at %s", baseURL)
		} else {
			result.Status = StatusError
			result.Message = fmt.Sprintf("Ollama returned status %d", resp.StatusCode)
		}
		return result
	}
}

// CheckSearch pings the active search driver
func CheckSearch(search Pinger) Check {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Service: "Search", Status: "unknown"}

		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()

		if err := search.Ping(ctx); err != nil {
			result.Status = StatusError
			result.Error = err
			result.Message = fmt.Sprintf("%s backend is not reachable: %v", search.Driver(), err)
			return result
		}

		result.Status = StatusOK
		result.Message = fmt.Sprintf("%s backend is reachable", search.Driver())
		return result
	}
}

// CheckDatabase connects to the Laravel database used for schema
// inspection. It is skipped when inspection is disabled.
func CheckDatabase(cfg config.DatabaseConfig) Check {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Service: "Database", Status: "unknown"}

		if !cfg.Enabled {
			result.Status = StatusSkipped
			result.Message = "Schema inspection is disabled"
			return result
		}

		inspector, err := schema.Open(cfg)
		if err != nil {
			result.Status = StatusError
			result.Error = err
			result.Message = fmt.Sprintf("Cannot open %s connection: %v", cfg.Connection, err)
			return result
		}
		defer inspector.Close()

		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()

		if err := inspector.Ping(ctx); err != nil {
			result.Status = StatusError
			result.Error = err
			result.Message = fmt.Sprintf("Cannot connect to %s database %s", cfg.Connection, cfg.Database)
			return result
		}

		result.Status = StatusOK
		result.Message = fmt.Sprintf("Connected to %s database %s", cfg.Connection, cfg.Database)
		return result
	}
}

// CheckAll runs the checks in order
func CheckAll(ctx context.Context, checks ...Check) []CheckResult {
	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		results = append(results, check(ctx))
	}
	return results
}

// Healthy reports whether no check failed
func Healthy(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusError {
			return false
		}
	}
	return true
}

// FormatResults formats health check results for display
func FormatResults(results []CheckResult) string {
	var b strings.Builder
	b.WriteString("\n=== Dependency Health Check ===\n\n")

	for _, result := range results {
		var status string
		switch result.Status {
		case StatusOK:
			status = "✓"
		case StatusError:
			status = "✗"
		case StatusSkipped:
			status = "-"
		default:
			status = "?"
		}

		fmt.Fprintf(&b, "%s %s: %s\n", status, result.Service, result.Message)
	}

	return b.String()
}

// GetRemediation provides remediation steps for failed checks
func GetRemediation(results []CheckResult) string {
	var b strings.Builder

	for _, result := range results {
		if result.Status != StatusError {
			continue
		}
		fmt.Fprintf(&b, "\n%s is not accessible:\n", result.Service)

		switch result.Service {
		case "AI provider":
			b.WriteString(`
  Check ai.provider in laradoc.yaml and the matching API key
  (OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY). Documentation
  is still generated with fallback text without a provider.
`)
		case "Ollama":
			b.WriteString(`
  Install Ollama:
    curl -fsSL https://ollama.ai/install.sh | sh

  Pull the configured models:
    ollama pull llama3
    ollama pull nomic-embed-text
`)
		case "Search":
			b.WriteString(`
  Start Meilisearch with Docker:
    docker run -d -p 7700:7700 getmeili/meilisearch

  Or switch to the SQL index:
    LARADOC_SEARCH_DRIVER=database
`)
		case "Database":
			b.WriteString(`
  Check DB_CONNECTION, DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME and
  DB_PASSWORD in the project .env, or disable project.database.enabled.
`)
		}
	}

	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return s
}
