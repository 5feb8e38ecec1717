package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeWithUali/laradoc/internal/search"
)

// SearchDocumentationTool searches the indexed documentation
type SearchDocumentationTool struct {
	search Searcher
}

// NewSearchDocumentationTool creates the search_documentation tool
func NewSearchDocumentationTool(s Searcher) *SearchDocumentationTool {
	return &SearchDocumentationTool{search: s}
}

// Name returns the tool name
func (t *SearchDocumentationTool) Name() string {
	return "search_documentation"
}

// Description returns the tool description
func (t *SearchDocumentationTool) Description() string {
	return "Full-text search over the generated documentation and its sections. Filter by module (e.g. api) and type (documentation or section). Returns titles, modules and excerpts."
}

// Schema returns the input schema
func (t *SearchDocumentationTool) Schema() map[string]interface{} {
	return objectSchema([]string{"query"}, map[string]interface{}{
		"query":  stringProperty("Search terms"),
		"module": stringProperty("Optional: restrict to one module"),
		"type": map[string]interface{}{
			"type":        "string",
			"enum":        []string{search.TypeDocumentation, search.TypeSection},
			"description": "Optional: documentation (whole modules) or section",
		},
		"limit": map[string]interface{}{
			"type":        "number",
			"description": "Maximum number of results (default: 20)",
		},
	})
}

// Execute runs the search
func (t *SearchDocumentationTool) Execute(ctx context.Context, params map[string]interface{}) (string, error) {
	if t.search == nil {
		return "", fmt.Errorf("search is not available, check the search configuration")
	}

	query := strings.TrimSpace(stringParam(params, "query"))
	if query == "" {
		return "", fmt.Errorf("query parameter is required")
	}

	results, err := t.search.Search(ctx, query, search.Filters{
		Module: stringParam(params, "module"),
		Type:   stringParam(params, "type"),
		Limit:  intParam(params, "limit", 0),
	})
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	if results.Total == 0 {
		return fmt.Sprintf("No documentation found for %q.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Found %d results for %q (%s):\n\n", results.Total, query, results.Driver)
	for i, r := range results.Results {
		title := r.Title
		if r.Section != "" && r.Section != r.Title {
			title += " › " + r.Section
		}
		fmt.Fprintf(&b, "--- Result %d: %s [%s, %s] ---\n%s\n\n", i+1, title, r.Module, r.Type, r.Excerpt)
	}
	return b.String(), nil
}
