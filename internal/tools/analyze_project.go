package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
)

// AnalyzeProjectTool runs the static project analysis
type AnalyzeProjectTool struct {
	analyzer Analyzer
}

// NewAnalyzeProjectTool creates the analyze_project tool
func NewAnalyzeProjectTool(analyzer Analyzer) *AnalyzeProjectTool {
	return &AnalyzeProjectTool{analyzer: analyzer}
}

// Name returns the tool name
func (t *AnalyzeProjectTool) Name() string {
	return "analyze_project"
}

// Description returns the tool description
func (t *AnalyzeProjectTool) Description() string {
	return "Analyze the Laravel project (routes, controllers, models, migrations, views, middleware, policies, validation rules, database tables). Returns a summary by default or the full analysis as JSON with format=json."
}

// Schema returns the input schema
func (t *AnalyzeProjectTool) Schema() map[string]interface{} {
	return objectSchema(nil, map[string]interface{}{
		"format": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"summary", "json"},
			"description": "Output format (default: summary)",
		},
	})
}

// Execute runs the analysis
func (t *AnalyzeProjectTool) Execute(ctx context.Context, params map[string]interface{}) (string, error) {
	analysis, err := t.analyzer.Analyze(ctx)
	if err != nil {
		return "", fmt.Errorf("analysis failed: %w", err)
	}

	switch format := stringParam(params, "format"); format {
	case "json":
		return toJSON(analysis)
	case "", "summary":
		return FormatSummary(laravel.Summarize(analysis)), nil
	default:
		return "", fmt.Errorf("unknown format %q, expected summary or json", format)
	}
}

// FormatSummary renders a summary as plain text
func FormatSummary(s laravel.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", s.Name)
	fmt.Fprintf(&b, "Laravel: %s, PHP: %s\n\n", s.LaravelVersion, s.PHPVersion)
	for _, row := range s.Rows() {
		fmt.Fprintf(&b, "- %s: %d\n", row[0], row[1])
	}
	return b.String()
}
