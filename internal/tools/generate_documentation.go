package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/codeWithUali/laradoc/internal/docs"
)

// GenerateDocumentationTool analyzes the project and writes documentation
type GenerateDocumentationTool struct {
	analyzer  Analyzer
	generator *docs.Generator
	search    Searcher
}

// NewGenerateDocumentationTool creates the generate_documentation tool.
// search may be nil, in which case nothing is indexed.
func NewGenerateDocumentationTool(analyzer Analyzer, generator *docs.Generator, search Searcher) *GenerateDocumentationTool {
	return &GenerateDocumentationTool{analyzer: analyzer, generator: generator, search: search}
}

// Name returns the tool name
func (t *GenerateDocumentationTool) Name() string {
	return "generate_documentation"
}

// Description returns the tool description
func (t *GenerateDocumentationTool) Description() string {
	return "Generate Markdown documentation for the Laravel project. Without a module every configured module plus the overview is generated and the search index is rebuilt; with a module only that file is rewritten."
}

// Schema returns the input schema
func (t *GenerateDocumentationTool) Schema() map[string]interface{} {
	return objectSchema(nil, map[string]interface{}{
		"module": stringProperty("Optional: a single module key (overview, authentication, api, database, frontend, business_logic)"),
	})
}

// Execute generates the documentation
func (t *GenerateDocumentationTool) Execute(ctx context.Context, params map[string]interface{}) (string, error) {
	analysis, err := t.analyzer.Analyze(ctx)
	if err != nil {
		return "", fmt.Errorf("analysis failed: %w", err)
	}

	if module := stringParam(params, "module"); module != "" {
		entry, err := t.generator.GenerateSingle(ctx, analysis, module)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Generated %s (%s) in %s", entry.Key, entry.Title, t.generator.Store().Dir()), nil
	}

	doc, err := t.generator.GenerateComplete(ctx, analysis)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d modules in %s:\n", len(doc.Entries), t.generator.Store().Dir())
	for _, e := range doc.Entries {
		fmt.Fprintf(&b, "- %s: %s\n", e.Key, e.Title)
	}

	if t.search != nil {
		indexed, err := t.search.IndexDocumentation(ctx, doc)
		if err != nil {
			log.Printf("⚠️  Search indexing failed: %v", err)
			fmt.Fprintf(&b, "\nSearch indexing failed: %v\n", err)
		} else {
			fmt.Fprintf(&b, "\nIndexed %d search documents (%s)\n", indexed.Indexed, indexed.Driver)
		}
	}

	return b.String(), nil
}
