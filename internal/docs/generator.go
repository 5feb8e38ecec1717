package docs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/codeWithUali/laradoc/internal/ai"
	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
	"github.com/codeWithUali/laradoc/internal/config"
)

// DocumentationAI writes the narrative part of each module
type DocumentationAI interface {
	GenerateDocumentation(ctx context.Context, req ai.DocumentationRequest) (string, error)
	Fallback(req ai.DocumentationRequest) string
}

// Generator assembles documentation entries from a project analysis
type Generator struct {
	ai        DocumentationAI
	modules   []config.ModuleConfig
	store     *Store
	withoutAI bool
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithoutAI skips provider calls and uses the fallback text
func WithoutAI() GeneratorOption {
	return func(g *Generator) {
		g.withoutAI = true
	}
}

// NewGenerator creates a generator for the configured modules that persists
// into store
func NewGenerator(cfg config.DocumentationConfig, svc DocumentationAI, store *Store, opts ...GeneratorOption) *Generator {
	g := &Generator{
		ai:      svc,
		modules: cfg.Modules,
		store:   store,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the store the generator writes to
func (g *Generator) Store() *Store {
	return g.store
}

// GenerateComplete builds the overview and every configured module, in
// configured order, and saves the result
func (g *Generator) GenerateComplete(ctx context.Context, analysis *laravel.ProjectAnalysis) (*Documentation, error) {
	doc := &Documentation{}
	doc.Add(g.GenerateOverview(ctx, analysis))

	for _, module := range g.modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc.Add(g.GenerateModule(ctx, analysis, module.Key, module))
	}

	if err := g.store.Save(doc); err != nil {
		return nil, fmt.Errorf("failed to save documentation: %w", err)
	}
	log.Printf("✅ Documentation generated: %d modules in %s", len(doc.Entries), g.store.Dir())
	return doc, nil
}

// GenerateSingle builds one module and writes its Markdown file, leaving
// the other files untouched. The key must be overview or a configured
// module.
func (g *Generator) GenerateSingle(ctx context.Context, analysis *laravel.ProjectAnalysis, key string) (Entry, error) {
	var entry Entry
	if key == OverviewKey {
		entry = g.GenerateOverview(ctx, analysis)
	} else {
		module, ok := g.module(key)
		if !ok {
			return Entry{}, fmt.Errorf("%w: %q is not a configured module", ErrInvalidModule, key)
		}
		entry = g.GenerateModule(ctx, analysis, key, module)
	}

	if _, err := g.store.Update(entry.Key, entry.Content); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// GenerateOverview builds the project overview entry
func (g *Generator) GenerateOverview(ctx context.Context, analysis *laravel.ProjectAnalysis) Entry {
	info := analysis.ProjectInfo

	var b strings.Builder
	b.WriteString("# Project Overview\n\n")
	b.WriteString("## Project Information\n\n")
	fmt.Fprintf(&b, "- **Name:** %s\n", info.Name)
	fmt.Fprintf(&b, "- **Description:** %s\n", info.Description)
	fmt.Fprintf(&b, "- **Version:** %s\n", info.Version)
	fmt.Fprintf(&b, "- **Laravel Version:** %s\n", info.LaravelVersion)
	fmt.Fprintf(&b, "- **PHP Version:** %s\n", info.PHPVersion)
	fmt.Fprintf(&b, "- **Environment:** %s\n\n", info.Environment)

	b.WriteString(projectStatistics(analysis))
	b.WriteString(g.narrative(ctx, ai.DocumentationRequest{Analysis: analysis}))

	return Entry{
		Key:     OverviewKey,
		Title:   "Project Overview",
		Content: b.String(),
		Data:    info,
	}
}

// GenerateModule builds the entry of one module: heading, description,
// structured data from the module's slice of the analysis, then the
// narrative
func (g *Generator) GenerateModule(ctx context.Context, analysis *laravel.ProjectAnalysis, key string, module config.ModuleConfig) Entry {
	title := module.Title
	if title == "" {
		title = titleFromKey(key)
	}

	data := ModuleData(analysis, key)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if module.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", module.Description)
	}
	b.WriteString(structuredContent(data))
	b.WriteString(g.narrative(ctx, ai.DocumentationRequest{Analysis: analysis, Module: key, Data: data}))

	return Entry{
		Key:         key,
		Title:       title,
		Description: module.Description,
		Content:     b.String(),
		Data:        data,
	}
}

func (g *Generator) narrative(ctx context.Context, req ai.DocumentationRequest) string {
	var text string
	if g.withoutAI {
		text = g.ai.Fallback(req)
	} else {
		var err error
		text, err = g.ai.GenerateDocumentation(ctx, req)
		var fbErr *ai.FallbackError
		if errors.As(err, &fbErr) {
			log.Printf("⚠️  Using fallback documentation for %s: %v", moduleLabel(req.Module), fbErr.Err)
		} else if err != nil {
			log.Printf("⚠️  Documentation generation for %s failed: %v", moduleLabel(req.Module), err)
		}
	}

	if strings.TrimSpace(text) == "" {
		return ""
	}
	return strings.TrimRight(text, "\n") + "\n\n"
}

func (g *Generator) module(key string) (config.ModuleConfig, bool) {
	for _, m := range g.modules {
		if m.Key == key {
			return m, true
		}
	}
	return config.ModuleConfig{}, false
}

func projectStatistics(analysis *laravel.ProjectAnalysis) string {
	var b strings.Builder
	b.WriteString("## Project Statistics\n\n")
	fmt.Fprintf(&b, "- **Controllers:** %d\n", len(analysis.Controllers))
	fmt.Fprintf(&b, "- **Models:** %d\n", len(analysis.Models))
	fmt.Fprintf(&b, "- **Views:** %d\n", len(analysis.Views))
	fmt.Fprintf(&b, "- **API Endpoints:** %d\n", len(analysis.APIEndpoints))
	fmt.Fprintf(&b, "- **Database Tables:** %d\n", len(analysis.DatabaseStructure))
	fmt.Fprintf(&b, "- **Migrations:** %d\n", len(analysis.Migrations))
	fmt.Fprintf(&b, "- **Policies:** %d\n", len(analysis.Policies))
	fmt.Fprintf(&b, "- **Gates:** %d\n", len(analysis.Gates))
	fmt.Fprintf(&b, "- **Validation Rules:** %d\n\n", len(analysis.ValidationRules))
	return b.String()
}

func moduleLabel(key string) string {
	if key == "" {
		return OverviewKey
	}
	return key
}
