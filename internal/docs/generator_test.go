package docs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeWithUali/laradoc/internal/ai"
	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
	"github.com/codeWithUali/laradoc/internal/analyzer/schema"
	"github.com/codeWithUali/laradoc/internal/config"
)

type stubAI struct {
	reply    string
	err      error
	requests []ai.DocumentationRequest
}

func (s *stubAI) GenerateDocumentation(_ context.Context, req ai.DocumentationRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return s.Fallback(req), &ai.FallbackError{Provider: "stub", Op: "documentation", Err: s.err}
	}
	return s.reply, nil
}

func (s *stubAI) Fallback(req ai.DocumentationRequest) string {
	return "fallback for " + moduleLabel(req.Module)
}

func demoAnalysis() *laravel.ProjectAnalysis {
	return &laravel.ProjectAnalysis{
		ProjectInfo: laravel.ProjectInfo{
			Name:           "Demo",
			Description:    "Demo app",
			Version:        "1.0.0",
			LaravelVersion: "11.0",
			PHPVersion:     "8.3",
			Environment:    "local",
		},
		Routes: map[string][]laravel.Route{
			"web.php": {{Method: "GET", URI: "/", Handler: "Closure"}},
		},
		Controllers: []laravel.ClassRecord{
			{Name: "App\\Http\\Controllers\\Api\\UserController", ShortName: "UserController", Namespace: "App\\Http\\Controllers\\Api", Methods: []string{"index", "show"}},
			{Name: "App\\Http\\Controllers\\HomeController", ShortName: "HomeController", Namespace: "App\\Http\\Controllers", Methods: []string{"index"}},
		},
		Models: []laravel.Model{{
			ClassRecord: laravel.ClassRecord{ShortName: "User"},
			Table:       "users",
			Fillable:    []string{"name", "email"},
			Casts:       map[string]string{"email_verified_at": "datetime"},
			Relationships: []laravel.Relationship{
				{Method: "posts", Type: "hasMany", Related: "App\\Models\\Post"},
			},
		}},
		Views: []laravel.View{{Name: "welcome.blade.php", Size: 120, Components: []string{"x-layout"}}},
		Middleware: []laravel.ClassRecord{
			{Name: "App\\Http\\Middleware\\Authenticate", ShortName: "Authenticate", Alias: "auth"},
			{Name: "App\\Http\\Middleware\\TrimStrings", ShortName: "TrimStrings"},
		},
		Policies: []laravel.ClassRecord{{ShortName: "PostPolicy", Methods: []string{"update", "delete"}}},
		Gates:    []string{"edit-settings"},
		ValidationRules: map[string]map[string]string{
			"App\\Http\\Requests\\StoreUserRequest": {"email": "required|email"},
		},
		DatabaseStructure: map[string]schema.Table{
			"posts": {
				Columns: []schema.Column{
					{Field: "id", Type: "bigint", Null: "NO"},
					{Field: "status", Type: "varchar(20)", Null: "YES", Default: "draft"},
				},
				ForeignKeys: []schema.ForeignKey{{Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id"}},
			},
		},
		APIEndpoints: []laravel.Route{
			{Method: "GET", URI: "/api/users", Handler: "Api\\UserController@index", Middleware: []string{"auth:sanctum"}},
		},
		Authentication: laravel.AuthSnapshot{
			Guards:    map[string]interface{}{"web": map[string]interface{}{}, "api": map[string]interface{}{}},
			Providers: map[string]interface{}{"users": map[string]interface{}{}},
		},
		Modules: map[string]*laravel.ModuleGroup{
			"reports": {Name: "reports", Routes: []laravel.Route{{Method: "GET", URI: "/reports", Handler: "ReportController@index"}}},
		},
	}
}

func newTestGenerator(t *testing.T, svc DocumentationAI, opts ...GeneratorOption) *Generator {
	t.Helper()
	return NewGenerator(config.DefaultConfig().Documentation, svc, NewStore(t.TempDir()), opts...)
}

func TestGenerateOverview(t *testing.T) {
	svc := &stubAI{reply: "An application for demos."}
	entry := newTestGenerator(t, svc).GenerateOverview(context.Background(), demoAnalysis())

	assert.Equal(t, OverviewKey, entry.Key)
	assert.Equal(t, "Project Overview", entry.Title)
	for _, literal := range []string{"Demo", "11.0", "8.3"} {
		if !strings.Contains(entry.Content, literal) {
			t.Errorf("overview does not contain %q", literal)
		}
	}
	assert.True(t, strings.HasPrefix(entry.Content, "# Project Overview\n\n## Project Information\n\n- **Name:** Demo\n"))
	assert.Contains(t, entry.Content, "- **Controllers:** 2\n")
	assert.Contains(t, entry.Content, "- **Database Tables:** 1\n")

	stats := strings.Index(entry.Content, "## Project Statistics")
	narrative := strings.Index(entry.Content, "An application for demos.")
	assert.Greater(t, narrative, stats)

	require.Len(t, svc.requests, 1)
	assert.Empty(t, svc.requests[0].Module)
}

func TestGenerateModule_Authentication(t *testing.T) {
	svc := &stubAI{reply: "Auth narrative"}
	module, _ := config.DefaultConfig().Documentation.Module("authentication")

	entry := newTestGenerator(t, svc).GenerateModule(context.Background(), demoAnalysis(), "authentication", module)

	assert.True(t, strings.HasPrefix(entry.Content, "# Authentication & Authorization\n\nUser authentication"))
	assert.Contains(t, entry.Content, "**Guards:** api, web\n")
	assert.Contains(t, entry.Content, "- **PostPolicy**\n  - Methods: update, delete\n")
	assert.Contains(t, entry.Content, "- `edit-settings`\n")
	assert.True(t, strings.HasSuffix(entry.Content, "Auth narrative\n\n"))

	data, ok := entry.Data.(AuthenticationData)
	require.True(t, ok)
	require.Len(t, data.Middleware, 1)
	assert.Equal(t, "Authenticate", data.Middleware[0].ShortName)

	assert.Equal(t, "authentication", svc.requests[0].Module)
	assert.Equal(t, data, svc.requests[0].Data)
}

func TestGenerateModule_Slices(t *testing.T) {
	g := newTestGenerator(t, &stubAI{reply: "narrative"})
	analysis := demoAnalysis()
	cfg := config.DefaultConfig().Documentation

	api, _ := cfg.Module("api")
	entry := g.GenerateModule(context.Background(), analysis, "api", api)
	assert.Contains(t, entry.Content, "- **GET** `/api/users`\n  - Handler: Api\\UserController@index\n  - Middleware: auth:sanctum\n")
	apiData := entry.Data.(APIData)
	require.Len(t, apiData.Controllers, 1)
	assert.Equal(t, "UserController", apiData.Controllers[0].ShortName)

	database, _ := cfg.Module("database")
	entry = g.GenerateModule(context.Background(), analysis, "database", database)
	assert.Contains(t, entry.Content, "- **User** (Table: users)\n  - Fillable: name, email\n")
	assert.Contains(t, entry.Content, "- `status`: varchar(20) NULL DEFAULT draft\n")
	assert.Contains(t, entry.Content, "- `id`: bigint NOT NULL\n")
	assert.Contains(t, entry.Content, "- `user_id` → `users.id`\n")

	frontend, _ := cfg.Module("frontend")
	entry = g.GenerateModule(context.Background(), analysis, "frontend", frontend)
	assert.Contains(t, entry.Content, "- **welcome.blade.php**\n  - Size: 120 bytes\n  - Components: x-layout\n")
	assert.Len(t, entry.Data.(FrontendData).Routes, 1)

	logic, _ := cfg.Module("business_logic")
	entry = g.GenerateModule(context.Background(), analysis, "business_logic", logic)
	assert.Contains(t, entry.Content, "- **HomeController**\n  - Methods: index\n")
	assert.Contains(t, entry.Content, "- **StoreUserRequest**\n  - Rules: {\"email\":\"required|email\"}\n")

	entry = g.GenerateModule(context.Background(), analysis, "reports", config.ModuleConfig{Key: "reports"})
	assert.True(t, strings.HasPrefix(entry.Content, "# Reports\n\n## Structured Data"))
	assert.Contains(t, entry.Content, "- **GET** `/reports`")
}

func TestGenerateComplete(t *testing.T) {
	svc := &stubAI{err: errors.New("provider down")}
	g := newTestGenerator(t, svc)

	doc, err := g.GenerateComplete(context.Background(), demoAnalysis())
	require.NoError(t, err)
	assert.Equal(t, []string{"overview", "authentication", "api", "database", "frontend", "business_logic"}, doc.Keys())
	assert.Len(t, svc.requests, 6)

	api, _ := doc.Entry("api")
	assert.Contains(t, api.Content, "fallback for api")

	for _, name := range []string{"README.md", "data.json", "overview.md", "business_logic.md"} {
		_, err := os.Stat(filepath.Join(g.Store().Dir(), name))
		assert.NoError(t, err, name)
	}
}

func TestGenerateComplete_WithoutAI(t *testing.T) {
	svc := &stubAI{reply: "never used"}
	doc, err := newTestGenerator(t, svc, WithoutAI()).GenerateComplete(context.Background(), demoAnalysis())
	require.NoError(t, err)
	assert.Empty(t, svc.requests)

	overview, _ := doc.Entry(OverviewKey)
	assert.Contains(t, overview.Content, "fallback for overview")
}

func TestGenerateComplete_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGenerator(t, &stubAI{reply: "x"}).GenerateComplete(ctx, demoAnalysis())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateSingle(t *testing.T) {
	g := newTestGenerator(t, &stubAI{reply: "narrative"})

	entry, err := g.GenerateSingle(context.Background(), demoAnalysis(), "api")
	require.NoError(t, err)

	content, err := g.Store().Get("api")
	require.NoError(t, err)
	assert.Equal(t, entry.Content, content)

	_, err = g.Store().Get("")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = g.GenerateSingle(context.Background(), demoAnalysis(), "unknown")
	assert.ErrorIs(t, err, ErrInvalidModule)
}
