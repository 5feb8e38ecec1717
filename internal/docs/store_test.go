package docs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocumentation() *Documentation {
	doc := &Documentation{}
	doc.Add(Entry{Key: OverviewKey, Title: "Project Overview", Content: "# Project Overview\n", Data: map[string]string{"name": "Demo"}})
	doc.Add(Entry{Key: "api", Title: "API Documentation", Description: "REST API endpoints", Content: "# API Documentation\n"})
	return doc
}

func TestStore_SaveWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	store := NewStore(dir)
	store.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) }

	require.NoError(t, store.Save(sampleDocumentation()))

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Laravel Project Documentation\n\n"+
		"Generated on: 2024-03-09 14:05:06\n\n"+
		"## [Project Overview](overview.md)\n\n\n\n"+
		"## [API Documentation](api.md)\n\nREST API endpoints\n\n", string(readme))

	api, err := os.ReadFile(filepath.Join(dir, "api.md"))
	require.NoError(t, err)
	assert.Equal(t, "# API Documentation\n", string(api))

	raw, err := os.ReadFile(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"overview\": {")

	var decoded Documentation
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []string{OverviewKey, "api"}, decoded.Keys())
}

func TestStore_UpdateGetRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	contents := []string{
		"# Edited\n\nSome *markdown* with `code`.\n",
		"",
		"no trailing newline",
		"unicode → ✅\r\nwindows line",
	}
	for _, content := range contents {
		result, err := store.Update("authentication", content)
		require.NoError(t, err)
		assert.Equal(t, UpdateResult{Success: true, Module: "authentication", Message: "Documentation updated successfully"}, result)

		got, err := store.Get("authentication")
		require.NoError(t, err)
		if got != content {
			t.Errorf("round trip mismatch: got %q, want %q", got, content)
		}
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Get("database")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = store.Get("")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_GetEmptyModuleReturnsReadme(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(sampleDocumentation()))

	readme, err := store.Get("")
	require.NoError(t, err)
	assert.Contains(t, readme, "# Laravel Project Documentation")

	overview, err := store.Get(OverviewKey)
	require.NoError(t, err)
	assert.Equal(t, "# Project Overview\n", overview)
}

func TestValidateModule(t *testing.T) {
	for _, key := range []string{"api", "business_logic", "v2-api", "Users-1"} {
		if err := ValidateModule(key); err != nil {
			t.Errorf("ValidateModule(%q) = %v, want nil", key, err)
		}
	}
	for _, key := range []string{"", "../etc", "a/b", `a\b`, ".hidden", "README", "data", "a..b", "v1.2", "api.md"} {
		if err := ValidateModule(key); !errors.Is(err, ErrInvalidModule) {
			t.Errorf("ValidateModule(%q) = %v, want ErrInvalidModule", key, err)
		}
	}

	store := NewStore(t.TempDir())
	_, err := store.Update("../escape", "x")
	assert.ErrorIs(t, err, ErrInvalidModule)

	_, err = store.Update("v1.2", "# Release 1.2\n")
	assert.ErrorIs(t, err, ErrInvalidModule)
}

func TestStore_List(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing"))
	modules, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, modules)

	require.NoError(t, store.Save(sampleDocumentation()))
	modules, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "overview"}, modules)
}

func TestStore_LoadPicksUpManualEdits(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(sampleDocumentation()))

	_, err := store.Update("api", "# API\n\nEdited by hand\n")
	require.NoError(t, err)
	_, err = store.Update("business_logic", "# Business Logic\n")
	require.NoError(t, err)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{OverviewKey, "api", "business_logic"}, doc.Keys())

	api, ok := doc.Entry("api")
	require.True(t, ok)
	assert.Equal(t, "API Documentation", api.Title)
	assert.Equal(t, "REST API endpoints", api.Description)
	assert.Equal(t, "# API\n\nEdited by hand\n", api.Content)

	bl, _ := doc.Entry("business_logic")
	assert.Equal(t, "Business Logic", bl.Title)
}
