package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeWithUali/laradoc/internal/config"
)

func configForDriver(driver string) config.SearchConfig {
	cfg := config.DefaultConfig().Search
	cfg.Driver = driver
	return cfg
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), configForDriver("elastic"))
	assert.True(t, errors.Is(err, ErrUnknownDriver))
}

func TestNew_MeilisearchFallsBackToDatabase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	cfg := configForDriver(DriverMeilisearch)
	cfg.Meilisearch.Host = server.URL
	cfg.Database.DSN = filepath.Join(t.TempDir(), "search.db")

	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, DriverDatabase, svc.Driver())
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestNew_DatabaseRelativePath(t *testing.T) {
	base := t.TempDir()
	cfg := configForDriver(DriverDatabase)
	cfg.Database.DSN = "storage/laradoc/search.db"

	svc, err := New(context.Background(), cfg, WithProject(config.ProjectConfig{BasePath: base}))
	require.NoError(t, err)
	defer svc.Close()

	assert.FileExists(t, filepath.Join(base, "storage", "laradoc", "search.db"))
}

func TestNew_QdrantRequiresEmbedder(t *testing.T) {
	_, err := New(context.Background(), configForDriver(DriverQdrant))
	assert.Error(t, err)
}

func TestSearch_DefaultLimit(t *testing.T) {
	index := &fakeIndex{}
	backend, err := NewMeiliBackend(context.Background(), index)
	require.NoError(t, err)

	svc, err := New(context.Background(), config.SearchConfig{}, WithBackend(backend))
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), "x", Filters{})
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultLimit), index.lastRequest.Limit)
}
