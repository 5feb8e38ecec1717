package search

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeWithUali/laradoc/internal/storage"
)

// keywordEmbedder builds a tiny vector from keyword counts
type keywordEmbedder struct {
	err error
}

func (e keywordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	lower := strings.ToLower(text)
	return []float64{
		0.1,
		float64(strings.Count(lower, "guard")),
		float64(strings.Count(lower, "endpoint")),
	}, nil
}

type memoryVectorStore struct {
	exists    bool
	dimension int
	points    map[string]storage.Point
	closed    bool
}

func (m *memoryVectorStore) Health(context.Context) error { return nil }

func (m *memoryVectorStore) CollectionExists(context.Context) (bool, error) { return m.exists, nil }

func (m *memoryVectorStore) RecreateCollection(_ context.Context, dimension int) error {
	m.exists = true
	m.dimension = dimension
	m.points = map[string]storage.Point{}
	return nil
}

func (m *memoryVectorStore) DeleteCollection(context.Context) error {
	m.exists = false
	m.points = nil
	return nil
}

func (m *memoryVectorStore) Upsert(_ context.Context, points []storage.Point) error {
	for _, p := range points {
		m.points[p.ID] = p
	}
	return nil
}

func (m *memoryVectorStore) Query(_ context.Context, vector []float64, match map[string]string, limit int) ([]storage.ScoredPoint, error) {
	var out []storage.ScoredPoint
	for _, p := range m.points {
		if !matches(p.Payload, match) {
			continue
		}
		score := 0.0
		for i := range vector {
			score += vector[i] * p.Vector[i]
		}
		out = append(out, storage.ScoredPoint{ID: p.ID, Score: score, Payload: p.Payload})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryVectorStore) Scroll(_ context.Context, match map[string]string, limit int) ([]storage.ScoredPoint, error) {
	var out []storage.ScoredPoint
	for _, p := range m.points {
		if matches(p.Payload, match) && len(out) < limit {
			out = append(out, storage.ScoredPoint{ID: p.ID, Score: 1, Payload: p.Payload})
		}
	}
	return out, nil
}

func (m *memoryVectorStore) Count(_ context.Context, match map[string]string) (uint64, error) {
	var n uint64
	for _, p := range m.points {
		if matches(p.Payload, match) {
			n++
		}
	}
	return n, nil
}

func (m *memoryVectorStore) Close() error {
	m.closed = true
	return nil
}

func matches(payload, match map[string]string) bool {
	for k, v := range match {
		if payload[k] != v {
			return false
		}
	}
	return true
}

func TestQdrantBackend_IndexThenSearch(t *testing.T) {
	ctx := context.Background()
	store := &memoryVectorStore{}
	svc, err := New(ctx, configForDriver(DriverQdrant), WithBackend(NewQdrantBackend(store, keywordEmbedder{})))
	require.NoError(t, err)

	empty, err := svc.Search(ctx, "guards", Filters{})
	require.NoError(t, err)
	assert.Empty(t, empty.Results)

	result, err := svc.IndexDocumentation(ctx, sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, 10, result.Indexed)
	assert.Equal(t, 3, store.dimension)
	assert.Contains(t, store.points, PointID("authentication_3"))

	results, err := svc.Search(ctx, "endpoint", Filters{Type: TypeDocumentation})
	require.NoError(t, err)
	require.NotEmpty(t, results.Results)
	assert.Equal(t, "api", results.Results[0].Module)
	assert.Equal(t, TypeDocumentation, results.Results[0].Type)

	modules, err := svc.Modules(ctx)
	require.NoError(t, err)
	assert.Len(t, modules, 3)

	require.NoError(t, svc.Clear(ctx))
	assert.False(t, store.exists)

	require.NoError(t, svc.Close())
	assert.True(t, store.closed)
}

func TestQdrantBackend_Count(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, configForDriver(DriverQdrant), WithBackend(NewQdrantBackend(&memoryVectorStore{}, keywordEmbedder{})))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Driver: DriverQdrant}, stats)

	_, err = svc.IndexDocumentation(ctx, manySectionsDocs(1200))
	require.NoError(t, err)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Driver: DriverQdrant, TotalDocuments: 1201, Documentation: 1, Sections: 1200}, stats)
}

func TestQdrantBackend_EmbeddingFailure(t *testing.T) {
	store := &memoryVectorStore{}
	backend := NewQdrantBackend(store, keywordEmbedder{err: errors.New("no embed model")})

	err := backend.Replace(context.Background(), BuildDocuments(sampleDocs()))
	assert.Error(t, err)
	assert.False(t, store.exists)
}

func TestPointIDIsStable(t *testing.T) {
	assert.Equal(t, PointID("api_1"), PointID("api_1"))
	assert.NotEqual(t, PointID("api_1"), PointID("api_2"))
	assert.Len(t, PointID("api"), 36)
}
