package search

import (
	"context"
	"fmt"
	"log"

	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/codeWithUali/laradoc/internal/docs"
	"github.com/codeWithUali/laradoc/internal/storage"
)

// ExcerptLength is the size of result excerpts
const ExcerptLength = 200

// listLimit bounds the documents read for module listings
const listLimit = 1000

// Service indexes documentation into the selected backend and searches it
type Service struct {
	backend Backend
	limit   int
}

type options struct {
	backend  Backend
	embedder Embedder
	project  config.ProjectConfig
}

// Option configures New
type Option func(*options)

// WithBackend uses b instead of opening the configured driver
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithEmbedder sets the embedding provider used by the qdrant driver
func WithEmbedder(e Embedder) Option {
	return func(o *options) {
		o.embedder = e
	}
}

// WithProject resolves relative database paths against the project
func WithProject(project config.ProjectConfig) Option {
	return func(o *options) {
		o.project = project
	}
}

// New opens the configured driver once. When Meilisearch cannot be
// reached or configured, the database driver is used instead.
func New(ctx context.Context, cfg config.SearchConfig, opts ...Option) (*Service, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	if o.backend != nil {
		return &Service{backend: o.backend, limit: limit}, nil
	}

	backend, err := openBackend(ctx, cfg, o)
	if err != nil {
		return nil, err
	}
	log.Printf("🔎 Search driver: %s", backend.Name())
	return &Service{backend: backend, limit: limit}, nil
}

func openBackend(ctx context.Context, cfg config.SearchConfig, o *options) (Backend, error) {
	switch cfg.Driver {
	case DriverMeilisearch:
		meili, err := OpenMeiliBackend(ctx, cfg.Meilisearch)
		if err == nil {
			return meili, nil
		}
		log.Printf("⚠️  Meilisearch unavailable, falling back to database search: %v", err)
		return OpenDatabaseBackend(ctx, cfg.Database, o.project)

	case DriverDatabase:
		return OpenDatabaseBackend(ctx, cfg.Database, o.project)

	case DriverQdrant:
		if o.embedder == nil {
			return nil, fmt.Errorf("qdrant search requires an embedding provider")
		}
		client, err := storage.NewQdrantClient(storage.QdrantConfig{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
		})
		if err != nil {
			return nil, err
		}
		return NewQdrantBackend(client, o.embedder), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

// Driver returns the name of the active driver
func (s *Service) Driver() string {
	return s.backend.Name()
}

// IndexDocumentation replaces the index contents with the documentation
// modules and their sections
func (s *Service) IndexDocumentation(ctx context.Context, doc *docs.Documentation) (IndexResult, error) {
	documents := BuildDocuments(doc)
	if err := s.backend.Replace(ctx, documents); err != nil {
		return IndexResult{Driver: s.Driver()}, fmt.Errorf("failed to index documentation: %w", err)
	}

	log.Printf("✅ Indexed %d search documents (%s)", len(documents), s.Driver())
	return IndexResult{Indexed: len(documents), Driver: s.Driver()}, nil
}

// Search runs query with the given filters. Each result carries an
// excerpt around the first match.
func (s *Service) Search(ctx context.Context, query string, filters Filters) (Results, error) {
	if filters.Limit <= 0 {
		filters.Limit = s.limit
	}

	results, err := s.backend.Search(ctx, query, filters)
	if err != nil {
		return Results{Results: []Result{}, Driver: s.Driver()}, err
	}

	for i := range results {
		results[i].Excerpt = Excerpt(results[i].Content, query, ExcerptLength)
	}

	return Results{
		Results: results,
		Total:   len(results),
		Driver:  s.Driver(),
	}, nil
}

// Stats counts the indexed documents by type
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.backend.Count(ctx)
	if err != nil {
		return Stats{Driver: s.Driver()}, fmt.Errorf("failed to count documents: %w", err)
	}
	stats.Driver = s.Driver()
	return stats, nil
}

// Modules maps each indexed module to its title
func (s *Service) Modules(ctx context.Context) (map[string]string, error) {
	documents, err := s.backend.Documents(ctx, Filters{Type: TypeDocumentation, Limit: listLimit})
	if err != nil {
		return nil, err
	}

	modules := make(map[string]string, len(documents))
	for _, d := range documents {
		modules[d.Module] = d.Title
	}
	return modules, nil
}

// Clear removes every indexed document
func (s *Service) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// Ping checks the backend
func (s *Service) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend
func (s *Service) Close() error {
	return s.backend.Close()
}
