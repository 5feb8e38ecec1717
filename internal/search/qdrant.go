package search

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/codeWithUali/laradoc/internal/storage"
)

// Embedder turns text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore is the collection API the qdrant driver needs
type VectorStore interface {
	Health(ctx context.Context) error
	CollectionExists(ctx context.Context) (bool, error)
	RecreateCollection(ctx context.Context, dimension int) error
	DeleteCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []storage.Point) error
	Query(ctx context.Context, vector []float64, match map[string]string, limit int) ([]storage.ScoredPoint, error)
	Scroll(ctx context.Context, match map[string]string, limit int) ([]storage.ScoredPoint, error)
	Count(ctx context.Context, match map[string]string) (uint64, error)
	Close() error
}

var _ VectorStore = (*storage.QdrantClient)(nil)

// QdrantBackend stores embedded documents in a Qdrant collection and
// answers queries by vector similarity
type QdrantBackend struct {
	store    VectorStore
	embedder Embedder
}

// NewQdrantBackend creates the driver
func NewQdrantBackend(store VectorStore, embedder Embedder) *QdrantBackend {
	return &QdrantBackend{store: store, embedder: embedder}
}

// Name implements Backend
func (b *QdrantBackend) Name() string {
	return DriverQdrant
}

// PointID derives a stable point UUID from a document id
func PointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("laradoc:"+docID)).String()
}

// Replace recreates the collection and stores docs with their embeddings
func (b *QdrantBackend) Replace(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return b.Clear(ctx)
	}

	points := make([]storage.Point, 0, len(docs))
	for _, doc := range docs {
		vector, err := b.embedder.Embed(ctx, embeddingText(doc))
		if err != nil {
			return fmt.Errorf("failed to embed %s: %w", doc.ID, err)
		}
		if len(vector) == 0 {
			return fmt.Errorf("empty embedding for %s", doc.ID)
		}
		points = append(points, storage.Point{
			ID:      PointID(doc.ID),
			Vector:  vector,
			Payload: documentPayload(doc),
		})
	}

	if err := b.store.RecreateCollection(ctx, len(points[0].Vector)); err != nil {
		return err
	}
	if err := b.store.Upsert(ctx, points); err != nil {
		return err
	}
	log.Printf("✅ Indexed %d documents into qdrant", len(points))
	return nil
}

// Search embeds query and returns the closest documents
func (b *QdrantBackend) Search(ctx context.Context, query string, filters Filters) ([]Result, error) {
	exists, err := b.store.CollectionExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []Result{}, nil
	}

	vector, err := b.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	points, err := b.store.Query(ctx, vector, payloadFilter(filters), limitOf(filters))
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(points))
	for _, p := range points {
		results = append(results, Result{Document: payloadDocument(p.Payload), Score: p.Score})
	}
	return results, nil
}

// Documents implements Backend
func (b *QdrantBackend) Documents(ctx context.Context, filters Filters) ([]Document, error) {
	exists, err := b.store.CollectionExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []Document{}, nil
	}

	points, err := b.store.Scroll(ctx, payloadFilter(filters), limitOf(filters))
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, payloadDocument(p.Payload))
	}
	return docs, nil
}

// Count implements Backend
func (b *QdrantBackend) Count(ctx context.Context) (Stats, error) {
	exists, err := b.store.CollectionExists(ctx)
	if err != nil || !exists {
		return Stats{}, err
	}

	var stats Stats
	for _, docType := range []string{TypeDocumentation, TypeSection} {
		n, err := b.store.Count(ctx, map[string]string{"type": docType})
		if err != nil {
			return Stats{}, err
		}
		stats.add(docType, int(n))
	}

	total, err := b.store.Count(ctx, nil)
	if err != nil {
		return Stats{}, err
	}
	stats.TotalDocuments = int(total)
	return stats, nil
}

// Clear drops the collection
func (b *QdrantBackend) Clear(ctx context.Context) error {
	exists, err := b.store.CollectionExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return b.store.DeleteCollection(ctx)
}

// Ping implements Backend
func (b *QdrantBackend) Ping(ctx context.Context) error {
	return b.store.Health(ctx)
}

// Close implements Backend
func (b *QdrantBackend) Close() error {
	return b.store.Close()
}

func embeddingText(doc Document) string {
	if doc.Description != "" {
		return doc.Title + "\n" + doc.Description + "\n\n" + doc.Content
	}
	return doc.Title + "\n\n" + doc.Content
}

func documentPayload(doc Document) map[string]string {
	return map[string]string{
		"doc_id":      doc.ID,
		"title":       doc.Title,
		"content":     doc.Content,
		"description": doc.Description,
		"module":      doc.Module,
		"type":        doc.Type,
		"section":     doc.Section,
	}
}

func payloadDocument(payload map[string]string) Document {
	return Document{
		ID:          payload["doc_id"],
		Title:       payload["title"],
		Content:     payload["content"],
		Description: payload["description"],
		Module:      payload["module"],
		Type:        payload["type"],
		Section:     payload["section"],
	}
}

func payloadFilter(filters Filters) map[string]string {
	match := map[string]string{}
	if filters.Module != "" {
		match["module"] = filters.Module
	}
	if filters.Type != "" {
		match["type"] = filters.Type
	}
	return match
}
