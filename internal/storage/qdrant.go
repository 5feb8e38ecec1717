package storage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig contains Qdrant-specific configuration
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// Point is one stored vector with its string payload
type Point struct {
	ID      string // UUID
	Vector  []float64
	Payload map[string]string
}

// ScoredPoint is a point returned by a query
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]string
}

// QdrantClient provides access to one Qdrant collection
type QdrantClient struct {
	config QdrantConfig
	client *qdrant.Client
}

// NewQdrantClient creates a new Qdrant client
func NewQdrantClient(config QdrantConfig) (*QdrantClient, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if config.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}

	host, port, useTLS, err := grpcAddress(config.URL)
	if err != nil {
		return nil, err
	}

	qdrantConfig := &qdrant.Config{
		Host:   host,
		Port:   port,
		UseTLS: useTLS,
	}

	// Only set API key if it's not empty
	if config.APIKey != "" {
		qdrantConfig.APIKey = config.APIKey
	}

	// SDK uses gRPC
	client, err := qdrant.NewClient(qdrantConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantClient{
		config: config,
		client: client,
	}, nil
}

// grpcAddress maps a Qdrant URL to the gRPC host and port. The REST port
// 6333 is swapped for the gRPC port 6334.
func grpcAddress(raw string) (string, int, bool, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", 0, false, fmt.Errorf("invalid qdrant URL %q", raw)
	}

	port := 6334
	if p := u.Port(); p != "" && p != "6333" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid qdrant port %q", p)
		}
	}
	return u.Hostname(), port, u.Scheme == "https", nil
}

// Collection returns the configured collection name
func (c *QdrantClient) Collection() string {
	return c.config.Collection
}

// Health checks that the server answers
func (c *QdrantClient) Health(ctx context.Context) error {
	if _, err := c.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return nil
}

// RecreateCollection drops the collection when it exists and creates it
// empty with the given vector size
func (c *QdrantClient) RecreateCollection(ctx context.Context, dimension int) error {
	exists, err := c.client.CollectionExists(ctx, c.config.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		if err := c.DeleteCollection(ctx); err != nil {
			return err
		}
	}

	err = c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// CollectionExists checks if the collection exists in Qdrant
func (c *QdrantClient) CollectionExists(ctx context.Context) (bool, error) {
	return c.client.CollectionExists(ctx, c.config.Collection)
}

// Count returns the exact number of points whose payload matches match.
// An empty match counts the whole collection.
func (c *QdrantClient) Count(ctx context.Context, match map[string]string) (uint64, error) {
	n, err := c.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: c.config.Collection,
		Filter:         keywordFilter(match),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return n, nil
}

// DeleteCollection deletes the collection and all of its points
func (c *QdrantClient) DeleteCollection(ctx context.Context) error {
	if err := c.client.DeleteCollection(ctx, c.config.Collection); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", c.config.Collection, err)
	}
	return nil
}

// Upsert writes points in one request and waits for them to be applied
func (c *QdrantClient) Upsert(ctx context.Context, points []Point) error {
	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		if len(p.Vector) == 0 {
			return fmt.Errorf("point %s has an empty vector", p.ID)
		}

		payload := make(map[string]*qdrant.Value, len(p.Payload))
		for key, val := range p.Payload {
			payload[key] = qdrant.NewValueString(val)
		}

		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(toFloat32(p.Vector)...),
			Payload: payload,
		})
	}

	_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.config.Collection,
		Wait:           qdrant.PtrOf(true),
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

// Query returns the points closest to vector whose payload matches every
// key/value pair in match
func (c *QdrantClient) Query(ctx context.Context, vector []float64, match map[string]string, limit int) ([]ScoredPoint, error) {
	points, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.config.Collection,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Filter:         keywordFilter(match),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]ScoredPoint, 0, len(points))
	for _, point := range points {
		results = append(results, ScoredPoint{
			ID:      pointID(point.Id),
			Score:   float64(point.Score),
			Payload: stringPayload(point.Payload),
		})
	}
	return results, nil
}

// Scroll returns up to limit points whose payload matches match, without
// scoring
func (c *QdrantClient) Scroll(ctx context.Context, match map[string]string, limit int) ([]ScoredPoint, error) {
	points, err := c.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: c.config.Collection,
		Filter:         keywordFilter(match),
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll: %w", err)
	}

	results := make([]ScoredPoint, 0, len(points))
	for _, point := range points {
		results = append(results, ScoredPoint{
			ID:      pointID(point.Id),
			Score:   1.0,
			Payload: stringPayload(point.Payload),
		})
	}
	return results, nil
}

// Close closes the Qdrant client connection
func (c *QdrantClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func keywordFilter(match map[string]string) *qdrant.Filter {
	if len(match) == 0 {
		return nil
	}

	conditions := make([]*qdrant.Condition, 0, len(match))
	for key, value := range match {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: key,
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Keyword{
							Keyword: value,
						},
					},
				},
			},
		})
	}
	return &qdrant.Filter{Must: conditions}
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func stringPayload(payload map[string]*qdrant.Value) map[string]string {
	out := make(map[string]string, len(payload))
	for key, val := range payload {
		out[key] = val.GetStringValue()
	}
	return out
}

func toFloat32(vector []float64) []float32 {
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(v)
	}
	return out
}
