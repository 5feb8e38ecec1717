package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"github.com/codeWithUali/laradoc/internal/config"
)

const taskPollInterval = 50 * time.Millisecond

// MeiliIndex is the part of a Meilisearch index the driver uses
type MeiliIndex interface {
	UpdateFilterableAttributes(request *[]string) (*meilisearch.TaskInfo, error)
	AddDocuments(documentsPtr interface{}, primaryKey ...string) (*meilisearch.TaskInfo, error)
	DeleteAllDocuments() (*meilisearch.TaskInfo, error)
	SearchRaw(query string, request *meilisearch.SearchRequest) (*json.RawMessage, error)
	WaitForTaskWithContext(ctx context.Context, taskUID int64, interval time.Duration) (*meilisearch.Task, error)
	GetStats() (*meilisearch.StatsIndex, error)
}

// MeiliBackend indexes documents into one Meilisearch index
type MeiliBackend struct {
	client meilisearch.ServiceManager
	index  MeiliIndex
}

// OpenMeiliBackend connects to Meilisearch, checks its health and makes
// module and type filterable
func OpenMeiliBackend(ctx context.Context, cfg config.MeilisearchConfig) (*MeiliBackend, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("meilisearch host is required")
	}

	var opts []meilisearch.Option
	if cfg.Key != "" {
		opts = append(opts, meilisearch.WithAPIKey(cfg.Key))
	}
	client := meilisearch.New(cfg.Host, opts...)

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("meilisearch is not available at %s: %w", cfg.Host, err)
	}

	b := &MeiliBackend{client: client, index: client.Index(cfg.Index)}
	if err := b.configure(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// NewMeiliBackend wraps an index directly
func NewMeiliBackend(ctx context.Context, index MeiliIndex) (*MeiliBackend, error) {
	b := &MeiliBackend{index: index}
	if err := b.configure(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *MeiliBackend) configure(ctx context.Context) error {
	task, err := b.index.UpdateFilterableAttributes(&[]string{"module", "type"})
	if err != nil {
		return fmt.Errorf("failed to update meilisearch settings: %w", err)
	}
	return b.wait(ctx, task)
}

// Name implements Backend
func (b *MeiliBackend) Name() string {
	return DriverMeilisearch
}

// Replace deletes all documents and adds docs, waiting for both tasks
func (b *MeiliBackend) Replace(ctx context.Context, docs []Document) error {
	if err := b.Clear(ctx); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	task, err := b.index.AddDocuments(docs, "id")
	if err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return b.wait(ctx, task)
}

type meiliResponse struct {
	Hits               []meiliHit                `json:"hits"`
	EstimatedTotalHits int                       `json:"estimatedTotalHits"`
	FacetDistribution  map[string]map[string]int `json:"facetDistribution"`
}

type meiliHit struct {
	Document
	RankingScore float64 `json:"_rankingScore"`
}

// Search implements Backend
func (b *MeiliBackend) Search(ctx context.Context, query string, filters Filters) ([]Result, error) {
	resp, err := b.search(ctx, query, filters)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, Result{Document: hit.Document, Score: hit.RankingScore})
	}
	return results, nil
}

// Documents implements Backend
func (b *MeiliBackend) Documents(ctx context.Context, filters Filters) ([]Document, error) {
	resp, err := b.search(ctx, "", filters)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		docs = append(docs, hit.Document)
	}
	return docs, nil
}

func (b *MeiliBackend) search(ctx context.Context, query string, filters Filters) (*meiliResponse, error) {
	req := &meilisearch.SearchRequest{
		Limit:            int64(limitOf(filters)),
		ShowRankingScore: true,
	}
	if filter := meiliFilter(filters); filter != "" {
		req.Filter = filter
	}
	return b.searchRaw(ctx, query, req)
}

func (b *MeiliBackend) searchRaw(ctx context.Context, query string, req *meilisearch.SearchRequest) (*meiliResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := b.index.SearchRaw(query, req)
	if err != nil {
		return nil, fmt.Errorf("meilisearch query failed: %w", err)
	}

	var resp meiliResponse
	if raw != nil {
		if err := json.Unmarshal(*raw, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode meilisearch response: %w", err)
		}
	}
	return &resp, nil
}

// meiliFilter combines the module and type filters with AND
func meiliFilter(filters Filters) string {
	var parts []string
	if filters.Module != "" {
		parts = append(parts, "module = "+strconv.Quote(filters.Module))
	}
	if filters.Type != "" {
		parts = append(parts, "type = "+strconv.Quote(filters.Type))
	}
	return strings.Join(parts, " AND ")
}

// Clear implements Backend
func (b *MeiliBackend) Clear(ctx context.Context) error {
	task, err := b.index.DeleteAllDocuments()
	if err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return b.wait(ctx, task)
}

// Count implements Backend. The total comes from the index stats and the
// per type counts from the type facet.
func (b *MeiliBackend) Count(ctx context.Context) (Stats, error) {
	total, err := b.DocumentCount()
	if err != nil {
		return Stats{}, err
	}

	resp, err := b.searchRaw(ctx, "", &meilisearch.SearchRequest{
		Limit:  1,
		Facets: []string{"type"},
	})
	if err != nil {
		return Stats{}, err
	}

	types := resp.FacetDistribution["type"]
	return Stats{
		TotalDocuments: int(total),
		Documentation:  types[TypeDocumentation],
		Sections:       types[TypeSection],
	}, nil
}

// DocumentCount returns the number of documents reported by the index
func (b *MeiliBackend) DocumentCount() (int64, error) {
	stats, err := b.index.GetStats()
	if err != nil {
		return 0, fmt.Errorf("failed to get index stats: %w", err)
	}
	return stats.NumberOfDocuments, nil
}

// Ping implements Backend
func (b *MeiliBackend) Ping(ctx context.Context) error {
	if b.client == nil {
		_, err := b.index.GetStats()
		return err
	}
	if _, err := b.client.Health(); err != nil {
		return fmt.Errorf("meilisearch health check failed: %w", err)
	}
	return nil
}

// Close implements Backend. The HTTP client holds no resources.
func (b *MeiliBackend) Close() error {
	return nil
}

func (b *MeiliBackend) wait(ctx context.Context, info *meilisearch.TaskInfo) error {
	if info == nil {
		return nil
	}

	task, err := b.index.WaitForTaskWithContext(ctx, info.TaskUID, taskPollInterval)
	if err != nil {
		return fmt.Errorf("meilisearch task %d failed: %w", info.TaskUID, err)
	}
	if task != nil && task.Status == meilisearch.TaskStatusFailed {
		return fmt.Errorf("meilisearch task %d failed", info.TaskUID)
	}
	return nil
}
