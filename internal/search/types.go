// Package search indexes generated documentation into a search backend and
// queries it.
package search

import (
	"context"
	"errors"
)

// Driver names
const (
	DriverMeilisearch = "meilisearch"
	DriverDatabase    = "database"
	DriverQdrant      = "qdrant"
)

// Document types
const (
	TypeDocumentation = "documentation"
	TypeSection       = "section"
)

// DefaultLimit is the number of results returned when none is requested
const DefaultLimit = 20

// ErrUnknownDriver is returned for a driver name that is not supported
var ErrUnknownDriver = errors.New("unknown search driver")

// Document is one indexed unit: a whole module or one of its sections
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Module      string `json:"module"`
	Type        string `json:"type"`
	Section     string `json:"section,omitempty"`
}

// Filters restrict a search. Empty fields do not filter.
type Filters struct {
	Module string `json:"module,omitempty"`
	Type   string `json:"type,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Result is a matching document with its backend score
type Result struct {
	Document
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt,omitempty"`
}

// Results is the answer to a search
type Results struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Driver  string   `json:"driver"`
}

// IndexResult reports an indexing run
type IndexResult struct {
	Indexed int    `json:"indexed"`
	Driver  string `json:"driver"`
}

// Stats describes the index contents
type Stats struct {
	Driver         string `json:"driver"`
	TotalDocuments int    `json:"total_documents"`
	Documentation  int    `json:"documentation"`
	Sections       int    `json:"sections"`
}

func (s *Stats) add(docType string, n int) {
	s.TotalDocuments += n
	switch docType {
	case TypeDocumentation:
		s.Documentation += n
	case TypeSection:
		s.Sections += n
	}
}

// Backend is implemented by each search driver
type Backend interface {
	// Name returns the driver name
	Name() string

	// Replace removes every indexed document and stores docs
	Replace(ctx context.Context, docs []Document) error

	// Search runs a free-text query
	Search(ctx context.Context, query string, filters Filters) ([]Result, error)

	// Documents returns up to limit stored documents matching filters
	Documents(ctx context.Context, filters Filters) ([]Document, error)

	// Count reports how many documents of each type are stored. Driver is
	// left empty.
	Count(ctx context.Context) (Stats, error)

	// Clear removes every indexed document
	Clear(ctx context.Context) error

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	Close() error
}
