package tools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/codeWithUali/laradoc/internal/docs"
)

// ResourceURIPrefix prefixes every documentation resource URI
const ResourceURIPrefix = "laradoc://docs/"

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	module      string
}

// RegisterResources exposes the README and every configured module file
// as MCP resources. Files are read on each request so regenerated or
// edited documentation is served without a restart.
func RegisterResources(server *mcp.Server, store *docs.Store, modules []config.ModuleConfig) {
	for _, res := range documentationResources(modules) {
		resource := res
		handler := func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			content, err := store.Get(resource.module)
			if err != nil {
				if errors.Is(err, docs.ErrNotFound) {
					return nil, mcp.ResourceNotFoundError(req.Params.URI)
				}
				return nil, err
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{
						URI:      resource.URI,
						MIMEType: "text/markdown",
						Text:     content,
					},
				},
			}, nil
		}
		server.AddResource(&mcp.Resource{
			URI:         resource.URI,
			Name:        resource.Name,
			Title:       resource.Title,
			Description: resource.Description,
			MIMEType:    "text/markdown",
		}, handler)
	}
}

func documentationResources(modules []config.ModuleConfig) []docResource {
	resources := []docResource{
		{
			URI:         ResourceURIPrefix + "readme",
			Name:        "readme",
			Title:       "Documentation index",
			Description: "Table of contents of the generated documentation",
		},
		{
			URI:         ResourceURIPrefix + docs.OverviewKey,
			Name:        docs.OverviewKey,
			Title:       "Project Overview",
			Description: "Project information and statistics",
			module:      docs.OverviewKey,
		},
	}

	for _, m := range modules {
		if m.Key == docs.OverviewKey {
			continue
		}
		resources = append(resources, docResource{
			URI:         ResourceURIPrefix + m.Key,
			Name:        m.Key,
			Title:       m.Title,
			Description: m.Description,
			module:      m.Key,
		})
	}
	return resources
}
