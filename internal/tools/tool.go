// Package tools exposes the documentation operations as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
	"github.com/codeWithUali/laradoc/internal/docs"
	"github.com/codeWithUali/laradoc/internal/search"
)

// Tool is one MCP tool
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]interface{}
	Execute(ctx context.Context, params map[string]interface{}) (string, error)
}

// Analyzer analyzes the configured project
type Analyzer interface {
	Analyze(ctx context.Context) (*laravel.ProjectAnalysis, error)
}

// Searcher indexes and searches documentation
type Searcher interface {
	IndexDocumentation(ctx context.Context, doc *docs.Documentation) (search.IndexResult, error)
	Search(ctx context.Context, query string, filters search.Filters) (search.Results, error)
}

// Register adds the tools to server. Tool errors are returned to the
// client as error results rather than protocol errors.
func Register(server *mcp.Server, tools ...Tool) {
	for _, tool := range tools {
		tool := tool
		server.AddTool(&mcp.Tool{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.Schema(),
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, err := arguments(req)
			if err != nil {
				return nil, err
			}
			return result(tool.Execute(ctx, args)), nil
		})
	}
}

func arguments(req *mcp.CallToolRequest) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if req.Params != nil && req.Params.Arguments != nil {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}
	return args, nil
}

func result(text string, err error) *mcp.CallToolResult {
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: err.Error()},
			},
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func stringParam(params map[string]interface{}, name string) string {
	if v, ok := params[name].(string); ok {
		return v
	}
	return ""
}

func intParam(params map[string]interface{}, name string, def int) int {
	switch v := params[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func objectSchema(required []string, properties map[string]interface{}) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func toJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}
