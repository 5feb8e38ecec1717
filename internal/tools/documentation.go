package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeWithUali/laradoc/internal/docs"
)

// GetDocumentationTool reads a generated module
type GetDocumentationTool struct {
	store *docs.Store
}

// NewGetDocumentationTool creates the get_documentation tool
func NewGetDocumentationTool(store *docs.Store) *GetDocumentationTool {
	return &GetDocumentationTool{store: store}
}

// Name returns the tool name
func (t *GetDocumentationTool) Name() string {
	return "get_documentation"
}

// Description returns the tool description
func (t *GetDocumentationTool) Description() string {
	return "Read generated documentation. Returns the Markdown of a module, or the README index when no module is given. Use list=true to get the available module keys."
}

// Schema returns the input schema
func (t *GetDocumentationTool) Schema() map[string]interface{} {
	return objectSchema(nil, map[string]interface{}{
		"module": stringProperty("Optional: module key, e.g. authentication"),
		"list": map[string]interface{}{
			"type":        "boolean",
			"description": "Return the list of documented modules instead of content",
		},
	})
}

// Execute returns the module content
func (t *GetDocumentationTool) Execute(ctx context.Context, params map[string]interface{}) (string, error) {
	if list, _ := params["list"].(bool); list {
		modules, err := t.store.List()
		if err != nil {
			return "", err
		}
		if len(modules) == 0 {
			return "No documentation has been generated yet. Run generate_documentation first.", nil
		}
		return strings.Join(modules, "\n"), nil
	}

	return t.store.Get(stringParam(params, "module"))
}

// UpdateDocumentationTool overwrites a module with edited Markdown
type UpdateDocumentationTool struct {
	store *docs.Store
}

// NewUpdateDocumentationTool creates the update_documentation tool
func NewUpdateDocumentationTool(store *docs.Store) *UpdateDocumentationTool {
	return &UpdateDocumentationTool{store: store}
}

// Name returns the tool name
func (t *UpdateDocumentationTool) Name() string {
	return "update_documentation"
}

// Description returns the tool description
func (t *UpdateDocumentationTool) Description() string {
	return "Replace the Markdown content of a documentation module. The content is written verbatim."
}

// Schema returns the input schema
func (t *UpdateDocumentationTool) Schema() map[string]interface{} {
	return objectSchema([]string{"module", "content"}, map[string]interface{}{
		"module":  stringProperty("Module key to update"),
		"content": stringProperty("New Markdown content"),
	})
}

// Execute writes the content
func (t *UpdateDocumentationTool) Execute(ctx context.Context, params map[string]interface{}) (string, error) {
	module := stringParam(params, "module")
	if module == "" {
		return "", fmt.Errorf("module parameter is required")
	}
	content, ok := params["content"].(string)
	if !ok {
		return "", fmt.Errorf("content parameter is required")
	}

	result, err := t.store.Update(module, content)
	if err != nil {
		return "", err
	}
	return toJSON(result)
}
