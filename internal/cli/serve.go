package cli

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/codeWithUali/laradoc/internal/chat"
	"github.com/codeWithUali/laradoc/internal/tools"
)

// ServeCmd returns the serve command
func ServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Expose the analyzer, the documentation and the chatbot as MCP tools over
stdio. Stdout carries the protocol, so logs only go to stderr and the log
file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctx := cmd.Context()
			store := app.Store()

			var searcher tools.Searcher
			if svc, err := app.Search(ctx); err != nil {
				app.Log.Warn("⚠️  %v, search tools will report errors", err)
			} else {
				searcher = svc
			}

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "laradoc",
				Version: version,
			}, nil)

			sessions := chat.NewManager(app.AI(), store, app.Config.Chatbot)
			tools.Register(server,
				tools.NewAnalyzeProjectTool(app.Analyzer()),
				tools.NewGenerateDocumentationTool(app.Analyzer(), app.Generator(false), searcher),
				tools.NewGetDocumentationTool(store),
				tools.NewUpdateDocumentationTool(store),
				tools.NewSearchDocumentationTool(searcher),
				tools.NewChatTool(sessions),
			)
			tools.RegisterResources(server, store, app.Config.Documentation.Modules)

			app.Log.Info("🚀 Laradoc MCP server started (stdio), project: %s", app.Config.Project.BasePath)
			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("server terminated: %w", err)
			}
			return nil
		},
	}
}
