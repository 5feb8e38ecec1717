package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// DefaultConfigPath is read when --config is not given
const DefaultConfigPath = "laradoc.yaml"

type root struct {
	flags globalFlags
	app   *App
}

// NewRootCmd builds the laradoc command tree
func NewRootCmd(version string) *cobra.Command {
	r := &root{}
	return r.command(version)
}

func (r *root) command(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "laradoc",
		Short:   "Laradoc - AI-assisted documentation for Laravel projects",
		Version: version,
		Long: `Laradoc analyzes a Laravel project, generates Markdown documentation per
module with an AI provider, indexes it for search and answers questions about it.

Configuration is read from laradoc.yaml, the project .env and environment
variables (LARADOC_*, OPENAI_API_KEY, MEILISEARCH_HOST, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, &r.flags)
			if err != nil {
				return err
			}
			r.app = app

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, app))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&r.flags.configPath, "config", "c", DefaultConfigPath, "Path to laradoc.yaml")
	cmd.PersistentFlags().StringVarP(&r.flags.basePath, "path", "p", "", "Laravel project directory (overrides project.base_path)")
	cmd.PersistentFlags().StringVar(&r.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(AnalyzeCmd())
	cmd.AddCommand(GenerateCmd())
	cmd.AddCommand(SearchCmd())
	cmd.AddCommand(DocsCmd())
	cmd.AddCommand(IndexCmd())
	cmd.AddCommand(ChatCmd())
	cmd.AddCommand(WatchCmd())
	cmd.AddCommand(ServeCmd(version))
	cmd.AddCommand(HealthCmd())
	cmd.AddCommand(MCPInstallCmd())

	return cmd
}

// Run executes the command line and releases the services it opened
func Run(ctx context.Context, version string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	r := &root{}
	cmd := r.command(version)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if r.app != nil {
		r.app.Close()
	}
	return err
}
