package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codeWithUali/laradoc/internal/docs"
)

// GenerateCmd returns the generate command
func GenerateCmd() *cobra.Command {
	var module string
	var force, noAI, noIndex bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate documentation for the Laravel project",
		Long: `Analyze the project and write Markdown documentation for the overview and
every configured module, then index it for search.

Existing documentation is kept unless --force is given.`,
		Example: `  laradoc generate
  laradoc generate --module api --force
  laradoc generate --no-ai --no-index`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctx := cmd.Context()
			store := app.Store()

			if !force {
				if err := checkExisting(store, module); err != nil {
					return err
				}
			}

			app.Log.Info("🚀 Starting Laravel documentation generation...")
			if noAI {
				app.Log.Warn("⚠️  AI generation disabled, documentation will use the static fallback text")
			}

			app.Log.Info("🔍 Analyzing project structure...")
			analysis, err := app.Analyzer().Analyze(ctx)
			if err != nil {
				return fmt.Errorf("project analysis failed: %w", err)
			}

			generator := app.Generator(noAI)

			var entries []docs.Entry
			if module != "" {
				app.Log.Info("📝 Generating documentation for module: %s", module)
				entry, err := generator.GenerateSingle(ctx, analysis, module)
				if err != nil {
					return err
				}
				entries = []docs.Entry{entry}
			} else {
				app.Log.Info("📝 Generating complete documentation...")
				doc, err := generator.GenerateComplete(ctx, analysis)
				if err != nil {
					return err
				}
				entries = doc.Entries
			}

			if !noIndex {
				indexStored(ctx, app, store)
			}

			app.printf("📁 Documentation saved to: %s\n\n", store.Dir())
			writeGeneratedTable(app, entries)
			app.println()
			app.println(color.New(color.FgGreen).Sprint("🎉 Documentation generation completed!"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&module, "module", "m", "", "Generate a single module (overview, authentication, api, database, frontend, business_logic)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing documentation")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "Skip AI generation and use the static fallback text")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "Do not update the search index")

	return cmd
}

// checkExisting refuses to overwrite documentation that is already on disk
func checkExisting(store *docs.Store, module string) error {
	if module != "" {
		_, err := store.Get(module)
		switch {
		case err == nil:
			return fmt.Errorf("documentation for %s already exists in %s, use --force to overwrite", module, store.Dir())
		case errors.Is(err, docs.ErrNotFound):
			return nil
		default:
			return err
		}
	}

	modules, err := store.List()
	if err != nil {
		return err
	}
	if len(modules) > 0 {
		return fmt.Errorf("documentation already exists in %s, use --force to regenerate", store.Dir())
	}
	return nil
}

// indexStored indexes everything in the store. Indexing problems are
// reported but never fail the command.
func indexStored(ctx context.Context, app *App, store *docs.Store) {
	app.Log.Info("🔍 Indexing documentation for search...")

	doc, err := store.Load()
	if err != nil {
		app.Log.Warn("⚠️  Failed to load documentation for indexing: %v", err)
		return
	}

	svc, err := app.Search(ctx)
	if err != nil {
		app.Log.Warn("⚠️  %v", err)
		return
	}

	result, err := svc.IndexDocumentation(ctx, doc)
	if err != nil {
		app.Log.Warn("⚠️  Failed to index documentation: %v", err)
		return
	}
	app.Log.Info("✅ Indexed %d documents (%s)", result.Indexed, result.Driver)
}

func writeGeneratedTable(app *App, entries []docs.Entry) {
	ok := color.New(color.FgGreen).Sprint("✅ Generated")

	tw := tabwriter.NewWriter(app.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tTITLE\tSTATUS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, e.Title, ok)
	}
	tw.Flush()
}
