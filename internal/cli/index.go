package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// IndexCmd returns the index command
func IndexCmd() *cobra.Command {
	var clearIndex, stats bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the search index from the documentation on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctx := cmd.Context()

			svc, err := app.Search(ctx)
			if err != nil {
				return err
			}

			switch {
			case clearIndex:
				if err := svc.Clear(ctx); err != nil {
					return fmt.Errorf("failed to clear index: %w", err)
				}
				app.Log.Info("✅ Search index cleared (%s)", svc.Driver())
				return nil

			case stats:
				s, err := svc.Stats(ctx)
				if err != nil {
					return fmt.Errorf("failed to read index stats: %w", err)
				}
				modules, err := svc.Modules(ctx)
				if err != nil {
					return fmt.Errorf("failed to list indexed modules: %w", err)
				}

				tw := tabwriter.NewWriter(app.out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Driver\t%s\n", s.Driver)
				fmt.Fprintf(tw, "Documents\t%d\n", s.TotalDocuments)
				fmt.Fprintf(tw, "Modules\t%d\n", s.Documentation)
				fmt.Fprintf(tw, "Sections\t%d\n", s.Sections)
				tw.Flush()

				keys := make([]string, 0, len(modules))
				for k := range modules {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					app.printf("  • %s: %s\n", k, modules[k])
				}
				return nil
			}

			doc, err := app.Store().Load()
			if err != nil {
				return err
			}
			if len(doc.Entries) == 0 {
				return fmt.Errorf("no documentation in %s, run 'laradoc generate' first", app.Store().Dir())
			}

			result, err := svc.IndexDocumentation(ctx, doc)
			if err != nil {
				return err
			}
			app.printf("Indexed %d documents from %d modules (%s)\n", result.Indexed, len(doc.Entries), result.Driver)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearIndex, "clear", false, "Remove every indexed document")
	cmd.Flags().BoolVar(&stats, "stats", false, "Show index statistics instead of reindexing")
	cmd.MarkFlagsMutuallyExclusive("clear", "stats")

	return cmd
}
