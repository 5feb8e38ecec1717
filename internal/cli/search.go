package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codeWithUali/laradoc/internal/search"
)

// SearchCmd returns the search command
func SearchCmd() *cobra.Command {
	var filters search.Filters
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the generated documentation",
		Args:  cobra.MinimumNArgs(1),
		Example: `  laradoc search "password reset"
  laradoc search guard --module authentication --type section`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query must not be empty")
			}

			svc, err := app.Search(cmd.Context())
			if err != nil {
				return err
			}

			results, err := svc.Search(cmd.Context(), query, filters)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asJSON {
				return writeJSON(app.out, results)
			}
			writeResults(app, query, results)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filters.Module, "module", "m", "", "Restrict results to one module")
	cmd.Flags().StringVarP(&filters.Type, "type", "t", "", "Restrict results to documentation or section")
	cmd.Flags().IntVarP(&filters.Limit, "limit", "l", search.DefaultLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw results as JSON")

	return cmd
}

func writeResults(app *App, query string, results search.Results) {
	if results.Total == 0 {
		app.printf("No documentation found for %q.\n", query)
		return
	}

	title := color.New(color.FgCyan, color.Bold).SprintFunc()
	meta := color.New(color.FgHiBlack).SprintFunc()
	mark := color.New(color.FgYellow, color.Bold).SprintFunc()

	app.printf("🔍 Found %d results for %q (%s)\n\n", results.Total, query, results.Driver)
	for i, r := range results.Results {
		heading := r.Title
		if r.Section != "" && r.Section != r.Title {
			heading += " › " + r.Section
		}
		app.printf("%d. %s %s\n", i+1, title(heading), meta(fmt.Sprintf("[%s, %s, %.2f]", r.Module, r.Type, r.Score)))
		if r.Excerpt != "" {
			app.printf("   %s\n", search.Highlight(r.Excerpt, query, func(s string) string { return mark(s) }))
		}
		app.println()
	}
}
