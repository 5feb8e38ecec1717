package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// DocsCmd returns the docs command group
func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Read and edit the generated documentation",
	}

	cmd.AddCommand(docsListCmd())
	cmd.AddCommand(docsGetCmd())
	cmd.AddCommand(docsUpdateCmd())

	return cmd
}

func docsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the documented modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			modules, err := app.Store().List()
			if err != nil {
				return err
			}
			if len(modules) == 0 {
				app.printf("No documentation in %s. Run 'laradoc generate' first.\n", app.Store().Dir())
				return nil
			}
			for _, m := range modules {
				app.println(m)
			}
			return nil
		},
	}
}

func docsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [module]",
		Short: "Print a module's Markdown, or the README without a module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			module := ""
			if len(args) == 1 {
				module = args[0]
			}

			content, err := app.Store().Get(module)
			if err != nil {
				return err
			}
			app.printf("%s", content)
			return nil
		},
	}
}

func docsUpdateCmd() *cobra.Command {
	var file string
	var reindex bool

	cmd := &cobra.Command{
		Use:   "update <module>",
		Short: "Replace a module's Markdown with the contents of a file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			var content []byte
			var err error
			if file != "" {
				content, err = os.ReadFile(file)
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read new content: %w", err)
			}

			store := app.Store()
			result, err := store.Update(args[0], string(content))
			if err != nil {
				return err
			}
			app.Log.Info("✅ %s: %s", result.Module, result.Message)

			if reindex {
				indexStored(cmd.Context(), app, store)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the new Markdown from this file instead of stdin")
	cmd.Flags().BoolVar(&reindex, "reindex", true, "Update the search index afterwards")

	return cmd
}
