package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeWithUali/laradoc/internal/watcher"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	var debounce = watcher.DefaultDebounce

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reindex the documentation whenever its Markdown files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctx := cmd.Context()
			store := app.Store()

			if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", store.Dir(), err)
			}

			svc, err := app.Search(ctx)
			if err != nil {
				return err
			}

			reindex := func(ctx context.Context) error {
				doc, err := store.Load()
				if err != nil {
					return err
				}
				_, err = svc.IndexDocumentation(ctx, doc)
				return err
			}

			w, err := watcher.New(store.Dir(), reindex, watcher.WithDebounce(debounce))
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			app.Log.Info("👀 Watching %s (%s), press Ctrl+C to stop", store.Dir(), svc.Driver())
			<-ctx.Done()
			app.Log.Info("Stopping watcher")
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Wait this long after the last change before reindexing")

	return cmd
}
