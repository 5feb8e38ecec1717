package cli

import (
	"context"
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codeWithUali/laradoc/internal/healthcheck"
)

// ErrUnhealthy is returned by the health command when a check fails
var ErrUnhealthy = errors.New("one or more health checks failed")

// HealthCmd returns the health command
func HealthCmd() *cobra.Command {
	var skipAI bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the AI provider, the search backend and the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctx := cmd.Context()

			var checks []healthcheck.Check
			if !skipAI {
				if app.Config.AI.Provider == "ollama" {
					checks = append(checks, healthcheck.CheckOllama(app.Config.AI.Ollama.BaseURL))
				}
				checks = append(checks, healthcheck.CheckAI(app.AI()))
			}

			if svc, err := app.Search(ctx); err != nil {
				checks = append(checks, failedCheck("Search", err))
			} else {
				checks = append(checks, healthcheck.CheckSearch(svc))
			}
			checks = append(checks, healthcheck.CheckDatabase(app.Config.Project.Database))

			results := healthcheck.CheckAll(ctx, checks...)
			app.printf("%s", healthcheck.FormatResults(results))

			if healthcheck.Healthy(results) {
				app.println(color.New(color.FgGreen).Sprint("All checks passed"))
				return nil
			}

			app.printf("%s", healthcheck.GetRemediation(results))
			return ErrUnhealthy
		},
	}

	cmd.Flags().BoolVar(&skipAI, "skip-ai", false, "Do not call the AI provider")

	return cmd
}

func failedCheck(service string, err error) healthcheck.Check {
	return func(ctx context.Context) healthcheck.CheckResult {
		return healthcheck.CheckResult{
			Service: service,
			Status:  healthcheck.StatusError,
			Message: err.Error(),
			Error:   err,
		}
	}
}
