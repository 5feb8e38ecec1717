// Package cli implements the laradoc commands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codeWithUali/laradoc/internal/ai"
	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/codeWithUali/laradoc/internal/docs"
	"github.com/codeWithUali/laradoc/internal/search"
)

// App holds the configuration and the services a command needs. Services
// are created on first use.
type App struct {
	Config *config.Config
	Log    *Logger

	out io.Writer
	ai  *ai.Service
	sch *search.Service
}

type appKey struct{}

// globalFlags are the persistent flags of the root command
type globalFlags struct {
	configPath string
	basePath   string
	logLevel   string
}

func newApp(cmd *cobra.Command, flags *globalFlags) (*App, error) {
	cfg, err := config.Load(flags.configPath, config.WithBasePath(flags.basePath))
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}

	return &App{
		Config: cfg,
		Log:    NewLogger(cfg.Logging, cmd.ErrOrStderr()),
		out:    cmd.OutOrStdout(),
	}, nil
}

// appFrom returns the App created by the root command
func appFrom(cmd *cobra.Command) *App {
	app, _ := cmd.Context().Value(appKey{}).(*App)
	return app
}

// Analyzer returns the project analyzer
func (a *App) Analyzer() *laravel.ProjectAnalyzer {
	return laravel.NewProjectAnalyzer(a.Config.Project)
}

// AI returns the AI service
func (a *App) AI() *ai.Service {
	if a.ai == nil {
		a.ai = ai.NewService(a.Config)
	}
	return a.ai
}

// Store returns the documentation store under the project
func (a *App) Store() *docs.Store {
	return docs.NewStore(a.Config.Project.ResolvePath(a.Config.Documentation.OutputPath))
}

// Generator returns a documentation generator. With noAI no provider is
// called and the narrative is the fallback text.
func (a *App) Generator(noAI bool) *docs.Generator {
	var opts []docs.GeneratorOption
	if noAI {
		opts = append(opts, docs.WithoutAI())
	}
	return docs.NewGenerator(a.Config.Documentation, a.AI(), a.Store(), opts...)
}

// Search opens the configured search driver
func (a *App) Search(ctx context.Context) (*search.Service, error) {
	if a.sch != nil {
		return a.sch, nil
	}

	opts := []search.Option{search.WithProject(a.Config.Project)}
	if a.Config.Search.Driver == search.DriverQdrant {
		opts = append(opts, search.WithEmbedder(a.AI()))
	}

	svc, err := search.New(ctx, a.Config.Search, opts...)
	if err != nil {
		return nil, fmt.Errorf("search is not available: %w", err)
	}
	a.sch = svc
	return svc, nil
}

// Close releases the open services
func (a *App) Close() {
	if a.sch != nil {
		if err := a.sch.Close(); err != nil {
			a.Log.Warn("Failed to close search: %v", err)
		}
	}
	if a.ai != nil {
		a.ai.Close()
	}
	a.Log.Close()
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}
