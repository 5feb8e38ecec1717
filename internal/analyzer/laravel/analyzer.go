package laravel

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/codeWithUali/laradoc/internal/analyzer/schema"
	"github.com/codeWithUali/laradoc/internal/config"
)

// ProjectAnalyzer statically inspects a Laravel source tree
type ProjectAnalyzer struct {
	cfg config.ProjectConfig

	// openSchema connects to the live database; replaced in tests
	openSchema func(config.DatabaseConfig) (*schema.Inspector, error)
}

// NewProjectAnalyzer creates an analyzer for the project described by cfg
func NewProjectAnalyzer(cfg config.ProjectConfig) *ProjectAnalyzer {
	return &ProjectAnalyzer{
		cfg:        cfg,
		openSchema: schema.Open,
	}
}

// Analyze runs every sub-analysis and assembles the project analysis.
// Sub-analyses that fail are logged and leave their section empty; only
// a missing project directory or a cancelled context is an error.
func (a *ProjectAnalyzer) Analyze(ctx context.Context) (*ProjectAnalysis, error) {
	if info, err := os.Stat(a.cfg.BasePath); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory", a.cfg.BasePath)
	}

	log.Printf("📚 Analyzing Laravel project at %s", a.cfg.BasePath)

	paths := a.cfg.Paths
	analysis := &ProjectAnalysis{
		Routes:            map[string][]Route{},
		Controllers:       []ClassRecord{},
		Models:            []Model{},
		Migrations:        []Migration{},
		Views:             []View{},
		Middleware:        []ClassRecord{},
		Providers:         []ClassRecord{},
		Policies:          []ClassRecord{},
		Gates:             []string{},
		ValidationRules:   map[string]map[string]string{},
		DatabaseStructure: map[string]schema.Table{},
		APIEndpoints:      []Route{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		analysis.ProjectInfo = ReadProjectInfo(a.cfg.BasePath, a.cfg.Env)
		analysis.Authentication = ReadAuthConfig(a.cfg.ResolvePath(paths.AuthConfig), a.cfg.Env)
		return nil
	})
	g.Go(func() error {
		analysis.Routes = AnalyzeRoutes(a.cfg.ResolvePath(paths.Routes), a.cfg.RouteFiles)
		return gctx.Err()
	})
	g.Go(func() error {
		records, err := analyzeClassDir(a.cfg.ResolvePath(paths.Controllers))
		if err != nil {
			log.Printf("⚠️  Controllers: %v", err)
			return nil
		}
		analysis.Controllers = records
		return gctx.Err()
	})
	g.Go(func() error {
		models, err := analyzeModels(a.cfg.ResolvePath(paths.Models))
		if err != nil {
			log.Printf("⚠️  Models: %v", err)
			return nil
		}
		analysis.Models = models
		return gctx.Err()
	})
	g.Go(func() error {
		migrations, err := analyzeMigrations(a.cfg.ResolvePath(paths.Migrations))
		if err != nil {
			log.Printf("⚠️  Migrations: %v", err)
			return nil
		}
		analysis.Migrations = migrations
		return gctx.Err()
	})
	g.Go(func() error {
		views, err := analyzeViews(a.cfg.ResolvePath(paths.Views))
		if err != nil {
			log.Printf("⚠️  Views: %v", err)
			return nil
		}
		analysis.Views = views
		return gctx.Err()
	})
	g.Go(func() error {
		records, err := analyzeClassDir(a.cfg.ResolvePath(paths.Middleware))
		if err != nil {
			log.Printf("⚠️  Middleware: %v", err)
			return nil
		}
		aliases := MiddlewareAliases(a.cfg.ResolvePath(paths.HTTPKernel), a.cfg.ResolvePath("bootstrap/app.php"))
		applyMiddlewareAliases(records, aliases)
		analysis.Middleware = records
		return gctx.Err()
	})
	g.Go(func() error {
		providers, gates, err := analyzeProviders(a.cfg.ResolvePath(paths.Providers))
		if err != nil {
			log.Printf("⚠️  Providers: %v", err)
			return nil
		}
		analysis.Providers = providers
		analysis.Gates = gates
		return gctx.Err()
	})
	g.Go(func() error {
		records, err := analyzeClassDir(a.cfg.ResolvePath(paths.Policies))
		if err != nil {
			log.Printf("⚠️  Policies: %v", err)
			return nil
		}
		analysis.Policies = records
		return gctx.Err()
	})
	g.Go(func() error {
		rules, err := analyzeRequests(a.cfg.ResolvePath(paths.Requests))
		if err != nil {
			log.Printf("⚠️  Form requests: %v", err)
			return nil
		}
		analysis.ValidationRules = rules
		return gctx.Err()
	})
	g.Go(func() error {
		analysis.DatabaseStructure = a.analyzeDatabase(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("project analysis interrupted: %w", err)
	}

	if api, ok := analysis.Routes["api.php"]; ok {
		analysis.APIEndpoints = api
	}
	analysis.Modules = IdentifyModules(analysis.Routes, a.cfg.RouteFiles)

	log.Printf("✅ Analysis complete: %d routes, %d controllers, %d models, %d migrations, %d views",
		analysis.RouteCount(), len(analysis.Controllers), len(analysis.Models), len(analysis.Migrations), len(analysis.Views))

	return analysis, nil
}

// analyzeDatabase inspects the live schema when enabled. Connection
// problems degrade to an empty table set.
func (a *ProjectAnalyzer) analyzeDatabase(ctx context.Context) map[string]schema.Table {
	empty := map[string]schema.Table{}
	if !a.cfg.Database.Enabled {
		return empty
	}

	dbCfg := a.cfg.Database
	if dbCfg.Connection == "sqlite" && dbCfg.DSN == "" && dbCfg.Database != "" {
		dbCfg.Database = a.cfg.ResolvePath(dbCfg.Database)
	}

	inspector, err := a.openSchema(dbCfg)
	if err != nil {
		log.Printf("⚠️  Database structure unavailable: %v", err)
		return empty
	}
	defer inspector.Close()

	tables, err := inspector.Tables(ctx)
	if err != nil {
		log.Printf("⚠️  Database structure unavailable: %v", err)
		return empty
	}
	return tables
}
