package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
)

const listPreview = 10

// AnalyzeCmd returns the analyze command
func AnalyzeCmd() *cobra.Command {
	var output string
	var save bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze Laravel project structure and components",
		Long: `Analyze routes, controllers, models, migrations, views, middleware,
providers, policies, gates, validation rules and (when enabled) the live
database schema.

Output formats:
  json     the full analysis (default)
  table    overview and component tables
  summary  counts, modules, tables and the first API endpoints`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			switch output {
			case "json", "table", "summary":
			default:
				return fmt.Errorf("unknown output format %q, expected json, table or summary", output)
			}

			app.Log.Info("🔍 Analyzing Laravel project structure...")
			analysis, err := app.Analyzer().Analyze(cmd.Context())
			if err != nil {
				return fmt.Errorf("project analysis failed: %w", err)
			}

			switch output {
			case "json":
				if err := writeJSON(app.out, analysis); err != nil {
					return err
				}
			case "table":
				writeAnalysisTable(app.out, analysis)
			case "summary":
				writeAnalysisSummary(app.out, analysis)
			}

			if save {
				path, err := saveAnalysis(app.Store().Dir(), analysis, time.Now())
				if err != nil {
					return err
				}
				app.Log.Info("💾 Analysis saved to %s", path)
			}

			app.Log.Info("✅ Project analysis completed successfully!")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, table, summary)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the analysis as JSON in the documentation directory")

	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

// saveAnalysis writes project-analysis-<timestamp>.json into dir
func saveAnalysis(dir string, analysis *laravel.ProjectAnalysis, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(analysis, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}

	path := filepath.Join(dir, "project-analysis-"+now.Format("2006-01-02-15-04-05")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}
	return path, nil
}

func writeAnalysisSummary(w io.Writer, a *laravel.ProjectAnalysis) {
	label := color.New(color.FgGreen).SprintFunc()
	info := a.ProjectInfo
	s := laravel.Summarize(a)

	fmt.Fprintln(w, color.New(color.FgCyan, color.Bold).Sprint("📋 Project Analysis Summary"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "🏷️  %s %s\n", label("Project:"), info.Name)
	fmt.Fprintf(w, "📝 %s %s\n", label("Description:"), info.Description)
	fmt.Fprintf(w, "🔄 %s %s\n", label("Laravel Version:"), info.LaravelVersion)
	fmt.Fprintf(w, "🐘 %s %s\n", label("PHP Version:"), info.PHPVersion)
	fmt.Fprintf(w, "🌍 %s %s\n", label("Environment:"), info.Environment)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "📊 %s\n", label("Project Statistics:"))
	for _, row := range s.Rows() {
		fmt.Fprintf(w, "  • %s: %d\n", row[0], row[1])
	}
	fmt.Fprintln(w)

	if len(a.Modules) > 0 {
		fmt.Fprintf(w, "📦 %s\n", label("Identified Modules:"))
		for _, name := range sortedNames(a.Modules) {
			fmt.Fprintf(w, "  • %s: %d routes\n", name, len(a.Modules[name].Routes))
		}
		fmt.Fprintln(w)
	}

	if len(a.DatabaseStructure) > 0 {
		fmt.Fprintf(w, "🗄️  %s\n", label("Database Tables:"))
		tables := make([]string, 0, len(a.DatabaseStructure))
		for name := range a.DatabaseStructure {
			tables = append(tables, name)
		}
		sort.Strings(tables)
		for _, name := range tables {
			fmt.Fprintf(w, "  • %s\n", name)
		}
		fmt.Fprintln(w)
	}

	if len(a.APIEndpoints) > 0 {
		fmt.Fprintf(w, "🔌 %s\n", label("API Endpoints (first 5):"))
		for i, e := range a.APIEndpoints {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "  • %s %s\n", e.Method, e.URI)
		}
		fmt.Fprintln(w)
	}
}

func writeAnalysisTable(w io.Writer, a *laravel.ProjectAnalysis) {
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	info := a.ProjectInfo

	fmt.Fprintln(w, heading("📊 Project Overview"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROPERTY\tVALUE")
	fmt.Fprintf(tw, "Name\t%s\n", info.Name)
	fmt.Fprintf(tw, "Description\t%s\n", info.Description)
	fmt.Fprintf(tw, "Laravel Version\t%s\n", info.LaravelVersion)
	fmt.Fprintf(tw, "PHP Version\t%s\n", info.PHPVersion)
	fmt.Fprintf(tw, "Environment\t%s\n", info.Environment)
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, heading("📁 Project Structure"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tCOUNT")
	for _, row := range laravel.Summarize(a).Rows() {
		fmt.Fprintf(tw, "%s\t%d\n", row[0], row[1])
	}
	tw.Flush()

	if len(a.Controllers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading("🎮 Controllers"))
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CONTROLLER\tMETHODS\tNAMESPACE")
		for i, c := range a.Controllers {
			if i == listPreview {
				break
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", c.ShortName, len(c.Methods), c.Namespace)
		}
		tw.Flush()
	}

	if len(a.Models) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading("🗄️  Models"))
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tTABLE\tFILLABLE")
		for i, m := range a.Models {
			if i == listPreview {
				break
			}
			table := m.Table
			if table == "" {
				table = "N/A"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\n", m.ShortName, table, len(m.Fillable))
		}
		tw.Flush()
	}

	if len(a.APIEndpoints) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading("🔌 API Endpoints"))
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "METHOD\tURI\tHANDLER")
		for i, e := range a.APIEndpoints {
			if i == listPreview {
				break
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Method, e.URI, e.Handler)
		}
		tw.Flush()
	}
}

func sortedNames(modules map[string]*laravel.ModuleGroup) []string {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
