package docs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
	"github.com/codeWithUali/laradoc/internal/analyzer/schema"
)

// Built-in module keys with a dedicated data slice
const (
	ModuleAuthentication = "authentication"
	ModuleAPI            = "api"
	ModuleDatabase       = "database"
	ModuleFrontend       = "frontend"
	ModuleBusinessLogic  = "business_logic"
)

// AuthenticationData is the slice of the analysis documented by the
// authentication module
type AuthenticationData struct {
	Authentication laravel.AuthSnapshot  `json:"authentication"`
	Policies       []laravel.ClassRecord `json:"policies"`
	Gates          []string              `json:"gates"`
	Middleware     []laravel.ClassRecord `json:"middleware"`
}

// APIData is the slice documented by the api module
type APIData struct {
	APIEndpoints []laravel.Route       `json:"api_endpoints"`
	Controllers  []laravel.ClassRecord `json:"controllers"`
}

// DatabaseData is the slice documented by the database module
type DatabaseData struct {
	Models            []laravel.Model         `json:"models"`
	DatabaseStructure map[string]schema.Table `json:"database_structure"`
	Migrations        []laravel.Migration     `json:"migrations"`
}

// FrontendData is the slice documented by the frontend module
type FrontendData struct {
	Views  []laravel.View  `json:"views"`
	Routes []laravel.Route `json:"routes"`
}

// BusinessLogicData is the slice documented by the business_logic module
type BusinessLogicData struct {
	Controllers     []laravel.ClassRecord        `json:"controllers"`
	Providers       []laravel.ClassRecord        `json:"providers"`
	ValidationRules map[string]map[string]string `json:"validation_rules"`
}

// ModuleData extracts the part of the analysis relevant to module key.
// Keys without a dedicated slice get the URI module group of the same name,
// or nil.
func ModuleData(analysis *laravel.ProjectAnalysis, key string) interface{} {
	switch key {
	case ModuleAuthentication:
		return AuthenticationData{
			Authentication: analysis.Authentication,
			Policies:       analysis.Policies,
			Gates:          analysis.Gates,
			Middleware:     filterAuthMiddleware(analysis.Middleware),
		}
	case ModuleAPI:
		return APIData{
			APIEndpoints: analysis.APIEndpoints,
			Controllers:  filterAPIControllers(analysis.Controllers),
		}
	case ModuleDatabase:
		return DatabaseData{
			Models:            analysis.Models,
			DatabaseStructure: analysis.DatabaseStructure,
			Migrations:        analysis.Migrations,
		}
	case ModuleFrontend:
		return FrontendData{
			Views:  analysis.Views,
			Routes: analysis.Routes["web.php"],
		}
	case ModuleBusinessLogic:
		return BusinessLogicData{
			Controllers:     analysis.Controllers,
			Providers:       analysis.Providers,
			ValidationRules: analysis.ValidationRules,
		}
	}

	if group, ok := analysis.Modules[key]; ok {
		return group
	}
	return nil
}

func filterAPIControllers(controllers []laravel.ClassRecord) []laravel.ClassRecord {
	out := []laravel.ClassRecord{}
	for _, c := range controllers {
		if strings.Contains(strings.ToLower(c.Name), "api") || strings.Contains(strings.ToLower(c.Namespace), "api") {
			out = append(out, c)
		}
	}
	return out
}

func filterAuthMiddleware(middleware []laravel.ClassRecord) []laravel.ClassRecord {
	out := []laravel.ClassRecord{}
	for _, m := range middleware {
		if strings.Contains(strings.ToLower(m.Name), "auth") || strings.Contains(strings.ToLower(m.Alias), "auth") {
			out = append(out, m)
		}
	}
	return out
}

// structuredContent renders the "## Structured Data" section for a module
// data slice
func structuredContent(data interface{}) string {
	var b strings.Builder
	b.WriteString("## Structured Data\n\n")

	switch d := data.(type) {
	case AuthenticationData:
		writeAuthentication(&b, d)
	case APIData:
		writeAPI(&b, d)
	case DatabaseData:
		writeDatabase(&b, d)
	case FrontendData:
		writeFrontend(&b, d)
	case BusinessLogicData:
		writeBusinessLogic(&b, d)
	case *laravel.ModuleGroup:
		writeRouteGroup(&b, d)
	}

	return b.String()
}

func writeAuthentication(b *strings.Builder, d AuthenticationData) {
	b.WriteString("### Authentication Configuration\n\n")
	fmt.Fprintf(b, "**Guards:** %s\n\n", strings.Join(sortedKeys(d.Authentication.Guards), ", "))
	fmt.Fprintf(b, "**Providers:** %s\n\n", strings.Join(sortedKeys(d.Authentication.Providers), ", "))

	if len(d.Policies) > 0 {
		b.WriteString("### Policies\n\n")
		for _, p := range d.Policies {
			fmt.Fprintf(b, "- **%s**\n", p.ShortName)
			fmt.Fprintf(b, "  - Methods: %s\n\n", strings.Join(p.Methods, ", "))
		}
	}

	if len(d.Gates) > 0 {
		b.WriteString("### Gates\n\n")
		for _, gate := range d.Gates {
			fmt.Fprintf(b, "- `%s`\n", gate)
		}
		b.WriteString("\n")
	}

	if len(d.Middleware) > 0 {
		b.WriteString("### Middleware\n\n")
		for _, m := range d.Middleware {
			if m.Alias != "" {
				fmt.Fprintf(b, "- **%s** (`%s`)\n", m.ShortName, m.Alias)
			} else {
				fmt.Fprintf(b, "- **%s**\n", m.ShortName)
			}
		}
		b.WriteString("\n")
	}
}

func writeAPI(b *strings.Builder, d APIData) {
	b.WriteString("### API Endpoints\n\n")
	for _, e := range d.APIEndpoints {
		fmt.Fprintf(b, "- **%s** `%s`\n", e.Method, e.URI)
		fmt.Fprintf(b, "  - Handler: %s\n", e.Handler)
		if len(e.Middleware) > 0 {
			fmt.Fprintf(b, "  - Middleware: %s\n", strings.Join(e.Middleware, ", "))
		}
		b.WriteString("\n")
	}

	if len(d.Controllers) > 0 {
		b.WriteString("### API Controllers\n\n")
		for _, c := range d.Controllers {
			fmt.Fprintf(b, "- **%s**\n", c.ShortName)
			fmt.Fprintf(b, "  - Methods: %s\n\n", strings.Join(c.Methods, ", "))
		}
	}
}

func writeDatabase(b *strings.Builder, d DatabaseData) {
	b.WriteString("### Models\n\n")
	for _, m := range d.Models {
		fmt.Fprintf(b, "- **%s** (Table: %s)\n", m.ShortName, m.Table)
		if len(m.Fillable) > 0 {
			fmt.Fprintf(b, "  - Fillable: %s\n", strings.Join(m.Fillable, ", "))
		}
		if len(m.Casts) > 0 {
			casts := make([]string, 0, len(m.Casts))
			for _, field := range sortedKeys(m.Casts) {
				casts = append(casts, fmt.Sprintf("`%s`: %s", field, m.Casts[field]))
			}
			fmt.Fprintf(b, "  - Casts: %s\n", strings.Join(casts, ", "))
		}
		for _, r := range m.Relationships {
			fmt.Fprintf(b, "  - %s: %s\n", r.Type, r.Method)
		}
		b.WriteString("\n")
	}

	if len(d.DatabaseStructure) > 0 {
		b.WriteString("### Tables\n\n")
		for _, name := range sortedKeys(d.DatabaseStructure) {
			table := d.DatabaseStructure[name]
			fmt.Fprintf(b, "#### %s\n\n", name)
			for _, col := range table.Columns {
				null := "NULL"
				if col.Null == "NO" {
					null = "NOT NULL"
				}
				fmt.Fprintf(b, "- `%s`: %s %s", col.Field, col.Type, null)
				if col.Default != "" {
					fmt.Fprintf(b, " DEFAULT %s", col.Default)
				}
				b.WriteString("\n")
			}
			for _, fk := range table.ForeignKeys {
				fmt.Fprintf(b, "- `%s` → `%s.%s`\n", fk.Column, fk.ReferencedTable, fk.ReferencedColumn)
			}
			b.WriteString("\n")
		}
	}

	if len(d.Migrations) > 0 {
		b.WriteString("### Migrations\n\n")
		for _, m := range d.Migrations {
			fmt.Fprintf(b, "- `%s`", m.File)
			if m.Table != "" {
				fmt.Fprintf(b, " (Table: %s)", m.Table)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func writeFrontend(b *strings.Builder, d FrontendData) {
	b.WriteString("### Views\n\n")
	for _, v := range d.Views {
		fmt.Fprintf(b, "- **%s**\n", v.Name)
		fmt.Fprintf(b, "  - Size: %d bytes\n", v.Size)
		if len(v.Components) > 0 {
			fmt.Fprintf(b, "  - Components: %s\n", strings.Join(v.Components, ", "))
		}
		b.WriteString("\n")
	}

	if len(d.Routes) > 0 {
		b.WriteString("### Web Routes\n\n")
		for _, r := range d.Routes {
			fmt.Fprintf(b, "- **%s** `%s`\n", r.Method, r.URI)
		}
		b.WriteString("\n")
	}
}

func writeBusinessLogic(b *strings.Builder, d BusinessLogicData) {
	b.WriteString("### Controllers\n\n")
	for _, c := range d.Controllers {
		fmt.Fprintf(b, "- **%s**\n", c.ShortName)
		fmt.Fprintf(b, "  - Methods: %s\n\n", strings.Join(c.Methods, ", "))
	}

	if len(d.ValidationRules) > 0 {
		b.WriteString("### Validation Rules\n\n")
		for _, class := range sortedKeys(d.ValidationRules) {
			fmt.Fprintf(b, "- **%s**\n", shortName(class))
			if rules := d.ValidationRules[class]; len(rules) > 0 {
				encoded, _ := json.Marshal(rules)
				fmt.Fprintf(b, "  - Rules: %s\n", encoded)
			}
			b.WriteString("\n")
		}
	}
}

func writeRouteGroup(b *strings.Builder, g *laravel.ModuleGroup) {
	b.WriteString("### Routes\n\n")
	for _, r := range g.Routes {
		fmt.Fprintf(b, "- **%s** `%s`\n", r.Method, r.URI)
		fmt.Fprintf(b, "  - Handler: %s\n\n", r.Handler)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortName(class string) string {
	if i := strings.LastIndex(class, "\\"); i >= 0 {
		return class[i+1:]
	}
	return class
}
