package laravel

import "github.com/codeWithUali/laradoc/internal/analyzer/schema"

// ProjectAnalysis is the structured picture of a Laravel application
// produced by ProjectAnalyzer.Analyze
type ProjectAnalysis struct {
	ProjectInfo       ProjectInfo                  `json:"project_info"`
	Routes            map[string][]Route           `json:"routes"` // route file name -> routes
	Controllers       []ClassRecord                `json:"controllers"`
	Models            []Model                      `json:"models"`
	Migrations        []Migration                  `json:"migrations"`
	Views             []View                       `json:"views"`
	Middleware        []ClassRecord                `json:"middleware"`
	Providers         []ClassRecord                `json:"providers"`
	Policies          []ClassRecord                `json:"policies"`
	Gates             []string                     `json:"gates"`
	ValidationRules   map[string]map[string]string `json:"validation_rules"` // request class -> field -> rule
	DatabaseStructure map[string]schema.Table      `json:"database_structure"`
	APIEndpoints      []Route                      `json:"api_endpoints"`
	Authentication    AuthSnapshot                 `json:"authentication"`
	Modules           map[string]*ModuleGroup      `json:"modules"` // URI module -> routes
}

// ProjectInfo holds the application's identity
type ProjectInfo struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Version        string `json:"version"`
	LaravelVersion string `json:"laravel_version"`
	PHPVersion     string `json:"php_version"`
	Environment    string `json:"environment"`
}

// Route represents a Laravel route definition
type Route struct {
	Method     string   `json:"method"`  // GET, POST, PUT, DELETE, etc.
	URI        string   `json:"uri"`     // Route pattern (e.g., "/users/{id}")
	Handler    string   `json:"handler"` // UserController@index, Closure, ...
	Name       string   `json:"name,omitempty"`
	Middleware []string `json:"middleware"`
	File       string   `json:"file"` // web.php, api.php, ...
	Line       int      `json:"line,omitempty"`
}

// ClassRecord describes a class found under one of the application
// directories
type ClassRecord struct {
	Name       string   `json:"name"` // Fully qualified name
	ShortName  string   `json:"short_name"`
	Namespace  string   `json:"namespace"`
	File       string   `json:"file"`
	Methods    []string `json:"methods"`
	DocComment string   `json:"doc_comment,omitempty"`
	Parent     string   `json:"parent,omitempty"`
	Alias      string   `json:"alias,omitempty"` // Middleware alias in the HTTP kernel
}

// Model represents an Eloquent model
type Model struct {
	ClassRecord
	Table         string            `json:"table"`
	Fillable      []string          `json:"fillable"`
	Hidden        []string          `json:"hidden"`
	Casts         map[string]string `json:"casts"`
	Relationships []Relationship    `json:"relationships"`
	SoftDeletes   bool              `json:"soft_deletes"`
}

// Relationship represents a relationship method of a model
type Relationship struct {
	Method     string `json:"method"`  // Method name (e.g., "posts")
	Type       string `json:"type"`    // hasOne, hasMany, belongsTo, ...
	Related    string `json:"related"` // Related model class
	ForeignKey string `json:"foreign_key,omitempty"`
}

// Migration represents a database migration file
type Migration struct {
	File       string              `json:"file"`
	ClassName  string              `json:"class"`
	Table      string              `json:"table"`
	Operations map[string][]string `json:"operations"` // create, table, drop -> tables
	Columns    []MigrationColumn   `json:"columns,omitempty"`
	Timestamp  string              `json:"timestamp"`
}

// MigrationColumn is a column declared through the schema builder
type MigrationColumn struct {
	Table string `json:"table"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// View represents a Blade template
type View struct {
	Name       string   `json:"name"` // Relative to resources/views
	Path       string   `json:"path"`
	Size       int64    `json:"size"`
	Components []string `json:"components"`
	Extends    string   `json:"extends,omitempty"`
	Sections   []string `json:"sections,omitempty"`
	Includes   []string `json:"includes,omitempty"`
}

// AuthSnapshot mirrors the sections of config/auth.php
type AuthSnapshot struct {
	Defaults  map[string]interface{} `json:"defaults"`
	Guards    map[string]interface{} `json:"guards"`
	Providers map[string]interface{} `json:"providers"`
	Passwords map[string]interface{} `json:"passwords"`
}

// ModuleGroup collects the routes whose URI starts with the same segment
type ModuleGroup struct {
	Name        string   `json:"name"`
	Routes      []Route  `json:"routes"`
	Controllers []string `json:"controllers"`
}

// AllRoutes returns the routes of every route file, files in the order
// given
func (a *ProjectAnalysis) AllRoutes(files []string) []Route {
	var routes []Route
	for _, f := range files {
		routes = append(routes, a.Routes[f]...)
	}
	return routes
}

// RouteCount returns the number of routes across all files
func (a *ProjectAnalysis) RouteCount() int {
	n := 0
	for _, routes := range a.Routes {
		n += len(routes)
	}
	return n
}
