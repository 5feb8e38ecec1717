package laravel

// Summary counts what an analysis found
type Summary struct {
	Name           string `json:"name"`
	LaravelVersion string `json:"laravel_version"`
	PHPVersion     string `json:"php_version"`
	Routes         int    `json:"routes"`
	APIEndpoints   int    `json:"api_endpoints"`
	Controllers    int    `json:"controllers"`
	Models         int    `json:"models"`
	Migrations     int    `json:"migrations"`
	Views          int    `json:"views"`
	Middleware     int    `json:"middleware"`
	Providers      int    `json:"providers"`
	Policies       int    `json:"policies"`
	Gates          int    `json:"gates"`
	FormRequests   int    `json:"form_requests"`
	Tables         int    `json:"tables"`
	Modules        int    `json:"modules"`
}

// Summarize counts the analysis sections
func Summarize(a *ProjectAnalysis) Summary {
	routes := 0
	for _, list := range a.Routes {
		routes += len(list)
	}

	return Summary{
		Name:           a.ProjectInfo.Name,
		LaravelVersion: a.ProjectInfo.LaravelVersion,
		PHPVersion:     a.ProjectInfo.PHPVersion,
		Routes:         routes,
		APIEndpoints:   len(a.APIEndpoints),
		Controllers:    len(a.Controllers),
		Models:         len(a.Models),
		Migrations:     len(a.Migrations),
		Views:          len(a.Views),
		Middleware:     len(a.Middleware),
		Providers:      len(a.Providers),
		Policies:       len(a.Policies),
		Gates:          len(a.Gates),
		FormRequests:   len(a.ValidationRules),
		Tables:         len(a.DatabaseStructure),
		Modules:        len(a.Modules),
	}
}

// Rows returns label/count pairs in display order
func (s Summary) Rows() [][2]interface{} {
	return [][2]interface{}{
		{"Routes", s.Routes},
		{"API Endpoints", s.APIEndpoints},
		{"Controllers", s.Controllers},
		{"Models", s.Models},
		{"Migrations", s.Migrations},
		{"Views", s.Views},
		{"Middleware", s.Middleware},
		{"Providers", s.Providers},
		{"Policies", s.Policies},
		{"Gates", s.Gates},
		{"Form Requests", s.FormRequests},
		{"Database Tables", s.Tables},
		{"Route Modules", s.Modules},
	}
}
