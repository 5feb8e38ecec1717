package laravel

import (
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/codeWithUali/laradoc/internal/analyzer/php"
)

// relationshipMethods are the Eloquent builders recognised as relationships
var relationshipMethods = map[string]bool{
	"hasOne":         true,
	"hasMany":        true,
	"belongsTo":      true,
	"belongsToMany":  true,
	"hasManyThrough": true,
	"hasOneThrough":  true,
	"morphTo":        true,
	"morphOne":       true,
	"morphMany":      true,
	"morphToMany":    true,
	"morphedByMany":  true,
}

// analyzeModels extracts Eloquent features from every class below dir
func analyzeModels(dir string) ([]Model, error) {
	classes, err := loadClasses(dir)
	if err != nil {
		return nil, err
	}

	models := make([]Model, 0, len(classes))
	for _, class := range classes {
		if class.IsAbstract {
			continue
		}
		models = append(models, extractModel(class))
	}
	return models, nil
}

// extractModel extracts Eloquent-specific features from a class
func extractModel(class php.ClassInfo) Model {
	model := Model{
		ClassRecord:   newClassRecord(class),
		Fillable:      stringArrayProperty(class, "fillable"),
		Hidden:        stringArrayProperty(class, "hidden"),
		Casts:         extractCasts(class),
		Relationships: extractRelationships(class),
		SoftDeletes:   usesSoftDeletes(class),
	}

	model.Table = stringProperty(class, "table")
	if model.Table == "" {
		model.Table = DefaultTableName(class.Name)
	}

	return model
}

// DefaultTableName applies the Eloquent naming convention: the snake_case
// plural of the class name (UserProfile -> user_profiles)
func DefaultTableName(className string) string {
	return inflect.Pluralize(inflect.Underscore(className))
}

// usesSoftDeletes checks if the model uses the SoftDeletes trait
func usesSoftDeletes(class php.ClassInfo) bool {
	for _, trait := range class.Uses {
		if strings.Contains(trait, "SoftDeletes") {
			return true
		}
	}
	return false
}

func stringArrayProperty(class php.ClassInfo, name string) []string {
	prop, ok := class.Property(name)
	if !ok {
		return []string{}
	}
	values := php.StringList(prop.Default)
	if values == nil {
		return []string{}
	}
	return values
}

func stringProperty(class php.ClassInfo, name string) string {
	prop, ok := class.Property(name)
	if !ok {
		return ""
	}
	return php.StringValue(prop.Default)
}

// extractCasts reads the $casts property, merged with the array returned by
// a casts() method (Laravel 11 style). The method wins on conflicts.
func extractCasts(class php.ClassInfo) map[string]string {
	casts := make(map[string]string)

	if prop, ok := class.Property("casts"); ok {
		for k, v := range php.StringMap(prop.Default) {
			casts[k] = v
		}
	}
	if method, ok := class.Method("casts"); ok {
		for k, v := range php.StringMap(php.ReturnedExpr(method.Node)) {
			casts[k] = v
		}
	}

	return casts
}

// extractRelationships detects relationship methods (hasOne, hasMany,
// belongsTo, etc.)
func extractRelationships(class php.ClassInfo) []Relationship {
	relationships := []Relationship{}

	for _, method := range class.Methods {
		for _, call := range php.MethodCalls(method.Node) {
			if call.Object != "this" || !relationshipMethods[call.Method] {
				continue
			}

			rel := Relationship{
				Method: method.Name,
				Type:   call.Method,
			}
			// morphTo takes the morph name, not a class
			if len(call.Args) > 0 && call.Method != "morphTo" {
				rel.Related = resolveClassName(class, call.Args[0])
			}
			if len(call.Args) > 1 && call.Method != "morphTo" {
				rel.ForeignKey = call.Args[1]
			}
			relationships = append(relationships, rel)
			break
		}
	}

	return relationships
}

// resolveClassName expands a short class name using the imports of the
// enclosing file, falling back to the class namespace
func resolveClassName(class php.ClassInfo, name string) string {
	name = strings.TrimPrefix(name, "\\")
	if name == "" || strings.Contains(name, "\\") {
		return name
	}
	if full, ok := class.Imports[name]; ok {
		return strings.TrimPrefix(full, "\\")
	}
	if class.Namespace != "" {
		return class.Namespace + "\\" + name
	}
	return name
}
