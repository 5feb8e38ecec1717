package laravel

import (
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/VKCOM/php-parser/pkg/visitor/traverser"

	"github.com/codeWithUali/laradoc/internal/analyzer/php"
)

var migrationTimestampRe = regexp.MustCompile(`^(\d{4}_\d{2}_\d{2}_\d{6})_`)

// blueprintCommands are Blueprint calls that do not declare a column
var blueprintCommands = map[string]bool{
	"foreign": true, "index": true, "unique": true, "primary": true,
	"fullText": true, "spatialIndex": true, "engine": true, "charset": true,
	"collation": true, "comment": true, "temporary": true,
	"dropColumn": true, "dropForeign": true, "dropIndex": true, "dropUnique": true,
	"dropPrimary": true, "renameColumn": true, "dropTimestamps": true,
	"dropSoftDeletes": true, "dropConstrainedForeignId": true, "renameIndex": true,
}

// implicitColumns are Blueprint helpers that add well-known columns
var implicitColumns = map[string][]MigrationColumn{
	"id":            {{Name: "id", Type: "id"}},
	"timestamps":    {{Name: "created_at", Type: "timestamp"}, {Name: "updated_at", Type: "timestamp"}},
	"timestampsTz":  {{Name: "created_at", Type: "timestampTz"}, {Name: "updated_at", Type: "timestampTz"}},
	"softDeletes":   {{Name: "deleted_at", Type: "timestamp"}},
	"softDeletesTz": {{Name: "deleted_at", Type: "timestampTz"}},
	"rememberToken": {{Name: "remember_token", Type: "string"}},
}

// analyzeMigrations parses every migration below dir
func analyzeMigrations(dir string) ([]Migration, error) {
	paths, err := php.ListFiles(dir, ".php")
	if err != nil {
		return nil, err
	}

	migrations := make([]Migration, 0, len(paths))
	for _, path := range paths {
		file, err := php.ParseFile(path)
		if err != nil {
			log.Printf("⚠️  Skipping migration %s: %v", path, err)
			continue
		}
		migrations = append(migrations, extractMigration(file))
	}
	return migrations, nil
}

// extractMigration reads the schema operations of one parsed migration
func extractMigration(file *php.File) Migration {
	name := filepath.Base(file.Path)
	migration := Migration{
		File:       name,
		Operations: map[string][]string{},
		Columns:    []MigrationColumn{},
		Timestamp:  MigrationTimestamp(name),
	}

	// Anonymous migrations (return new class extends Migration) have no name
	for _, class := range file.Classes {
		if php.Basename(class.Extends) == "Migration" {
			migration.ClassName = class.Name
			break
		}
	}

	collector := &schemaCollector{migration: &migration}
	traverser.NewTraverser(collector).Traverse(file.Root)

	return migration
}

// MigrationTimestamp returns the YYYY_MM_DD_HHMMSS prefix of a migration
// file name, or "" when it has none
func MigrationTimestamp(filename string) string {
	if m := migrationTimestampRe.FindStringSubmatch(filename); m != nil {
		return m[1]
	}
	return ""
}

// schemaCollector finds Schema:: calls and the columns declared in their
// blueprint closures
type schemaCollector struct {
	visitor.Null
	migration *Migration
}

// ExprStaticCall handles Schema::create(), Schema::table(), Schema::drop()
func (v *schemaCollector) ExprStaticCall(n *ast.ExprStaticCall) {
	if php.Basename(php.NameOf(n.Class)) != "Schema" {
		return
	}

	table := php.StringValue(php.ArgExpr(n.Args, 0))
	if table == "" {
		return
	}

	var op string
	switch php.Identifier(n.Call) {
	case "create":
		op = "create"
	case "table":
		op = "table"
	case "drop", "dropIfExists":
		op = "drop"
	case "rename":
		op = "rename"
	default:
		return
	}

	m := v.migration
	m.Operations[op] = append(m.Operations[op], table)
	if m.Table == "" && (op == "create" || op == "table") {
		m.Table = table
	}

	if op == "create" || op == "table" {
		m.Columns = append(m.Columns, blueprintColumns(table, php.ArgExpr(n.Args, 1))...)
	}
}

// blueprintColumns collects $table-><type>('name') calls of a blueprint
// closure
func blueprintColumns(table string, closure ast.Vertex) []MigrationColumn {
	var params []ast.Vertex
	var body []ast.Vertex
	switch fn := closure.(type) {
	case *ast.ExprClosure:
		params, body = fn.Params, fn.Stmts
	case *ast.ExprArrowFunction:
		params, body = fn.Params, []ast.Vertex{fn.Expr}
	default:
		return nil
	}
	if len(params) == 0 {
		return nil
	}
	param, ok := params[0].(*ast.Parameter)
	if !ok {
		return nil
	}

	collector := &columnCollector{table: table, variable: php.VariableName(param.Var)}
	for _, stmt := range body {
		traverser.NewTraverser(collector).Traverse(stmt)
	}
	return collector.columns
}

type columnCollector struct {
	visitor.Null
	table    string
	variable string
	columns  []MigrationColumn
}

// ExprMethodCall only looks at calls made directly on the blueprint
// variable; chained modifiers (->nullable()) are ignored
func (v *columnCollector) ExprMethodCall(n *ast.ExprMethodCall) {
	if php.VariableName(n.Var) != v.variable {
		return
	}

	method := php.Identifier(n.Method)
	if blueprintCommands[method] || strings.HasPrefix(method, "drop") {
		return
	}

	if name := php.StringValue(php.ArgExpr(n.Args, 0)); name != "" {
		v.columns = append(v.columns, MigrationColumn{Table: v.table, Name: name, Type: method})
		return
	}
	for _, col := range implicitColumns[method] {
		col.Table = v.table
		v.columns = append(v.columns, col)
	}
}
