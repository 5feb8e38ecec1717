package laravel

import (
	"os"
	"sort"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/VKCOM/php-parser/pkg/visitor/traverser"

	"github.com/codeWithUali/laradoc/internal/analyzer/php"
)

// analyzeProviders returns the provider classes below dir together with
// the abilities registered through Gate::define in any of them
func analyzeProviders(dir string) ([]ClassRecord, []string, error) {
	files, err := php.ParseDir(dir)
	if err != nil {
		return nil, nil, err
	}

	providers := []ClassRecord{}
	gates := []string{}
	for _, f := range files {
		for _, class := range f.Classes {
			providers = append(providers, newClassRecord(class))
		}
		gates = append(gates, ExtractGates(f.Root)...)
	}
	return providers, gates, nil
}

// ExtractGates returns the ability names of every Gate::define call in a
// file, in source order
func ExtractGates(root ast.Vertex) []string {
	if root == nil {
		return nil
	}
	collector := &gateCollector{}
	traverser.NewTraverser(collector).Traverse(root)
	return collector.gates
}

type gateCollector struct {
	visitor.Null
	gates []string
}

func (v *gateCollector) ExprStaticCall(n *ast.ExprStaticCall) {
	if php.Basename(php.NameOf(n.Class)) != "Gate" || php.Identifier(n.Call) != "define" {
		return
	}
	if ability := php.StringValue(php.ArgExpr(n.Args, 0)); ability != "" {
		v.gates = append(v.gates, ability)
	}
}

// analyzeRequests returns the form request classes below dir and the rules
// each one declares in rules()
func analyzeRequests(dir string) (map[string]map[string]string, error) {
	classes, err := loadClasses(dir)
	if err != nil {
		return nil, err
	}

	rules := make(map[string]map[string]string)
	for _, class := range classes {
		method, ok := class.Method("rules")
		if !ok {
			rules[class.FullName] = map[string]string{}
			continue
		}
		classRules := php.StringMap(php.ReturnedExpr(method.Node))
		if classRules == nil {
			classRules = map[string]string{}
		}
		rules[class.FullName] = classRules
	}
	return rules, nil
}

// MiddlewareAliases reads the alias map of the HTTP kernel
// ($middlewareAliases or the older $routeMiddleware) and of a Laravel 11
// bootstrap/app.php ($middleware->alias([...])). Values are fully
// qualified class names.
func MiddlewareAliases(kernelPath, bootstrapPath string) map[string]string {
	aliases := make(map[string]string)

	if _, err := os.Stat(kernelPath); err == nil {
		if file, err := php.ParseFile(kernelPath); err == nil {
			for _, class := range file.Classes {
				for _, prop := range []string{"routeMiddleware", "middlewareAliases"} {
					p, ok := class.Property(prop)
					if !ok {
						continue
					}
					for alias, target := range php.StringMap(p.Default) {
						aliases[alias] = resolveClassName(class, target)
					}
				}
			}
		}
	}

	if _, err := os.Stat(bootstrapPath); err == nil {
		if file, err := php.ParseFile(bootstrapPath); err == nil {
			collector := &aliasCollector{aliases: aliases, imports: fileImports(file)}
			traverser.NewTraverser(collector).Traverse(file.Root)
		}
	}

	return aliases
}

type aliasCollector struct {
	visitor.Null
	aliases map[string]string
	imports map[string]string
}

func (v *aliasCollector) ExprMethodCall(n *ast.ExprMethodCall) {
	if php.Identifier(n.Method) != "alias" {
		return
	}
	for alias, target := range php.StringMap(php.ArgExpr(n.Args, 0)) {
		if full, ok := v.imports[target]; ok {
			target = full
		}
		v.aliases[alias] = strings.TrimPrefix(target, "\\")
	}
}

// fileImports collects `use` statements of a file without classes
func fileImports(file *php.File) map[string]string {
	imports := make(map[string]string)
	root, ok := file.Root.(*ast.Root)
	if !ok {
		return imports
	}
	for _, stmt := range root.Stmts {
		list, ok := stmt.(*ast.StmtUseList)
		if !ok {
			continue
		}
		for _, use := range list.Uses {
			u, ok := use.(*ast.StmtUse)
			if !ok {
				continue
			}
			name := strings.TrimPrefix(php.NameOf(u.Use), "\\")
			alias := php.Identifier(u.Alias)
			if alias == "" {
				alias = php.Basename(name)
			}
			imports[alias] = name
		}
	}
	return imports
}

// applyMiddlewareAliases sets the alias of every middleware registered in
// the kernel
func applyMiddlewareAliases(middleware []ClassRecord, aliases map[string]string) {
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)

	for i := range middleware {
		for _, alias := range names {
			if aliases[alias] == middleware[i].Name {
				middleware[i].Alias = alias
				break
			}
		}
	}
}
