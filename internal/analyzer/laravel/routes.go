package laravel

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/VKCOM/php-parser/pkg/visitor/traverser"
	"github.com/go-openapi/inflect"

	"github.com/codeWithUali/laradoc/internal/analyzer/php"
)

// resourceAction is one of the routes registered by Route::resource
type resourceAction struct {
	name   string
	method string
	suffix string // appended to the resource URI
	api    bool   // also registered by Route::apiResource
}

var resourceActions = []resourceAction{
	{name: "index", method: "GET", api: true},
	{name: "create", method: "GET", suffix: "/create"},
	{name: "store", method: "POST", api: true},
	{name: "show", method: "GET", suffix: "/{%s}", api: true},
	{name: "edit", method: "GET", suffix: "/{%s}/edit"},
	{name: "update", method: "PUT/PATCH", suffix: "/{%s}", api: true},
	{name: "destroy", method: "DELETE", suffix: "/{%s}", api: true},
}

// AnalyzeRoutes parses the given route files below routesDir. The result is
// keyed by file name; files that do not exist are left out.
func AnalyzeRoutes(routesDir string, files []string) map[string][]Route {
	routes := make(map[string][]Route)

	for _, name := range files {
		path := filepath.Join(routesDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		fileRoutes, err := ParseRouteFile(path)
		if err != nil {
			log.Printf("⚠️  Error analyzing route file %s: %v", path, err)
			continue
		}
		routes[name] = fileRoutes
	}

	return routes
}

// ParseRouteFile extracts every route registered through the Route facade
// in a single file
func ParseRouteFile(path string) ([]Route, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseRoutes(filepath.Base(path), content)
}

// ParseRoutes extracts routes from route file source. fileName is recorded
// on every route.
func ParseRoutes(fileName string, content []byte) ([]Route, error) {
	root, _, err := php.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	if root == nil {
		return []Route{}, nil
	}

	collector := &routeCollector{
		file:   fileName,
		routes: []Route{},
		seen:   make(map[*ast.ExprStaticCall]bool),
	}
	traverser.NewTraverser(collector).Traverse(root)

	return collector.routes, nil
}

// routeCollector visits the AST to find Route definitions. Group prefixes and
// group middleware are not applied to the routes declared inside the group.
type routeCollector struct {
	visitor.Null
	file   string
	routes []Route

	// seen marks Route:: calls already handled as the root of a chain
	seen map[*ast.ExprStaticCall]bool
}

// chainLink is one call of a fluent chain: Route::middleware(...)->get(...)
type chainLink struct {
	method string
	args   []ast.Vertex
	line   int
}

// ExprMethodCall handles chains such as Route::get(...)->name('home').
// The outermost call of a chain is visited first, so the whole chain is
// unwound here and its root static call is marked as handled.
func (v *routeCollector) ExprMethodCall(n *ast.ExprMethodCall) {
	links, root := unwindChain(n)
	if root == nil || v.seen[root] {
		return
	}
	v.seen[root] = true
	v.collect(links)
}

// ExprStaticCall handles Route::get(), Route::post(), etc.
func (v *routeCollector) ExprStaticCall(n *ast.ExprStaticCall) {
	if !isRouteFacade(n.Class) || v.seen[n] {
		return
	}
	v.seen[n] = true
	v.collect([]chainLink{staticLink(n)})
}

func isRouteFacade(class ast.Vertex) bool {
	name := strings.TrimPrefix(php.NameOf(class), "\\")
	return name == "Route" || strings.HasSuffix(name, "\\Route")
}

func staticLink(n *ast.ExprStaticCall) chainLink {
	link := chainLink{method: php.Identifier(n.Call), args: n.Args}
	if n.Position != nil {
		link.line = n.Position.StartLine
	}
	return link
}

// unwindChain returns the links of a call chain in call order, starting
// with the Route:: static call. It returns a nil root when the chain does
// not start at the Route facade.
func unwindChain(n *ast.ExprMethodCall) ([]chainLink, *ast.ExprStaticCall) {
	var links []chainLink
	var expr ast.Vertex = n

	for {
		switch node := expr.(type) {
		case *ast.ExprMethodCall:
			link := chainLink{method: php.Identifier(node.Method), args: node.Args}
			if node.Position != nil {
				link.line = node.Position.StartLine
			}
			links = append([]chainLink{link}, links...)
			expr = node.Var
		case *ast.ExprStaticCall:
			if !isRouteFacade(node.Class) {
				return nil, nil
			}
			return append([]chainLink{staticLink(node)}, links...), node
		default:
			return nil, nil
		}
	}
}

// routeModifiers accumulates the fluent modifiers of a chain
type routeModifiers struct {
	middleware []string
	name       string
	prefix     string
	only       []string
	except     []string
}

// collect turns one chain into routes. The first HTTP verb link defines
// the route(s); every other link is read as a modifier.
func (v *routeCollector) collect(links []chainLink) {
	var mods routeModifiers
	var routes []Route
	defined := false

	for _, link := range links {
		if !defined {
			if r, ok := v.define(link); ok {
				routes = r
				defined = true
				continue
			}
		}

		switch link.method {
		case "middleware":
			mods.middleware = append(mods.middleware, argStrings(link.args)...)
		case "name", "as":
			mods.name += php.StringValue(php.ArgExpr(link.args, 0))
		case "prefix":
			mods.prefix = strings.Trim(php.StringValue(php.ArgExpr(link.args, 0)), "/")
		case "only":
			mods.only = argStrings(link.args)
		case "except":
			mods.except = argStrings(link.args)
		}
	}

	if !defined {
		return
	}

	for _, route := range routes {
		if !allowedAction(route, mods) {
			continue
		}
		if mods.prefix != "" {
			route.URI = "/" + mods.prefix + "/" + strings.TrimPrefix(route.URI, "/")
		}
		route.Middleware = append(route.Middleware, mods.middleware...)
		if mods.name != "" {
			if route.Name != "" {
				route.Name = mods.name + route.Name
			} else {
				route.Name = mods.name
			}
		}
		v.routes = append(v.routes, route)
	}
}

// define builds the route(s) registered by a verb link
func (v *routeCollector) define(link chainLink) ([]Route, bool) {
	args := link.args
	newRoute := func(method, uri, handler string) Route {
		return Route{
			Method:     method,
			URI:        uri,
			Handler:    handler,
			Middleware: []string{},
			File:       v.file,
			Line:       link.line,
		}
	}

	switch link.method {
	case "get", "post", "put", "patch", "delete", "options", "any":
		if len(args) < 1 {
			return nil, false
		}
		uri := php.StringValue(php.ArgExpr(args, 0))
		return []Route{newRoute(strings.ToUpper(link.method), uri, handlerText(php.ArgExpr(args, 1)))}, true

	case "match":
		if len(args) < 2 {
			return nil, false
		}
		uri := php.StringValue(php.ArgExpr(args, 1))
		handler := handlerText(php.ArgExpr(args, 2))
		var routes []Route
		for _, method := range php.StringList(php.ArgExpr(args, 0)) {
			routes = append(routes, newRoute(strings.ToUpper(method), uri, handler))
		}
		return routes, len(routes) > 0

	case "view":
		uri := php.StringValue(php.ArgExpr(args, 0))
		return []Route{newRoute("GET", uri, "view:"+php.StringValue(php.ArgExpr(args, 1)))}, true

	case "redirect", "permanentRedirect":
		uri := php.StringValue(php.ArgExpr(args, 0))
		return []Route{newRoute("ANY", uri, "redirect:"+php.StringValue(php.ArgExpr(args, 1)))}, true

	case "resource", "apiResource":
		resource := php.StringValue(php.ArgExpr(args, 0))
		controller := php.StringValue(php.ArgExpr(args, 1))
		if resource == "" || controller == "" {
			return nil, false
		}
		api := link.method == "apiResource"

		base := "/" + strings.Trim(resource, "/")
		segments := strings.Split(strings.Trim(resource, "/"), "/")
		param := inflect.Underscore(inflect.Singularize(segments[len(segments)-1]))
		routeName := strings.ReplaceAll(strings.Trim(resource, "/"), "/", ".")

		var routes []Route
		for _, action := range resourceActions {
			if api && !action.api {
				continue
			}
			uri := base
			if action.suffix != "" {
				uri += strings.ReplaceAll(action.suffix, "%s", param)
			}
			r := newRoute(action.method, uri, controller+"@"+action.name)
			r.Name = routeName + "." + action.name
			routes = append(routes, r)
		}
		return routes, true
	}

	return nil, false
}

// allowedAction applies ->only() and ->except() to resource routes
func allowedAction(route Route, mods routeModifiers) bool {
	_, action, ok := strings.Cut(route.Handler, "@")
	if !ok {
		return true
	}
	if len(mods.only) > 0 && !contains(mods.only, action) {
		return false
	}
	return !contains(mods.except, action)
}

// handlerText renders a route action in its textual form
func handlerText(expr ast.Vertex) string {
	switch n := expr.(type) {
	case nil:
		return ""
	case *ast.ExprClosure, *ast.ExprArrowFunction:
		return "Closure"
	case *ast.ExprArray:
		parts := php.StringList(n)
		switch len(parts) {
		case 0:
			return ""
		case 1:
			return parts[0]
		default:
			return parts[0] + "@" + parts[1]
		}
	}
	return php.StringValue(expr)
}

// argStrings flattens string and string-array arguments
func argStrings(args []ast.Vertex) []string {
	var out []string
	for i := range args {
		expr := php.ArgExpr(args, i)
		if list := php.StringList(expr); list != nil {
			out = append(out, list...)
			continue
		}
		if s := php.StringValue(expr); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
