package laravel

import (
	"strings"
)

// MainModule groups routes whose URI has no path segment
const MainModule = "main"

// IdentifyModuleFromRoute returns the first non-empty path segment of a
// route URI: "/api/users/1" -> "api", "/" -> "main"
func IdentifyModuleFromRoute(uri string) string {
	for _, segment := range strings.Split(strings.Trim(uri, "/"), "/") {
		if segment != "" {
			return segment
		}
	}
	return MainModule
}

// IdentifyModules groups routes by URI module. Route files are walked in
// the given order so the grouping is stable.
func IdentifyModules(routes map[string][]Route, files []string) map[string]*ModuleGroup {
	modules := make(map[string]*ModuleGroup)

	for _, file := range files {
		for _, route := range routes[file] {
			key := IdentifyModuleFromRoute(route.URI)
			group, ok := modules[key]
			if !ok {
				group = &ModuleGroup{Name: key, Routes: []Route{}, Controllers: []string{}}
				modules[key] = group
			}
			group.Routes = append(group.Routes, route)

			if controller := handlerController(route.Handler); controller != "" && !contains(group.Controllers, controller) {
				group.Controllers = append(group.Controllers, controller)
			}
		}
	}

	return modules
}

// handlerController returns the controller part of a handler, or "" for
// closures and view or redirect routes
func handlerController(handler string) string {
	if handler == "" || handler == "Closure" || strings.HasPrefix(handler, "view:") || strings.HasPrefix(handler, "redirect:") {
		return ""
	}
	controller, _, _ := strings.Cut(handler, "@")
	return controller
}
