package laravel

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/codeWithUali/laradoc/internal/analyzer/php"
)

// Defaults used when composer.json does not provide a value
const (
	DefaultProjectName    = "Laravel Application"
	DefaultProjectVersion = "1.0.0"
	DefaultEnvironment    = "production"
)

type composerJSON struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Version     string            `json:"version"`
	Require     map[string]string `json:"require"`
}

type composerLock struct {
	Packages []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"packages"`
}

// ReadProjectInfo reads composer.json, composer.lock and the project
// environment. Missing files leave the defaults in place.
func ReadProjectInfo(basePath string, env map[string]string) ProjectInfo {
	info := ProjectInfo{
		Name:        DefaultProjectName,
		Version:     DefaultProjectVersion,
		Environment: DefaultEnvironment,
	}

	var composer composerJSON
	if data, err := os.ReadFile(filepath.Join(basePath, "composer.json")); err == nil {
		if err := json.Unmarshal(data, &composer); err != nil {
			log.Printf("⚠️  Invalid composer.json: %v", err)
		}
	}
	if composer.Name != "" {
		info.Name = composer.Name
	}
	info.Description = composer.Description
	if composer.Version != "" {
		info.Version = composer.Version
	}
	info.PHPVersion = composer.Require["php"]
	info.LaravelVersion = composer.Require["laravel/framework"]

	if data, err := os.ReadFile(filepath.Join(basePath, "composer.lock")); err == nil {
		var lock composerLock
		if err := json.Unmarshal(data, &lock); err == nil {
			for _, pkg := range lock.Packages {
				if pkg.Name == "laravel/framework" {
					info.LaravelVersion = strings.TrimPrefix(pkg.Version, "v")
					break
				}
			}
		}
	}

	if appEnv := env["APP_ENV"]; appEnv != "" {
		info.Environment = appEnv
	}

	return info
}

// ReadAuthConfig evaluates config/auth.php as a static array. env() calls
// resolve against the project environment, then their default argument.
func ReadAuthConfig(path string, env map[string]string) AuthSnapshot {
	snapshot := AuthSnapshot{
		Defaults:  map[string]interface{}{},
		Guards:    map[string]interface{}{},
		Providers: map[string]interface{}{},
		Passwords: map[string]interface{}{},
	}

	if _, err := os.Stat(path); err != nil {
		return snapshot
	}
	file, err := php.ParseFile(path)
	if err != nil {
		log.Printf("⚠️  Skipping auth config %s: %v", path, err)
		return snapshot
	}

	value, ok := php.Evaluate(php.FileReturnedExpr(file.Root), envResolver(env)).(map[string]interface{})
	if !ok {
		return snapshot
	}

	section := func(key string) map[string]interface{} {
		if m, ok := value[key].(map[string]interface{}); ok {
			return m
		}
		return map[string]interface{}{}
	}
	snapshot.Defaults = section("defaults")
	snapshot.Guards = section("guards")
	snapshot.Providers = section("providers")
	snapshot.Passwords = section("passwords")
	return snapshot
}

// envResolver resolves env('KEY', default) the way Laravel does for the
// common literal cases
func envResolver(env map[string]string) php.CallResolver {
	var resolve php.CallResolver
	resolve = func(function string, args []ast.Vertex) (interface{}, bool) {
		if function != "env" {
			return nil, false
		}
		key := php.StringValue(php.ArgExpr(args, 0))
		if value, ok := env[key]; ok {
			switch strings.ToLower(value) {
			case "true", "(true)":
				return true, true
			case "false", "(false)":
				return false, true
			case "null", "(null)":
				return nil, true
			}
			return value, true
		}
		return php.Evaluate(php.ArgExpr(args, 1), resolve), true
	}
	return resolve
}
