package php

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/conf"
	"github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/version"
	"github.com/VKCOM/php-parser/pkg/visitor/traverser"
)

// maxReportedErrors caps how many parser errors are kept per file
const maxReportedErrors = 3

// Parse parses PHP source code and returns the AST. Syntax errors the
// parser can recover from are returned alongside the tree.
func Parse(content []byte) (ast.Vertex, []*errors.Error, error) {
	var parserErrors []*errors.Error

	rootNode, err := parser.Parse(content, conf.Config{
		Version: &version.Version{Major: 8, Minor: 0},
		ErrorHandlerFunc: func(e *errors.Error) {
			parserErrors = append(parserErrors, e)
		},
	})
	if err != nil {
		return nil, parserErrors, err
	}

	return rootNode, parserErrors, nil
}

// ParseFile reads and parses a single PHP file, collecting its classes
func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseSource(path, content)
}

// ParseSource parses PHP source that was already read from path
func ParseSource(path string, content []byte) (*File, error) {
	rootNode, parserErrors, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PHP in %s: %w", path, err)
	}
	if rootNode == nil {
		return nil, fmt.Errorf("failed to parse PHP in %s: empty tree", path)
	}

	file := &File{Path: path, Root: rootNode}
	for i, e := range parserErrors {
		if i >= maxReportedErrors {
			file.ParseErrors = append(file.ParseErrors, fmt.Sprintf("... and %d more", len(parserErrors)-maxReportedErrors))
			break
		}
		file.ParseErrors = append(file.ParseErrors, e.String())
	}

	collector := &symbolCollector{file: file}
	traverser.NewTraverser(collector).Traverse(rootNode)

	return file, nil
}

// ParseDir parses every *.php file below dir in lexical order. Files that
// cannot be read or parsed are logged and skipped. A missing directory
// yields no files and no error.
func ParseDir(dir string) ([]*File, error) {
	paths, err := ListFiles(dir, ".php")
	if err != nil {
		return nil, err
	}

	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		f, err := ParseFile(path)
		if err != nil {
			log.Printf("⚠️  Skipping %s: %v", path, err)
			continue
		}
		if len(f.ParseErrors) > 0 {
			log.Printf("⚠️  PHP parser warnings in %s: %s", path, strings.Join(f.ParseErrors, "; "))
		}
		files = append(files, f)
	}
	return files, nil
}

// ListFiles returns all files below dir whose name ends with suffix, sorted.
// Hidden directories, vendor and node_modules are skipped.
func ListFiles(dir, suffix string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error accessing path %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			base := d.Name()
			if path != dir && (base == "vendor" || base == "node_modules" || strings.HasPrefix(base, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}
