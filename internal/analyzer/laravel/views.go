package laravel

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeWithUali/laradoc/internal/analyzer/php"
)

var (
	extendsRe = regexp.MustCompile(`@extends\(\s*['"]([^'"]+)['"]`)
	sectionRe = regexp.MustCompile(`@section\(\s*['"]([^'"]+)['"]`)
	includeRe = regexp.MustCompile(`@include(?:If|When|Unless|First)?\(\s*(?:[^,'"]*,\s*)?['"]([^'"]+)['"]`)
)

// analyzeViews inspects every Blade template below dir
func analyzeViews(dir string) ([]View, error) {
	paths, err := php.ListFiles(dir, ".blade.php")
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("⚠️  Skipping view %s: %v", path, err)
			continue
		}

		name, err := filepath.Rel(dir, path)
		if err != nil {
			name = filepath.Base(path)
		}

		view := ParseBlade(content)
		view.Name = filepath.ToSlash(name)
		view.Path = path
		view.Size = int64(len(content))
		views = append(views, view)
	}
	return views, nil
}

// ParseBlade extracts components and layout directives from a Blade
// template. Components are the unique <x-...> and <livewire:...> tags in
// order of appearance.
func ParseBlade(content []byte) View {
	view := View{
		Components: bladeComponents(content),
		Sections:   matchAll(sectionRe, content),
		Includes:   matchAll(includeRe, content),
	}
	if m := extendsRe.FindSubmatch(content); m != nil {
		view.Extends = string(m[1])
	}
	return view
}

func bladeComponents(content []byte) []string {
	components := []string{}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return components
	}

	seen := make(map[string]bool)
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if !strings.HasPrefix(name, "x-") && !strings.HasPrefix(name, "livewire:") {
			return
		}
		if !seen[name] {
			seen[name] = true
			components = append(components, name)
		}
	})
	return components
}

// matchAll returns the unique first capture group of every match, sorted
func matchAll(re *regexp.Regexp, content []byte) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range re.FindAllSubmatch(content, -1) {
		s := string(m[1])
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
