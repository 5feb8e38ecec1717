package docs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	readmeFile = "README.md"
	dataFile   = "data.json"
)

// moduleKeyRe also bounds search document ids, which allow only letters,
// digits, '_' and '-'
var moduleKeyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// UpdateResult reports a documentation update
type UpdateResult struct {
	Success bool   `json:"success"`
	Module  string `json:"module"`
	Message string `json:"message"`
}

// Store reads and writes documentation files under one output directory
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the output directory
func (s *Store) Dir() string {
	return s.dir
}

// ValidateModule checks that key can be used as a file name
func ValidateModule(key string) error {
	if !moduleKeyRe.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidModule, key)
	}
	if strings.EqualFold(key, "readme") || strings.EqualFold(key, "data") {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidModule, key)
	}
	return nil
}

// Save writes every entry, the README table of contents and the data.json
// snapshot. Existing files with the same names are overwritten.
func (s *Store) Save(doc *Documentation) error {
	for _, e := range doc.Entries {
		if err := ValidateModule(e.Key); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := s.write(readmeFile, []byte(s.readme(doc))); err != nil {
		return err
	}

	for _, e := range doc.Entries {
		if err := s.write(e.Key+".md", []byte(e.Content)); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode documentation data: %w", err)
	}
	return s.write(dataFile, data)
}

func (s *Store) readme(doc *Documentation) string {
	var b strings.Builder
	b.WriteString("# Laravel Project Documentation\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", s.now().Format("2006-01-02 15:04:05"))
	for _, e := range doc.Entries {
		fmt.Fprintf(&b, "## [%s](%s.md)\n\n", e.Title, e.Key)
		fmt.Fprintf(&b, "%s\n\n", e.Description)
	}
	return b.String()
}

// Get returns the Markdown of module. An empty module returns the README.
func (s *Store) Get(module string) (string, error) {
	name := readmeFile
	if module != "" {
		if err := ValidateModule(module); err != nil {
			return "", err
		}
		name = module + ".md"
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// Update overwrites the Markdown of module with content
func (s *Store) Update(module, content string) (UpdateResult, error) {
	if err := ValidateModule(module); err != nil {
		return UpdateResult{Module: module}, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return UpdateResult{Module: module}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := s.write(module+".md", []byte(content)); err != nil {
		return UpdateResult{Module: module}, err
	}

	return UpdateResult{
		Success: true,
		Module:  module,
		Message: "Documentation updated successfully",
	}, nil
}

// List returns the module keys that have a Markdown file, sorted
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	modules := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".md" || name == readmeFile {
			continue
		}
		modules = append(modules, strings.TrimSuffix(name, ".md"))
	}
	sort.Strings(modules)
	return modules, nil
}

// Load rebuilds the documentation from disk. Titles, descriptions and data
// come from data.json when present; content always comes from the Markdown
// files so manual edits are picked up.
func (s *Store) Load() (*Documentation, error) {
	doc := &Documentation{}

	data, err := os.ReadFile(filepath.Join(s.dir, dataFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", dataFile, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", dataFile, err)
	}

	modules, err := s.List()
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(modules))
	for _, key := range modules {
		present[key] = true
		if _, ok := doc.Entry(key); !ok {
			doc.Add(Entry{Key: key, Title: titleFromKey(key)})
		}
	}

	loaded := doc.Entries[:0]
	for _, e := range doc.Entries {
		if !present[e.Key] {
			continue
		}
		content, err := s.Get(e.Key)
		if err != nil {
			return nil, err
		}
		e.Content = content
		loaded = append(loaded, e)
	}
	doc.Entries = loaded

	return doc, nil
}

func (s *Store) write(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
