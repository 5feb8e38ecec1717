package search

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/codeWithUali/laradoc/internal/docs"
)

var headingRe = regexp.MustCompile(`^#{1,6}\s+(.+)$`)

// Section is a heading with the lines below it up to the next heading
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ExtractSections splits Markdown on ATX headings. Text before the first
// heading is dropped and repeated headings produce separate sections.
func ExtractSections(markdown string) []Section {
	sections := []Section{}

	var (
		current *Section
		body    strings.Builder
	)
	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(body.String())
			sections = append(sections, *current)
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &Section{Title: strings.TrimSpace(m[1])}
			body.Reset()
			body.WriteString(line)
			body.WriteString("\n")
			continue
		}
		if current != nil {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	flush()

	return sections
}

// BuildDocuments turns documentation into index documents: one per module
// plus one per section, section ids numbered from 1 within the module
func BuildDocuments(doc *docs.Documentation) []Document {
	var out []Document
	for _, entry := range doc.Entries {
		out = append(out, Document{
			ID:          entry.Key,
			Title:       entry.Title,
			Content:     entry.Content,
			Description: entry.Description,
			Module:      entry.Key,
			Type:        TypeDocumentation,
		})

		for i, section := range ExtractSections(entry.Content) {
			out = append(out, Document{
				ID:      fmt.Sprintf("%s_%d", entry.Key, i+1),
				Title:   section.Title,
				Content: section.Content,
				Module:  entry.Key,
				Type:    TypeSection,
				Section: section.Title,
			})
		}
	}
	return out
}

// Excerpt returns about length characters of content around the first
// case-insensitive occurrence of query, marking cut ends with "..."
func Excerpt(content, query string, length int) string {
	if length <= 0 {
		length = 200
	}

	runes := []rune(content)
	if len(runes) <= length {
		return content
	}

	pos := -1
	if query != "" {
		if i := strings.Index(strings.ToLower(content), strings.ToLower(query)); i >= 0 {
			pos = utf8.RuneCountInString(strings.ToLower(content)[:i])
		}
	}
	if pos < 0 {
		return string(runes[:length]) + "..."
	}

	start := pos - length/2
	if start < 0 {
		start = 0
	}
	end := start + length
	if end > len(runes) {
		end = len(runes)
	}

	excerpt := string(runes[start:end])
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if end < len(runes) {
		excerpt += "..."
	}
	return excerpt
}

// Highlight wraps every case-insensitive occurrence of each query word in
// text with mark
func Highlight(text, query string, mark func(string) string) string {
	for _, word := range strings.Fields(query) {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(word))
		if err != nil {
			continue
		}
		text = re.ReplaceAllStringFunc(text, mark)
	}
	return text
}
