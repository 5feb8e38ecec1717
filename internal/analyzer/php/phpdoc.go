package php

import (
	"regexp"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/token"
)

// PHPDocInfo contains parsed PHPDoc information
type PHPDocInfo struct {
	Raw         string
	Description string
	Params      []ParamDoc
	Returns     []ReturnDoc
	Throws      []string
	VarType     string
	Deprecated  string
}

// ParamDoc represents a @param tag
type ParamDoc struct {
	Name        string
	Type        string
	Description string
}

// ReturnDoc represents a @return tag
type ReturnDoc struct {
	Type        string
	Description string
}

var (
	paramTagRe  = regexp.MustCompile(`^@param\s+([^\s]+)\s+\$([^\s]+)(?:\s+(.*))?$`)
	returnTagRe = regexp.MustCompile(`^@return\s+([^\s]+)(?:\s+(.*))?$`)
	throwsTagRe = regexp.MustCompile(`^@throws\s+([^\s]+)(?:\s+(.*))?$`)
	varTagRe    = regexp.MustCompile(`^@var\s+([^\s]+)(?:\s+(.*))?$`)
)

// ParseDoc parses a raw /** ... */ comment
func ParseDoc(docComment string) *PHPDocInfo {
	doc := &PHPDocInfo{Raw: docComment}
	if docComment == "" {
		return doc
	}

	var description []string
	inDescription := true

	for _, line := range strings.Split(docComment, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "@") {
			inDescription = false
			parseTag(line, doc)
		} else if inDescription {
			description = append(description, line)
		}
	}

	doc.Description = strings.Join(description, " ")
	return doc
}

// parseTag parses a single PHPDoc tag
func parseTag(line string, doc *PHPDocInfo) {
	if m := paramTagRe.FindStringSubmatch(line); m != nil {
		doc.Params = append(doc.Params, ParamDoc{Type: m[1], Name: m[2], Description: strings.TrimSpace(m[3])})
		return
	}
	if m := returnTagRe.FindStringSubmatch(line); m != nil {
		doc.Returns = append(doc.Returns, ReturnDoc{Type: m[1], Description: strings.TrimSpace(m[2])})
		return
	}
	if m := throwsTagRe.FindStringSubmatch(line); m != nil {
		throw := m[1]
		if m[2] != "" {
			throw += " - " + strings.TrimSpace(m[2])
		}
		doc.Throws = append(doc.Throws, throw)
		return
	}
	if m := varTagRe.FindStringSubmatch(line); m != nil {
		doc.VarType = m[1]
		return
	}
	if strings.HasPrefix(line, "@deprecated") {
		doc.Deprecated = strings.TrimSpace(strings.TrimPrefix(line, "@deprecated"))
	}
}

// docFromToken reads the doc comment floating before a token
func docFromToken(tok *token.Token) *PHPDocInfo {
	if tok == nil {
		return &PHPDocInfo{}
	}
	for _, ff := range tok.FreeFloating {
		if ff.ID.String() == "T_DOC_COMMENT" {
			return ParseDoc(string(ff.Value))
		}
	}
	return &PHPDocInfo{}
}

// docFromModifiers reads the doc comment attached to the first modifier
// that carries one
func docFromModifiers(modifiers []ast.Vertex) *PHPDocInfo {
	for _, mod := range modifiers {
		if identifier, ok := mod.(*ast.Identifier); ok && identifier.IdentifierTkn != nil {
			if doc := docFromToken(identifier.IdentifierTkn); doc.Raw != "" {
				return doc
			}
		}
	}
	return &PHPDocInfo{}
}
