package php

import (
	"github.com/VKCOM/php-parser/pkg/ast"
)

// File is the parsed form of one PHP source file
type File struct {
	Path      string      `json:"path"`
	Namespace string      `json:"namespace"`
	Classes   []ClassInfo `json:"classes"`

	// ParseErrors are recoverable syntax errors reported by the parser
	ParseErrors []string `json:"parse_errors,omitempty"`

	// Root is the AST of the whole file (not serialized)
	Root ast.Vertex `json:"-"`
}

// ClassInfo describes a PHP class declaration
type ClassInfo struct {
	Name        string            `json:"name"`
	Namespace   string            `json:"namespace"`
	FullName    string            `json:"full_name"`             // Fully qualified name (FQN)
	Description string            `json:"description,omitempty"` // PHPDoc summary
	DocComment  string            `json:"doc_comment,omitempty"` // Raw /** ... */ block
	Extends     string            `json:"extends,omitempty"`
	Implements  []string          `json:"implements,omitempty"`
	Uses        []string          `json:"uses,omitempty"` // Trait usage
	Methods     []MethodInfo      `json:"methods"`
	Properties  []PropertyInfo    `json:"properties"`
	IsAbstract  bool              `json:"is_abstract"`
	IsFinal     bool              `json:"is_final"`
	FilePath    string            `json:"file_path,omitempty"`
	StartLine   int               `json:"start_line,omitempty"`
	EndLine     int               `json:"end_line,omitempty"`
	Imports     map[string]string `json:"imports,omitempty"` // Map of alias -> full name

	Node *ast.StmtClass `json:"-"`
}

// MethodInfo describes a class method
type MethodInfo struct {
	Name        string      `json:"name"`
	Signature   string      `json:"signature"`
	Description string      `json:"description,omitempty"`
	Parameters  []ParamInfo `json:"parameters,omitempty"`
	ReturnType  string      `json:"return_type,omitempty"`
	Visibility  string      `json:"visibility"` // public, protected, private
	IsStatic    bool        `json:"is_static"`
	IsAbstract  bool        `json:"is_abstract"`
	StartLine   int         `json:"start_line,omitempty"`
	EndLine     int         `json:"end_line,omitempty"`

	Node *ast.StmtClassMethod `json:"-"`
}

// ParamInfo describes a method parameter
type ParamInfo struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// PropertyInfo describes a class property
type PropertyInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility"`
	IsStatic    bool   `json:"is_static"`

	// Default is the initializer expression, if any
	Default ast.Vertex `json:"-"`
}

// Method returns the named method, if declared
func (c ClassInfo) Method(name string) (MethodInfo, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodInfo{}, false
}

// Property returns the named property, if declared
func (c ClassInfo) Property(name string) (PropertyInfo, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyInfo{}, false
}

// MethodNames returns method names in declaration order
func (c ClassInfo) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for _, m := range c.Methods {
		names = append(names, m.Name)
	}
	return names
}
