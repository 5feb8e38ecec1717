package php

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/VKCOM/php-parser/pkg/visitor/traverser"
)

// symbolCollector is a visitor that collects class declarations of a file
type symbolCollector struct {
	visitor.Null // Embedded - provides default implementations for all visitor methods
	file         *File
	currentClass *ClassInfo        // Track current class being processed
	imports      map[string]string // Track imports for the current file
}

// StmtNamespace handles namespace declarations
func (v *symbolCollector) StmtNamespace(n *ast.StmtNamespace) {
	v.file.Namespace = NameOf(n.Name)
	v.imports = make(map[string]string)
}

// StmtUse handles use statements (imports)
func (v *symbolCollector) StmtUse(n *ast.StmtUseList) {
	if v.imports == nil {
		v.imports = make(map[string]string)
	}

	for _, use := range n.Uses {
		useNode, ok := use.(*ast.StmtUse)
		if !ok {
			continue
		}
		name := NameOf(useNode.Use)
		alias := Identifier(useNode.Alias)
		if alias == "" {
			alias = Basename(name)
		}
		if alias != "" {
			v.imports[alias] = name
		}
	}
}

// StmtClass handles class declarations. Anonymous classes are ignored.
func (v *symbolCollector) StmtClass(n *ast.StmtClass) {
	className := Identifier(n.Name)
	if className == "" || v.currentClass != nil {
		return
	}

	classInfo := &ClassInfo{
		Name:       className,
		Namespace:  v.file.Namespace,
		FullName:   v.buildFullName(className),
		Methods:    []MethodInfo{},
		Properties: []PropertyInfo{},
		IsAbstract: hasModifier(n.Modifiers, "abstract"),
		IsFinal:    hasModifier(n.Modifiers, "final"),
		FilePath:   v.file.Path,
		Imports:    v.copyImports(),
		Node:       n,
	}
	if n.Position != nil {
		classInfo.StartLine = n.Position.StartLine
		classInfo.EndLine = n.Position.EndLine
	}

	// The doc block floats before the first modifier, or before `class`
	doc := docFromModifiers(n.Modifiers)
	if doc.Raw == "" && n.ClassTkn != nil {
		doc = docFromToken(n.ClassTkn)
	}
	classInfo.Description = doc.Description
	classInfo.DocComment = doc.Raw

	if n.Extends != nil {
		classInfo.Extends = v.resolve(NameOf(n.Extends))
	}
	for _, iface := range n.Implements {
		classInfo.Implements = append(classInfo.Implements, v.resolve(NameOf(iface)))
	}

	v.currentClass = classInfo
	for _, stmt := range n.Stmts {
		traverser.NewTraverser(v).Traverse(stmt)
	}
	v.currentClass = nil

	v.file.Classes = append(v.file.Classes, *classInfo)
}

// StmtClassMethod handles method declarations
func (v *symbolCollector) StmtClassMethod(n *ast.StmtClassMethod) {
	if v.currentClass == nil {
		return
	}

	methodName := Identifier(n.Name)
	if methodName == "" {
		return
	}

	visibility := extractVisibility(n.Modifiers)
	doc := docFromModifiers(n.Modifiers)
	if doc.Raw == "" && n.FunctionTkn != nil {
		doc = docFromToken(n.FunctionTkn)
	}

	methodInfo := MethodInfo{
		Name:        methodName,
		Description: doc.Description,
		Visibility:  visibility,
		IsStatic:    hasModifier(n.Modifiers, "static"),
		IsAbstract:  hasModifier(n.Modifiers, "abstract"),
		Parameters:  extractParameters(n.Params),
		ReturnType:  TypeName(n.ReturnType),
		Node:        n,
	}
	if n.Position != nil {
		methodInfo.StartLine = n.Position.StartLine
		methodInfo.EndLine = n.Position.EndLine
	}
	methodInfo.Signature = buildMethodSignature(methodName, methodInfo.Parameters, methodInfo.ReturnType, visibility)

	v.currentClass.Methods = append(v.currentClass.Methods, methodInfo)
}

// StmtTraitUse handles trait usage within a class
func (v *symbolCollector) StmtTraitUse(n *ast.StmtTraitUse) {
	if v.currentClass == nil {
		return
	}

	for _, trait := range n.Traits {
		if traitName := NameOf(trait); traitName != "" {
			v.currentClass.Uses = append(v.currentClass.Uses, v.resolve(traitName))
		}
	}
}

// StmtPropertyList handles class property declarations
func (v *symbolCollector) StmtPropertyList(n *ast.StmtPropertyList) {
	if v.currentClass == nil {
		return
	}

	visibility := extractVisibility(n.Modifiers)
	isStatic := hasModifier(n.Modifiers, "static")
	typeName := TypeName(n.Type)

	doc := docFromModifiers(n.Modifiers)
	if typeName == "" && doc.VarType != "" {
		typeName = doc.VarType
	}

	for _, prop := range n.Props {
		stmtProp, ok := prop.(*ast.StmtProperty)
		if !ok {
			continue
		}
		v.currentClass.Properties = append(v.currentClass.Properties, PropertyInfo{
			Name:        VariableName(stmtProp.Var),
			Type:        typeName,
			Visibility:  visibility,
			IsStatic:    isStatic,
			Description: doc.Description,
			Default:     stmtProp.Expr,
		})
	}
}

// resolve expands an imported alias to its fully qualified name
func (v *symbolCollector) resolve(name string) string {
	if name == "" || strings.HasPrefix(name, "\\") {
		return strings.TrimPrefix(name, "\\")
	}
	head, rest, _ := strings.Cut(name, "\\")
	if full, ok := v.imports[head]; ok {
		if rest == "" {
			return full
		}
		return full + "\\" + rest
	}
	return name
}

// copyImports creates a copy of the current imports map
func (v *symbolCollector) copyImports() map[string]string {
	if v.imports == nil {
		return nil
	}
	dst := make(map[string]string, len(v.imports))
	for key, value := range v.imports {
		dst[key] = value
	}
	return dst
}

func (v *symbolCollector) buildFullName(name string) string {
	if v.file.Namespace == "" {
		return name
	}
	return v.file.Namespace + "\\" + name
}

func extractVisibility(modifiers []ast.Vertex) string {
	for _, mod := range modifiers {
		switch m := Identifier(mod); m {
		case "public", "protected", "private":
			return m
		}
	}
	return "public" // Default visibility in PHP
}

func hasModifier(modifiers []ast.Vertex, target string) bool {
	for _, mod := range modifiers {
		if strings.EqualFold(Identifier(mod), target) {
			return true
		}
	}
	return false
}

func extractParameters(params []ast.Vertex) []ParamInfo {
	var result []ParamInfo
	for _, param := range params {
		if p, ok := param.(*ast.Parameter); ok {
			result = append(result, ParamInfo{
				Name: VariableName(p.Var),
				Type: TypeName(p.Type),
			})
		}
	}
	return result
}

// buildMethodSignature creates a method signature string
func buildMethodSignature(name string, params []ParamInfo, returnType, visibility string) string {
	paramStrs := make([]string, 0, len(params))
	for _, p := range params {
		s := "$" + p.Name
		if p.Type != "" {
			s = p.Type + " " + s
		}
		paramStrs = append(paramStrs, s)
	}

	sig := visibility + " function " + name + "(" + strings.Join(paramStrs, ", ") + ")"
	if returnType != "" {
		sig += ": " + returnType
	}
	return sig
}
