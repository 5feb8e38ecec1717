package php

import (
	"strconv"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
)

// NameOf returns the textual form of a name node (App\Models\User).
// Fully qualified names keep their leading backslash.
func NameOf(node ast.Vertex) string {
	switch n := node.(type) {
	case *ast.Name:
		return joinNameParts(n.Parts)
	case *ast.NameFullyQualified:
		return "\\" + joinNameParts(n.Parts)
	case *ast.NameRelative:
		return "namespace\\" + joinNameParts(n.Parts)
	case *ast.Identifier:
		return string(n.Value)
	}
	return ""
}

func joinNameParts(parts []ast.Vertex) string {
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if namePart, ok := part.(*ast.NamePart); ok {
			names = append(names, string(namePart.Value))
		}
	}
	return strings.Join(names, "\\")
}

// Identifier returns the value of an identifier node
func Identifier(node ast.Vertex) string {
	if ident, ok := node.(*ast.Identifier); ok {
		return string(ident.Value)
	}
	return ""
}

// Basename returns the last segment of a namespaced name
func Basename(name string) string {
	name = strings.TrimPrefix(name, "\\")
	if i := strings.LastIndex(name, "\\"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// VariableName returns a variable's name without the leading $
func VariableName(node ast.Vertex) string {
	if exprVar, ok := node.(*ast.ExprVariable); ok {
		return strings.TrimPrefix(Identifier(exprVar.Name), "$")
	}
	return ""
}

// TypeName renders a type hint
func TypeName(node ast.Vertex) string {
	switch n := node.(type) {
	case nil:
		return ""
	case *ast.Name, *ast.NameFullyQualified, *ast.NameRelative:
		return NameOf(n)
	case *ast.Identifier:
		return string(n.Value)
	case *ast.Nullable:
		return "?" + TypeName(n.Expr)
	}
	return ""
}

// ArgExpr returns the expression of the i-th call argument, or nil
func ArgExpr(args []ast.Vertex, i int) ast.Vertex {
	if i < 0 || i >= len(args) {
		return nil
	}
	if arg, ok := args[i].(*ast.Argument); ok {
		return arg.Expr
	}
	return nil
}

// StringValue extracts a string from a literal-ish expression: quoted
// strings, interpolated strings (literal parts only), constants, names and
// Foo::class references
func StringValue(expr ast.Vertex) string {
	switch node := expr.(type) {
	case nil:
		return ""
	case *ast.ScalarString:
		return unquote(string(node.Value))
	case *ast.ScalarEncapsed:
		var b strings.Builder
		for _, part := range node.Parts {
			if strPart, ok := part.(*ast.ScalarEncapsedStringPart); ok {
				b.Write(strPart.Value)
			}
		}
		return b.String()
	case *ast.ScalarLnumber:
		return string(node.Value)
	case *ast.ScalarDnumber:
		return string(node.Value)
	case *ast.Identifier:
		return string(node.Value)
	case *ast.Name, *ast.NameFullyQualified:
		return strings.TrimPrefix(NameOf(node), "\\")
	case *ast.ExprConstFetch:
		return NameOf(node.Const)
	case *ast.ExprClassConstFetch:
		if Identifier(node.Const) == "class" {
			return strings.TrimPrefix(NameOf(node.Class), "\\")
		}
		return strings.TrimPrefix(NameOf(node.Class), "\\") + "::" + Identifier(node.Const)
	case *ast.ExprBinaryConcat:
		return StringValue(node.Left) + StringValue(node.Right)
	}
	return ""
}

// unquote strips the quotes of a PHP string literal and resolves the
// common escapes
func unquote(val string) string {
	if len(val) < 2 {
		return val
	}
	quote := val[0]
	if (quote != '\'' && quote != '"') || val[len(val)-1] != quote {
		return val
	}
	val = val[1 : len(val)-1]
	if quote == '\'' {
		return strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(val)
	}
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t", `\$`, `$`).Replace(val)
}

// StringList extracts the string elements of an array literal
func StringList(expr ast.Vertex) []string {
	arr, ok := expr.(*ast.ExprArray)
	if !ok {
		return nil
	}

	var result []string
	for _, item := range arr.Items {
		arrayItem, ok := item.(*ast.ExprArrayItem)
		if !ok || arrayItem.Val == nil {
			continue
		}
		if s := StringValue(arrayItem.Val); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// StringMap extracts a keyed array literal. List values are joined with
// "|" so that ['required', 'email'] reads like a rule string.
func StringMap(expr ast.Vertex) map[string]string {
	arr, ok := expr.(*ast.ExprArray)
	if !ok {
		return nil
	}

	result := make(map[string]string)
	for _, item := range arr.Items {
		arrayItem, ok := item.(*ast.ExprArrayItem)
		if !ok || arrayItem.Key == nil || arrayItem.Val == nil {
			continue
		}
		key := StringValue(arrayItem.Key)
		if key == "" {
			continue
		}
		val := StringValue(arrayItem.Val)
		if val == "" {
			val = strings.Join(StringList(arrayItem.Val), "|")
		}
		if val == "" {
			val = describeExpr(arrayItem.Val)
		}
		if val != "" {
			result[key] = val
		}
	}
	return result
}

// describeExpr gives a short textual stand-in for expressions that are not
// plain literals (new Rule(...), Password::defaults())
func describeExpr(expr ast.Vertex) string {
	switch n := expr.(type) {
	case *ast.ExprNew:
		return "new " + Basename(NameOf(n.Class))
	case *ast.ExprStaticCall:
		return Basename(NameOf(n.Class)) + "::" + Identifier(n.Call) + "()"
	case *ast.ExprFunctionCall:
		return NameOf(n.Function) + "()"
	}
	return ""
}

// CallResolver evaluates function calls met by Evaluate. It reports false
// when the call is unknown.
type CallResolver func(function string, args []ast.Vertex) (interface{}, bool)

// Evaluate converts a static expression into Go values: strings, int64,
// float64, bool, nil, []interface{} for lists and map[string]interface{}
// for keyed arrays. Unknown expressions evaluate to nil.
func Evaluate(expr ast.Vertex, resolve CallResolver) interface{} {
	switch n := expr.(type) {
	case nil:
		return nil
	case *ast.ScalarLnumber:
		if v, err := strconv.ParseInt(string(n.Value), 0, 64); err == nil {
			return v
		}
		return string(n.Value)
	case *ast.ScalarDnumber:
		if v, err := strconv.ParseFloat(string(n.Value), 64); err == nil {
			return v
		}
		return string(n.Value)
	case *ast.ExprConstFetch:
		switch strings.ToLower(NameOf(n.Const)) {
		case "true":
			return true
		case "false":
			return false
		case "null":
			return nil
		}
		return NameOf(n.Const)
	case *ast.ExprArray:
		return evaluateArray(n, resolve)
	case *ast.ExprFunctionCall:
		if resolve != nil {
			if v, ok := resolve(NameOf(n.Function), n.Args); ok {
				return v
			}
		}
		return nil
	}

	if s := StringValue(expr); s != "" {
		return s
	}
	return nil
}

func evaluateArray(arr *ast.ExprArray, resolve CallResolver) interface{} {
	keyed := false
	for _, item := range arr.Items {
		if arrayItem, ok := item.(*ast.ExprArrayItem); ok && arrayItem.Key != nil {
			keyed = true
			break
		}
	}

	if !keyed {
		list := make([]interface{}, 0, len(arr.Items))
		for _, item := range arr.Items {
			if arrayItem, ok := item.(*ast.ExprArrayItem); ok && arrayItem.Val != nil {
				list = append(list, Evaluate(arrayItem.Val, resolve))
			}
		}
		return list
	}

	m := make(map[string]interface{}, len(arr.Items))
	next := 0
	for _, item := range arr.Items {
		arrayItem, ok := item.(*ast.ExprArrayItem)
		if !ok || arrayItem.Val == nil {
			continue
		}
		key := StringValue(arrayItem.Key)
		if arrayItem.Key == nil {
			key = strconv.Itoa(next)
			next++
		}
		m[key] = Evaluate(arrayItem.Val, resolve)
	}
	return m
}

// ReturnedExpr returns the expression of the first top-level return
// statement in a method body
func ReturnedExpr(method *ast.StmtClassMethod) ast.Vertex {
	if method == nil {
		return nil
	}
	list, ok := method.Stmt.(*ast.StmtStmtList)
	if !ok {
		return nil
	}
	for _, stmt := range list.Stmts {
		if ret, ok := stmt.(*ast.StmtReturn); ok {
			return ret.Expr
		}
	}
	return nil
}

// FileReturnedExpr returns the expression of a top-level `return` in a
// file, as used by config files (return [...];)
func FileReturnedExpr(root ast.Vertex) ast.Vertex {
	r, ok := root.(*ast.Root)
	if !ok {
		return nil
	}
	for _, stmt := range r.Stmts {
		if ret, ok := stmt.(*ast.StmtReturn); ok {
			return ret.Expr
		}
	}
	return nil
}

// MethodCall represents a method call found in code
type MethodCall struct {
	Object string   // Variable name without $ (this, table)
	Method string   // Method name (hasMany, belongsTo)
	Args   []string // Literal arguments
}

// MethodCalls extracts method calls from the top-level statements of a
// method body, including every link of a call chain
func MethodCalls(method *ast.StmtClassMethod) []MethodCall {
	var calls []MethodCall
	if method == nil || method.Stmt == nil {
		return calls
	}
	walkStmts(method.Stmt, &calls)
	return calls
}

func walkStmts(stmt ast.Vertex, calls *[]MethodCall) {
	switch node := stmt.(type) {
	case *ast.StmtStmtList:
		for _, s := range node.Stmts {
			walkStmts(s, calls)
		}
	case *ast.StmtReturn:
		walkExpr(node.Expr, calls)
	case *ast.StmtExpression:
		walkExpr(node.Expr, calls)
	}
}

func walkExpr(expr ast.Vertex, calls *[]MethodCall) {
	node, ok := expr.(*ast.ExprMethodCall)
	if !ok {
		return
	}

	call := MethodCall{
		Object: VariableName(rootVar(node.Var)),
		Method: Identifier(node.Method),
	}
	for _, arg := range node.Args {
		if argNode, ok := arg.(*ast.Argument); ok {
			if s := StringValue(argNode.Expr); s != "" {
				call.Args = append(call.Args, s)
			}
		}
	}
	if call.Method != "" {
		*calls = append(*calls, call)
	}

	// Chained calls: $this->belongsTo(User::class)->withDefault()
	walkExpr(node.Var, calls)
}

// rootVar follows a call chain down to the variable it starts from
func rootVar(expr ast.Vertex) ast.Vertex {
	for {
		call, ok := expr.(*ast.ExprMethodCall)
		if !ok {
			return expr
		}
		expr = call.Var
	}
}
