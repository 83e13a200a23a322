package repl

import (
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/aexpr/lang"
)

// exprLangBuiltins describes the parameters of expr-lang's builtin
// functions, which carry no usable names at runtime.
var exprLangBuiltins = map[string][]string{
	"len":           {"v"},
	"all":           {"array", "predicate"},
	"any":           {"array", "predicate"},
	"one":           {"array", "predicate"},
	"none":          {"array", "predicate"},
	"map":           {"array", "mapper"},
	"filter":        {"array", "predicate"},
	"find":          {"array", "predicate"},
	"findIndex":     {"array", "predicate"},
	"findLast":      {"array", "predicate"},
	"findLastIndex": {"array", "predicate"},
	"groupBy":       {"array", "mapper"},
	"sortBy":        {"array", "mapper"},
	"count":         {"array", "predicate"},
	"reduce":        {"array", "reducer", "initial"},
	"sum":           {"array"},
	"mean":          {"array"},
	"median":        {"array"},
	"min":           {"array"},
	"max":           {"array"},
	"first":         {"array"},
	"last":          {"array"},
	"join":          {"array", "separator"},
	"split":         {"string", "separator"},
	"replace":       {"string", "old", "new"},
	"trim":          {"string"},
	"trimPrefix":    {"string", "prefix"},
	"trimSuffix":    {"string", "suffix"},
	"upper":         {"string"},
	"lower":         {"string"},
	"hasPrefix":     {"string", "prefix"},
	"hasSuffix":     {"string", "suffix"},
	"indexOf":       {"string", "substring"},
	"keys":          {"map"},
	"values":        {"map"},
	"int":           {"v"},
	"float":         {"v"},
	"string":        {"v"},
	"type":          {"v"},
	"toJSON":        {"v"},
	"fromJSON":      {"string"},
	"now":           {},
	"duration":      {"string"},
	"date":          {"string", "...format"},
}

// ExprLangBuiltinNames returns the sorted names of the expr-lang builtin
// functions offered for completion.
func ExprLangBuiltinNames() []string {
	return slices.Sorted(maps.Keys(exprLangBuiltins))
}

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string // dotted callee, e.g. "path.cat"
	argIndex int    // 0-based argument under the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost open call enclosing cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open, depth := -1, 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && r != '_' &&
			(r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	call := functionCall{name: name, inCall: true}

	depth = 0

	for _, c := range []byte(input[open+1 : cursor]) {
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				call.argIndex++
			}
		}
	}

	return call
}

// getSignature returns the signature of the named function and the display
// names of its parameters. Values in ctx take precedence over expr-lang
// builtins. The signature is empty if name is not callable.
func getSignature(ctx *lang.Context, name string) (string, []string) {
	if v, ok := lookupValue(ctx, name); ok && v != nil {
		if t := reflect.TypeOf(v); t.Kind() == reflect.Func {
			params := funcParams(t)

			return name + "(" + strings.Join(params, ", ") + ")", params
		}
	}

	if params, ok := exprLangBuiltins[name]; ok {
		return name + "(" + strings.Join(params, ", ") + ")", params
	}

	return "", nil
}

// funcParams names the parameters of a function type by their kinds.
func funcParams(t reflect.Type) []string {
	params := make([]string, t.NumIn())

	for i := range params {
		if t.IsVariadic() && i == len(params)-1 {
			params[i] = "..." + formatTypeName(t.In(i).Elem())
		} else {
			params[i] = formatTypeName(t.In(i))
		}
	}

	return params
}

// formatTypeName returns a short display name for t.
func formatTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return "uint"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Func, reflect.String, reflect.Bool,
		reflect.Slice, reflect.Map:
		return t.Kind().String()
	case reflect.Interface:
		return "any"
	case reflect.Pointer:
		return formatTypeName(t.Elem())
	default:
		if t.Name() != "" {
			return t.Name()
		}

		return "arg"
	}
}

// renderSignatureHint renders signature with the parameter at argIdx
// highlighted. A variadic parameter stays highlighted for every argument
// from its position on.
func renderSignatureHint(signature string, params []string, argIdx int) string {
	name, _, ok := strings.Cut(signature, "(")
	if !ok {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		current := argIdx == i ||
			(argIdx > i && strings.HasPrefix(param, "..."))
		if current {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
