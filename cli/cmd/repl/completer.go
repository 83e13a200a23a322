package repl

import (
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/aexpr/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "keys", "set", "unset", "usage", "edit", "clear", "quit",
}

// isWordBoundary reports whether r ends a completion word. Delimiters of
// embedded expressions count as boundaries so that names inside ${...} are
// completed like bare ones.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}', '$',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'"', '\'', '`':
		return true
	}

	return false
}

// wordBounds returns the word surrounding cursor and its byte offsets in
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member chain preceding the word at wordStart.
// For "x + server.http.ho" with the word "ho" it returns "server.http".
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// childCandidates returns the names that may follow parent in a member
// chain. The top level offers the first segment of every key in ctx and the
// expr-lang builtin functions. Below that, both the dotted keys nested under
// parent and the members of the value parent resolves to are offered.
func childCandidates(ctx *lang.Context, parent string) []string {
	names := make(map[string]struct{})

	if parent == "" {
		for _, key := range ctx.Keys() {
			head, _, _ := strings.Cut(key, ".")
			names[head] = struct{}{}
		}

		for _, name := range ExprLangBuiltinNames() {
			names[name] = struct{}{}
		}

		return slices.Sorted(maps.Keys(names))
	}

	for _, key := range ctx.Keys() {
		rest, ok := strings.CutPrefix(key, parent+".")
		if !ok || rest == "" {
			continue
		}

		head, _, _ := strings.Cut(rest, ".")
		names[head] = struct{}{}
	}

	if v, ok := lookupValue(ctx, parent); ok {
		for _, name := range members(v) {
			names[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(names))
}

// lookupValue resolves a dotted path in ctx. The longest leading run of
// segments naming a key is looked up first and the remaining segments are
// followed as members of its value.
func lookupValue(ctx *lang.Context, path string) (any, bool) {
	segments := strings.Split(path, ".")

	for i := len(segments); i > 0; i-- {
		v, ok := ctx.Get(strings.Join(segments[:i], "."))
		if !ok {
			continue
		}

		for _, seg := range segments[i:] {
			if v, ok = member(v, seg); !ok {
				return nil, false
			}
		}

		return v, true
	}

	return nil, false
}

// member returns the named member of v: a map entry, a struct field or a
// method.
func member(v any, name string) (any, bool) {
	if u, ok := v.(lang.Unwrapper); ok {
		v = u.Unwrap()
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}

	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), true
	}

	rv = reflect.Indirect(rv)

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		e := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !e.IsValid() {
			return nil, false
		}

		return e.Interface(), true

	case reflect.Struct:
		f := rv.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}

		return f.Interface(), true

	default:
		return nil, false
	}
}

// members returns the names reachable from v with [member].
func members(v any) []string {
	if u, ok := v.(lang.Unwrapper); ok {
		v = u.Unwrap()
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil
	}

	var names []string

	for i := range rv.NumMethod() {
		names = append(names, rv.Type().Method(i).Name)
	}

	rv = reflect.Indirect(rv)

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			for _, k := range rv.MapKeys() {
				names = append(names, k.String())
			}
		}

	case reflect.Struct:
		for i := range rv.NumField() {
			if f := rv.Type().Field(i); f.IsExported() {
				names = append(names, f.Name)
			}
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// isFunction reports whether path names something callable in ctx.
func isFunction(ctx *lang.Context, path string) bool {
	if _, ok := exprLangBuiltins[path]; ok {
		return true
	}

	v, ok := lookupValue(ctx, path)

	return ok && v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// computeMatches ranks the candidates for the word at the cursor. An empty
// word only lists candidates after a member access, which leaves the hint
// line visible at the top level.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	funcs map[string]bool,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var (
		candidates []string
		parent     string
	)

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		parent = parentPath(input, wordStart)
		candidates = childCandidates(m.vars, parent)

		if word == "" {
			if parent == "" {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}
		}
	}

	if matches == nil && len(candidates) > 0 {
		matches = fuzzy.Find(word, candidates)
	}

	if m.mode == modeEval && len(matches) > 0 {
		funcs = make(map[string]bool, len(matches))

		for _, match := range matches {
			path := match.Str
			if parent != "" {
				path = parent + "." + path
			}

			funcs[match.Str] = isFunction(m.vars, path)
		}
	}

	return matches, funcs, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width.
func renderCandidateBar(
	matches fuzzy.Matches,
	funcs map[string]bool,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, funcs[match.Str], tabActive && i == suggIdx)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)

			if used+w > room && i < len(matches)-1 {
				b.WriteString(sep + ellipsis)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted. Functions are shown with a "()" suffix that is not inserted
// on completion.
func renderCandidate(match fuzzy.Match, function, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
