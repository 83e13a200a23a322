package lang

import (
	"regexp"
	"strings"
)

// Delimiters of an embedded expression.
const (
	OpenDelim  = "${"
	CloseDelim = "}"
)

var (
	// A delimited expression ends at the first closing brace after its
	// opening delimiter.
	delimitedPattern  = regexp.MustCompile(`\$\{[^}]*\}`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)
)

// FindAll returns every delimited expression in text, leftmost first.
// The returned substrings include their delimiters.
func FindAll(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	return delimitedPattern.FindAllString(text, -1)
}

// HasExpression reports whether text contains at least one delimited
// expression.
func HasExpression(text string) bool {
	return strings.Contains(text, OpenDelim) &&
		delimitedPattern.MatchString(text)
}

// IsValidIdentifier reports whether name is a bare identifier.
func IsValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// IsExpression reports whether text is exactly one delimited expression with
// nothing before or after it.
func IsExpression(text string) bool {
	loc := delimitedPattern.FindStringIndex(text)

	return loc != nil && loc[0] == 0 && loc[1] == len(text)
}

// Strip removes one layer of delimiters from a wholly delimited expression.
// Surrounding whitespace is ignored. Any other text is returned unchanged.
func Strip(text string) string {
	trimmed := strings.TrimSpace(text)
	if !IsExpression(trimmed) {
		return text
	}

	return Inner(trimmed)
}

// Inner returns the text between the delimiters of a single match returned
// by [FindAll].
func Inner(match string) string {
	return match[len(OpenDelim) : len(match)-len(CloseDelim)]
}
