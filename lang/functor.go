package lang

// This file defines the built-in functors: maps of functions reachable from
// the expression grammar as namespace.method(args). Functions that can fail
// return an error as their last result, which expr-lang reports as an
// interpretation failure.

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/itchyny/gojq"
)

func regexFunctor() map[string]any {
	return map[string]any{
		"match":   regexMatch,
		"extract": regexExtract,
		"findAll": regexFindAll,
		"replace": regexReplace,
		"split":   regexSplit,
	}
}

func jsonFunctor() map[string]any {
	return map[string]any{
		"query":  jsonQuery,
		"parse":  jsonParse,
		"encode": jsonEncode,
	}
}

func yamlFunctor() map[string]any {
	return map[string]any{
		"parse":  yamlParse,
		"encode": yamlEncode,
	}
}

func textFunctor() map[string]any {
	return map[string]any{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
		"quote": strconv.Quote,
	}
}

// ---------------------------------------------------------------------------
// Regular expressions
// ---------------------------------------------------------------------------

// Compiled patterns are shared by all contexts.
//
//nolint:gochecknoglobals
var regexCache sync.Map

func compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil //nolint:forcetypeassert
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexCache.Store(pattern, re)

	return re, nil
}

func regexMatch(pattern, text string) (bool, error) {
	re, err := compileRegex(pattern)
	if err != nil {
		return false, err
	}

	return re.MatchString(text), nil
}

// regexExtract returns the first capture group of the leftmost match, or the
// whole match if the pattern has no groups. No match yields "".
func regexExtract(pattern, text string) (string, error) {
	re, err := compileRegex(pattern)
	if err != nil {
		return "", err
	}

	m := re.FindStringSubmatch(text)

	switch len(m) {
	case 0:
		return "", nil
	case 1:
		return m[0], nil
	default:
		return m[1], nil
	}
}

func regexFindAll(pattern, text string) ([]string, error) {
	re, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}

	return re.FindAllString(text, -1), nil
}

func regexReplace(pattern, text, replacement string) (string, error) {
	re, err := compileRegex(pattern)
	if err != nil {
		return "", err
	}

	return re.ReplaceAllString(text, replacement), nil
}

func regexSplit(pattern, text string) ([]string, error) {
	re, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}

	return re.Split(text, -1), nil
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

// jsonQuery runs a jq filter against input. A string input is parsed as JSON
// first. A single result is returned as-is and multiple results as a list.
func jsonQuery(filter string, input any) (any, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, err
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, err
	}

	data, err := normalizeJSON(input)
	if err != nil {
		return nil, err
	}

	var results []any

	iter := code.Run(data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := v.(error); isErr {
			return nil, err
		}

		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// normalizeJSON converts input into the generic JSON types gojq accepts.
func normalizeJSON(input any) (any, error) {
	if s, ok := input.(string); ok {
		return jsonParse(s)
	}

	data, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	return v, nil
}

func jsonParse(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}

	return v, nil
}

func jsonEncode(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// ---------------------------------------------------------------------------
// YAML
// ---------------------------------------------------------------------------

func yamlParse(text string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}

	return v, nil
}

func yamlEncode(value any) (string, error) {
	data, err := yaml.Marshal(value)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
