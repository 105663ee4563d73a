// Package placeholder substitutes {{key}} tokens in exported markup.
//
// Keys are matched as literal text. They are never turned into a pattern, so
// a key may contain any characters, including ones a regexp would treat as
// operators.
package placeholder

import (
	"regexp"
	"strings"

	"email-designer/param"
)

const (
	tokenOpen  = "{{"
	tokenClose = "}}"
)

// tokenPattern finds placeholder-shaped tokens when scanning markup. It is a
// fixed expression; parameter keys are never interpolated into it.
var tokenPattern = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// Token returns the placeholder token for key.
func Token(key string) string {
	return tokenOpen + key + tokenClose
}

// Substitute replaces every {{key}} in markup with the value of the matching
// parameter. Placeholders with no parameter are left as they are. When keys
// repeat, the later parameter wins. Replacement is a single pass: values are
// inserted verbatim and never rescanned.
func Substitute(markup string, params []param.Parameter) string {
	pairs := replacements(params)
	if len(pairs) == 0 {
		return markup
	}
	return strings.NewReplacer(pairs...).Replace(markup)
}

// replacements flattens params into old/new pairs for strings.NewReplacer,
// keeping the first position of each key and the last value seen for it.
func replacements(params []param.Parameter) []string {
	pos := make(map[string]int, len(params))
	pairs := make([]string, 0, 2*len(params))
	for _, p := range params {
		if p.Key == "" {
			continue
		}
		if i, ok := pos[p.Key]; ok {
			pairs[i+1] = p.Value
			continue
		}
		pos[p.Key] = len(pairs)
		pairs = append(pairs, Token(p.Key), p.Value)
	}
	return pairs
}

// Scan returns the distinct keys of the placeholders in markup, in order of
// first appearance.
func Scan(markup string) []string {
	matches := tokenPattern.FindAllStringSubmatch(markup, -1)
	seen := make(map[string]bool, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		keys = append(keys, m[1])
	}
	return keys
}
