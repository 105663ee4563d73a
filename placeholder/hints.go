package placeholder

import (
	"github.com/agnivade/levenshtein"

	"email-designer/param"
)

// Hint describes a placeholder in markup that no parameter resolves.
type Hint struct {
	Key        string `json:"key"`
	Token      string `json:"token"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Unresolved lists the placeholders of markup that have no parameter, each
// with the closest defined key when one is near enough to be a likely typo.
func Unresolved(markup string, params []param.Parameter) []Hint {
	defined := make(map[string]bool, len(params))
	keys := make([]string, 0, len(params))
	for _, p := range params {
		if p.Key == "" || defined[p.Key] {
			continue
		}
		defined[p.Key] = true
		keys = append(keys, p.Key)
	}

	var hints []Hint
	for _, k := range Scan(markup) {
		if defined[k] {
			continue
		}
		hints = append(hints, Hint{Key: k, Token: Token(k), Suggestion: closest(k, keys)})
	}
	return hints
}

// closest returns the key with the smallest edit distance to k, provided the
// distance is at most a third of k's length (minimum 1). Ties go to the
// earlier key.
func closest(k string, keys []string) string {
	limit := max(len(k)/3, 1)
	best, bestDist := "", limit+1
	for _, cand := range keys {
		if d := levenshtein.ComputeDistance(k, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}
