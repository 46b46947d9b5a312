package rewrite

import (
	"encoding/json"
	"sort"
	"strings"
)

// escape returns value as it appears inside a JSON string literal.
func escape(value string) string {
	quoted, err := json.Marshal(value)
	if err != nil {
		return value
	}

	return string(quoted[1 : len(quoted)-1])
}

// newReplacer builds a single-pass replacer over JSON-escaped literals. Longer
// literals are listed first so they win over their own prefixes.
func newReplacer(table map[string]string) *strings.Replacer {
	olds := make([]string, 0, len(table))

	for old, replacement := range table {
		if old == "" || old == replacement {
			continue
		}

		olds = append(olds, old)
	}

	sort.Slice(olds, func(i, j int) bool {
		if len(olds[i]) != len(olds[j]) {
			return len(olds[i]) > len(olds[j])
		}

		return olds[i] < olds[j]
	})

	pairs := make([]string, 0, 2*len(olds))
	for _, old := range olds {
		pairs = append(pairs, escape(old), escape(table[old]))
	}

	return strings.NewReplacer(pairs...)
}
