package clean

import (
	"sort"
	"strings"
)

// mergeSkills unions the structured skill tokens with the leaves of the
// parser's skill taxonomy. Dedup is case-sensitive exact match; output is
// sorted lexicographically.
func mergeSkills(structured []string, taxonomy map[string][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(tok string) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return
		}
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	for _, s := range structured {
		add(s)
	}
	for _, leaves := range taxonomy {
		for _, s := range leaves {
			add(s)
		}
	}
	sort.Strings(out)
	return out
}

// mergeLanguages unions structured and parsed language tokens with the same
// dedup and ordering rules as skills.
func mergeLanguages(structured, parsed []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range append(append([]string{}, structured...), parsed...) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
