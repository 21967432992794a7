// Package extract implements deterministic, regex/keyword-based extraction of
// contact details, skills, and named sections from raw resume text. It makes
// no external calls; output is a pure function of the input text.
package extract

import (
	"regexp"
	"strings"

	"github.com/hiresight/resume-ingest/pkg/textx"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9+_.-]+@[a-zA-Z0-9.-]+`)
	phoneRe = regexp.MustCompile(`\+?\d{10,15}`)
	// delimiters for skill tokens on the line following a skills heading
	skillSplitRe = regexp.MustCompile("[,•|\n]")
)

var skillKeywords = []string{"skills", "technical skills", "technologies", "expertise"}

// Result is the heuristic extraction output for one document.
type Result struct {
	Name     string
	Emails   []string
	Phones   []string
	Skills   []string
	Sections map[string][]string
}

// Extractor scans raw text using a set of section alias groups.
type Extractor struct {
	sections Sections
}

// New returns an Extractor using the given section configuration, falling
// back to DefaultSections when cfg is empty.
func New(cfg Sections) *Extractor {
	if len(cfg.Groups) == 0 {
		cfg = DefaultSections()
	}
	return &Extractor{sections: cfg}
}

// Extract runs all heuristic extractors over text.
func (e *Extractor) Extract(text string) Result {
	res := Result{
		Name:     nameOf(text),
		Emails:   dedupMatches(emailRe.FindAllString(text, -1)),
		Phones:   dedupMatches(phoneRe.FindAllString(text, -1)),
		Skills:   extractSkills(text),
		Sections: map[string][]string{},
	}
	for _, g := range e.sections.Groups {
		if lines := e.section(text, g.Aliases); lines != nil {
			res.Sections[g.Name] = lines
		}
	}
	return res
}

// nameOf assumes the first non-empty line of a resume carries the candidate
// name. Empty documents fail soft to a placeholder.
func nameOf(text string) string {
	if n := textx.FirstNonEmptyLine(text); n != "" {
		return n
	}
	return "Unknown"
}

func dedupMatches(matches []string) []string {
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// extractSkills scans every line for a skills heading and splits the line
// after it into tokens, accumulating across the whole document.
func extractSkills(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	lines := textx.Lines(text)
	for i, line := range lines {
		lower := strings.ToLower(line)
		hit := false
		for _, kw := range skillKeywords {
			if strings.Contains(lower, kw) {
				hit = true
				break
			}
		}
		if !hit || i+1 >= len(lines) {
			continue
		}
		for _, tok := range skillSplitRe.Split(lines[i+1], -1) {
			tok = strings.TrimSpace(tok)
			if len(tok) <= 1 {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

// section returns the lines of the first section whose heading contains any
// of the given aliases. The window starts at the line after the heading and
// ends at the first line that starts with any alias from the full alias set,
// which acts as the implicit next-section boundary. Returns nil when no
// heading matches.
func (e *Extractor) section(text string, aliases []string) []string {
	lines := textx.Lines(text)
	start := -1
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, a := range aliases {
			if strings.Contains(lower, strings.ToLower(a)) {
				start = i + 1
				break
			}
		}
		if start != -1 {
			break
		}
	}
	if start == -1 {
		return nil
	}

	boundary := e.sections.allAliases()
	var out []string
	for j := start; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		lower := strings.ToLower(trimmed)
		stop := false
		for _, a := range boundary {
			if strings.HasPrefix(lower, strings.ToLower(a)) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
