package clean

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// presentMarker is the open-ended end-date sentinel.
const presentMarker = "Present"

// DedupPolicy names the tie-break applied when two employment entries share
// the same lower-cased (company, designation) key.
type DedupPolicy string

// KeepEarliestStart keeps the duplicate with the earliest parseable start
// date, treating the longer-known engagement as authoritative. Sub-fields
// empty on the survivor are filled from the discarded duplicate.
const KeepEarliestStart DedupPolicy = "keep-earliest-start"

// employmentDedupPolicy is the single policy in effect.
const employmentDedupPolicy = KeepEarliestStart

// resolveEmployment reconciles the employment history: each entry's
// sub-fields resolve independently (structured value first, completion
// fallback), entries without a designation or company are dropped, duplicates
// collapse under employmentDedupPolicy, and the result sorts by start date,
// most recent first.
func (c *Cleaner) resolveEmployment(ctx context.Context, src Source) []domain.EmploymentEntry {
	rawEntries := src.Raw.DevEmployment
	if len(rawEntries) == 0 {
		return nil
	}

	resolved := make([]domain.EmploymentEntry, len(rawEntries))
	var wg sync.WaitGroup
	for i, raw := range rawEntries {
		wg.Add(1)
		go func(i int, raw domain.RawEmployment) {
			defer wg.Done()
			resolved[i] = c.resolveEmploymentEntry(ctx, src.Text, raw)
		}(i, raw)
	}
	wg.Wait()

	kept := make([]domain.EmploymentEntry, 0, len(resolved))
	for _, e := range resolved {
		if e.Designation == "" && e.Company == "" {
			continue
		}
		kept = append(kept, e)
	}

	kept = dedupEmployment(kept)
	sortEmploymentByStartDesc(kept)
	return kept
}

// resolveEmploymentEntry resolves the five sub-fields of one entry. The
// description passes through untouched; it is free text with nothing to
// reconcile.
func (c *Cleaner) resolveEmploymentEntry(ctx context.Context, text string, raw domain.RawEmployment) domain.EmploymentEntry {
	hint := strings.TrimSpace(raw.CompanyName)
	if hint == "" {
		hint = strings.TrimSpace(raw.Designation)
	}
	field := func(name, structured string) string {
		if v := strings.TrimSpace(structured); v != "" {
			return v
		}
		prompt := name
		if hint != "" {
			prompt = fmt.Sprintf("%s of the employment at %s", name, hint)
		}
		if res := c.complete(ctx, "employment."+name, employmentFieldPrompt(prompt, text)); res.OK {
			return res.Value
		}
		return ""
	}

	return domain.EmploymentEntry{
		Designation: field("designation", raw.Designation),
		Company:     field("company name", raw.CompanyName),
		From:        field("start date", raw.From),
		To:          normalizeEndDate(field("end date", raw.To)),
		Location:    field("work location", raw.Location),
		Description: strings.TrimSpace(raw.Description),
	}
}

func employmentFieldPrompt(field, text string) string {
	return fmt.Sprintf("Extract the %s from the given resume text. Return None if it is missing.\n\nResume text:\n%s", field, text)
}

// normalizeEndDate canonicalizes any spelling of an open-ended end date.
func normalizeEndDate(to string) string {
	switch strings.ToLower(strings.TrimSpace(to)) {
	case "present", "current", "till date", "now":
		return presentMarker
	}
	return strings.TrimSpace(to)
}

func employmentKey(e domain.EmploymentEntry) string {
	return strings.ToLower(strings.TrimSpace(e.Company)) + "|" + strings.ToLower(strings.TrimSpace(e.Designation))
}

// dedupEmployment collapses entries sharing a (company, designation) key per
// employmentDedupPolicy, preserving first-seen order of surviving keys.
func dedupEmployment(entries []domain.EmploymentEntry) []domain.EmploymentEntry {
	byKey := make(map[string]int, len(entries))
	out := make([]domain.EmploymentEntry, 0, len(entries))
	for _, e := range entries {
		key := employmentKey(e)
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, e)
			continue
		}
		out[idx] = mergeDuplicate(out[idx], e)
	}
	return out
}

// mergeDuplicate decides which of two same-key entries survives and fills the
// survivor's empty sub-fields from the other.
func mergeDuplicate(a, b domain.EmploymentEntry) domain.EmploymentEntry {
	winner, loser := a, b
	ta, okA := parseDate(a.From)
	tb, okB := parseDate(b.From)
	// KeepEarliestStart: a parseable earlier start wins; an unparseable
	// start loses to any parseable one.
	if okB && (!okA || tb.Before(ta)) {
		winner, loser = b, a
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&winner.Designation, loser.Designation)
	fill(&winner.Company, loser.Company)
	fill(&winner.From, loser.From)
	fill(&winner.To, loser.To)
	fill(&winner.Location, loser.Location)
	fill(&winner.Description, loser.Description)
	return winner
}

// sortEmploymentByStartDesc sorts most recent start first; entries with
// unparseable start dates keep their relative order at the end.
func sortEmploymentByStartDesc(entries []domain.EmploymentEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, okI := parseDate(entries[i].From)
		tj, okJ := parseDate(entries[j].From)
		if okI != okJ {
			return okI
		}
		if !okI {
			return false
		}
		return ti.After(tj)
	})
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
