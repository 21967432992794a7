package clean

import (
	"context"
	"fmt"
	"strings"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// resolveEducation reconciles the education history. Pre-existing entries
// seed a working set keyed by lower-cased (institution, degree). One holistic
// completion over the full text contributes additional entries; same-key
// responses only fill empty fields of the seeded entry. Education is the one
// section with a strict-completeness policy: entries still missing any field
// after the merge are dropped.
func (c *Cleaner) resolveEducation(ctx context.Context, src Source) []domain.EducationEntry {
	type keyed struct {
		idx int
	}
	byKey := make(map[string]keyed)
	var working []domain.EducationEntry
	add := func(e domain.EducationEntry) {
		key := educationKey(e)
		if k, seen := byKey[key]; seen {
			fillEducation(&working[k.idx], e)
			return
		}
		byKey[key] = keyed{idx: len(working)}
		working = append(working, e)
	}

	for _, raw := range src.Raw.DevAcademic {
		add(domain.EducationEntry{
			Degree:         strings.TrimSpace(raw.Degree),
			Specialization: strings.TrimSpace(raw.Specialization),
			Institution:    strings.TrimSpace(raw.Institution),
			Year:           strings.TrimSpace(raw.Year),
		})
	}

	var fromModel []domain.EducationEntry
	if c.completeJSON(ctx, "education", educationPrompt(src.Text), &fromModel) {
		for _, e := range fromModel {
			e.Degree = strings.TrimSpace(e.Degree)
			e.Specialization = strings.TrimSpace(e.Specialization)
			e.Institution = strings.TrimSpace(e.Institution)
			e.Year = strings.TrimSpace(e.Year)
			add(e)
		}
	}

	out := make([]domain.EducationEntry, 0, len(working))
	for _, e := range working {
		if e.Degree == "" || e.Specialization == "" || e.Institution == "" || e.Year == "" {
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func educationKey(e domain.EducationEntry) string {
	return strings.ToLower(strings.TrimSpace(e.Institution)) + "|" + strings.ToLower(strings.TrimSpace(e.Degree))
}

func fillEducation(dst *domain.EducationEntry, src domain.EducationEntry) {
	if dst.Degree == "" {
		dst.Degree = src.Degree
	}
	if dst.Specialization == "" {
		dst.Specialization = src.Specialization
	}
	if dst.Institution == "" {
		dst.Institution = src.Institution
	}
	if dst.Year == "" {
		dst.Year = src.Year
	}
}

func educationPrompt(text string) string {
	return fmt.Sprintf(`List all education mentioned in the given resume text as a JSON array of objects with keys "degree", "specialization", "institution" and "year". Do not include objects with empty fields. Return [] if no education is mentioned.

Resume text:
%s`, text)
}
