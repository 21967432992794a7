// Package clean implements the field reconciliation engine: for every
// semantic field of a resume it chooses among the structured upstream value,
// the heuristic/parsed value, and a language-model completion, with fixed
// precedence. Structured data always wins and the model is only consulted for
// genuinely missing fields.
package clean

import (
	"context"
	"strings"
	"sync"

	"github.com/hiresight/resume-ingest/internal/adapter/ai"
	"github.com/hiresight/resume-ingest/internal/adapter/observability"
	"github.com/hiresight/resume-ingest/internal/domain"
	"github.com/hiresight/resume-ingest/internal/extract"
)

// Source bundles everything known about one resume before reconciliation.
type Source struct {
	Raw       domain.RawResume
	Parsed    domain.ParsedResumeData
	Heuristic extract.Result
	// Text is the full document text, used as completion context.
	Text string
}

// Cleaner resolves a Source into a CleanedResume. Completion fan-out for a
// single record is bounded by a semaphore shared across all resolution paths.
type Cleaner struct {
	ai  *ai.Completions
	sem chan struct{}
}

// New creates a Cleaner. maxConcurrency bounds concurrent completion calls
// issued while reconciling one record.
func New(completions *ai.Completions, maxConcurrency int) *Cleaner {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Cleaner{
		ai:  completions,
		sem: make(chan struct{}, maxConcurrency),
	}
}

// complete acquires a fan-out slot and asks the model for one field.
func (c *Cleaner) complete(ctx context.Context, field, prompt string) ai.Result {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return ai.Unavailable()
	}
	defer func() { <-c.sem }()
	return c.ai.Complete(ctx, "field."+field, prompt)
}

// completeJSON is the structured counterpart of complete.
func (c *Cleaner) completeJSON(ctx context.Context, operation, prompt string, out any) bool {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	defer func() { <-c.sem }()
	return c.ai.CompleteJSON(ctx, operation, prompt, out)
}

// resolveScalar applies the precedence chain for one scalar field: the first
// non-empty trimmed candidate wins and no completion is issued; otherwise the
// model is asked once, and Unavailable resolves to an empty string.
func (c *Cleaner) resolveScalar(ctx context.Context, text, field string, candidates ...string) string {
	for i, cand := range candidates {
		if v := strings.TrimSpace(cand); v != "" {
			source := "structured"
			if i > 0 {
				source = "parsed"
			}
			observability.FieldResolutionsTotal.WithLabelValues(field, source).Inc()
			return v
		}
	}
	if res := c.complete(ctx, field, ai.FieldPrompt(field, text)); res.OK {
		observability.FieldResolutionsTotal.WithLabelValues(field, "llm").Inc()
		return res.Value
	}
	observability.FieldResolutionsTotal.WithLabelValues(field, "absent").Inc()
	return ""
}

// Clean reconciles src into a CleanedResume. Scalar fields resolve
// concurrently; composite sections run after them since employment output
// feeds projects and stability.
func (c *Cleaner) Clean(ctx context.Context, src Source) domain.CleanedResume {
	raw := src.Raw

	out := domain.CleanedResume{
		State:           strings.TrimSpace(raw.DevState),
		CurrentSalary:   strings.TrimSpace(raw.DevCSalary),
		ExpectedSalary:  strings.TrimSpace(raw.DevESalary),
		NoticePeriod:    strings.TrimSpace(raw.DevNoticePeriod),
		TotalExperience: strings.TrimSpace(raw.DevTotalExperience),
		SocialProfiles:  trimAll(raw.SocialProfiles),
		JobPreference:   trimAll(raw.JobPreference),
	}

	var wg sync.WaitGroup
	resolve := func(dst *string, field string, candidates ...string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*dst = c.resolveScalar(ctx, src.Text, field, candidates...)
		}()
	}

	resolve(&out.FullName, "full name", c.nameCandidates(src)...)
	resolve(&out.Email, "email address", raw.Email, src.Parsed.Contact.Email, first(src.Heuristic.Emails))
	resolve(&out.Phone, "phone number", raw.Number, src.Parsed.Contact.Phone, first(src.Heuristic.Phones))
	resolve(&out.JobTitle, "current job title", raw.DevDesg)
	resolve(&out.City, "current city", raw.DevCity)
	resolve(&out.CountryCode, "country code", raw.DevCountryCode)
	wg.Wait()

	out.Employment = c.resolveEmployment(ctx, src)
	out.Education = c.resolveEducation(ctx, src)
	out.Projects = c.resolveProjects(ctx, src, out.Employment)
	out.Skills = mergeSkills(raw.DevSkills, src.Parsed.SkillTaxonomy)
	out.Languages = mergeLanguages(raw.DevLanguages, src.Parsed.Languages)
	out.Certifications = c.resolveCertifications(ctx, src)
	out.StabilityMonths = stabilityMonths(out.Employment)
	return out
}

// nameCandidates special-cases the name field: structured first/last name
// joined with a space, then the parsed contact block, then the heuristic
// first line when it is not the empty-document placeholder.
func (c *Cleaner) nameCandidates(src Source) []string {
	joined := strings.TrimSpace(strings.TrimSpace(src.Raw.FName) + " " + strings.TrimSpace(src.Raw.LName))
	heuristic := src.Heuristic.Name
	if heuristic == "Unknown" {
		heuristic = ""
	}
	return []string{joined, src.Parsed.Contact.Name, heuristic}
}

// resolveCertifications keeps non-empty certificate names from the
// structured list and asks the model once per empty-named entry, falling
// back to a heuristic certifications section when nothing survives.
func (c *Cleaner) resolveCertifications(ctx context.Context, src Source) []string {
	var out []string
	for _, cert := range src.Raw.DevCertificates {
		name := strings.TrimSpace(cert.CertificateName)
		if name == "" {
			if res := c.complete(ctx, "certification", ai.FieldPrompt("certification", src.Text)); res.OK {
				name = res.Value
			}
		}
		if name != "" {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		out = append(out, src.Heuristic.Sections["certifications"]...)
	}
	return out
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func first(in []string) string {
	if len(in) == 0 {
		return ""
	}
	return in[0]
}
