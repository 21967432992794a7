// Package enrich produces employer profiles for the companies in a reconciled
// employment history. It consumes the cleaned record as an immutable snapshot
// and runs after persistence; enrichment failure never affects the record.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hiresight/resume-ingest/internal/adapter/ai"
	"github.com/hiresight/resume-ingest/internal/domain"
)

// Enricher issues one profile completion per unique employer. Fan-out across
// employers is bounded by a semaphore.
type Enricher struct {
	ai  *ai.Completions
	sem chan struct{}
}

// New creates an Enricher with the given concurrency bound.
func New(completions *ai.Completions, maxConcurrency int) *Enricher {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Enricher{ai: completions, sem: make(chan struct{}, maxConcurrency)}
}

// Profiles returns one CompanyProfile per distinct employer in employment,
// in first-seen order. A failed or undecodable completion yields a profile
// carrying the error and raw response instead of structured data; other
// employers are unaffected.
func (e *Enricher) Profiles(ctx context.Context, employment []domain.EmploymentEntry) []domain.CompanyProfile {
	names := uniqueCompanies(employment)
	if len(names) == 0 {
		return nil
	}

	out := make([]domain.CompanyProfile, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			e.sem <- struct{}{}
			defer func() { <-e.sem }()
			out[i] = e.profile(ctx, name)
		}(i, name)
	}
	wg.Wait()
	return out
}

func (e *Enricher) profile(ctx context.Context, name string) domain.CompanyProfile {
	p := domain.CompanyProfile{CompanyName: name}

	res := e.ai.Complete(ctx, "company.profile", companyPrompt(name))
	if !res.OK {
		p.Error = "profile unavailable"
		return p
	}
	if !e.ai.DecodeJSON(res.Value, &p) {
		p = domain.CompanyProfile{
			CompanyName: name,
			Error:       "profile response was not valid JSON",
			RawResponse: res.Value,
		}
	}
	p.CompanyName = name
	return p
}

// uniqueCompanies keeps first-seen order, deduplicating case-insensitively.
func uniqueCompanies(employment []domain.EmploymentEntry) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range employment {
		name := strings.TrimSpace(e.Company)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

func companyPrompt(name string) string {
	return fmt.Sprintf(`Provide a profile of the company %q as a JSON object with exactly these keys:
- "classification": {"type", "industry", "size", "business_model"}
- "profile": {"primary_focus", "technologies_or_domain", "market_position", "notable_characteristics"}
- "work_environment": {"culture", "tech_stack", "innovation_level", "growth_potential"}
"technologies_or_domain" and "tech_stack" are JSON arrays of strings; every other value is a string. Return None if the company is unknown.`, name)
}
