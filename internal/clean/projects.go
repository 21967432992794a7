package clean

import (
	"context"
	"fmt"
	"strings"

	"github.com/hiresight/resume-ingest/internal/domain"
)

var projectKeywords = []string{"project", "developed", "created", "implemented"}

// resolveProjects applies the project source-precedence chain. Exactly one
// branch produces the output; branches never merge:
//  1. the structured project list, returned unmodified;
//  2. projects from the parsed-text structure, with missing tool and skill
//     lists filled per project via the completion service;
//  3. stubs synthesized from employment descriptions that mention project
//     keywords, description copied verbatim;
//  4. one holistic completion over the full text.
func (c *Cleaner) resolveProjects(ctx context.Context, src Source, employment []domain.EmploymentEntry) []domain.ProjectEntry {
	if len(src.Raw.DevProjectDetails) > 0 {
		return rawProjects(src.Raw.DevProjectDetails)
	}
	if parsed := c.parsedProjects(ctx, src); len(parsed) > 0 {
		return parsed
	}
	if stubs := projectStubs(employment); len(stubs) > 0 {
		return stubs
	}
	return c.projectsFromModel(ctx, src.Text)
}

func rawProjects(in []domain.RawProject) []domain.ProjectEntry {
	out := make([]domain.ProjectEntry, 0, len(in))
	for _, p := range in {
		out = append(out, domain.ProjectEntry{
			Name:        p.Name,
			Description: p.Description,
			TechStack:   p.TechStack,
			Tools:       p.Tools,
			Duration:    p.Duration,
		})
	}
	return out
}

// parsedProjects uses the parser's structured project list when present, or
// project-section lines as bare descriptions otherwise, then fills absent
// tech/tool/soft-skill lists with one completion per project.
func (c *Cleaner) parsedProjects(ctx context.Context, src Source) []domain.ProjectEntry {
	var entries []domain.ProjectEntry
	switch {
	case len(src.Parsed.Projects) > 0:
		entries = rawProjects(src.Parsed.Projects)
	default:
		for _, line := range src.Parsed.ProjectsSection() {
			entries = append(entries, domain.ProjectEntry{Description: line})
		}
	}
	for i := range entries {
		if len(entries[i].TechStack) > 0 || len(entries[i].Tools) > 0 {
			continue
		}
		c.fillProjectDetails(ctx, &entries[i])
	}
	return entries
}

// fillProjectDetails asks the model for the tool and skill lists of one
// project. Unavailable leaves the entry as it was.
func (c *Cleaner) fillProjectDetails(ctx context.Context, p *domain.ProjectEntry) {
	subject := p.Name
	if subject == "" {
		subject = p.Description
	}
	var detail struct {
		TechStack  []string `json:"techStack"`
		Tools      []string `json:"tools"`
		SoftSkills []string `json:"softSkills"`
	}
	prompt := fmt.Sprintf(`For the project described below, return a JSON object with keys "techStack", "tools" and "softSkills", each a JSON array of strings. Return None if nothing can be inferred.

Project:
%s`, subject)
	if !c.completeJSON(ctx, "project.details", prompt, &detail) {
		return
	}
	p.TechStack = detail.TechStack
	p.Tools = detail.Tools
	p.SoftSkills = detail.SoftSkills
}

// projectStubs synthesizes one stub per employment entry whose description
// mentions a project keyword. The description is copied verbatim; every other
// field stays empty.
func projectStubs(employment []domain.EmploymentEntry) []domain.ProjectEntry {
	var out []domain.ProjectEntry
	for _, e := range employment {
		lower := strings.ToLower(e.Description)
		for _, kw := range projectKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, domain.ProjectEntry{Description: e.Description})
				break
			}
		}
	}
	return out
}

func (c *Cleaner) projectsFromModel(ctx context.Context, text string) []domain.ProjectEntry {
	var entries []domain.ProjectEntry
	prompt := fmt.Sprintf(`List all projects mentioned in the given resume text as a JSON array of objects with keys "name", "description", "techStack", "tools" and "duration". Return [] if no projects are mentioned.

Resume text:
%s`, text)
	if !c.completeJSON(ctx, "projects", prompt, &entries) {
		return nil
	}
	return entries
}
