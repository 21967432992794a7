package clean

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresight/resume-ingest/internal/domain"
)

func TestProjectsStructuredListWinsUnmodified(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{}
	c := newCleaner(p)

	out := c.resolveProjects(context.Background(), Source{
		Raw: domain.RawResume{DevProjectDetails: []domain.RawProject{
			{Name: "Pipeline", Description: "rewrite", TechStack: []string{"Go"}},
		}},
		Parsed: domain.ParsedResumeData{Sections: map[string][]string{"Projects": {"ignored"}}},
		Text:   "text",
	}, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "Pipeline", out[0].Name)
	assert.Zero(t, p.calls(), "first branch returns without any completion")
}

func TestProjectsParsedSectionWithDetailCompletion(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{answers: map[string]string{
		"For the project described below": `{"techStack": ["Go"], "tools": ["Kafka"], "softSkills": ["ownership"]}`,
	}}
	c := newCleaner(p)

	out := c.resolveProjects(context.Background(), Source{
		Parsed: domain.ParsedResumeData{Sections: map[string][]string{"Projects": {"internal dashboard"}}},
		Text:   "text",
	}, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "internal dashboard", out[0].Description)
	assert.Equal(t, []string{"Go"}, out[0].TechStack)
	assert.Equal(t, []string{"Kafka"}, out[0].Tools)
	assert.Equal(t, []string{"ownership"}, out[0].SoftSkills)
}

func TestProjectsStubFromEmploymentDescription(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{}
	c := newCleaner(p)

	employment := []domain.EmploymentEntry{
		{Company: "Acme", Description: "developed an internal dashboard"},
		{Company: "Initech", Description: "routine maintenance"},
	}
	out := c.resolveProjects(context.Background(), Source{Text: "text"}, employment)

	require.Len(t, out, 1, "one stub per keyword-matching employment entry")
	assert.Equal(t, domain.ProjectEntry{Description: "developed an internal dashboard"}, out[0],
		"description copied verbatim, all other fields empty")
	assert.Zero(t, p.calls())
}

func TestProjectsHolisticFallback(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{answers: map[string]string{
		"List all projects": `[{"name": "Ingest", "description": "pipeline", "techStack": ["Go"], "tools": [], "duration": "6 months"}]`,
	}}
	c := newCleaner(p)

	out := c.resolveProjects(context.Background(), Source{Text: "text"}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Ingest", out[0].Name)
}

func TestProjectsHolisticFallbackEmpty(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{answers: map[string]string{"List all projects": `[]`}}
	c := newCleaner(p)
	out := c.resolveProjects(context.Background(), Source{Text: "text"}, nil)
	assert.Empty(t, out)
}
