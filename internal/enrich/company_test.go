package enrich

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresight/resume-ingest/internal/adapter/ai"
	"github.com/hiresight/resume-ingest/internal/domain"
)

type scriptedProvider struct {
	mu      sync.Mutex
	answers map[string]string
	calls   int
}

func (s *scriptedProvider) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for sub, resp := range s.answers {
		if strings.Contains(prompt, sub) {
			return resp, nil
		}
	}
	return "None", nil
}

const acmeProfile = `{
  "classification": {"type": "product", "industry": "software", "size": "large", "business_model": "saas"},
  "profile": {"primary_focus": "infrastructure", "technologies_or_domain": ["Go"], "market_position": "leader", "notable_characteristics": "engineering-driven"},
  "work_environment": {"culture": "autonomous", "tech_stack": ["Go", "Kafka"], "innovation_level": "high", "growth_potential": "high"}
}`

func TestProfilesOnePerUniqueEmployer(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{answers: map[string]string{"Acme": acmeProfile, "Initech": acmeProfile}}
	e := New(ai.NewCompletions(p), 2)

	employment := []domain.EmploymentEntry{
		{Company: "Acme", Designation: "Engineer"},
		{Company: "acme", Designation: "Senior Engineer"}, // case-insensitive duplicate
		{Company: "Initech", Designation: "Engineer"},
		{Company: "", Designation: "Consultant"},
	}
	out := e.Profiles(context.Background(), employment)

	require.Len(t, out, 2)
	assert.Equal(t, "Acme", out[0].CompanyName)
	assert.Equal(t, "Initech", out[1].CompanyName)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, "product", out[0].Classification.Type)
	assert.Equal(t, []string{"Go", "Kafka"}, out[0].WorkEnv.TechStack)
}

func TestProfilesDecodeFailureIsolated(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{answers: map[string]string{
		"Acme":    acmeProfile,
		"Initech": "this is prose, not a profile",
	}}
	e := New(ai.NewCompletions(p), 2)

	out := e.Profiles(context.Background(), []domain.EmploymentEntry{
		{Company: "Acme"}, {Company: "Initech"},
	})

	require.Len(t, out, 2)
	assert.Empty(t, out[0].Error)
	assert.Equal(t, "saas", out[0].Classification.BusinessModel)

	assert.NotEmpty(t, out[1].Error, "undecodable profile carries an error marker")
	assert.Equal(t, "this is prose, not a profile", out[1].RawResponse)
	assert.Empty(t, out[1].Classification.Type)
}

func TestProfilesUnavailable(t *testing.T) {
	t.Parallel()
	e := New(ai.NewCompletions(&scriptedProvider{}), 2)
	out := e.Profiles(context.Background(), []domain.EmploymentEntry{{Company: "Unknown Co"}})
	require.Len(t, out, 1)
	assert.Equal(t, "profile unavailable", out[0].Error)
	assert.Empty(t, out[0].RawResponse)
}

func TestProfilesEmptyEmployment(t *testing.T) {
	t.Parallel()
	e := New(ai.NewCompletions(&scriptedProvider{}), 2)
	assert.Nil(t, e.Profiles(context.Background(), nil))
}
