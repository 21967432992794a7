package clean

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresight/resume-ingest/internal/domain"
)

func TestEmploymentDropsEntriesWithoutIdentity(t *testing.T) {
	t.Parallel()
	c := newCleaner(&scriptedProvider{})
	out := c.resolveEmployment(context.Background(), Source{
		Raw: domain.RawResume{DevEmployment: []domain.RawEmployment{
			{Designation: "Engineer", CompanyName: "Acme", From: "2020-01-01"},
			{Description: "no designation, no company"},
		}},
		Text: "text",
	})
	require.Len(t, out, 1)
	assert.Equal(t, "Acme", out[0].Company)
}

func TestEmploymentDedupKeepsEarliestStart(t *testing.T) {
	t.Parallel()
	c := newCleaner(&scriptedProvider{})
	out := c.resolveEmployment(context.Background(), Source{
		Raw: domain.RawResume{DevEmployment: []domain.RawEmployment{
			{Designation: "Engineer", CompanyName: "ACME", From: "2021-06-01", To: "Present", Location: "Pune"},
			{Designation: "engineer", CompanyName: "Acme", From: "2019-01-01", To: "2021-05-01", Description: "joined early"},
		}},
		Text: "text",
	})

	require.Len(t, out, 1, "same (company, designation) key collapses to one entry")
	e := out[0]
	assert.Equal(t, "2019-01-01", e.From, "earliest start survives")
	assert.Equal(t, "2021-05-01", e.To)
	assert.Equal(t, "Pune", e.Location, "empty sub-fields filled from the discarded duplicate")
	assert.Equal(t, "joined early", e.Description)
}

func TestEmploymentDedupUnparseableStartLoses(t *testing.T) {
	t.Parallel()
	c := newCleaner(&scriptedProvider{})
	out := c.resolveEmployment(context.Background(), Source{
		Raw: domain.RawResume{DevEmployment: []domain.RawEmployment{
			{Designation: "Engineer", CompanyName: "Acme", From: "sometime"},
			{Designation: "Engineer", CompanyName: "Acme", From: "2020-03-01"},
		}},
		Text: "text",
	})
	require.Len(t, out, 1)
	assert.Equal(t, "2020-03-01", out[0].From)
}

func TestEmploymentSortedByStartDescending(t *testing.T) {
	t.Parallel()
	c := newCleaner(&scriptedProvider{})
	out := c.resolveEmployment(context.Background(), Source{
		Raw: domain.RawResume{DevEmployment: []domain.RawEmployment{
			{Designation: "Engineer", CompanyName: "Initech", From: "2014-07-01", To: "2019-01-01"},
			{Designation: "Junior", CompanyName: "Globex", From: "not a date"},
			{Designation: "Senior Engineer", CompanyName: "Acme", From: "2019-02-01", To: "Present"},
		}},
		Text: "text",
	})

	require.Len(t, out, 3)
	assert.Equal(t, "Acme", out[0].Company)
	assert.Equal(t, "Initech", out[1].Company)
	assert.Equal(t, "Globex", out[2].Company, "unparseable start sorts last")
}

func TestEmploymentCompletionFillsMissingSubField(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{answers: map[string]string{"start date of the employment at Acme": "Jan 2019"}}
	c := newCleaner(p)
	out := c.resolveEmployment(context.Background(), Source{
		Raw: domain.RawResume{DevEmployment: []domain.RawEmployment{
			{Designation: "Engineer", CompanyName: "Acme"},
		}},
		Text: "worked at Acme since Jan 2019",
	})
	require.Len(t, out, 1)
	assert.Equal(t, "Jan 2019", out[0].From)
}

func TestNormalizeEndDate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Present", normalizeEndDate("present"))
	assert.Equal(t, "Present", normalizeEndDate(" Till Date "))
	assert.Equal(t, "Present", normalizeEndDate("current"))
	assert.Equal(t, "2020-01-01", normalizeEndDate("2020-01-01"))
}
