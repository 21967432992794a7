package clean

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresight/resume-ingest/internal/domain"
)

func TestEducationMergeFillsSeededEntry(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{answers: map[string]string{
		"education": `[{"degree": "B.Tech", "specialization": "Computer Science", "institution": "IIT Bombay", "year": "2014"}]`,
	}}
	c := newCleaner(p)

	out := c.resolveEducation(context.Background(), Source{
		Raw: domain.RawResume{DevAcademic: []domain.RawEducation{
			{Degree: "B.Tech", Institution: "IIT Bombay"},
		}},
		Text: "B.Tech Computer Science, IIT Bombay, 2014",
	})

	require.Len(t, out, 1)
	assert.Equal(t, domain.EducationEntry{
		Degree:         "B.Tech",
		Specialization: "Computer Science",
		Institution:    "IIT Bombay",
		Year:           "2014",
	}, out[0], "model response fills only the empty fields of the seeded entry")
}

func TestEducationSeededFieldsNotOverwritten(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{answers: map[string]string{
		"education": `[{"degree": "B.Tech", "specialization": "Electronics", "institution": "IIT Bombay", "year": "2015"}]`,
	}}
	c := newCleaner(p)

	out := c.resolveEducation(context.Background(), Source{
		Raw: domain.RawResume{DevAcademic: []domain.RawEducation{
			{Degree: "B.Tech", Specialization: "Computer Science", Institution: "IIT Bombay", Year: "2014"},
		}},
		Text: "text",
	})

	require.Len(t, out, 1)
	assert.Equal(t, "Computer Science", out[0].Specialization)
	assert.Equal(t, "2014", out[0].Year)
}

func TestEducationStrictCompletenessDropsPartial(t *testing.T) {
	t.Parallel()
	c := newCleaner(&scriptedProvider{})

	out := c.resolveEducation(context.Background(), Source{
		Raw: domain.RawResume{DevAcademic: []domain.RawEducation{
			{Degree: "B.Tech", Institution: "IIT Bombay"}, // no specialization, no year
		}},
		Text: "text",
	})
	assert.Empty(t, out, "entries missing any field after merge are dropped")
}

func TestEducationNewKeyAppended(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{answers: map[string]string{
		"education": `[{"degree": "M.Tech", "specialization": "Systems", "institution": "IISc", "year": "2016"}]`,
	}}
	c := newCleaner(p)

	out := c.resolveEducation(context.Background(), Source{
		Raw: domain.RawResume{DevAcademic: []domain.RawEducation{
			{Degree: "B.Tech", Specialization: "CS", Institution: "IIT Bombay", Year: "2014"},
		}},
		Text: "text",
	})

	require.Len(t, out, 2)
	assert.Equal(t, "IIT Bombay", out[0].Institution)
	assert.Equal(t, "IISc", out[1].Institution)
}
