package clean

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hiresight/resume-ingest/internal/domain"
)

func TestMergeSkills(t *testing.T) {
	t.Parallel()
	got := mergeSkills(
		[]string{"Go", "Kafka", "go"},
		map[string][]string{"backend": {"Go", "PostgreSQL"}, "infra": {"Kafka"}},
	)
	// case-sensitive dedup, lexicographic order
	assert.Equal(t, []string{"Go", "Kafka", "PostgreSQL", "go"}, got)
}

func TestMergeSkillsEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, mergeSkills(nil, nil))
}

func TestMergeLanguages(t *testing.T) {
	t.Parallel()
	got := mergeLanguages([]string{"English", "Hindi"}, []string{"Hindi", "Marathi", " "})
	assert.Equal(t, []string{"English", "Hindi", "Marathi"}, got)
}

func TestStabilityMonths(t *testing.T) {
	t.Parallel()
	got := stabilityMonths([]domain.EmploymentEntry{
		{From: "2019-01-01", To: "2020-01-01"},
		{From: "2020-01-01", To: "2022-01-01"},
	})
	// average of roughly 12 and 24 months
	assert.InDelta(t, 18, got, 0.5)
}

func TestStabilityMonthsPresentCountsToNow(t *testing.T) {
	t.Parallel()
	from := time.Now().AddDate(-1, 0, 0).Format("2006-01-02")
	got := stabilityMonths([]domain.EmploymentEntry{{From: from, To: "Present"}})
	assert.InDelta(t, 12, got, 0.5)
}

func TestStabilityMonthsNoParseableDates(t *testing.T) {
	t.Parallel()
	assert.Zero(t, stabilityMonths([]domain.EmploymentEntry{{From: "unknown", To: "Present"}}))
	assert.Zero(t, stabilityMonths(nil))
}
