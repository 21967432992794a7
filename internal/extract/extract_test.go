package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
Senior Software Engineer

Contact: jane.doe@example.com | +14155550123
Backup: jane.doe@example.com

Skills
Go, PostgreSQL, Kafka, C

Education
B.Tech Computer Science, IIT Bombay, 2014

Work Experience
Acme Corp, Senior Engineer, 2019 - Present
Initech, Engineer, 2014 - 2019

Projects
Ingestion pipeline rewrite
`

func TestExtractContact(t *testing.T) {
	t.Parallel()
	res := New(Sections{}).Extract(sampleResume)

	assert.Equal(t, "Jane Doe", res.Name)
	assert.Equal(t, []string{"jane.doe@example.com"}, res.Emails, "duplicate emails collapse to one")
	assert.Equal(t, []string{"+14155550123"}, res.Phones)
}

func TestExtractNameFallback(t *testing.T) {
	t.Parallel()
	res := New(Sections{}).Extract("   \n\n  ")
	assert.Equal(t, "Unknown", res.Name)
}

func TestExtractSkills(t *testing.T) {
	t.Parallel()
	res := New(Sections{}).Extract(sampleResume)
	// single-character tokens are dropped
	assert.Equal(t, []string{"Go", "PostgreSQL", "Kafka"}, res.Skills)
}

func TestExtractSkillsAccumulateAcrossHeadings(t *testing.T) {
	t.Parallel()
	text := "Technical Skills\nGo, SQL\n\nOther Technologies\nKafka, Go\n"
	res := New(Sections{}).Extract(text)
	assert.Equal(t, []string{"Go", "SQL", "Kafka"}, res.Skills)
}

func TestExtractSections(t *testing.T) {
	t.Parallel()
	res := New(Sections{}).Extract(sampleResume)

	require.Contains(t, res.Sections, "education")
	assert.Equal(t, []string{"B.Tech Computer Science, IIT Bombay, 2014"}, res.Sections["education"])

	require.Contains(t, res.Sections, "work_experience")
	assert.Equal(t, []string{
		"Acme Corp, Senior Engineer, 2019 - Present",
		"Initech, Engineer, 2014 - 2019",
	}, res.Sections["work_experience"], "window stops at the Projects heading")

	require.Contains(t, res.Sections, "projects")
	assert.Equal(t, []string{"Ingestion pipeline rewrite"}, res.Sections["projects"])

	assert.NotContains(t, res.Sections, "publications", "missing headings yield no entry")
}

func TestExtractSectionRunsToEndWithoutBoundary(t *testing.T) {
	t.Parallel()
	res := New(Sections{}).Extract("Jane\n\nEducation\nline one\n\nline two\n")
	assert.Equal(t, []string{"line one", "line two"}, res.Sections["education"])
}

func TestLoadSectionsOverride(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`sections:
  - name: education
    aliases: ["studies"]
`), 0o600))

	s, err := LoadSections(path)
	require.NoError(t, err)
	require.Len(t, s.Groups, 1)

	res := New(s).Extract("Jane\n\nStudies\nB.Tech, 2014\n")
	assert.Equal(t, []string{"B.Tech, 2014"}, res.Sections["education"])
}

func TestLoadSectionsEmptyPathDefaults(t *testing.T) {
	t.Parallel()
	s, err := LoadSections("")
	require.NoError(t, err)
	assert.Len(t, s.Groups, 7)
}

func TestLoadSectionsBadFile(t *testing.T) {
	t.Parallel()
	_, err := LoadSections(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
