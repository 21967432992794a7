package extract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SectionGroup names one logical resume section and the heading aliases that
// introduce it.
type SectionGroup struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Sections is the full section configuration for the extractor.
type Sections struct {
	Groups []SectionGroup `yaml:"sections"`
}

// DefaultSections returns the built-in section alias groups.
func DefaultSections() Sections {
	return Sections{Groups: []SectionGroup{
		{Name: "education", Aliases: []string{"education"}},
		{Name: "work_experience", Aliases: []string{"experience", "work experience"}},
		{Name: "projects", Aliases: []string{"projects", "project experience"}},
		{Name: "certifications", Aliases: []string{"certifications", "certificates"}},
		{Name: "volunteering", Aliases: []string{"volunteering", "volunteer experience"}},
		{Name: "publications", Aliases: []string{"publications", "research papers"}},
		{Name: "achievements", Aliases: []string{"achievements", "awards"}},
	}}
}

// LoadSections reads a section configuration from a YAML file. An empty path
// returns the defaults.
func LoadSections(path string) (Sections, error) {
	if path == "" {
		return DefaultSections(), nil
	}
	b, err := os.ReadFile(path) // #nosec G304 -- operator-provided config path
	if err != nil {
		return Sections{}, fmt.Errorf("op=extract.LoadSections: %w", err)
	}
	var s Sections
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Sections{}, fmt.Errorf("op=extract.LoadSections: %w", err)
	}
	if len(s.Groups) == 0 {
		return DefaultSections(), nil
	}
	return s, nil
}

func (s Sections) allAliases() []string {
	var out []string
	for _, g := range s.Groups {
		out = append(out, g.Aliases...)
	}
	return out
}
