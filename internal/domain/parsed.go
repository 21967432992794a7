package domain

import (
	"encoding/json"
	"strings"
)

// ParsedContact is the contact block of a third-party parser payload.
type ParsedContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ParsedResumeData is the optional structured form of RawResume.ResumeParseData.
// Third-party parsers emit this shape; older records carry plain text instead.
type ParsedResumeData struct {
	Contact       ParsedContact       `json:"contact"`
	Sections      map[string][]string `json:"sections"`
	Projects      []RawProject        `json:"projects"`
	SkillTaxonomy map[string][]string `json:"skillTaxonomy"`
	Languages     []string            `json:"languages"`
	Text          string              `json:"text"`
}

// DecodeParseData interprets a raw parse blob. When the blob is a JSON object
// it is decoded into ParsedResumeData; otherwise the whole blob is treated as
// plain text. The second return is the full text usable as LLM context.
func DecodeParseData(blob string) (ParsedResumeData, string) {
	trimmed := strings.TrimSpace(blob)
	if strings.HasPrefix(trimmed, "{") {
		var pd ParsedResumeData
		if err := json.Unmarshal([]byte(trimmed), &pd); err == nil {
			text := pd.Text
			if text == "" {
				text = trimmed
			}
			return pd, text
		}
	}
	return ParsedResumeData{}, trimmed
}

// ProjectsSection returns the parsed Projects section lines, checking the
// structured project list first and the named section second.
func (pd ParsedResumeData) ProjectsSection() []string {
	if len(pd.Sections) == 0 {
		return nil
	}
	for name, lines := range pd.Sections {
		if strings.EqualFold(name, "projects") && len(lines) > 0 {
			return lines
		}
	}
	return nil
}
