package editor

import "fmt"

// Section is a collapsible block of the editing form.
type Section string

const (
	SectionBasic          Section = "basic"
	SectionEducation      Section = "education"
	SectionExperience     Section = "experience"
	SectionCertifications Section = "certifications"
	SectionAwards         Section = "awards"
	SectionSkills         Section = "skills"
)

// AllSections lists sections in form order.
var AllSections = []Section{
	SectionBasic,
	SectionEducation,
	SectionExperience,
	SectionCertifications,
	SectionAwards,
	SectionSkills,
}

// ParseSection validates a section key.
func ParseSection(s string) (Section, error) {
	for _, sec := range AllSections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// Sections records which form sections are expanded. It is never sent to the store.
type Sections map[Section]bool

// DefaultSections returns the initial layout: only the basic section is open.
func DefaultSections() Sections {
	s := make(Sections, len(AllSections))
	for _, sec := range AllSections {
		s[sec] = sec == SectionBasic
	}
	return s
}

// Expanded reports whether sec is open.
func (s Sections) Expanded(sec Section) bool {
	return s[sec]
}

func (s Sections) toggled(sec Section) Sections {
	out := make(Sections, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[sec] = !s[sec]
	return out
}
