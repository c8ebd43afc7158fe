package resume

import "strings"

type section int

const (
	sectionNone section = iota
	sectionSelfIntroduction
	sectionTechnicalSkills
	sectionWorkExperience
	sectionProjects
	sectionActivities
	sectionStopped
)

// Vocabulary maps heading lines to resume sections. Matching is trimmed and
// case-insensitive, so OCR case noise in Latin headings does not matter.
type Vocabulary struct {
	SelfIntroduction []string
	TechnicalSkills  []string
	WorkExperience   []string
	Projects         []string
	Activities       []string
	// Stop headings end section scanning entirely. Anything after them is
	// outside the vocabulary this parser recovers.
	Stop []string
}

// DefaultVocabulary returns the heading set used by the upload pipeline.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		SelfIntroduction: []string{"자기소개"},
		TechnicalSkills:  []string{"기술 스택", "기술스택"},
		WorkExperience:   []string{"경력"},
		Projects:         []string{"프로젝트"},
		Activities:       []string{"대외활동"},
		Stop:             []string{"포트폴리오"},
	}
}

// Parser converts normalized text into a Resume using heading-detection
// heuristics. It deliberately tolerates OCR noise: lines before the first
// recognized heading are ignored, and unknown lines accumulate into the
// current section.
type Parser struct {
	vocab Vocabulary
}

// NewParser builds a parser over the given heading vocabulary.
func NewParser(vocab Vocabulary) *Parser {
	return &Parser{vocab: vocab}
}

// Parse structures the extracted text. Every field of the returned Resume is
// populated: sections absent from the input get their sentinel value. A
// heading that reappears later in the document reopens its section and
// appends; already-parsed content is never overwritten.
func (p *Parser) Parse(text string) Resume {
	lines := splitLines(text)

	var (
		buffers = map[section]*strings.Builder{
			sectionSelfIntroduction: {},
			sectionTechnicalSkills:  {},
			sectionWorkExperience:   {},
			sectionActivities:       {},
		}
		projects []string
		current  strings.Builder
		active   = sectionNone
	)

	closeProject := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			projects = append(projects, trimmed)
		}
		current.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if next, ok := p.matchHeading(trimmed); ok {
			if active == sectionProjects {
				closeProject()
			}
			active = next
			continue
		}
		if active == sectionStopped || active == sectionNone {
			continue
		}

		if active == sectionProjects {
			if trimmed == "" {
				closeProject()
				continue
			}
			current.WriteString(line)
			current.WriteString("\n")
			continue
		}

		if trimmed == "" {
			continue
		}
		buf := buffers[active]
		buf.WriteString(line)
		buf.WriteString(" ")
	}
	closeProject()

	return Resume{
		SelfIntroduction: fieldOrSentinel(buffers[sectionSelfIntroduction], NoSelfIntroduction),
		TechnicalSkills:  fieldOrSentinel(buffers[sectionTechnicalSkills], NoTechnicalSkills),
		WorkExperience:   fieldOrSentinel(buffers[sectionWorkExperience], NoWorkExperience),
		Projects:         projects,
		Activities:       fieldOrSentinel(buffers[sectionActivities], NoActivities),
	}
}

func (p *Parser) matchHeading(line string) (section, bool) {
	if line == "" {
		return sectionNone, false
	}
	switch {
	case matchAny(line, p.vocab.SelfIntroduction):
		return sectionSelfIntroduction, true
	case matchAny(line, p.vocab.TechnicalSkills):
		return sectionTechnicalSkills, true
	case matchAny(line, p.vocab.WorkExperience):
		return sectionWorkExperience, true
	case matchAny(line, p.vocab.Projects):
		return sectionProjects, true
	case matchAny(line, p.vocab.Activities):
		return sectionActivities, true
	case matchAny(line, p.vocab.Stop):
		return sectionStopped, true
	}
	return sectionNone, false
}

func matchAny(line string, headings []string) bool {
	for _, h := range headings {
		if strings.EqualFold(line, h) {
			return true
		}
	}
	return false
}

func fieldOrSentinel(buf *strings.Builder, sentinel string) string {
	if buf == nil {
		return sentinel
	}
	if trimmed := strings.TrimSpace(buf.String()); trimmed != "" {
		return trimmed
	}
	return sentinel
}

func splitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}
