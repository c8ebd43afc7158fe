package resume

import "strings"

// Sentinel values marking sections that could not be recovered from the
// document. These are distinguishable from a parsed-but-blank section and
// survive all the way into the caller-facing feedback payload.
const (
	NoSelfIntroduction = "자기소개 없음"
	NoTechnicalSkills  = "기술 스택 없음"
	NoWorkExperience   = "경력 없음"
	NoProjects         = "프로젝트 없음"
	NoActivities       = "대외활동 없음"
)

// Resume is the structured record built once per request from extracted text.
// All string fields hold either real content or an explicit sentinel, never "".
type Resume struct {
	SelfIntroduction string
	TechnicalSkills  string
	WorkExperience   string
	Projects         []string
	Activities       string
}

// String serializes the resume for prompt construction. The output is
// deterministic for a given Resume so prompt content can be asserted exactly.
func (r Resume) String() string {
	var b strings.Builder
	b.WriteString("자기소개: ")
	b.WriteString(r.SelfIntroduction)
	b.WriteString("\n기술 스택: ")
	b.WriteString(r.TechnicalSkills)
	b.WriteString("\n경력: ")
	b.WriteString(r.WorkExperience)
	b.WriteString("\n프로젝트:\n")
	if len(r.Projects) == 0 {
		b.WriteString(NoProjects)
		b.WriteString("\n")
	} else {
		for i, p := range r.Projects {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- ")
			b.WriteString(p)
			b.WriteString("\n")
		}
	}
	b.WriteString("대외활동: ")
	b.WriteString(r.Activities)
	return b.String()
}
