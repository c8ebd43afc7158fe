// Package feedback turns extracted resume text into per-category review
// feedback through a generation client, with retry and shape validation.
package feedback

// Category names one reviewed section of a resume.
type Category string

// Review categories in canonical presentation order.
const (
	CategorySelfIntroduction Category = "자기소개"
	CategoryTechnicalSkills  Category = "기술 스택"
	CategoryWorkExperience   Category = "경력"
	CategoryProjects         Category = "프로젝트"
	CategoryActivities       Category = "대외활동"
)

// NoData fills a category slot when no usable feedback could be produced.
const NoData = "데이터 없음"

// Categories returns all categories in canonical order. Callers iterate
// this instead of ranging a map so output order stays stable.
func Categories() []Category {
	return []Category{
		CategorySelfIntroduction,
		CategoryTechnicalSkills,
		CategoryWorkExperience,
		CategoryProjects,
		CategoryActivities,
	}
}

// Feedback is the complete result of one analysis. Every field is always
// populated, degraded categories carry NoData.
type Feedback struct {
	SelfIntroduction string `json:"selfIntroduction"`
	TechnicalSkills  string `json:"technicalSkills"`
	WorkExperience   string `json:"workExperience"`
	Projects         string `json:"projects"`
	Activities       string `json:"activities"`
}

// fromMap assembles a Feedback from a category map, substituting NoData for
// missing or empty slots so the result is complete regardless of how many
// categories succeeded.
func fromMap(m map[Category]string) Feedback {
	get := func(c Category) string {
		if v, ok := m[c]; ok && v != "" {
			return v
		}
		return NoData
	}
	return Feedback{
		SelfIntroduction: get(CategorySelfIntroduction),
		TechnicalSkills:  get(CategoryTechnicalSkills),
		WorkExperience:   get(CategoryWorkExperience),
		Projects:         get(CategoryProjects),
		Activities:       get(CategoryActivities),
	}
}

// field returns the struct slot for a category.
func (f Feedback) field(c Category) string {
	switch c {
	case CategorySelfIntroduction:
		return f.SelfIntroduction
	case CategoryTechnicalSkills:
		return f.TechnicalSkills
	case CategoryWorkExperience:
		return f.WorkExperience
	case CategoryProjects:
		return f.Projects
	case CategoryActivities:
		return f.Activities
	}
	return ""
}
