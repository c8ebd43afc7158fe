package feedback

import (
	"strings"

	"resume-feedback/internal/resume"
)

const systemPrompt = "You are a professional resume reviewer."

const (
	singleMaxTokens   = 2000
	categoryMaxTokens = 1600
)

// Prompt is one generation request before transport concerns are applied.
type Prompt struct {
	Category  Category
	System    string
	User      string
	MaxTokens int
}

// singleInstruction asks for one JSON object covering every category. The
// model is instructed hard toward pure JSON because the response validator
// rejects anything else.
const singleInstruction = `당신은 전문적인 이력서 리뷰어입니다.
아래 이력서를 분석하고, **반드시** JSON 형식으로만 피드백을 제공합니다.
Chain-of-Thought(CoT) + Few-shot Learning 방식으로 상세한 피드백을 JSON 형식으로 제공합니다.

### 요청 형식:
- 각 항목별로 **상세한 피드백**을 JSON 객체 형태로 작성합니다.
- **JSON 외 다른 텍스트를 포함하지 마세요.**
- **JSON 형식이 올바르지 않으면 요청이 실패합니다.**

### JSON 응답 예시 (이 형식을 따라야 합니다!):
{
"자기소개": "지원하는 직무와 연관성을 강조하고, 구체적인 프로젝트 경험을 추가하면 좋습니다. 예를 들어, 백엔드 개발자로 지원하는 경우 'Spring Boot 기반의 REST API 개발 경험'을 명확하게 기재하는 것이 유리합니다.",
"기술 스택": "기본적인 기술 외에도 SQL과 Redis 활용 경험을 강조하면 좋습니다. 예를 들어, 'Redis를 활용한 캐싱으로 API 응답 속도를 40% 향상시킨 경험'을 기술하면 더 효과적입니다.",
"경력": "각 업무별 성과를 수치로 표현하면 더 효과적입니다. 예를 들어, 'AWS 비용 최적화를 통해 인프라 비용 30% 절감'과 같은 구체적인 수치를 추가하세요.",
"프로젝트": "성공한 사례를 중심으로 기술적 기여도를 강조하면 좋습니다. 예를 들어, '비동기 요청을 적용하여 AI 서빙 속도를 40% 단축'한 경험을 기재하면 강점이 부각됩니다.",
"대외활동": "해당 활동이 직무에 어떤 영향을 주었는지 설명하면 좋습니다. 예를 들어, '오픈소스 프로젝트 기여 경험을 통해 코드 리뷰 및 협업 역량을 강화'한 사례를 언급하세요."
}

**중요!**
- JSON 코드 블록 없이 **순수 JSON 데이터만 반환**하세요.
- JSON이 아닌 응답이 나오면 요청이 실패합니다.

이제 아래 이력서를 분석하고, 위 JSON 형식과 정확히 일치하는 JSON 응답을 반환하세요.

이력서 내용:
`

// categoryQuestions hold the review angle for each category in multi mode.
var categoryQuestions = map[Category]string{
	CategorySelfIntroduction: "자기소개서가 직무와 적합하고, 지원자의 강점과 가치관을 잘 전달하고 있는지 평가해주세요.",
	CategoryTechnicalSkills:  "기술 스택이 직무에 적합하고 충분히 설명되었는지 평가해주세요. 주요 기술에 대한 이해를 보여주는지 확인해주세요.",
	CategoryWorkExperience:   "경력 사항이 직무와 연관성이 높고 주요 성과가 잘 드러나 있는지 평가해주세요.",
	CategoryProjects:         "프로젝트 경험이 직무와 연관성이 높고 기술적 기여도가 잘 드러나 있는지 평가해주세요.",
	CategoryActivities:       "대외활동과 자격증이 직무와 관련성이 있으며, 지원자의 역량을 보완하는지 평가해주세요.",
}

// BuildSingle produces one prompt whose response must be a JSON object with
// all five category keys. Output is byte-for-byte deterministic for a given
// resume.
func BuildSingle(r resume.Resume) Prompt {
	return Prompt{
		System:    systemPrompt,
		User:      singleInstruction + r.String(),
		MaxTokens: singleMaxTokens,
	}
}

// BuildPerCategory produces one free-text prompt per category, each carrying
// the whole resume for context, in canonical category order.
func BuildPerCategory(r resume.Resume) []Prompt {
	body := r.String()
	prompts := make([]Prompt, 0, len(Categories()))
	for _, c := range Categories() {
		var b strings.Builder
		b.WriteString("다음 이력서를 평가하고 '")
		b.WriteString(string(c))
		b.WriteString("' 항목에 대한 구체적인 피드백을 제공해줘:\n\n")
		b.WriteString(categoryQuestions[c])
		b.WriteString("\n\n이력서 내용:\n")
		b.WriteString(body)
		prompts = append(prompts, Prompt{
			Category:  c,
			System:    systemPrompt,
			User:      b.String(),
			MaxTokens: categoryMaxTokens,
		})
	}
	return prompts
}
