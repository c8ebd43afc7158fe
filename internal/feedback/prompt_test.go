package feedback

import (
	"strings"
	"testing"

	"resume-feedback/internal/resume"
)

func sampleResume() resume.Resume {
	return resume.Resume{
		SelfIntroduction: "백엔드 개발자 홍길동입니다",
		TechnicalSkills:  "Go Redis PostgreSQL",
		WorkExperience:   "잡프렙 2년",
		Projects:         []string{"이력서 분석 서비스", "사내 배포 도구"},
		Activities:       "오픈소스 기여",
	}
}

func TestBuildSingleDeterministic(t *testing.T) {
	r := sampleResume()
	first := BuildSingle(r)
	for i := 0; i < 5; i++ {
		if got := BuildSingle(r); got.User != first.User {
			t.Fatalf("run %d produced different prompt bytes", i)
		}
	}
	if first.MaxTokens != 2000 {
		t.Errorf("MaxTokens = %d", first.MaxTokens)
	}
	if first.System != "You are a professional resume reviewer." {
		t.Errorf("System = %q", first.System)
	}
	if !strings.Contains(first.User, "백엔드 개발자 홍길동입니다") {
		t.Error("prompt missing resume body")
	}
	for _, c := range Categories() {
		if !strings.Contains(first.User, string(c)) {
			t.Errorf("prompt missing category %s", c)
		}
	}
}

func TestBuildPerCategory(t *testing.T) {
	prompts := BuildPerCategory(sampleResume())
	if len(prompts) != 5 {
		t.Fatalf("len = %d", len(prompts))
	}
	for i, c := range Categories() {
		if prompts[i].Category != c {
			t.Errorf("prompts[%d].Category = %s, want %s", i, prompts[i].Category, c)
		}
		if prompts[i].MaxTokens != 1600 {
			t.Errorf("prompts[%d].MaxTokens = %d", i, prompts[i].MaxTokens)
		}
		if !strings.Contains(prompts[i].User, string(c)) {
			t.Errorf("prompts[%d] missing its category name", i)
		}
		if !strings.Contains(prompts[i].User, "이력서 내용:") {
			t.Errorf("prompts[%d] missing resume body marker", i)
		}
	}
}
