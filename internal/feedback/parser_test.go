package feedback

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractContent(t *testing.T) {
	raw := json.RawMessage(`{"choices":[{"message":{"content":"hello"}}]}`)
	content, err := ExtractContent(raw)
	if err != nil {
		t.Fatalf("ExtractContent: %v", err)
	}
	if content != "hello" {
		t.Errorf("content = %q", content)
	}
}

func TestExtractContentRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", "this is not json", ErrMalformedEnvelope},
		{"upstream error", `{"error":{"message":"over quota","type":"insufficient_quota"}}`, ErrMalformedEnvelope},
		{"no choices", `{"choices":[]}`, ErrMalformedEnvelope},
		{"empty content", `{"choices":[{"message":{"content":"  "}}]}`, ErrEmptyContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractContent(json.RawMessage(tc.raw))
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
			if !IsRejection(err) {
				t.Errorf("IsRejection(%v) = false", err)
			}
		})
	}
}

func TestParseCategoryMap(t *testing.T) {
	content := `{
		"자기소개": "a",
		"기술 스택": "b",
		"경력": "c",
		"프로젝트": "d",
		"대외활동": "e"
	}`
	m, err := ParseCategoryMap(content)
	if err != nil {
		t.Fatalf("ParseCategoryMap: %v", err)
	}
	if m[CategorySelfIntroduction] != "a" || m[CategoryActivities] != "e" {
		t.Errorf("map = %v", m)
	}
	if len(m) != 5 {
		t.Errorf("len = %d", len(m))
	}
}

func TestParseCategoryMapRejections(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"prose instead of json", "죄송하지만 JSON으로 답변드릴 수 없습니다."},
		{"truncated json", `{"자기소개": "a"`},
		{"missing key", `{"자기소개":"a","기술 스택":"b","경력":"c","프로젝트":"d"}`},
		{"empty value", `{"자기소개":"","기술 스택":"b","경력":"c","프로젝트":"d","대외활동":"e"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCategoryMap(tc.content)
			if !errors.Is(err, ErrContentRejected) {
				t.Errorf("err = %v, want ErrContentRejected", err)
			}
		})
	}
}

func TestFromMapFillsMissingSlots(t *testing.T) {
	fb := fromMap(map[Category]string{
		CategoryTechnicalSkills: "Go를 더 강조하세요.",
	})
	if fb.TechnicalSkills != "Go를 더 강조하세요." {
		t.Errorf("TechnicalSkills = %q", fb.TechnicalSkills)
	}
	for _, c := range []Category{CategorySelfIntroduction, CategoryWorkExperience, CategoryProjects, CategoryActivities} {
		if fb.field(c) != NoData {
			t.Errorf("%s = %q, want sentinel", c, fb.field(c))
		}
	}
}

func TestFromMapNilIsAllSentinels(t *testing.T) {
	fb := fromMap(nil)
	for _, c := range Categories() {
		if fb.field(c) != NoData {
			t.Errorf("%s = %q", c, fb.field(c))
		}
	}
}
