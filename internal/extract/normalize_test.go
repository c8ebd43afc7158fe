package extract

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"collapse spaces", "Go   언어    backend", "Go 언어 backend"},
		{"strip disallowed runes", "Go!@# 개발자$%^", "Go 개발자"},
		{"keep single newline", "자기소개\nHello", "자기소개\nHello"},
		{"keep one blank line", "프로젝트 A\n\n프로젝트 B", "프로젝트 A\n\n프로젝트 B"},
		{"collapse blank runs", "A\n\n\n\n\nB", "A\n\nB"},
		{"carriage returns", "줄1\r\n줄2\r줄3", "줄1\n줄2\n줄3"},
		{"trim padded lines", "  heading  \n  body  ", "heading\nbody"},
		{"digits kept", "경력 3년 2021", "경력 3년 2021"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
