package authn

import (
	"strings"
	"testing"
)

func TestGenerateAcademySlug(t *testing.T) {
	tests := []struct {
		name       string
		wantPrefix string
	}{
		{"Acme Driving School", "acmedrivingschool-"},
		{"ACME!!!", "acme-"},
		{"日本語", "academy-"},
		{"", "academy-"},
		{"a-very-long-academy-name-that-keeps-going", "averylongacademyname-"},
	}

	for _, tt := range tests {
		got := generateAcademySlug(tt.name)
		if !strings.HasPrefix(got, tt.wantPrefix) {
			t.Errorf("generateAcademySlug(%q) = %q, want prefix %q", tt.name, got, tt.wantPrefix)
		}
		// prefix plus 8 random chars
		if len(got) != len(tt.wantPrefix)+8 {
			t.Errorf("generateAcademySlug(%q) = %q, unexpected length", tt.name, got)
		}
	}
}

func TestGenerateAcademySlug_Unique(t *testing.T) {
	a := generateAcademySlug("Acme")
	b := generateAcademySlug("Acme")
	if a == b {
		t.Errorf("two slugs for the same name should differ, both %q", a)
	}
}
