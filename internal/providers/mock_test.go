package providers

import (
	"context"
	"strings"
	"testing"
)

func TestMockProviderHonorsCountAndStart(t *testing.T) {
	p := NewMockProvider(CandidateRef{Raw: "mock", Backend: "mock"})
	prompt := `Now generate 3 slides for TOPIC: "Compilers"` + "\n\nStart numbering from Slide 5."
	text, err := p.Complete(context.Background(), []Message{{Role: "user", Content: prompt}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"# Slide 5", "# Slide 6", "# Slide 7", "Title: Compilers, Part 5"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "# Slide 8") {
		t.Fatal("emitted more slides than requested")
	}
}

func TestMockProviderDefaultsWithoutDirectives(t *testing.T) {
	p := NewMockProvider(CandidateRef{})
	text, err := p.Complete(context.Background(), []Message{{Role: "user", Content: "say something"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "# Slide 1") {
		t.Fatalf("expected one default slide:\n%s", text)
	}
	if strings.Count(text, "- ") != 3 {
		t.Fatalf("expected exactly 3 bullets:\n%s", text)
	}
}
