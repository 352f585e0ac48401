package providers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MockProvider emits deterministic, well-formed slide blocks so the pipeline
// can run end to end without any API keys. It honors the count and start
// index requested in the prompt, which keeps slide numbering and dedup
// behavior realistic.
type MockProvider struct {
	ref CandidateRef
}

func NewMockProvider(ref CandidateRef) *MockProvider {
	if ref.Backend == "" {
		ref = CandidateRef{Raw: "mock", Backend: "mock"}
	}
	if ref.Model == "" {
		ref.Model = "mock-slides-v1"
	}
	return &MockProvider{ref: ref}
}

var (
	mockCountRe = regexp.MustCompile(`generate (\d+) slides`)
	mockStartRe = regexp.MustCompile(`from Slide (\d+)`)
	mockTopicRe = regexp.MustCompile(`TOPIC: "([^"\n]+)"`)
)

func (m *MockProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	_ = ctx
	prompt := ""
	for _, msg := range messages {
		prompt += msg.Content + "\n"
	}
	count := 1
	start := 1
	topic := "Topic"
	if g := mockCountRe.FindStringSubmatch(prompt); g != nil {
		count, _ = strconv.Atoi(g[1])
	}
	if g := mockStartRe.FindStringSubmatch(prompt); g != nil {
		start, _ = strconv.Atoi(g[1])
	}
	if g := mockTopicRe.FindStringSubmatch(prompt); g != nil {
		topic = g[1]
	}

	b := strings.Builder{}
	for i := 0; i < count; i++ {
		n := start + i
		b.WriteString(fmt.Sprintf("# Slide %d\n", n))
		b.WriteString(fmt.Sprintf("Title: %s, Part %d\n", topic, n))
		b.WriteString(fmt.Sprintf("Paragraph: Deterministic mock content for %s, section %d. Replace with a real provider for semantic quality.\n", topic, n))
		b.WriteString("Bullets:\n")
		for j := 1; j <= 3; j++ {
			b.WriteString(fmt.Sprintf("- Mock bullet %d for slide %d covering one idea about %s.\n", j, n, topic))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
