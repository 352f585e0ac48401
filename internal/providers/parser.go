package providers

import "strings"

// ParseCandidateList parses a pipe-separated chain like
// "openrouter:openai/gpt-oss-120b:free|groq:llama-3.1-8b-instant".
// Only the first colon separates backend from model, so model identifiers
// containing colons survive intact.
func ParseCandidateList(raw string) []CandidateRef {
	parts := strings.Split(raw, "|")
	out := make([]CandidateRef, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ref := CandidateRef{Raw: p}
		if strings.Contains(p, ":") {
			x := strings.SplitN(p, ":", 2)
			ref.Backend = strings.ToLower(strings.TrimSpace(x[0]))
			ref.Model = strings.TrimSpace(x[1])
		} else {
			ref.Backend = strings.ToLower(p)
		}
		out = append(out, ref)
	}
	if len(out) == 0 {
		out = append(out, CandidateRef{Raw: "mock", Backend: "mock"})
	}
	return out
}
