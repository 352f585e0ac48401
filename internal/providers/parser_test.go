package providers

import "testing"

func TestParseCandidateListSplitsOnFirstColon(t *testing.T) {
	refs := ParseCandidateList("openrouter:openai/gpt-oss-120b:free|groq:llama-3.1-8b-instant")
	if len(refs) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(refs))
	}
	if refs[0].Backend != "openrouter" || refs[0].Model != "openai/gpt-oss-120b:free" {
		t.Fatalf("colon in model name mangled: %+v", refs[0])
	}
	if refs[1].Backend != "groq" || refs[1].Model != "llama-3.1-8b-instant" {
		t.Fatalf("unexpected second candidate: %+v", refs[1])
	}
}

func TestParseCandidateListTrimsAndSkipsBlanks(t *testing.T) {
	refs := ParseCandidateList(" mock | |GROQ: gemma2-9b-it |")
	if len(refs) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(refs), refs)
	}
	if refs[0].Backend != "mock" || refs[0].Model != "" {
		t.Fatalf("bare backend mangled: %+v", refs[0])
	}
	if refs[1].Backend != "groq" || refs[1].Model != "gemma2-9b-it" {
		t.Fatalf("expected lowered backend and trimmed model: %+v", refs[1])
	}
}

func TestParseCandidateListEmptyFallsBackToMock(t *testing.T) {
	for _, raw := range []string{"", "  ", "||"} {
		refs := ParseCandidateList(raw)
		if len(refs) != 1 || refs[0].Backend != "mock" {
			t.Fatalf("raw %q: expected mock fallback, got %+v", raw, refs)
		}
	}
}
