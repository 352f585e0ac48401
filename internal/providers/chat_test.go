package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failureKind(t *testing.T, err error) FailureKind {
	t.Helper()
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *Failure, got %T: %v", err, err)
	}
	return f.Kind
}

func TestGroqCompleteMessageContent(t *testing.T) {
	srv := serve(t, 200, `{"choices":[{"message":{"content":"# Slide 1\nTitle: T"}}]}`)
	t.Setenv("DECKFORGE_GROQ_BASE_URL", srv.URL)
	t.Setenv("GROQ_API_KEY", "test-key")

	p := NewGroqProvider(CandidateRef{Raw: "groq:m", Backend: "groq", Model: "m"})
	text, err := p.Complete(context.Background(), []Message{{Role: "user", Content: "go"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "# Slide 1\nTitle: T" {
		t.Fatalf("unexpected content: %q", text)
	}
}

func TestGroqCompleteLegacyTextField(t *testing.T) {
	srv := serve(t, 200, `{"choices":[{"text":"plain completion"}]}`)
	t.Setenv("DECKFORGE_GROQ_BASE_URL", srv.URL)
	t.Setenv("GROQ_API_KEY", "test-key")

	p := NewGroqProvider(CandidateRef{Raw: "groq:m", Backend: "groq", Model: "m"})
	text, err := p.Complete(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "plain completion" {
		t.Fatalf("unexpected content: %q", text)
	}
}

func TestGroqCompleteHTTPErrorIsReported(t *testing.T) {
	srv := serve(t, 429, `{"error":{"message":"rate limit"}}`)
	t.Setenv("DECKFORGE_GROQ_BASE_URL", srv.URL)
	t.Setenv("GROQ_API_KEY", "test-key")

	p := NewGroqProvider(CandidateRef{Raw: "groq:m", Backend: "groq", Model: "m"})
	_, err := p.Complete(context.Background(), nil)
	if kind := failureKind(t, err); kind != FailureReported {
		t.Fatalf("expected reported failure, got %s", kind)
	}
}

func TestGroqCompleteErrorFieldInOKBody(t *testing.T) {
	srv := serve(t, 200, `{"error":{"message":"model decommissioned"}}`)
	t.Setenv("DECKFORGE_GROQ_BASE_URL", srv.URL)
	t.Setenv("GROQ_API_KEY", "test-key")

	p := NewGroqProvider(CandidateRef{Raw: "groq:m", Backend: "groq", Model: "m"})
	_, err := p.Complete(context.Background(), nil)
	if kind := failureKind(t, err); kind != FailureReported {
		t.Fatalf("expected reported failure, got %s", kind)
	}
}

func TestGroqCompleteUndecodableBodyIsMalformed(t *testing.T) {
	srv := serve(t, 200, `<html>not json</html>`)
	t.Setenv("DECKFORGE_GROQ_BASE_URL", srv.URL)
	t.Setenv("GROQ_API_KEY", "test-key")

	p := NewGroqProvider(CandidateRef{Raw: "groq:m", Backend: "groq", Model: "m"})
	_, err := p.Complete(context.Background(), nil)
	if kind := failureKind(t, err); kind != FailureMalformed {
		t.Fatalf("expected malformed failure, got %s", kind)
	}
}

func TestGroqCompleteMissingKeyFailsWithoutDialing(t *testing.T) {
	t.Setenv("DECKFORGE_GROQ_BASE_URL", "http://127.0.0.1:0")
	t.Setenv("GROQ_API_KEY", "")

	p := NewGroqProvider(CandidateRef{Raw: "groq:m", Backend: "groq", Model: "m"})
	_, err := p.Complete(context.Background(), nil)
	if kind := failureKind(t, err); kind != FailureReported {
		t.Fatalf("expected reported failure, got %s", kind)
	}
}

func TestGroqCompleteConnectionRefusedIsTransport(t *testing.T) {
	srv := serve(t, 200, `{}`)
	url := srv.URL
	srv.Close()
	t.Setenv("DECKFORGE_GROQ_BASE_URL", url)
	t.Setenv("GROQ_API_KEY", "test-key")

	p := NewGroqProvider(CandidateRef{Raw: "groq:m", Backend: "groq", Model: "m"})
	_, err := p.Complete(context.Background(), nil)
	if kind := failureKind(t, err); kind != FailureTransport {
		t.Fatalf("expected transport failure, got %s", kind)
	}
}

func TestOpenRouterCompleteSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("DECKFORGE_OPENROUTER_BASE_URL", srv.URL)
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	p := NewOpenRouterProvider(CandidateRef{Raw: "openrouter:m", Backend: "openrouter", Model: "m"})
	text, err := p.Complete(context.Background(), []Message{{Role: "user", Content: "go"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" {
		t.Fatalf("unexpected content: %q", text)
	}
	if gotAuth != "Bearer or-key" {
		t.Fatalf("missing bearer auth, got %q", gotAuth)
	}
	if gotReferer == "" {
		t.Fatal("missing HTTP-Referer header")
	}
}

func TestOllamaCompleteChatShape(t *testing.T) {
	srv := serve(t, 200, `{"message":{"content":"local output"}}`)
	t.Setenv("DECKFORGE_OLLAMA_BASE_URL", srv.URL)

	p := NewOllamaProvider(CandidateRef{Raw: "ollama:llama3.1", Backend: "ollama", Model: "llama3.1"})
	text, err := p.Complete(context.Background(), []Message{{Role: "user", Content: "go"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "local output" {
		t.Fatalf("unexpected content: %q", text)
	}
}

func TestOllamaCompleteErrorField(t *testing.T) {
	srv := serve(t, 200, `{"error":"model not found"}`)
	t.Setenv("DECKFORGE_OLLAMA_BASE_URL", srv.URL)

	p := NewOllamaProvider(CandidateRef{Raw: "ollama:x", Backend: "ollama", Model: "x"})
	_, err := p.Complete(context.Background(), nil)
	if kind := failureKind(t, err); kind != FailureReported {
		t.Fatalf("expected reported failure, got %s", kind)
	}
}
