package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// OllamaProvider supports local, free generation via Ollama's chat API.
// The response shape differs from the OpenAI-compatible backends: content
// lives at message.content of the top-level object.
type OllamaProvider struct {
	ref     CandidateRef
	baseURL string
	client  *http.Client
}

func NewOllamaProvider(ref CandidateRef) *OllamaProvider {
	baseURL := strings.TrimSpace(os.Getenv("DECKFORGE_OLLAMA_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if ref.Model == "" {
		ref.Model = "llama3.1"
	}
	return &OllamaProvider{
		ref:     ref,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (o *OllamaProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"model":    o.ref.Model,
		"messages": messages,
		"stream":   false,
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", &Failure{Candidate: o.ref, Kind: FailureTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", &Failure{Candidate: o.ref, Kind: FailureTransport, Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", &Failure{Candidate: o.ref, Kind: FailureReported, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 300))}
	}
	var parsed struct {
		Error   string `json:"error"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Failure{Candidate: o.ref, Kind: FailureMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.Error != "" {
		return "", &Failure{Candidate: o.ref, Kind: FailureReported, Err: fmt.Errorf("provider error: %s", parsed.Error)}
	}
	if parsed.Message.Content == "" {
		return "", &Failure{Candidate: o.ref, Kind: FailureMalformed, Err: fmt.Errorf("no message content in response")}
	}
	return parsed.Message.Content, nil
}
