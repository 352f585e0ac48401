package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// GroqProvider is the fallback backend family; the chain usually carries
// several Groq models in a fixed preference order.
type GroqProvider struct {
	ref     CandidateRef
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGroqProvider(ref CandidateRef) *GroqProvider {
	baseURL := strings.TrimSpace(os.Getenv("DECKFORGE_GROQ_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	return &GroqProvider{
		ref:     ref,
		apiKey:  os.Getenv("GROQ_API_KEY"),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (g *GroqProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	if g.apiKey == "" {
		return "", &Failure{Candidate: g.ref, Kind: FailureReported, Err: fmt.Errorf("groq key missing")}
	}
	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}
	return chatCompletion(ctx, g.client, g.ref, g.baseURL+"/chat/completions", headers, messages)
}
