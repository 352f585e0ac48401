package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// OpenRouterProvider is the primary backend: one named model behind
// OpenRouter's OpenAI-compatible API.
type OpenRouterProvider struct {
	ref     CandidateRef
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenRouterProvider(ref CandidateRef) *OpenRouterProvider {
	baseURL := strings.TrimSpace(os.Getenv("DECKFORGE_OPENROUTER_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &OpenRouterProvider{
		ref:     ref,
		apiKey:  os.Getenv("OPENROUTER_API_KEY"),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (o *OpenRouterProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	if o.apiKey == "" {
		return "", &Failure{Candidate: o.ref, Kind: FailureReported, Err: fmt.Errorf("openrouter key missing")}
	}
	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
		"HTTP-Referer":  "http://localhost",
		"X-Title":       "Deckforge Slide Generator",
	}
	return chatCompletion(ctx, o.client, o.ref, o.baseURL+"/chat/completions", headers, messages)
}
