package providers

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CandidateRef identifies one (backend, model) pair in the fallback chain.
type CandidateRef struct {
	Raw     string `json:"raw"`
	Backend string `json:"backend"`
	Model   string `json:"model"`
}

// ChatProvider sends one chat-completion request to one backend/model and
// returns the extracted content string. No retries at this layer; a failed
// call returns a *Failure so the router can classify and advance.
type ChatProvider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
