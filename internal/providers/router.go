package providers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

type RoutedProvider struct {
	Ref      CandidateRef
	Provider ChatProvider
}

// Router tries an ordered candidate chain until one yields a usable payload.
// Candidate order is fixed at construction and stable across calls, so
// repeated failures stay attributable to the same candidates.
type Router struct {
	candidates []RoutedProvider
	timeout    time.Duration
}

func NewRouter(candidateList string, timeout time.Duration) (*Router, error) {
	refs := ParseCandidateList(candidateList)
	routed := make([]RoutedProvider, 0, len(refs))
	for _, ref := range refs {
		p, err := buildProvider(ref)
		if err != nil {
			return nil, err
		}
		routed = append(routed, RoutedProvider{Ref: ref, Provider: p})
	}
	return NewRouterWithProviders(routed, timeout), nil
}

// NewRouterWithProviders builds a router over an injected chain. Tests and
// callers with prebuilt providers use this directly.
func NewRouterWithProviders(routed []RoutedProvider, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Router{candidates: routed, timeout: timeout}
}

func (r *Router) Candidates() []CandidateRef {
	out := make([]CandidateRef, 0, len(r.candidates))
	for _, c := range r.candidates {
		out = append(out, c.Ref)
	}
	return out
}

// Execute iterates candidates strictly in order and returns the first usable
// payload together with the candidate that served it. Per-candidate failures
// are swallowed and logged here; only exhaustion of the whole chain is an
// error, and it carries every per-candidate reason.
func (r *Router) Execute(ctx context.Context, messages []Message) (string, CandidateRef, error) {
	failures := make([]*Failure, 0, len(r.candidates))
	for _, c := range r.candidates {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		text, err := c.Provider.Complete(attemptCtx, messages)
		cancel()
		if err == nil && strings.TrimSpace(text) != "" {
			return text, c.Ref, nil
		}
		f := asFailure(c.Ref, text, err)
		failures = append(failures, f)
		log.Printf("candidate %s failed: %s: %v", c.Ref.Raw, f.Kind, f.Err)
	}
	return "", CandidateRef{}, &ExhaustedError{Failures: failures}
}

func asFailure(ref CandidateRef, _ string, err error) *Failure {
	if err == nil {
		// A nominal success with a blank payload is unusable.
		return &Failure{Candidate: ref, Kind: FailureMalformed, Err: fmt.Errorf("blank content")}
	}
	if f, ok := err.(*Failure); ok {
		return f
	}
	return &Failure{Candidate: ref, Kind: FailureTransport, Err: err}
}

func buildProvider(ref CandidateRef) (ChatProvider, error) {
	switch ref.Backend {
	case "mock":
		return NewMockProvider(ref), nil
	case "openrouter":
		return NewOpenRouterProvider(ref), nil
	case "groq":
		return NewGroqProvider(ref), nil
	case "ollama":
		return NewOllamaProvider(ref), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", ref.Backend)
	}
}
