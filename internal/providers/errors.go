package providers

import (
	"fmt"
	"strings"
)

type FailureKind string

const (
	// FailureTransport covers timeouts and connection errors.
	FailureTransport FailureKind = "transport"
	// FailureReported covers responses that parse but carry an error field
	// or a non-2xx status from the provider.
	FailureReported FailureKind = "reported"
	// FailureMalformed covers 2xx responses with no extractable content.
	FailureMalformed FailureKind = "malformed"
)

// Failure is one classified per-candidate error. The router swallows these
// and advances; they surface only inside ExhaustedError diagnostics.
type Failure struct {
	Candidate CandidateRef
	Kind      FailureKind
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s via %s: %v", f.Kind, f.Candidate.Raw, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// ExhaustedError is raised only when every candidate in the chain failed for
// one request. Terminal for the whole generation run.
type ExhaustedError struct {
	Failures []*Failure
}

func (e *ExhaustedError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.Error())
	}
	return "all providers failed: " + strings.Join(reasons, "; ")
}

// Reasons returns per-candidate failure descriptions for diagnostic payloads.
func (e *ExhaustedError) Reasons() []string {
	out := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Error())
	}
	return out
}
