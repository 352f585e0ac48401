package deck

import "fmt"

// InvalidRequestError is detected before any upstream call and never retried.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// UnparseableOutputError is raised when the consecutive-empty-batch budget is
// exhausted. It covers both "provider text did not match the grammar" and
// "provider kept repeating already-seen slides". LastRaw carries the last
// provider text for diagnosis.
type UnparseableOutputError struct {
	Batches int
	LastRaw string
}

func (e *UnparseableOutputError) Error() string {
	return fmt.Sprintf("provider returned no usable slides in %d consecutive batches", e.Batches)
}
