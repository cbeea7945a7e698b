package cashflow

import "fmt"

// UpstreamError wraps a data-source read that failed. The engine never
// retries it; the caller surfaces it as a generic internal failure and may
// retry the whole request.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream query failed: %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
