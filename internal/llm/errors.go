package llm

import "fmt"

// Kind classifies a structuring failure.
type Kind string

const (
	// KindTransport covers request failures, timeouts, non-2xx responses and
	// empty completions.
	KindTransport Kind = "transport"
	// KindParse means the completion was not valid JSON.
	KindParse Kind = "parse"
	// KindSchema means the JSON did not have the expected shape.
	KindSchema Kind = "schema"
)

// StructuringError reports that resume text could not be turned into details.
type StructuringError struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *StructuringError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("structure resume (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("structure resume (%s): %v", e.Kind, e.Err)
}

func (e *StructuringError) Unwrap() error { return e.Err }

// Transient reports whether retrying the request may succeed.
func (e *StructuringError) Transient() bool {
	if e == nil || e.Kind != KindTransport {
		return false
	}
	if e.StatusCode == 429 || e.StatusCode >= 500 {
		return true
	}
	if e.StatusCode != 0 {
		return false
	}
	return isTransientNetErr(e.Err)
}

func parseErr(err error) *StructuringError {
	return &StructuringError{Kind: KindParse, Err: err}
}

func schemaErr(format string, args ...any) *StructuringError {
	return &StructuringError{Kind: KindSchema, Err: fmt.Errorf(format, args...)}
}

// TransportError wraps a failed LLM request. status is 0 when no response
// was received.
func TransportError(err error, status int) *StructuringError {
	return &StructuringError{Kind: KindTransport, StatusCode: status, Err: err}
}
