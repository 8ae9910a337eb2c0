package pipeline

import "fmt"

// ValidationError marks missing required input. It is fatal to the
// document: the pipeline routes to Failed and runs no further stages.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
	}
	return "validation: " + e.Msg
}

// ExtractionError marks an unavailable or unparsable extraction service.
// Recoverable: the document continues with empty analysis.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return "extraction: " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }
