package domain

import "fmt"

// ValidationError reports a document or line that fails an invariant. The
// message always names the offending field, and Line is the 1-based position
// of the offending line (0 for document-level failures).
type ValidationError struct {
	Field   string
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("validation failed on line %d (%s): %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed (%s): %s", e.Field, e.Message)
}

// PreconditionError reports a workflow operation attempted from the wrong
// state. The operation is blocked entirely, with no partial effect.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}
