package importer

import "fmt"

// ImportError is the single failure type returned by imports. It wraps the
// argument, parse or read error that aborted the batch.
type ImportError struct {
	Dialect string
	Path    string
	cause   error
}

// Error implements error. The message ends with the cause's message.
func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s decisions: %v", e.Dialect, e.cause)
}

// Unwrap returns the underlying cause.
func (e *ImportError) Unwrap() error {
	return e.cause
}
