package render

import "fmt"

// SourceError reports that the loader could not provide the source of a
// template. The template was never compiled.
type SourceError struct {
	// TemplateName is the identity passed to the loader
	TemplateName string

	// Cause is the loader failure
	Cause error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("render: load source of template '%s': %v", e.TemplateName, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// NewSourceError creates a SourceError for a loader failure.
func NewSourceError(templateName string, cause error) *SourceError {
	return &SourceError{
		TemplateName: templateName,
		Cause:        cause,
	}
}
