package engine

import "fmt"

// NoYieldTargetError reports a yield with no producer bound for the current
// render call. It is a template-authoring defect and is never retried.
type NoYieldTargetError struct {
	// TemplateName is the template that yielded, when known.
	TemplateName string
}

// Error implements the error interface.
func (e *NoYieldTargetError) Error() string {
	if e.TemplateName == "" {
		return "engine: yield called with no block bound"
	}
	return fmt.Sprintf("engine: template '%s' yielded with no block bound", e.TemplateName)
}

// CompilationError represents a template compilation failure.
// This error occurs when the template syntax is invalid or contains
// constructs the engine does not support.
type CompilationError struct {
	// Engine is the library that rejected the template.
	Engine string

	// TemplateName is the name of the template that failed to compile
	TemplateName string

	// TemplateSnippet contains the first 200 characters of the template
	TemplateSnippet string

	// Cause is the underlying compilation error from the template engine
	Cause error
}

// Error implements the error interface.
func (e *CompilationError) Error() string {
	if e.Engine == "" {
		return fmt.Sprintf("failed to compile template '%s': %v", e.TemplateName, e.Cause)
	}
	return fmt.Sprintf("failed to compile template '%s' with %s: %v", e.TemplateName, e.Engine, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// RenderError represents a template rendering failure.
// This error occurs when a valid template fails during execution,
// typically due to missing context variables or runtime evaluation errors.
type RenderError struct {
	// TemplateName is the name of the template that failed to render
	TemplateName string

	// Cause is the underlying rendering error from the template engine
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render template '%s': %v", e.TemplateName, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewNoYieldTargetError creates a NoYieldTargetError for the named template.
func NewNoYieldTargetError(templateName string) *NoYieldTargetError {
	return &NoYieldTargetError{TemplateName: templateName}
}

// NewCompilationError creates a CompilationError for a template compilation failure.
func NewCompilationError(engineName, templateName, templateContent string, cause error) *CompilationError {
	snippet := templateContent
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}

	return &CompilationError{
		Engine:          engineName,
		TemplateName:    templateName,
		TemplateSnippet: snippet,
		Cause:           cause,
	}
}

// NewRenderError creates a RenderError for a template rendering failure.
func NewRenderError(templateName string, cause error) *RenderError {
	return &RenderError{
		TemplateName: templateName,
		Cause:        cause,
	}
}
