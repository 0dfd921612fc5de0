package adapter

import (
	"fmt"
	"strings"
)

// UnknownExtensionError reports an extension nothing was ever registered for.
// It is a configuration defect and retrying does not help.
type UnknownExtensionError struct {
	// Extension is the normalized extension that was requested
	Extension string

	// KnownExtensions lists the extensions the registry can resolve
	KnownExtensions []string
}

// Error implements the error interface.
func (e *UnknownExtensionError) Error() string {
	if len(e.KnownExtensions) == 0 {
		return fmt.Sprintf("adapter: no template engine registered for extension %q", e.Extension)
	}
	return fmt.Sprintf("adapter: no template engine registered for extension %q (registered: %s)",
		e.Extension, strings.Join(e.KnownExtensions, ", "))
}

// UnavailableEngineError reports that the highest-priority adapter of an
// extension cannot be used because its backing library is not linked in.
// Operators either provide the library or deregister the adapter to accept a
// lower-priority fallback.
type UnavailableEngineError struct {
	// Extension is the normalized extension being rendered
	Extension string

	// Adapter is the highest-priority adapter for the extension
	Adapter string

	// Library is the backing library that adapter requires
	Library string

	// ImportPath is the package that provides the library, when known
	ImportPath string
}

// Error implements the error interface.
func (e *UnavailableEngineError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "go-view requires the %s engine library to render %q templates", e.Library, e.Extension)
	if e.ImportPath != "" {
		fmt.Fprintf(&b, "; import _ %q to link it", e.ImportPath)
	} else {
		b.WriteString("; provide the library")
	}
	if e.Adapter != "" {
		fmt.Fprintf(&b, ", or deregister the %q adapter to fall back to a less compatible engine", e.Adapter)
	}
	return b.String()
}

// EngineLoadError reports an adapter that claimed to be available but whose
// library failed while compiling (a partial install, or a library withdrawn
// between the availability check and its use). It is never silently turned
// into a fallback.
type EngineLoadError struct {
	// Adapter is the adapter that was selected
	Adapter string

	// Library is the backing library that failed to load
	Library string

	// Cause is the underlying load failure
	Cause error
}

// Error implements the error interface.
func (e *EngineLoadError) Error() string {
	return fmt.Sprintf("adapter: %q reported the %s library available but it failed to load: %v", e.Adapter, e.Library, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *EngineLoadError) Unwrap() error {
	return e.Cause
}

// NewUnknownExtensionError creates an UnknownExtensionError with the list of known extensions.
func NewUnknownExtensionError(extension string, known []string) *UnknownExtensionError {
	return &UnknownExtensionError{
		Extension:       extension,
		KnownExtensions: known,
	}
}

// NewUnavailableEngineError creates an UnavailableEngineError for the
// highest-priority adapter of extension.
func NewUnavailableEngineError(extension string, top EngineAdapter) *UnavailableEngineError {
	err := &UnavailableEngineError{Extension: extension}
	if top == nil {
		return err
	}
	err.Adapter = top.Name()
	err.Library = top.RequiredLibrary()
	if r, ok := top.(Remediable); ok {
		err.ImportPath = r.ImportPath()
	}
	return err
}

// NewEngineLoadError creates an EngineLoadError.
func NewEngineLoadError(adapterName, library string, cause error) *EngineLoadError {
	return &EngineLoadError{
		Adapter: adapterName,
		Library: library,
		Cause:   cause,
	}
}
