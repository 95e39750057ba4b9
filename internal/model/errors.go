package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes a build step failure.
type ErrorKind string

const (
	// ErrConfiguration indicates a required path is unset or not a directory.
	ErrConfiguration ErrorKind = "CONFIGURATION"

	// ErrResolution indicates the host dependency resolution reported a fault.
	ErrResolution ErrorKind = "RESOLUTION"

	// ErrExtraction indicates a compile-unit archive could not be unpacked.
	ErrExtraction ErrorKind = "EXTRACTION"

	// ErrInvocation indicates the compiler process could not be launched.
	ErrInvocation ErrorKind = "INVOCATION"

	// ErrCompilation indicates the compiler exited with a non-zero status.
	ErrCompilation ErrorKind = "COMPILATION"

	// ErrWarningEscalation indicates warnings were found while escalation is on.
	ErrWarningEscalation ErrorKind = "WARNING_ESCALATION"

	// ErrIO indicates an auxiliary file could not be found, copied or uploaded.
	ErrIO ErrorKind = "IO"
)

// BuildError is the single error type returned by the build pipeline.
type BuildError struct {
	// Kind identifies the failure category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Path is the offending file, directory or argument, when there is one.
	Path string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *BuildError of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind ErrorKind) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or "" if err is not a *BuildError.
func KindOf(err error) ErrorKind {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// NewConfigurationError creates a BuildError for a bad configured path.
func NewConfigurationError(message, path string) *BuildError {
	return &BuildError{Kind: ErrConfiguration, Message: message, Path: path}
}

// NewResolutionError wraps a dependency resolution fault.
func NewResolutionError(message string, err error) *BuildError {
	return &BuildError{Kind: ErrResolution, Message: message, Err: err}
}

// NewExtractionError wraps a failure to unpack an archive.
func NewExtractionError(archive string, err error) *BuildError {
	return &BuildError{
		Kind:    ErrExtraction,
		Message: "error extracting classes",
		Path:    archive,
		Err:     err,
	}
}

// NewInvocationError wraps a failure to launch the compiler.
func NewInvocationError(program string, err error) *BuildError {
	return &BuildError{
		Kind:    ErrInvocation,
		Message: "executing compiler failed",
		Path:    program,
		Err:     err,
	}
}

// NewCompilationError reports a non-zero compiler exit status.
func NewCompilationError(program string, exitCode int) *BuildError {
	return &BuildError{
		Kind:    ErrCompilation,
		Message: fmt.Sprintf("compiler exited with status %d; see above output", exitCode),
		Path:    program,
	}
}

// NewWarningEscalationError reports warnings found in compiler output.
// codes must already be distinct and in reporting order.
func NewWarningEscalationError(codes []string) *BuildError {
	suffix := "s"
	if len(codes) == 1 {
		suffix = ""
	}
	return &BuildError{
		Kind:    ErrWarningEscalation,
		Message: fmt.Sprintf("%d warning%s detected in compiler output: %s.", len(codes), suffix, strings.Join(codes, ", ")),
	}
}

// NewIOError wraps a failure to read, copy or upload a file.
func NewIOError(message, path string, err error) *BuildError {
	return &BuildError{Kind: ErrIO, Message: message, Path: path, Err: err}
}
