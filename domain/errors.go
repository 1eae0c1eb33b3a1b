package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for fix application. Check them with errors.Is.
var (
	// ErrMissingNewCode indicates an operation that needs replacement code has none.
	ErrMissingNewCode = errors.New("operation requires new code")

	// ErrLineOutOfRange indicates an operation targets a line the file does not have.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrStaleOperation indicates the text at the target line no longer matches OldCode.
	ErrStaleOperation = errors.New("target line changed since the fix was planned")

	// ErrUnsupportedAction indicates an action the patch compiler does not know.
	ErrUnsupportedAction = errors.New("unsupported fix action")

	// ErrPathEscapesRoot indicates a structural operation writing outside its origin directory.
	ErrPathEscapesRoot = errors.New("path escapes the origin directory")

	// ErrOverlappingFix indicates a fix whose byte range overlaps one already accepted.
	ErrOverlappingFix = errors.New("fix overlaps another fix in the same file")
)

// ErrorKind names the family of a service level error
type ErrorKind string

const (
	ErrorKindAnalysis ErrorKind = "analysis"
	ErrorKindConfig   ErrorKind = "config"
	ErrorKindFix      ErrorKind = "fix"
)

// Error is a service level error carrying its kind and cause
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewAnalysisError wraps err as an analysis failure
func NewAnalysisError(message string, err error) error {
	return &Error{Kind: ErrorKindAnalysis, Message: message, Err: err}
}

// NewConfigError wraps err as a configuration failure
func NewConfigError(message string, err error) error {
	return &Error{Kind: ErrorKindConfig, Message: message, Err: err}
}

// NewFixError wraps err as a fix failure
func NewFixError(message string, err error) error {
	return &Error{Kind: ErrorKindFix, Message: message, Err: err}
}

// IsKind reports whether err is a domain Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
