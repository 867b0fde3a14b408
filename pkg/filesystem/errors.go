package filesystem

import (
	"fmt"
	"io/fs"

	"github.com/pkg/errors"
)

// ErrorKind is the logical classification of a filesystem error.
type ErrorKind uint8

const (
	// ErrorKindOther indicates a native failure with no logical mapping.
	ErrorKindOther ErrorKind = iota
	// ErrorKindNotFound indicates that a path does not resolve to any object.
	ErrorKindNotFound
	// ErrorKindAccessDenied indicates that the operating system refused
	// access.
	ErrorKindAccessDenied
	// ErrorKindSharingViolation indicates that the object is exclusively
	// locked by another process.
	ErrorKindSharingViolation
	// ErrorKindInvalidPath indicates malformed path input.
	ErrorKindInvalidPath
	// ErrorKindLinkResolutionFailed indicates that a path is a recognized link
	// whose target could not be decoded.
	ErrorKindLinkResolutionFailed
	// ErrorKindUnsupportedOperation indicates that an operation has no meaning
	// on the current platform.
	ErrorKindUnsupportedOperation
)

// String provides a human-readable representation of an error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNotFound:
		return "not found"
	case ErrorKindAccessDenied:
		return "access denied"
	case ErrorKindSharingViolation:
		return "sharing violation"
	case ErrorKindInvalidPath:
		return "invalid path"
	case ErrorKindLinkResolutionFailed:
		return "link resolution failed"
	case ErrorKindUnsupportedOperation:
		return "unsupported operation"
	default:
		return "native error"
	}
}

// Error is the error type returned by filesystem operations. It pairs a
// logical kind with the native error code that produced it.
type Error struct {
	// Kind is the logical error kind.
	Kind ErrorKind
	// Op is the operation that failed.
	Op string
	// Path is the path on which the operation failed.
	Path string
	// Code is the native error code (an errno value or Win32 error code), or 0
	// if there is none.
	Code uint32
	// Err is the underlying error, if any.
	Err error
}

// Error implements error.Error.
func (e *Error) Error() string {
	message := fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches target. Errors of kind
// ErrorKindNotFound match fs.ErrNotExist, errors of kind
// ErrorKindAccessDenied match fs.ErrPermission, and any *Error target with
// only a kind set matches errors of that kind.
func (e *Error) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return e.Kind == ErrorKindNotFound
	case fs.ErrPermission:
		return e.Kind == ErrorKindAccessDenied
	}
	if other, ok := target.(*Error); ok {
		return other.Op == "" && other.Path == "" && other.Err == nil && other.Kind == e.Kind
	}
	return false
}

// newError creates a new error for the specified operation, classifying the
// underlying error.
func newError(op, path string, err error) *Error {
	kind, code := classify(err)
	return &Error{Kind: kind, Op: op, Path: path, Code: code, Err: err}
}

// newKindError creates a new error of the specified kind with a message.
func newKindError(kind ErrorKind, op, path, message string) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: errors.New(message)}
}

// classify determines the logical kind and native code of an error.
func classify(err error) (ErrorKind, uint32) {
	if err == nil {
		return ErrorKindOther, 0
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind, typed.Code
	}
	if kind, code, ok := classifyNative(err); ok {
		return kind, code
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrorKindNotFound, 0
	case errors.Is(err, fs.ErrPermission):
		return ErrorKindAccessDenied, 0
	case errors.Is(err, fs.ErrInvalid):
		return ErrorKindInvalidPath, 0
	}
	return ErrorKindOther, 0
}

// KindOf returns the logical kind of an error. Errors that do not wrap a
// filesystem or native error report ErrorKindOther.
func KindOf(err error) ErrorKind {
	kind, _ := classify(err)
	return kind
}

// IsKind reports whether err is of the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
