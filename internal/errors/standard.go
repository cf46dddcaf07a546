// Package errors provides standardized error codes and messages for the
// Asthra runtime boundary layer.
package errors

import (
	"fmt"
	"runtime"
)

// Code is the stable numeric error code shared with foreign callers and
// generated code. Values cross the FFI boundary and must not be renumbered.
type Code int32

const (
	CodeNone         Code = 0
	CodeNullPointer  Code = 1
	CodeOutOfMemory  Code = 2
	CodeBoundsCheck  Code = 3
	CodeInvalidSlice Code = 4
	CodeOwnership    Code = 5
	CodeTypeMismatch Code = 6
	CodeInvalidArgs  Code = 7
)

// String returns the stable human-readable name for the code.
func (c Code) String() string {
	switch c {
	case CodeNone:
		return "No error"
	case CodeNullPointer:
		return "Null pointer"
	case CodeOutOfMemory:
		return "Out of memory"
	case CodeBoundsCheck:
		return "Bounds check failed"
	case CodeInvalidSlice:
		return "Invalid slice"
	case CodeOwnership:
		return "Ownership violation"
	case CodeTypeMismatch:
		return "Type mismatch"
	case CodeInvalidArgs:
		return "Invalid arguments"
	default:
		return "Unknown error"
	}
}

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryMemory     ErrorCategory = "MEMORY"
	CategoryBounds     ErrorCategory = "BOUNDS"
	CategoryOwnership  ErrorCategory = "OWNERSHIP"
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryFFI        ErrorCategory = "FFI"
)

// RuntimeError provides a consistent error format
type RuntimeError struct {
	Category ErrorCategory
	Kind     string
	Code     Code
	Message  string
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Kind, e.Message, e.Caller)
}

// Is matches errors by Kind so constructed instances compare equal to the
// package sentinels under errors.Is.
func (e *RuntimeError) Is(target error) bool {
	t, ok := target.(*RuntimeError)
	return ok && t.Kind == e.Kind
}

// New creates a new standardized error
func New(category ErrorCategory, kind string, code Code, message string, context map[string]interface{}) *RuntimeError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &RuntimeError{
		Category: category,
		Kind:     kind,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrNullPointer       = &RuntimeError{Category: CategoryMemory, Kind: "NULL_POINTER", Code: CodeNullPointer, Message: "Null pointer"}
	ErrOutOfMemory       = &RuntimeError{Category: CategoryMemory, Kind: "OUT_OF_MEMORY", Code: CodeOutOfMemory, Message: "Out of memory"}
	ErrIndexOutOfBounds  = &RuntimeError{Category: CategoryBounds, Kind: "INDEX_OUT_OF_BOUNDS", Code: CodeBoundsCheck, Message: "Bounds check failed"}
	ErrInvalidSlice      = &RuntimeError{Category: CategoryValidation, Kind: "INVALID_SLICE", Code: CodeInvalidSlice, Message: "Invalid slice"}
	ErrNotRegistered     = &RuntimeError{Category: CategoryOwnership, Kind: "NOT_REGISTERED", Code: CodeOwnership, Message: "Pointer is not registered"}
	ErrAlreadyRegistered = &RuntimeError{Category: CategoryOwnership, Kind: "ALREADY_REGISTERED", Code: CodeOwnership, Message: "Pointer is already registered"}
	ErrNotMutable        = &RuntimeError{Category: CategoryValidation, Kind: "NOT_MUTABLE", Code: CodeInvalidArgs, Message: "Cannot modify immutable slice"}
	ErrTypeMismatch      = &RuntimeError{Category: CategoryValidation, Kind: "TYPE_MISMATCH", Code: CodeTypeMismatch, Message: "Type mismatch"}
	ErrInvalidArgs       = &RuntimeError{Category: CategoryValidation, Kind: "INVALID_ARGS", Code: CodeInvalidArgs, Message: "Invalid arguments"}
)

// Common error constructors
func IndexOutOfBounds(index, length uintptr) *RuntimeError {
	return New(CategoryBounds, "INDEX_OUT_OF_BOUNDS", CodeBoundsCheck,
		fmt.Sprintf("Index %d out of bounds for length %d", index, length),
		map[string]interface{}{"index": index, "length": length})
}

func NullPointer(operation string) *RuntimeError {
	return New(CategoryMemory, "NULL_POINTER", CodeNullPointer,
		fmt.Sprintf("Null pointer in %s", operation),
		map[string]interface{}{"operation": operation})
}

func OutOfMemory(size uintptr, context string) *RuntimeError {
	return New(CategoryMemory, "OUT_OF_MEMORY", CodeOutOfMemory,
		fmt.Sprintf("Failed to allocate %d bytes in %s", size, context),
		map[string]interface{}{"size": size, "context": context})
}

func InvalidSlice(details string) *RuntimeError {
	return New(CategoryValidation, "INVALID_SLICE", CodeInvalidSlice,
		fmt.Sprintf("Invalid slice: %s", details),
		map[string]interface{}{"details": details})
}

func NotRegistered(ptr uintptr) *RuntimeError {
	return New(CategoryOwnership, "NOT_REGISTERED", CodeOwnership,
		fmt.Sprintf("Pointer %#x is not registered", ptr),
		map[string]interface{}{"pointer": ptr})
}

func AlreadyRegistered(ptr uintptr) *RuntimeError {
	return New(CategoryOwnership, "ALREADY_REGISTERED", CodeOwnership,
		fmt.Sprintf("Pointer %#x is already registered", ptr),
		map[string]interface{}{"pointer": ptr})
}

func NotMutable(operation string) *RuntimeError {
	return New(CategoryValidation, "NOT_MUTABLE", CodeInvalidArgs,
		fmt.Sprintf("Cannot modify immutable slice in %s", operation),
		map[string]interface{}{"operation": operation})
}

func TypeMismatch(expected, actual uint32) *RuntimeError {
	return New(CategoryValidation, "TYPE_MISMATCH", CodeTypeMismatch,
		fmt.Sprintf("Type mismatch: expected type id %d, got %d", expected, actual),
		map[string]interface{}{"expected": expected, "actual": actual})
}

func InvalidArgs(operation, details string) *RuntimeError {
	return New(CategoryValidation, "INVALID_ARGS", CodeInvalidArgs,
		fmt.Sprintf("Invalid arguments to %s: %s", operation, details),
		map[string]interface{}{"operation": operation, "details": details})
}
