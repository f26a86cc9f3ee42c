package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGeneration represents language model failures. Always fatal to a session.
	ErrorTypeGeneration ErrorType = "generation"
	// ErrorTypeTool represents retrieval tool failures. Recovered with placeholder text.
	ErrorTypeTool ErrorType = "tool"
	// ErrorTypeProfile represents participant names with no profile. Recovered with an empty profile.
	ErrorTypeProfile ErrorType = "profile"
	// ErrorTypeParse represents moderator output that could not be parsed
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeSession represents invalid discussion state reached at runtime
	ErrorTypeSession ErrorType = "session"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Kind returns the error category. Promoted to every typed error embedding BaseError.
func (e *BaseError) Kind() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Generation Errors

// ErrGenerationFailed is returned when the text generator fails for a role
type ErrGenerationFailed struct {
	*BaseError
	Role  string
	Model string
}

func NewGenerationFailed(role, model string, err error) *ErrGenerationFailed {
	return &ErrGenerationFailed{
		BaseError: NewBaseError(ErrorTypeGeneration, fmt.Sprintf("text generation failed for role %s", role), err),
		Role:      role,
		Model:     model,
	}
}

// ErrEmptyGeneration is returned when the model answers with no choices or blank text
var ErrEmptyGeneration = NewBaseError(ErrorTypeGeneration, "text generator returned no content", nil)

// Tool Errors

// ErrToolFailed is returned when a retrieval tool fails
type ErrToolFailed struct {
	*BaseError
	ToolKind string
}

func NewToolFailed(kind, reason string, err error) *ErrToolFailed {
	return &ErrToolFailed{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("tool %s failed: %s", kind, reason), err),
		ToolKind:  kind,
	}
}

// ErrToolNotFound is returned when a requested tool kind is not registered
type ErrToolNotFound struct {
	*BaseError
	ToolKind string
}

func NewToolNotFound(kind string) *ErrToolNotFound {
	return &ErrToolNotFound{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("tool not found: %s", kind), nil),
		ToolKind:  kind,
	}
}

// Profile Errors

// ErrProfileUnresolved is reported when a participant name has no profile
type ErrProfileUnresolved struct {
	*BaseError
	Name string
}

func NewProfileUnresolved(name string) *ErrProfileUnresolved {
	return &ErrProfileUnresolved{
		BaseError: NewBaseError(ErrorTypeProfile, fmt.Sprintf("no profile for participant: %s", name), nil),
		Name:      name,
	}
}

// Parse Errors

// ErrSelectionUnparsed is reported when the moderator reply lacks the next speaker tag
type ErrSelectionUnparsed struct {
	*BaseError
	Raw string
}

func NewSelectionUnparsed(raw string) *ErrSelectionUnparsed {
	return &ErrSelectionUnparsed{
		BaseError: NewBaseError(ErrorTypeParse, "next speaker tag missing from moderator reply", nil),
		Raw:       raw,
	}
}

// Session Errors

// ErrSpeakerUnresolved is returned when a Speak step has no valid guest to speak
type ErrSpeakerUnresolved struct {
	*BaseError
	Speaker string
}

func NewSpeakerUnresolved(speaker string) *ErrSpeakerUnresolved {
	return &ErrSpeakerUnresolved{
		BaseError: NewBaseError(ErrorTypeSession, fmt.Sprintf("cannot speak as %q", speaker), nil),
		Speaker:   speaker,
	}
}

// ErrInvalidTransition is returned when the stage machine is asked for an illegal move
type ErrInvalidTransition struct {
	*BaseError
	From string
	To   string
}

func NewInvalidTransition(from, to string) *ErrInvalidTransition {
	return &ErrInvalidTransition{
		BaseError: NewBaseError(ErrorTypeSession, fmt.Sprintf("invalid transition: %s -> %s", from, to), nil),
		From:      from,
		To:        to,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error, or anything it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if typed, ok := err.(interface{ Kind() ErrorType }); ok && typed.Kind() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsFatal reports whether an error must end a discussion session
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return IsErrorType(err, ErrorTypeGeneration) ||
		IsErrorType(err, ErrorTypeSession) ||
		IsErrorType(err, ErrorTypeContext)
}
