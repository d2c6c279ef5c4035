package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing and for
// the exit-code mapping in the CLI layer.
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Format errors (reading a bank)
	ErrBadMagic             ErrorCode = "BAD_MAGIC"
	ErrCorruptHeader        ErrorCode = "CORRUPT_HEADER"
	ErrUnsupportedVersion   ErrorCode = "UNSUPPORTED_VERSION"
	ErrTruncatedDirectory   ErrorCode = "TRUNCATED_DIRECTORY"
	ErrCorruptEntry         ErrorCode = "CORRUPT_ENTRY"
	ErrBadMetadataReference ErrorCode = "BAD_METADATA_REFERENCE"
	ErrMalformedIndex       ErrorCode = "MALFORMED_INDEX"

	// Write errors (creating a bank)
	ErrEmptyBank     ErrorCode = "EMPTY_BANK"
	ErrDuplicatePath ErrorCode = "DUPLICATE_PATH"
	ErrBankSealed    ErrorCode = "BANK_SEALED"

	// Extraction errors
	ErrPathEscape        ErrorCode = "PATH_ESCAPE"
	ErrExtractIncomplete ErrorCode = "EXTRACT_INCOMPLETE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileCreate   ErrorCode = "FILE_CREATE"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// KibankError represents a structured error with code and details
type KibankError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *KibankError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *KibankError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *KibankError) Is(target error) bool {
	var targetErr *KibankError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new KibankError with the given code and message
func New(code ErrorCode, message string) *KibankError {
	return &KibankError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new KibankError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *KibankError {
	return &KibankError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a KibankError
func Wrap(err error, code ErrorCode, message string) *KibankError {
	if err == nil {
		return nil
	}
	return &KibankError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *KibankError {
	if err == nil {
		return nil
	}
	return &KibankError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *KibankError) WithDetail(key string, value interface{}) *KibankError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var kerr *KibankError
	if errors.As(err, &kerr) {
		return kerr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if
// not a KibankError
func GetErrorCode(err error) ErrorCode {
	var kerr *KibankError
	if errors.As(err, &kerr) {
		return kerr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a KibankError
func GetErrorDetails(err error) map[string]interface{} {
	var kerr *KibankError
	if errors.As(err, &kerr) {
		return kerr.Details
	}
	return nil
}
