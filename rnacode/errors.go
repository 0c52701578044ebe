package rnacode

import (
	"errors"
	"fmt"
)

// ErrorCode represents categorized error codes
type ErrorCode int

const (
	CodeAssertionFailure       ErrorCode = 1
	CodeGrammarInvalid         ErrorCode = 10
	CodeUnparsable             ErrorCode = 20
	CodeDegenerateDistribution ErrorCode = 30
	CodeDecodeExhausted        ErrorCode = 40
	CodeInvalidRNA             ErrorCode = 50
	CodeBadContainer           ErrorCode = 102
	CodeVerificationMismatch   ErrorCode = 1005
)

func (e ErrorCode) String() string {
	switch e {
	case CodeAssertionFailure:
		return "AssertionFailure"
	case CodeGrammarInvalid:
		return "GrammarInvalid"
	case CodeUnparsable:
		return "Unparsable"
	case CodeDegenerateDistribution:
		return "DegenerateDistribution"
	case CodeDecodeExhausted:
		return "DecodeExhausted"
	case CodeInvalidRNA:
		return "InvalidRNA"
	case CodeBadContainer:
		return "BadContainer"
	case CodeVerificationMismatch:
		return "VerificationMismatch"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(e))
	}
}

// CodingError represents an error from grammar coding
type CodingError struct {
	Code    ErrorCode
	Message string
}

func (e *CodingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a CodingError with the same code, so that
// errors.Is(err, ErrUnparsable) matches every Unparsable error.
func (e *CodingError) Is(target error) bool {
	var other *CodingError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// NewCodingError creates a new CodingError
func NewCodingError(code ErrorCode, message string) *CodingError {
	return &CodingError{Code: code, Message: message}
}

// errorf creates a CodingError with a formatted message
func errorf(code ErrorCode, format string, args ...any) error {
	return &CodingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCodingError checks if an error is a CodingError and returns it
func IsCodingError(err error) (*CodingError, bool) {
	var codingErr *CodingError
	if errors.As(err, &codingErr) {
		return codingErr, true
	}
	return nil, false
}

// Common errors
var (
	ErrAssertionFailure       = &CodingError{Code: CodeAssertionFailure, Message: "assertion failure"}
	ErrGrammarInvalid         = &CodingError{Code: CodeGrammarInvalid, Message: "invalid grammar"}
	ErrUnparsable             = &CodingError{Code: CodeUnparsable, Message: "input not derivable from grammar"}
	ErrDegenerateDistribution = &CodingError{Code: CodeDegenerateDistribution, Message: "degenerate distribution"}
	ErrDecodeExhausted        = &CodingError{Code: CodeDecodeExhausted, Message: "input bits exhausted"}
	ErrInvalidRNA             = &CodingError{Code: CodeInvalidRNA, Message: "invalid RNA"}
	ErrBadContainer           = &CodingError{Code: CodeBadContainer, Message: "bad container"}
	ErrVerificationMismatch   = &CodingError{Code: CodeVerificationMismatch, Message: "verification failed"}
)
