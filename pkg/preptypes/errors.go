package preptypes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind names one failure form a core operation can resolve to.
type ErrorKind string

// Error kinds surfaced to callers.
const (
	ErrEmptyResponse         ErrorKind = "empty_response"
	ErrMalformedJSON         ErrorKind = "malformed_json"
	ErrIncompleteSchema      ErrorKind = "incomplete_schema"
	ErrAuthConfiguration     ErrorKind = "auth_configuration"
	ErrTransport             ErrorKind = "transport"
	ErrDuplicateAccount      ErrorKind = "duplicate_account"
	ErrNoPendingVerification ErrorKind = "no_pending_verification"
	ErrCodeExpired           ErrorKind = "code_expired"
	ErrInvalidCode           ErrorKind = "invalid_code"
	ErrInvalidCredentials    ErrorKind = "invalid_credentials"
	ErrNotLoggedIn           ErrorKind = "not_logged_in"
	ErrInvalidInput          ErrorKind = "invalid_input"
	ErrUnknown               ErrorKind = "unknown"
)

var defaultMessages = map[ErrorKind]string{
	ErrEmptyResponse:         "No content generated by the AI. The response may have been blocked or is empty.",
	ErrMalformedJSON:         "The AI returned a malformed response that could not be processed. Please try a different topic or try again later.",
	ErrAuthConfiguration:     "There is a configuration issue with the application's API key. Please contact the administrator.",
	ErrTransport:             "An unexpected error occurred while communicating with the AI. Please try again.",
	ErrDuplicateAccount:      "An account with this email already exists.",
	ErrNoPendingVerification: "No pending verification for this email. Please sign up again.",
	ErrCodeExpired:           "Verification code has expired. Please sign up again.",
	ErrInvalidCode:           "Invalid verification code.",
	ErrInvalidCredentials:    "Invalid email or password.",
	ErrNotLoggedIn:           "Please log in to generate a framework.",
	ErrInvalidInput:          "The request is missing required input.",
	ErrUnknown:               "An unknown error occurred.",
}

// PrepError is the single error type core operations return.
// Error() is a sentence safe to show to a user; Err carries diagnostics and is never displayed.
type PrepError struct {
	Kind        ErrorKind
	Message     string
	MissingKeys []string // set for ErrIncompleteSchema
	Err         error
}

func (e *PrepError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if msg, ok := defaultMessages[e.Kind]; ok {
		return msg
	}
	return defaultMessages[ErrUnknown]
}

func (e *PrepError) Unwrap() error { return e.Err }

// NewError builds a PrepError with the kind's default message.
func NewError(kind ErrorKind, cause error) *PrepError {
	return &PrepError{Kind: kind, Err: cause}
}

// NewErrorf builds a PrepError with a custom user-facing message.
func NewErrorf(kind ErrorKind, cause error, format string, args ...interface{}) *PrepError {
	return &PrepError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// NewIncompleteSchemaError reports exactly which required sections are missing.
func NewIncompleteSchemaError(missing []string) *PrepError {
	keys := append([]string(nil), missing...)
	return &PrepError{
		Kind:        ErrIncompleteSchema,
		MissingKeys: keys,
		Message: fmt.Sprintf("AI analysis is incomplete and cannot be displayed. "+
			"The model failed to generate the following required sections: %s. "+
			"This can happen with very broad or sensitive topics. Please try refining your topic.",
			strings.Join(keys, ", ")),
	}
}

// KindOf classifies any error. Errors that are not PrepErrors are ErrUnknown; nil is "".
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var pe *PrepError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrUnknown
}

// IsKind reports whether err is a PrepError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the displayable sentence for err, never a raw diagnostic.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *PrepError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	return defaultMessages[ErrUnknown]
}

// ProviderError is a structured failure from an LLM provider SDK.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Status      string // provider status or error code, e.g. "INVALID_ARGUMENT"
	AuthFailure bool   // the credential or its configuration was rejected
	Err         error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (%d %s): %v", e.Provider, e.StatusCode, e.Status, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
