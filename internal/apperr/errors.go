// Package apperr defines the error variants that cross layer boundaries and
// the precedence used to translate them into HTTP responses.
package apperr

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Kind tags an application error.
type Kind uint8

const (
	KindApplication Kind = iota
	KindNotFound
	KindInvalidInput
	KindStorage
	KindDataIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "UserNotFoundError"
	case KindInvalidInput:
		return "InvalidInputError"
	case KindStorage:
		return "StorageError"
	case KindDataIntegrity:
		return "DataIntegrityError"
	default:
		return "ApplicationError"
	}
}

var defaults = map[Kind]struct {
	code    int
	message string
}{
	KindApplication:   {http.StatusInternalServerError, "An unexpected error occurred."},
	KindNotFound:      {http.StatusNotFound, "User not found."},
	KindInvalidInput:  {http.StatusBadRequest, "Invalid input provided."},
	KindStorage:       {http.StatusInternalServerError, "A storage operation failed."},
	KindDataIntegrity: {http.StatusInternalServerError, "Stored data failed validation."},
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Error is an application-defined failure carrying its own HTTP status.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Payload map[string]any

	cause    error
	origin   error
	reported atomic.Bool
}

// New builds an Error of the given kind. Empty message and zero code fall
// back to the kind's defaults.
func New(kind Kind, message string, code int, cause error) *Error {
	d := defaults[kind]
	if message == "" {
		message = d.message
	}
	if code == 0 {
		code = d.code
	}
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		cause:   cause,
		origin:  errors.New(message),
	}
}

// UserNotFound is returned when a read finds no users at all.
func UserNotFound() *Error {
	return New(KindNotFound, "No users found in the system.", 0, nil)
}

// InvalidInput wraps a rejected request value.
func InvalidInput(message string, cause error) *Error {
	return New(KindInvalidInput, message, 0, cause)
}

// Storage wraps a failed read or write against the database.
func Storage(message string, cause error) *Error {
	return New(KindStorage, message, 0, cause)
}

// DataIntegrity wraps a stored record that no longer satisfies the domain rules.
func DataIntegrity(message string, cause error) *Error {
	return New(KindDataIntegrity, message, 0, cause)
}

// WithPayload attaches extra response fields and returns e.
func (e *Error) WithPayload(payload map[string]any) *Error {
	e.Payload = payload
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// StackTrace returns the stack captured when the error was built.
func (e *Error) StackTrace() errors.StackTrace {
	if st, ok := e.origin.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// Body is the JSON response body: payload fields, then message and code.
func (e *Error) Body() map[string]any {
	body := make(map[string]any, len(e.Payload)+2)
	for k, v := range e.Payload {
		body[k] = v
	}
	body["message"] = e.Message
	body["code"] = e.Code
	return body
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is returned when an inbound DTO cannot be built.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var httpDescriptions = map[int]string{
	http.StatusBadRequest:       "The browser (or proxy) sent a request that this server could not understand.",
	http.StatusNotFound:         "The requested URL was not found on the server. If you entered the URL manually please check your spelling and try again.",
	http.StatusMethodNotAllowed: "The method is not allowed for the requested URL.",
}

// HTTPError is a failure raised by the transport itself, such as an unknown route.
type HTTPError struct {
	Code    int
	Name    string
	Message string
}

// NewHTTPError builds an HTTPError with the standard name and description for code.
func NewHTTPError(code int) *HTTPError {
	msg, ok := httpDescriptions[code]
	if !ok {
		msg = http.StatusText(code)
	}
	return &HTTPError{Code: code, Name: http.StatusText(code), Message: msg}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, e.Name, e.Message)
}

// Category is the branch of the error registry an error falls into.
type Category uint8

const (
	CategoryApplication Category = iota + 1
	CategoryValidation
	CategoryHTTP
	CategoryUnexpected
)

func (c Category) String() string {
	switch c {
	case CategoryApplication:
		return "application"
	case CategoryValidation:
		return "validation"
	case CategoryHTTP:
		return "http"
	default:
		return "unexpected"
	}
}

// Classify picks the first matching category in registry order.
func Classify(err error) Category {
	var appErr *Error
	var valErr *ValidationError
	var httpErr *HTTPError
	switch {
	case errors.As(err, &appErr):
		return CategoryApplication
	case errors.As(err, &valErr):
		return CategoryValidation
	case errors.As(err, &httpErr):
		return CategoryHTTP
	default:
		return CategoryUnexpected
	}
}

// HasStack reports whether err or anything it wraps carries a stack trace.
func HasStack(err error) bool {
	for err != nil {
		if st, ok := err.(stackTracer); ok && st.StackTrace() != nil {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
