package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport         = NewError("TRANSPORT", "network transport failure", http.StatusBadGateway)
	ErrUpstream          = NewError("UPSTREAM", "upstream service returned failure", http.StatusBadGateway)
	ErrMalformedResponse = NewError("MALFORMED_RESPONSE", "unexpected response shape", http.StatusBadGateway)
	ErrUnavailable       = NewError("UNAVAILABLE", "service unavailable", http.StatusServiceUnavailable)
	ErrNotFound          = NewError("NOT_FOUND", "resource not found", http.StatusNotFound)
	ErrValidation        = NewError("VALIDATION_ERROR", "validation failed", http.StatusBadRequest)
	ErrInternal          = NewError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
)

type RetryableError interface {
	error
	IsRetryable() bool
}

type FatalError interface {
	error
	IsFatal() bool
}

type Error struct {
	Code      string
	Message   string
	Status    int
	Details   map[string]interface{}
	Cause     error
	retryable *bool
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) IsRetryable() bool {
	if e.retryable != nil {
		return *e.retryable
	}
	if e.Cause != nil {
		var retryableErr RetryableError
		if errors.As(e.Cause, &retryableErr) {
			return retryableErr.IsRetryable()
		}
		var fatalErr FatalError
		if errors.As(e.Cause, &fatalErr) {
			return !fatalErr.IsFatal()
		}
	}
	// Transport and upstream failures are transient by default; shape and
	// validation problems are not.
	switch e.Code {
	case ErrValidation.Code, ErrNotFound.Code, ErrMalformedResponse.Code:
		return false
	}
	return true
}

func (e *Error) IsFatal() bool {
	if e.retryable != nil {
		return !*e.retryable
	}

	if e.Cause != nil {
		var fatalErr FatalError
		if errors.As(e.Cause, &fatalErr) {
			return fatalErr.IsFatal()
		}
	}

	return !e.IsRetryable()
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	// Copy the map so derived errors never mutate the shared sentinel.
	err.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		err.Details[k] = v
	}
	err.Details[key] = value
	return &err
}

func (e *Error) AsRetryable() *Error {
	err := *e
	retryable := true
	err.retryable = &retryable
	return &err
}

func (e *Error) AsFatal() *Error {
	err := *e
	retryable := false
	err.retryable = &retryable
	return &err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}

func HasCode(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsTransport(err error) bool         { return HasCode(err, ErrTransport.Code) }
func IsUpstream(err error) bool          { return HasCode(err, ErrUpstream.Code) }
func IsMalformedResponse(err error) bool { return HasCode(err, ErrMalformedResponse.Code) }
func IsUnavailable(err error) bool       { return HasCode(err, ErrUnavailable.Code) }
func IsNotFound(err error) bool          { return HasCode(err, ErrNotFound.Code) }
func IsValidation(err error) bool        { return HasCode(err, ErrValidation.Code) }

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func ToErrorResponse(err error) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal.WithCause(err)
	}

	response := map[string]interface{}{
		"error":      appErr.Message,
		"error_code": appErr.Code,
	}

	if len(appErr.Details) > 0 {
		response["details"] = appErr.Details
	}

	return response
}
