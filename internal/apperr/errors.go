// Package apperr defines the error taxonomy shared by the gate, the guard,
// the tenant accessor and the handlers, and its mapping onto HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for automated handling.
type Code string

const (
	CodeUnauthenticated    Code = "unauthenticated"
	CodeNoTenant           Code = "no_tenant"
	CodeModuleAccessDenied Code = "module_access_denied"
	CodeRoleForbidden      Code = "role_forbidden"
	CodeTenantMismatch     Code = "tenant_mismatch"
	CodeNotFound           Code = "not_found"
	CodeInvalid            Code = "invalid"
	CodeConflict           Code = "conflict"
	CodeLimitExceeded      Code = "limit_exceeded"
	CodeInternal           Code = "internal"
)

// Error is a classified error. Msg is safe to show to the caller unless the
// code is internal or tenant_mismatch; Op names the failing operation.
type Error struct {
	Code Code
	Msg  string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error with the given code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err as internal under op.
func Wrap(err error, op string) *Error {
	return &Error{Code: CodeInternal, Op: op, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps err to the response status.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeNoTenant, CodeModuleAccessDenied, CodeRoleForbidden, CodeLimitExceeded:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalid:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that may be sent to the client.
// Internal faults and tenant mismatches never leak detail.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	switch e.Code {
	case CodeInternal, CodeTenantMismatch:
		return "internal error"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return e.Msg
}
