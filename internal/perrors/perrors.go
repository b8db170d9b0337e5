package perrors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

type ErrCode struct {
	Code   string `json:"code"`
	Status int    `json:"status"`
}

var (
	ErrCodeInvalidInput    ErrCode = ErrCode{"invalid_input", http.StatusBadRequest}
	ErrCodeUnauthenticated         = ErrCode{"unauthenticated", http.StatusUnauthorized}
	ErrCodeForbidden               = ErrCode{"forbidden", http.StatusForbidden}
	ErrCodeNotFound                = ErrCode{"not_found", http.StatusNotFound}
	ErrCodeConflict                = ErrCode{"conflict", http.StatusConflict}
	ErrCodeInvalidState            = ErrCode{"invalid_state", http.StatusConflict}
	ErrCodeMethodNotAllowed        = ErrCode{"method_not_allowed", http.StatusMethodNotAllowed}
	ErrCodeInternalServer          = ErrCode{"internal_server_error", http.StatusInternalServerError}
)

type Err struct {
	Message    string                   `json:"-"`
	Err        string                   `json:"error"`
	Code       ErrCode                  `json:"-"`
	Stacktrace []string                 `json:"-"`
	Args       []map[string]interface{} `json:"args"`

	cause error
}

func (e Err) Error() string {
	return e.Message + ": " + e.Err
}

func (e Err) Unwrap() error {
	return e.cause
}

func (e Err) HttpStatus() int {
	return e.Code.Status
}

func (e Err) Print(ctx context.Context) {
	args := []any{slog.Any("error", e.Err), slog.String("code", e.Code.Code)}
	if len(e.Args) > 0 {
		for k, v := range e.Args[0] {
			args = append(args, slog.Any(k, v))
		}
	}
	if e.Code.Status >= http.StatusInternalServerError {
		args = append(args, slog.Any("stacktrace", e.Stacktrace))
		slog.ErrorContext(ctx, e.Message, args...)
		return
	}
	slog.WarnContext(ctx, e.Message, args...)
}

func New(code ErrCode, msg string, err error, args ...map[string]interface{}) error {
	pc := make([]uintptr, 20)
	count := runtime.Callers(2, pc)
	frames := runtime.CallersFrames(pc[:count])

	var stacktrace []string
	for count > 0 {
		frame, more := frames.Next()
		stacktrace = append(stacktrace, fmt.Sprintf("%s:%d", frame.File, frame.Line))
		if !more {
			break
		}
	}

	errString := msg
	if err != nil {
		errString = err.Error()
	}

	return Err{
		Code:       code,
		Message:    msg,
		Err:        errString,
		Stacktrace: stacktrace,
		Args:       args,
		cause:      err,
	}
}

func NewErrInvalidInput(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeInvalidInput, msg, err, args...)
}

func NewErrUnauthenticated(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeUnauthenticated, msg, err, args...)
}

func NewErrForbidden(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeForbidden, msg, err, args...)
}

func NewErrNotFound(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeNotFound, msg, err, args...)
}

func NewErrConflict(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeConflict, msg, err, args...)
}

func NewErrInvalidState(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeInvalidState, msg, err, args...)
}

func NewErrInternalServerError(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeInternalServer, msg, err, args...)
}

// CodeOf returns the code carried by err, or ErrCodeInternalServer when err
// is not an Err.
func CodeOf(err error) ErrCode {
	var perr Err
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ErrCodeInternalServer
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var perr Err
	if errors.As(err, &perr) {
		return perr.Message
	}
	return "Internal server error"
}
