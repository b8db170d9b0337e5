package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/curaious/devboard/internal/perrors"
)

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// Response is the envelope every endpoint writes:
//
//	{"responseCode": 200, "status": "SUCCESS", "message": "...", "<key>": data}
//
// The payload key is omitted when key is empty.
type Response[T any] struct {
	ctx     context.Context
	Code    int
	Status  string
	Message string
	Key     string
	Data    T

	err *perrors.Err
}

func NewResponse[T any](ctx context.Context, msg string, key string, data T) *Response[T] {
	return &Response[T]{
		ctx:     ctx,
		Code:    http.StatusOK,
		Status:  StatusSuccess,
		Message: msg,
		Key:     key,
		Data:    data,
	}
}

// NewMessage is a response that carries no payload.
func NewMessage(ctx context.Context, msg string) *Response[any] {
	return NewResponse[any](ctx, msg, "", nil)
}

// Error builds the envelope for err.
func Error(ctx context.Context, err error) *Response[any] {
	return NewMessage(ctx, "").WithError(err)
}

// WithError sets code, status and message from err. Errors that are not
// perrors.Err are reported as internal server errors.
func (r *Response[T]) WithError(err error) *Response[T] {
	var perr perrors.Err
	if !errors.As(err, &perr) {
		msg := r.Message
		if msg == "" {
			msg = "Internal server error"
		}
		perr = perrors.NewErrInternalServerError(msg, err).(perrors.Err)
	}
	perr.Print(r.ctx)

	r.err = &perr
	r.Code = perr.HttpStatus()
	r.Status = StatusOf(perr.Code)
	r.Message = perr.Message
	r.Key = ""

	return r
}

// WithStatus will set the HTTP response status code.
//
// Prefer perrors.Err for errors; this is meant for 201 and similar.
func (r *Response[T]) WithStatus(code int) *Response[T] {
	r.Code = code

	return r
}

// StatusOf returns the symbolic status for an error code.
func StatusOf(code perrors.ErrCode) string {
	if code == perrors.ErrCodeInternalServer {
		return StatusError
	}
	return strings.ToUpper(code.Code)
}

// Body returns the envelope as written to the wire.
func (r *Response[T]) Body() map[string]any {
	body := map[string]any{
		"responseCode": r.Code,
		"status":       r.Status,
		"message":      r.Message,
	}
	if r.Key != "" {
		body[r.Key] = r.Data
	}
	if r.err != nil && len(r.err.Args) > 0 {
		if field, ok := r.err.Args[0]["field"]; ok {
			body["field"] = field
		}
	}
	return body
}

// Write will set the `content-type` to `application/json` and write the response to the fasthttp context.
func (r *Response[T]) Write(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("content-type", "application/json")
	ctx.SetStatusCode(r.Code)

	body, err := json.Marshal(r.Body())
	if err != nil {
		slog.ErrorContext(r.ctx, "Unable to json encode response", slog.Any("error", err))
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.SetBody(body)
}
