package perrors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	cause := errors.New("boom")

	cases := []struct {
		err  error
		code ErrCode
	}{
		{NewErrForbidden("nope", cause), ErrCodeForbidden},
		{NewErrNotFound("missing", nil), ErrCodeNotFound},
		{fmt.Errorf("wrapped: %w", NewErrConflict("dup", cause)), ErrCodeConflict},
		{NewErrInvalidState("done", nil), ErrCodeInvalidState},
		{cause, ErrCodeInternalServer},
	}

	for _, c := range cases {
		assert.Equal(t, c.code, CodeOf(c.err))
		assert.True(t, HasCode(c.err, c.code))
	}
	assert.False(t, HasCode(nil, ErrCodeInternalServer))
}

func TestErrUnwrapsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewErrConflict("Team with this name already exists", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Team with this name already exists", Message(err))
	assert.Equal(t, "Internal server error", Message(cause))

	var perr Err
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusConflict, perr.HttpStatus())
	assert.NotEmpty(t, perr.Stacktrace)
}

func TestErrWithoutCauseUsesMessage(t *testing.T) {
	err := NewErrUnauthenticated("Missing credential", nil)

	var perr Err
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, "Missing credential", perr.Err)
	assert.Nil(t, errors.Unwrap(err))
}

func TestStacktraceKeepsOutermostFrame(t *testing.T) {
	err := New(ErrCodeNotFound, "missing", nil)

	pc := make([]uintptr, 20)
	frames := runtime.CallersFrames(pc[:runtime.Callers(1, pc)])
	var want []string
	for {
		frame, more := frames.Next()
		want = append(want, fmt.Sprintf("%s:%d", frame.File, frame.Line))
		if !more {
			break
		}
	}

	var perr Err
	assert.ErrorAs(t, err, &perr)
	assert.Len(t, perr.Stacktrace, len(want))
	assert.True(t, strings.Contains(perr.Stacktrace[0], "perrors_test.go"), perr.Stacktrace[0])
	assert.Equal(t, want[len(want)-1], perr.Stacktrace[len(perr.Stacktrace)-1])
}
