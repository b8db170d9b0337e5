package response

import (
	"context"
	"errors"
	"net/http"
	"testing"

	json "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/curaious/devboard/internal/perrors"
)

func decode(t *testing.T, ctx *fasthttp.RequestCtx) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	return body
}

func TestSuccessEnvelope(t *testing.T) {
	rc := &fasthttp.RequestCtx{}
	NewResponse(context.Background(), "Team created", "team", map[string]string{"name": "Alpha"}).
		WithStatus(http.StatusCreated).
		Write(rc)

	assert.Equal(t, http.StatusCreated, rc.Response.StatusCode())
	assert.Equal(t, "application/json", string(rc.Response.Header.ContentType()))

	body := decode(t, rc)
	assert.EqualValues(t, http.StatusCreated, body["responseCode"])
	assert.Equal(t, StatusSuccess, body["status"])
	assert.Equal(t, "Team created", body["message"])
	assert.Equal(t, map[string]any{"name": "Alpha"}, body["team"])
}

func TestMessageHasNoPayload(t *testing.T) {
	body := NewMessage(context.Background(), "Logged out").Body()
	assert.Len(t, body, 3)
}

func TestErrorEnvelope(t *testing.T) {
	cases := []struct {
		err    error
		code   int
		status string
	}{
		{perrors.NewErrForbidden("nope", nil), http.StatusForbidden, "FORBIDDEN"},
		{perrors.NewErrNotFound("missing", nil), http.StatusNotFound, "NOT_FOUND"},
		{perrors.NewErrConflict("dup", nil), http.StatusConflict, "CONFLICT"},
		{perrors.NewErrInvalidState("done", nil), http.StatusConflict, "INVALID_STATE"},
		{perrors.NewErrUnauthenticated("who", nil), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{errors.New("boom"), http.StatusInternalServerError, StatusError},
	}

	for _, c := range cases {
		t.Run(c.status, func(t *testing.T) {
			rc := &fasthttp.RequestCtx{}
			Error(context.Background(), c.err).Write(rc)

			assert.Equal(t, c.code, rc.Response.StatusCode())
			body := decode(t, rc)
			assert.EqualValues(t, c.code, body["responseCode"])
			assert.Equal(t, c.status, body["status"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestErrorDropsPayloadAndNamesField(t *testing.T) {
	err := perrors.NewErrInvalidInput("bad", nil, map[string]any{"field": "email"})
	body := NewResponse(context.Background(), "", "user", 1).WithError(err).Body()

	assert.NotContains(t, body, "user")
	assert.Equal(t, "email", body["field"])
	assert.Equal(t, "INVALID_INPUT", body["status"])
}
