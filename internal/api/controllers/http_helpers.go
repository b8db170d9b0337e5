package controllers

import (
	"context"
	"errors"
	"fmt"

	json "github.com/bytedance/sonic"
	"github.com/curaious/devboard/internal/api/response"
	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/services/fields"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// RequestContextKey is the fasthttp user value holding the request's
// context.Context, populated by the server middleware.
const RequestContextKey = "requestCtx"

// requestContext returns the context the middleware attached to the request,
// carrying the trace span and the authenticated caller.
func requestContext(ctx *fasthttp.RequestCtx) context.Context {
	if c, ok := ctx.UserValue(RequestContextKey).(context.Context); ok {
		return c
	}
	return context.Background()
}

// callerOf returns the caller attached by the session gate.
func callerOf(stdCtx context.Context) (authz.Caller, error) {
	caller, ok := authz.CallerFromContext(stdCtx)
	if !ok {
		return authz.Caller{}, perrors.NewErrUnauthenticated("Authentication required", errors.New("no caller on context"))
	}
	return caller, nil
}

func parseBody(ctx *fasthttp.RequestCtx, target any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return perrors.NewErrInvalidInput("Invalid request body", errors.New("request body is empty"))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return perrors.NewErrInvalidInput("Invalid request body", err)
	}
	return nil
}

// parseFields decodes a partial update body.
func parseFields(ctx *fasthttp.RequestCtx) (fields.Set, error) {
	set := fields.Set{}
	if err := parseBody(ctx, &set); err != nil {
		return nil, err
	}
	return set, nil
}

func writeError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	response.Error(stdCtx, err).Write(ctx)
}

func writeOK(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, key string, data any) {
	response.NewResponse(stdCtx, message, key, data).Write(ctx)
}

func writeCreated(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, key string, data any) {
	response.NewResponse(stdCtx, message, key, data).WithStatus(fasthttp.StatusCreated).Write(ctx)
}

func pathParam(ctx *fasthttp.RequestCtx, key string) (string, error) {
	val := ctx.UserValue(key)
	if val == nil {
		return "", fmt.Errorf("%s is required", key)
	}

	return fmt.Sprint(val), nil
}

func pathParamUUID(ctx *fasthttp.RequestCtx, key string) (uuid.UUID, error) {
	val, err := pathParam(ctx, key)
	if err != nil {
		return uuid.Nil, perrors.NewErrInvalidInput("Invalid ID format", err, map[string]any{"field": key})
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, perrors.NewErrInvalidInput("Invalid ID format", err, map[string]any{"field": key})
	}
	return id, nil
}

// optionalUUIDQuery returns nil when the query parameter is absent.
func optionalUUIDQuery(ctx *fasthttp.RequestCtx, key string) (*uuid.UUID, error) {
	raw := ctx.QueryArgs().Peek(key)
	if len(raw) == 0 {
		return nil, nil
	}

	id, err := uuid.ParseBytes(raw)
	if err != nil {
		return nil, perrors.NewErrInvalidInput(fmt.Sprintf("Invalid %s parameter", key), err, map[string]any{"field": key})
	}
	return &id, nil
}

// authed wraps a handler that needs the caller.
func authed(h func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller)) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		caller, err := callerOf(stdCtx)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}
		h(ctx, stdCtx, caller)
	}
}

// withID wraps a handler addressed by the {id} path parameter.
func withID(h func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID)) fasthttp.RequestHandler {
	return authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}
		h(ctx, stdCtx, caller, id)
	})
}
