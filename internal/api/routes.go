package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/curaious/devboard/internal/api/controllers"
	"github.com/curaious/devboard/internal/api/response"
	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/telemetry"
)

const apiPrefix = "/api/v1"

var tracePropagator = propagation.TraceContext{}

var publicRoutes = map[string]bool{
	"/api/health":                       true,
	apiPrefix + "/auth/signup":          true,
	apiPrefix + "/auth/login":           true,
	apiPrefix + "/auth/forgot-password": true,
	apiPrefix + "/auth/reset-password":  true,
}

func (s *Server) initNewRoutes() fasthttp.RequestHandler {
	r := router.New()

	r.GET("/api/health", func(ctx *fasthttp.RequestCtx) {
		response.NewMessage(requestCtx(ctx), "OK").Write(ctx)
	})

	v1 := r.Group(apiPrefix)
	controllers.RegisterAuthRoutes(v1, s.services, s.auth, s.conf.SECURE_COOKIES)
	controllers.RegisterTeamRoutes(v1, s.services)
	controllers.RegisterProjectRoutes(v1, s.services)
	controllers.RegisterWorkItemRoutes(v1, s.services.Task)
	controllers.RegisterWorkItemRoutes(v1, s.services.Bug)
	controllers.RegisterClientRoutes(v1, s.services)

	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		response.Error(requestCtx(ctx), perrors.NewErrNotFound("Route not found", errors.New(string(ctx.Path())))).Write(ctx)
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		response.Error(requestCtx(ctx), perrors.New(perrors.ErrCodeMethodNotAllowed, "Method not allowed", errors.New(string(ctx.Method())))).Write(ctx)
	}

	return s.withMiddlewares(r.Handler)
}

func (s *Server) withMiddlewares(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		s.applyCORS(ctx)
		if string(ctx.Method()) == fasthttp.MethodOptions {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		start := time.Now()
		method := string(ctx.Method())
		requestURI := string(ctx.RequestURI())
		slog.Info("Started processing", slog.String("method", method), slog.String("request_uri", requestURI))

		h := http.Header{}
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			h[string(k)] = []string{string(v)}
		})
		traceCtx := tracePropagator.Extract(context.Background(), propagation.HeaderCarrier(h))

		stdCtx, span := telemetry.Tracer().Start(traceCtx, method+" "+string(ctx.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.target", requestURI),
			),
		)
		defer span.End()
		ctx.SetUserValue(controllers.RequestContextKey, stdCtx)

		if !isPublicRoute(ctx) {
			if err := s.authenticate(ctx, stdCtx); err != nil {
				response.Error(stdCtx, err).Write(ctx)
				s.finish(ctx, span, method, requestURI, start)
				return
			}
		}

		next(ctx)

		s.finish(ctx, span, method, requestURI, start)
	}
}

// bearerToken extracts the credential of a "Bearer" Authorization header.
// The scheme is matched case-insensitively; other schemes yield "".
func bearerToken(header []byte) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(string(header)), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate is the session gate. On success the caller is attached to the
// request context.
func (s *Server) authenticate(ctx *fasthttp.RequestCtx, stdCtx context.Context) error {
	accessToken := bearerToken(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
	if accessToken == "" {
		accessToken = string(ctx.Request.Header.Cookie(controllers.AccessTokenCookie))
	}

	if accessToken == "" {
		return perrors.NewErrUnauthenticated("Authentication required", errors.New("no access token"))
	}

	claims, err := s.auth.VerifyAccessToken(stdCtx, accessToken)
	if err != nil {
		return perrors.NewErrUnauthenticated("Invalid or expired session", err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return perrors.NewErrUnauthenticated("Invalid or expired session", err)
	}

	u, err := s.services.User.GetByID(stdCtx, userID)
	if err != nil {
		if perrors.HasCode(err, perrors.ErrCodeNotFound) {
			return perrors.NewErrUnauthenticated("Invalid or expired session", err)
		}
		return err
	}

	if !u.Enabled() {
		return perrors.NewErrUnauthenticated("This account is disabled", errors.New("user is disabled"))
	}

	trace.SpanFromContext(stdCtx).SetAttributes(
		attribute.String("user.id", u.ID.String()),
		attribute.String("user.role", string(u.Role)),
	)

	// Store claims and caller for downstream handlers
	ctx.SetUserValue(controllers.ClaimsKey, claims)
	ctx.SetUserValue(controllers.RequestContextKey, authz.WithCaller(stdCtx, u.Caller()))

	return nil
}

func (s *Server) finish(ctx *fasthttp.RequestCtx, span trace.Span, method, requestURI string, start time.Time) {
	status := ctx.Response.StatusCode()
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= fasthttp.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}

	slog.Info("Finished processing",
		slog.String("method", method),
		slog.String("request_uri", requestURI),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	)
}

func (s *Server) applyCORS(ctx *fasthttp.RequestCtx) {
	headers := &ctx.Response.Header
	headers.Set("Access-Control-Allow-Origin", string(ctx.Request.Header.Peek("Origin")))
	headers.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS,PATCH")
	headers.Set("Access-Control-Allow-Headers", s.conf.ALLOWED_HEADERS)
	headers.Set("Access-Control-Allow-Credentials", "true")
}

func isPublicRoute(ctx *fasthttp.RequestCtx) bool {
	return publicRoutes[string(ctx.Path())]
}

func requestCtx(ctx *fasthttp.RequestCtx) context.Context {
	if c, ok := ctx.UserValue(controllers.RequestContextKey).(context.Context); ok {
		return c
	}
	return context.Background()
}
