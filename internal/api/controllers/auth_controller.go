package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/curaious/devboard/internal/api/authenticator"
	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/services"
	"github.com/curaious/devboard/internal/services/user"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

const AccessTokenCookie = "access_token"

// ClaimsKey is the fasthttp user value holding the verified token claims.
const ClaimsKey = "userClaims"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type UpdateStatusRequest struct {
	Status user.Status `json:"status"`
}

func RegisterAuthRoutes(r *router.Group, svc *services.Services, auth *authenticator.Authenticator, secureCookies bool) {
	r.POST("/auth/signup", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body user.SignupRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		created, err := svc.User.Signup(stdCtx, &body)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeCreated(ctx, stdCtx, "User registered successfully", "user", created)
	})

	// Login with email/password
	r.POST("/auth/login", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req LoginRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		if req.Email == "" || req.Password == "" {
			writeError(ctx, stdCtx, perrors.NewErrInvalidInput("Email and password are required", errors.New("missing credentials")))
			return
		}

		u, err := svc.User.Authenticate(stdCtx, req.Email, req.Password)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		token, expiresAt, err := auth.GenerateToken(u.ID, u.Email, u.Role)
		if err != nil {
			writeError(ctx, stdCtx, perrors.NewErrInternalServerError("Failed to generate token", err))
			return
		}

		setAccessCookie(ctx, token, expiresAt, secureCookies)

		writeOK(ctx, stdCtx, "Logged in successfully", "session", LoginResponse{Token: token, ExpiresAt: expiresAt, User: u})
	})

	r.POST("/auth/logout", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		claims, ok := ctx.UserValue(ClaimsKey).(*authenticator.UserClaims)
		if !ok {
			writeError(ctx, stdCtx, perrors.NewErrUnauthenticated("Authentication required", errors.New("no claims on request")))
			return
		}

		if err := auth.Revoke(stdCtx, claims); err != nil {
			writeError(ctx, stdCtx, perrors.NewErrInternalServerError("Failed to revoke session", err))
			return
		}

		setAccessCookie(ctx, "", time.Unix(0, 0), secureCookies)

		writeOK(ctx, stdCtx, "Logged out successfully", "", nil)
	})

	r.POST("/auth/forgot-password", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body ForgotPasswordRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		token, expiresAt, err := svc.User.ForgotPassword(stdCtx, body.Email)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Password reset token issued", "reset", ResetTokenResponse{Token: token, ExpiresAt: expiresAt})
	})

	r.POST("/auth/reset-password", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body ResetPasswordRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		if err := svc.User.ResetPassword(stdCtx, body.Token, body.Password); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Password has been reset", "", nil)
	})

	r.GET("/auth/me", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		u, err := svc.User.GetByID(stdCtx, caller.ID)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "User retrieved successfully", "user", u)
	}))

	r.PUT("/auth/me", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		set, err := parseFields(ctx)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		updated, err := svc.User.UpdateProfile(stdCtx, caller, set)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Profile updated successfully", "user", updated)
	}))

	r.PUT("/auth/password", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		var body ChangePasswordRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		if err := svc.User.ChangePassword(stdCtx, caller, body.CurrentPassword, body.NewPassword); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Password changed successfully", "", nil)
	}))

	r.PUT("/users/{id}/status", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		var body UpdateStatusRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		updated, err := svc.User.UpdateStatus(stdCtx, caller, id, body.Status)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "User status updated successfully", "user", updated)
	}))
}

func setAccessCookie(ctx *fasthttp.RequestCtx, token string, expiresAt time.Time, secure bool) {
	var cookie fasthttp.Cookie
	cookie.SetKey(AccessTokenCookie)
	cookie.SetValue(token)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(expiresAt)
	ctx.Response.Header.SetCookie(&cookie)
}
