package controllers

import (
	"context"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/services"
	"github.com/curaious/devboard/internal/services/client"
	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

func RegisterClientRoutes(r *router.Group, svc *services.Services) {
	r.POST("/clients", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		var body client.CreateClientRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		created, err := svc.Client.Create(stdCtx, caller, &body)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeCreated(ctx, stdCtx, "Client created successfully", "client", created)
	}))

	r.GET("/clients", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		teamID, err := optionalUUIDQuery(ctx, "team_id")
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		clients, err := svc.Client.List(stdCtx, caller, client.ListFilter{TeamID: teamID})
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Clients retrieved successfully", "clients", clients)
	}))

	r.GET("/clients/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		c, err := svc.Client.Get(stdCtx, caller, id)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Client retrieved successfully", "client", c)
	}))

	r.PUT("/clients/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		set, err := parseFields(ctx)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		updated, err := svc.Client.Update(stdCtx, caller, id, set)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Client updated successfully", "client", updated)
	}))

	r.DELETE("/clients/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		if err := svc.Client.Delete(stdCtx, caller, id); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Client deleted successfully", "", nil)
	}))
}
