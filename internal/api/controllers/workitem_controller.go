package controllers

import (
	"context"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/services/workitem"
	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// RegisterWorkItemRoutes mounts the task or bug endpoints of svc. The payload
// key is the kind for single items and its plural for lists.
func RegisterWorkItemRoutes(r *router.Group, svc *workitem.Service) {
	one := string(svc.Kind())
	many := one + "s"
	title := svc.Kind().Title()

	r.POST("/"+many, authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		var body workitem.CreateRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		created, err := svc.Create(stdCtx, caller, &body)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeCreated(ctx, stdCtx, title+" created successfully", one, created)
	}))

	r.GET("/"+many, authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		projectID, err := optionalUUIDQuery(ctx, "project_id")
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		items, err := svc.List(stdCtx, caller, workitem.ListFilter{ProjectID: projectID})
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, title+"s retrieved successfully", many, items)
	}))

	r.GET("/"+many+"/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		item, err := svc.Get(stdCtx, caller, id)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, title+" retrieved successfully", one, item)
	}))

	r.PUT("/"+many+"/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		set, err := parseFields(ctx)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		updated, err := svc.Update(stdCtx, caller, id, set)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, title+" updated successfully", one, updated)
	}))

	r.DELETE("/"+many+"/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		if err := svc.Delete(stdCtx, caller, id); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, title+" deleted successfully", "", nil)
	}))
}
