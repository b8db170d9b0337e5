package controllers

import (
	"context"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/services"
	"github.com/curaious/devboard/internal/services/project"
	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

func RegisterProjectRoutes(r *router.Group, svc *services.Services) {
	// Create project
	r.POST("/projects", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		var body project.CreateProjectRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		created, err := svc.Project.Create(stdCtx, caller, &body)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeCreated(ctx, stdCtx, "Project created successfully", "project", created)
	}))

	// List projects, optionally for one team
	r.GET("/projects", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		teamID, err := optionalUUIDQuery(ctx, "team_id")
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		projects, err := svc.Project.List(stdCtx, caller, project.ListFilter{TeamID: teamID})
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Projects retrieved successfully", "projects", projects)
	}))

	r.GET("/projects/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		p, err := svc.Project.Get(stdCtx, caller, id)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Project retrieved successfully", "project", p)
	}))

	// Update project
	r.PUT("/projects/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		set, err := parseFields(ctx)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		updated, err := svc.Project.Update(stdCtx, caller, id, set)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Project updated successfully", "project", updated)
	}))

	// Delete project
	r.DELETE("/projects/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		if err := svc.Project.Delete(stdCtx, caller, id); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Project deleted successfully", "", nil)
	}))
}
