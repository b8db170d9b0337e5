package controllers

import (
	"context"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/services"
	"github.com/curaious/devboard/internal/services/fields"
	"github.com/curaious/devboard/internal/services/team"
	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type InviteRequest struct {
	Email string `json:"email"`
}

type RespondRequest struct {
	Accept *bool `json:"accept"`
}

type RespondResponse struct {
	Invitation *team.Invitation    `json:"invitation"`
	Membership *team.DeveloperTeam `json:"membership,omitempty"`
}

func RegisterTeamRoutes(r *router.Group, svc *services.Services) {
	r.POST("/teams", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		var body team.CreateTeamRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		created, err := svc.Team.Create(stdCtx, caller, &body)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeCreated(ctx, stdCtx, "Team created successfully", "team", created)
	}))

	r.GET("/teams", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		teams, err := svc.Team.List(stdCtx, caller)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Teams retrieved successfully", "teams", teams)
	}))

	r.GET("/teams/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		t, err := svc.Team.Get(stdCtx, caller, id)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Team retrieved successfully", "team", t)
	}))

	r.PUT("/teams/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		set, err := parseFields(ctx)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		updated, err := svc.Team.Update(stdCtx, caller, id, set)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Team updated successfully", "team", updated)
	}))

	r.DELETE("/teams/{id}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		if err := svc.Team.Delete(stdCtx, caller, id); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Team deleted successfully", "", nil)
	}))

	r.GET("/teams/{id}/members", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		members, err := svc.Team.ListMembers(stdCtx, caller, id)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Team members retrieved successfully", "members", members)
	}))

	r.GET("/teams/{id}/developers", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		developers, err := svc.Team.ListDevelopers(stdCtx, caller, id)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Team developers retrieved successfully", "developers", developers)
	}))

	r.DELETE("/teams/{id}/members/{developerId}", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		developerID, err := pathParamUUID(ctx, "developerId")
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		if err := svc.Team.RemoveMember(stdCtx, caller, id, developerID); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Member removed successfully", "", nil)
	}))

	r.POST("/teams/{id}/invitations", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		var body InviteRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		inv, err := svc.Team.Invite(stdCtx, caller, id, body.Email)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeCreated(ctx, stdCtx, "Invitation sent successfully", "invitation", inv)
	}))

	r.GET("/teams/{id}/invitations", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		invitations, err := svc.Team.ListTeamInvitations(stdCtx, caller, id)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Invitations retrieved successfully", "invitations", invitations)
	}))

	r.GET("/invitations", authed(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller) {
		invitations, err := svc.Team.ListMyInvitations(stdCtx, caller)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		writeOK(ctx, stdCtx, "Invitations retrieved successfully", "invitations", invitations)
	}))

	r.POST("/invitations/{id}/respond", withID(func(ctx *fasthttp.RequestCtx, stdCtx context.Context, caller authz.Caller, id uuid.UUID) {
		var body RespondRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, err)
			return
		}
		if body.Accept == nil {
			writeError(ctx, stdCtx, fields.Invalid("accept", "is required"))
			return
		}

		inv, membership, err := svc.Team.Respond(stdCtx, caller, id, *body.Accept)
		if err != nil {
			writeError(ctx, stdCtx, err)
			return
		}

		msg := "Invitation rejected"
		if *body.Accept {
			msg = "Invitation accepted"
		}
		writeOK(ctx, stdCtx, msg, "invitation", RespondResponse{Invitation: inv, Membership: membership})
	}))
}
