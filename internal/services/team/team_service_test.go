package team_test

import (
	"context"
	"testing"
	"time"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/config"
	"github.com/curaious/devboard/internal/memstore"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/services"
	"github.com/curaious/devboard/internal/services/fields"
	"github.com/curaious/devboard/internal/services/project"
	"github.com/curaious/devboard/internal/services/team"
	"github.com/curaious/devboard/internal/services/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *services.Services
	store *memstore.Store
}

func newFixture() *fixture {
	store := memstore.New()
	return &fixture{
		svc:   services.NewServices(&config.Config{RESET_TOKEN_TTL: time.Hour}, store.Stores()),
		store: store,
	}
}

func (f *fixture) user(t *testing.T, name string, role authz.Role) authz.Caller {
	t.Helper()
	u, err := f.svc.User.Signup(context.Background(), &user.SignupRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return u.Caller()
}

func (f *fixture) team(t *testing.T, manager authz.Caller, name string) *team.Team {
	t.Helper()
	created, err := f.svc.Team.Create(context.Background(), manager, &team.CreateTeamRequest{Name: name})
	require.NoError(t, err)
	return created
}

func (f *fixture) join(t *testing.T, manager, dev authz.Caller, tm *team.Team) {
	t.Helper()
	ctx := context.Background()
	inv, err := f.svc.Team.Invite(ctx, manager, tm.ID, dev.Email)
	require.NoError(t, err)
	_, _, err = f.svc.Team.Respond(ctx, dev, inv.ID, true)
	require.NoError(t, err)
}

func TestCreateTeam(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	managerA := f.user(t, "anna", authz.RoleManager)
	managerB := f.user(t, "bert", authz.RoleManager)
	dev := f.user(t, "devon", authz.RoleDeveloper)

	alpha := f.team(t, managerA, "Alpha")
	assert.Equal(t, managerA.ID, alpha.ManagerID)
	assert.Equal(t, team.StatusActive, alpha.Status)

	_, err := f.svc.Team.Create(ctx, managerA, &team.CreateTeamRequest{Name: "Alpha"})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeConflict), "got %v", err)

	// names are scoped per manager and case sensitive
	f.team(t, managerB, "Alpha")
	f.team(t, managerA, "alpha")

	_, err = f.svc.Team.Create(ctx, dev, &team.CreateTeamRequest{Name: "Devs"})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	_, err = f.svc.Team.Create(ctx, managerA, &team.CreateTeamRequest{Name: "  "})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidInput))
}

func TestInviteAndAccept(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	manager := f.user(t, "manny", authz.RoleManager)
	dev := f.user(t, "devon", authz.RoleDeveloper)
	alpha := f.team(t, manager, "Alpha")

	inv, err := f.svc.Team.Invite(ctx, manager, alpha.ID, "DEVON@example.com")
	require.NoError(t, err)
	assert.Equal(t, team.InvitationPending, inv.Status)
	assert.Equal(t, "devon@example.com", inv.InvitedEmail)

	_, err = f.svc.Team.Invite(ctx, manager, alpha.ID, dev.Email)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeConflict), "second pending invitation")

	mine, err := f.svc.Team.ListMyInvitations(ctx, dev)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, inv.ID, mine[0].ID)

	accepted, membership, err := f.svc.Team.Respond(ctx, dev, inv.ID, true)
	require.NoError(t, err)
	assert.Equal(t, team.InvitationAccepted, accepted.Status)
	require.NotNil(t, accepted.ResponseDate)
	require.NotNil(t, membership.InvitationID)
	assert.Equal(t, inv.ID, *membership.InvitationID)
	assert.Equal(t, team.MemberRoleDeveloper, membership.Role)

	ok, err := f.store.Members.Exists(ctx, dev.ID, alpha.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := f.svc.Team.ListMembers(ctx, manager, alpha.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, manager.ID, members[0].UserID)
	assert.Equal(t, team.MemberRoleManager, members[0].Role)
	assert.Equal(t, alpha.CreatedAt, members[0].JoinedAt)
	assert.Equal(t, dev.ID, members[1].UserID)
	assert.Equal(t, team.MemberRoleDeveloper, members[1].Role)

	devView, err := f.svc.Team.ListMembers(ctx, dev, alpha.ID)
	require.NoError(t, err)
	require.Len(t, devView, 1)
	assert.Equal(t, dev.ID, devView[0].UserID)

	_, err = f.svc.Team.Invite(ctx, manager, alpha.ID, dev.Email)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeConflict), "already a member")

	teams, err := f.svc.Team.List(ctx, dev)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, alpha.ID, teams[0].ID)
}

func TestInvitePreconditions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	manager := f.user(t, "manny", authz.RoleManager)
	other := f.user(t, "otto", authz.RoleManager)
	dev := f.user(t, "devon", authz.RoleDeveloper)
	alpha := f.team(t, manager, "Alpha")

	cases := []struct {
		name   string
		caller authz.Caller
		email  string
		code   perrors.ErrCode
	}{
		{"unknown email", manager, "ghost@example.com", perrors.ErrCodeNotFound},
		{"manager invitee", manager, other.Email, perrors.ErrCodeForbidden},
		{"foreign manager", other, dev.Email, perrors.ErrCodeForbidden},
		{"developer inviter", dev, dev.Email, perrors.ErrCodeForbidden},
		{"empty email", manager, " ", perrors.ErrCodeInvalidInput},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.svc.Team.Invite(ctx, c.caller, alpha.ID, c.email)
			assert.True(t, perrors.HasCode(err, c.code), "got %v", err)
		})
	}

	t.Run("missing team", func(t *testing.T) {
		_, err := f.svc.Team.Invite(ctx, manager, dev.ID, dev.Email)
		assert.True(t, perrors.HasCode(err, perrors.ErrCodeNotFound))
	})
}

func TestRespondToInvitation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	manager := f.user(t, "manny", authz.RoleManager)
	dev := f.user(t, "devon", authz.RoleDeveloper)
	stranger := f.user(t, "sam", authz.RoleDeveloper)
	alpha := f.team(t, manager, "Alpha")

	inv, err := f.svc.Team.Invite(ctx, manager, alpha.ID, dev.Email)
	require.NoError(t, err)

	_, _, err = f.svc.Team.Respond(ctx, stranger, inv.ID, true)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	rejected, membership, err := f.svc.Team.Respond(ctx, dev, inv.ID, false)
	require.NoError(t, err)
	assert.Nil(t, membership)
	assert.Equal(t, team.InvitationRejected, rejected.Status)

	_, _, err = f.svc.Team.Respond(ctx, dev, inv.ID, true)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidState), "got %v", err)
	assert.Contains(t, perrors.Message(err), "rejected")
	assert.ErrorIs(t, err, team.ErrInvitationNotPending)

	ok, err := f.store.Members.Exists(ctx, dev.ID, alpha.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// a rejected invitation no longer blocks a new one
	again, err := f.svc.Team.Invite(ctx, manager, alpha.ID, dev.Email)
	require.NoError(t, err)
	_, _, err = f.svc.Team.Respond(ctx, dev, again.ID, true)
	require.NoError(t, err)

	_, _, err = f.svc.Team.Respond(ctx, dev, again.ID, true)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidState))
	assert.Contains(t, perrors.Message(err), "accepted")

	all, err := f.svc.Team.ListTeamInvitations(ctx, manager, alpha.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, again.ID, all[0].ID)
}

func TestAcceptKeepsInvitationPendingWhenMembershipFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	manager := f.user(t, "manny", authz.RoleManager)
	dev := f.user(t, "devon", authz.RoleDeveloper)
	alpha := f.team(t, manager, "Alpha")

	inv, err := f.svc.Team.Invite(ctx, manager, alpha.ID, dev.Email)
	require.NoError(t, err)

	// membership created out of band between invite and accept
	_, err = f.store.Members.Add(ctx, &team.DeveloperTeam{DeveloperID: dev.ID, TeamID: alpha.ID, Role: team.MemberRoleDeveloper})
	require.NoError(t, err)

	_, _, err = f.svc.Team.Respond(ctx, dev, inv.ID, true)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeConflict), "got %v", err)

	stored, err := f.store.Invitations.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, team.InvitationPending, stored.Status)
}

func TestUpdateTeam(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	manager := f.user(t, "manny", authz.RoleManager)
	other := f.user(t, "otto", authz.RoleManager)
	dev := f.user(t, "devon", authz.RoleDeveloper)
	alpha := f.team(t, manager, "Alpha")
	f.team(t, manager, "Beta")
	f.join(t, manager, dev, alpha)

	updated, err := f.svc.Team.Update(ctx, manager, alpha.ID, fields.Set{"purpose": "ship it", "status": "Inactive"})
	require.NoError(t, err)
	assert.Equal(t, "ship it", updated.Purpose)
	assert.Equal(t, team.StatusInactive, updated.Status)

	cases := []struct {
		name   string
		caller authz.Caller
		set    fields.Set
		code   perrors.ErrCode
	}{
		{"rename onto sibling", manager, fields.Set{"name": "Beta"}, perrors.ErrCodeConflict},
		{"manager field", manager, fields.Set{"manager": other.ID.String()}, perrors.ErrCodeInvalidInput},
		{"bad status", manager, fields.Set{"status": "Archived"}, perrors.ErrCodeInvalidInput},
		{"empty body", manager, fields.Set{}, perrors.ErrCodeInvalidInput},
		{"foreign manager", other, fields.Set{"purpose": "x"}, perrors.ErrCodeForbidden},
		{"member developer", dev, fields.Set{"purpose": "x"}, perrors.ErrCodeForbidden},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.svc.Team.Update(ctx, c.caller, alpha.ID, c.set)
			assert.True(t, perrors.HasCode(err, c.code), "got %v", err)
		})
	}

	got, err := f.svc.Team.Get(ctx, dev, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)

	_, err = f.svc.Team.Get(ctx, other, alpha.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))
}

func TestDeleteTeamCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	manager := f.user(t, "manny", authz.RoleManager)
	other := f.user(t, "otto", authz.RoleManager)
	alpha := f.team(t, manager, "Alpha")

	p, err := f.svc.Project.Create(ctx, manager, &project.CreateProjectRequest{TeamID: alpha.ID, Name: "P"})
	require.NoError(t, err)

	err = f.svc.Team.Delete(ctx, other, alpha.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	require.NoError(t, f.svc.Team.Delete(ctx, manager, alpha.ID))

	_, err = f.svc.Team.Get(ctx, manager, alpha.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeNotFound))

	_, err = f.svc.Project.Get(ctx, manager, p.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeNotFound))
}

func TestRemoveMember(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	manager := f.user(t, "manny", authz.RoleManager)
	dev := f.user(t, "devon", authz.RoleDeveloper)
	alpha := f.team(t, manager, "Alpha")
	f.join(t, manager, dev, alpha)

	err := f.svc.Team.RemoveMember(ctx, dev, alpha.ID, dev.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	require.NoError(t, f.svc.Team.RemoveMember(ctx, manager, alpha.ID, dev.ID))

	err = f.svc.Team.RemoveMember(ctx, manager, alpha.ID, dev.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeNotFound))

	_, err = f.svc.Team.Get(ctx, dev, alpha.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	devs, err := f.svc.Team.ListDevelopers(ctx, manager, alpha.ID)
	require.NoError(t, err)
	assert.Empty(t, devs)
}
