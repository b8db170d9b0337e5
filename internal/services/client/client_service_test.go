package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/config"
	"github.com/curaious/devboard/internal/memstore"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/services"
	"github.com/curaious/devboard/internal/services/client"
	"github.com/curaious/devboard/internal/services/fields"
	"github.com/curaious/devboard/internal/services/team"
	"github.com/curaious/devboard/internal/services/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := services.NewServices(&config.Config{RESET_TOKEN_TTL: time.Hour}, memstore.New().Stores())

	signup := func(name string, role authz.Role) authz.Caller {
		u, err := svc.User.Signup(ctx, &user.SignupRequest{Username: name, Email: name + "@example.com", Password: "secret123", Role: role})
		require.NoError(t, err)
		return u.Caller()
	}
	manager := signup("manny", authz.RoleManager)
	other := signup("otto", authz.RoleManager)
	dev := signup("devon", authz.RoleDeveloper)
	outsider := signup("olga", authz.RoleDeveloper)

	alpha, err := svc.Team.Create(ctx, manager, &team.CreateTeamRequest{Name: "Alpha"})
	require.NoError(t, err)
	inv, err := svc.Team.Invite(ctx, manager, alpha.ID, dev.Email)
	require.NoError(t, err)
	_, _, err = svc.Team.Respond(ctx, dev, inv.ID, true)
	require.NoError(t, err)

	_, err = svc.Client.Create(ctx, manager, &client.CreateClientRequest{TeamID: alpha.ID, Name: "Acme", Type: "Remote"})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidInput))

	_, err = svc.Client.Create(ctx, dev, &client.CreateClientRequest{TeamID: alpha.ID, Name: "Acme", Type: client.TypeLocal})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	_, err = svc.Client.Create(ctx, manager, &client.CreateClientRequest{TeamID: uuid.New(), Name: "Acme", Type: client.TypeLocal})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeNotFound))

	acme, err := svc.Client.Create(ctx, manager, &client.CreateClientRequest{TeamID: alpha.ID, Name: "Acme", Type: client.TypeLocal, Source: "referral"})
	require.NoError(t, err)

	got, err := svc.Client.Get(ctx, dev, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "referral", got.Source)

	_, err = svc.Client.Get(ctx, outsider, acme.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	listed, err := svc.Client.List(ctx, dev, client.ListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = svc.Client.Update(ctx, dev, acme.ID, fields.Set{"name": "Acme Ltd"})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	_, err = svc.Client.Update(ctx, other, acme.ID, fields.Set{"name": "Acme Ltd"})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	_, err = svc.Client.Update(ctx, manager, acme.ID, fields.Set{"team": uuid.New().String()})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidInput))

	updated, err := svc.Client.Update(ctx, manager, acme.ID, fields.Set{"name": "Acme Ltd", "type": "Freelance"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", updated.Name)
	assert.Equal(t, client.TypeFreelance, updated.Type)

	err = svc.Client.Delete(ctx, other, acme.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	require.NoError(t, svc.Client.Delete(ctx, manager, acme.ID))

	_, err = svc.Client.Get(ctx, manager, acme.ID)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeNotFound))
}
