package api

import (
	"net"
	"net/http"
	"testing"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/curaious/devboard/internal/api/authenticator"
	"github.com/curaious/devboard/internal/config"
	"github.com/curaious/devboard/internal/memstore"
	"github.com/curaious/devboard/internal/services"
	"github.com/curaious/devboard/internal/session"
)

type testServer struct {
	t      *testing.T
	client *fasthttp.Client
}

type result struct {
	code int
	body map[string]any
	resp *fasthttp.Response
}

func (r result) status() string {
	s, _ := r.body["status"].(string)
	return s
}

func (r result) object(key string) map[string]any {
	m, _ := r.body[key].(map[string]any)
	return m
}

func (r result) list(key string) []any {
	l, _ := r.body[key].([]any)
	return l
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	conf := &config.Config{
		JWT_SECRET:      "test-secret",
		JWT_ISSUER:      "devboard",
		TOKEN_TTL:       time.Hour,
		RESET_TOKEN_TTL: time.Hour,
		ALLOWED_HEADERS: "Content-Type,Authorization",
	}

	revocations := session.NewInMemoryStore()
	t.Cleanup(revocations.Stop)

	auth, err := authenticator.New(conf, revocations)
	require.NoError(t, err)

	s := New(conf, services.NewServices(conf, memstore.New().Stores()), auth)

	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: s.Handler()}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return &testServer{
		t: t,
		client: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
	}
}

func (ts *testServer) do(method, path, token string, body any, cookies ...*fasthttp.Cookie) result {
	ts.t.Helper()

	authorization := ""
	if token != "" {
		authorization = "Bearer " + token
	}
	return ts.send(method, path, authorization, body, cookies...)
}

// send issues a request with a raw Authorization header value.
func (ts *testServer) send(method, path, authorization string, body any, cookies ...*fasthttp.Cookie) result {
	ts.t.Helper()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI("http://devboard" + path)
	req.Header.SetMethod(method)
	if authorization != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, authorization)
	}
	for _, c := range cookies {
		req.Header.SetCookie(string(c.Key()), string(c.Value()))
	}
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		req.SetBody(raw)
		req.Header.SetContentType("application/json")
	}

	resp := &fasthttp.Response{}
	require.NoError(ts.t, ts.client.Do(req, resp))

	out := result{code: resp.StatusCode(), resp: resp}
	require.NoError(ts.t, json.Unmarshal(resp.Body(), &out.body), string(resp.Body()))
	assert.EqualValues(ts.t, out.code, out.body["responseCode"])

	return out
}

// account signs up and logs in, returning the user id and token.
func (ts *testServer) account(username, role string) (string, string) {
	ts.t.Helper()

	email := username + "@example.com"
	res := ts.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"username": username, "email": email, "password": "password1", "role": role,
	})
	require.Equal(ts.t, http.StatusCreated, res.code, res.body)

	res = ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": email, "password": "password1"})
	require.Equal(ts.t, http.StatusOK, res.code, res.body)

	sess := res.object("session")
	return sess["user"].(map[string]any)["id"].(string), sess["token"].(string)
}

// sessionCookie logs in and returns the access token cookie.
func (ts *testServer) sessionCookie(email string) *fasthttp.Cookie {
	ts.t.Helper()

	res := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": email, "password": "password1"})
	require.Equal(ts.t, http.StatusOK, res.code, res.body)

	cookie := &fasthttp.Cookie{}
	cookie.SetKey("access_token")
	require.True(ts.t, res.resp.Header.Cookie(cookie))
	return cookie
}

func (ts *testServer) create(path, token string, body map[string]any, key string) string {
	ts.t.Helper()

	res := ts.do(http.MethodPost, path, token, body)
	require.Equal(ts.t, http.StatusCreated, res.code, res.body)
	return res.object(key)["id"].(string)
}

func (ts *testServer) invite(managerToken, teamID, username, devToken string) {
	ts.t.Helper()

	inv := ts.create("/api/v1/teams/"+teamID+"/invitations", managerToken, map[string]any{"email": username + "@example.com"}, "invitation")
	res := ts.do(http.MethodPost, "/api/v1/invitations/"+inv+"/respond", devToken, map[string]any{"accept": true})
	require.Equal(ts.t, http.StatusOK, res.code, res.body)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "SUCCESS", res.status())
}

func TestSessionGate(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.account("alice", "manager")

	t.Run("missing token", func(t *testing.T) {
		res := ts.do(http.MethodGet, "/api/v1/teams", "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.code)
		assert.Equal(t, "UNAUTHENTICATED", res.status())
	})

	t.Run("garbage token", func(t *testing.T) {
		res := ts.do(http.MethodGet, "/api/v1/teams", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, res.code)
	})

	t.Run("bearer token", func(t *testing.T) {
		res := ts.do(http.MethodGet, "/api/v1/auth/me", token, nil)
		require.Equal(t, http.StatusOK, res.code)
		assert.Equal(t, "alice", res.object("user")["username"])
		assert.NotContains(t, res.object("user"), "password_hash")
	})

	t.Run("cookie and logout", func(t *testing.T) {
		login := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "alice@example.com", "password": "password1"})
		require.Equal(t, http.StatusOK, login.code)

		cookie := &fasthttp.Cookie{}
		cookie.SetKey("access_token")
		require.True(t, login.resp.Header.Cookie(cookie))
		assert.True(t, cookie.HTTPOnly())

		res := ts.do(http.MethodGet, "/api/v1/auth/me", "", nil, cookie)
		require.Equal(t, http.StatusOK, res.code)

		res = ts.do(http.MethodPost, "/api/v1/auth/logout", "", nil, cookie)
		require.Equal(t, http.StatusOK, res.code)

		res = ts.do(http.MethodGet, "/api/v1/auth/me", "", nil, cookie)
		assert.Equal(t, http.StatusUnauthorized, res.code)

		// other sessions stay valid
		res = ts.do(http.MethodGet, "/api/v1/auth/me", token, nil)
		assert.Equal(t, http.StatusOK, res.code)
	})

	t.Run("authorization scheme", func(t *testing.T) {
		res := ts.send(http.MethodGet, "/api/v1/auth/me", "bearer "+token, nil)
		assert.Equal(t, http.StatusOK, res.code, "lowercase scheme")

		res = ts.send(http.MethodGet, "/api/v1/auth/me", "BEARER  "+token, nil)
		assert.Equal(t, http.StatusOK, res.code, "uppercase scheme")

		res = ts.send(http.MethodGet, "/api/v1/auth/me", "Basic YWxpY2U6cGFzc3dvcmQx", nil)
		assert.Equal(t, http.StatusUnauthorized, res.code, "basic scheme without cookie")

		res = ts.send(http.MethodGet, "/api/v1/auth/me", "Basic YWxpY2U6cGFzc3dvcmQx", nil, ts.sessionCookie("alice@example.com"))
		assert.Equal(t, http.StatusOK, res.code, "basic scheme falls back to cookie")

		res = ts.send(http.MethodGet, "/api/v1/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, res.code, "bare token")
	})

	t.Run("wrong password", func(t *testing.T) {
		res := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "alice@example.com", "password": "nope-nope"})
		assert.Equal(t, http.StatusUnauthorized, res.code)
	})
}

func TestDisabledDeveloperIsLockedOut(t *testing.T) {
	ts := newTestServer(t)
	_, manager := ts.account("manager", "manager")
	devID, dev := ts.account("dev", "developer")

	teamID := ts.create("/api/v1/teams", manager, map[string]any{"name": "Alpha"}, "team")
	ts.invite(manager, teamID, "dev", dev)

	res := ts.do(http.MethodPut, "/api/v1/users/"+devID+"/status", manager, map[string]any{"status": "Disable"})
	require.Equal(t, http.StatusOK, res.code, res.body)

	res = ts.do(http.MethodGet, "/api/v1/teams", dev, nil)
	assert.Equal(t, http.StatusUnauthorized, res.code)

	res = ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "dev@example.com", "password": "password1"})
	assert.Equal(t, http.StatusForbidden, res.code)
}

func TestPasswordReset(t *testing.T) {
	ts := newTestServer(t)
	ts.account("carol", "developer")

	res := ts.do(http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]any{"email": "carol@example.com"})
	require.Equal(t, http.StatusOK, res.code)
	token := res.object("reset")["token"].(string)

	res = ts.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{"token": token, "password": "brand-new"})
	require.Equal(t, http.StatusOK, res.code, res.body)

	res = ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "carol@example.com", "password": "brand-new"})
	assert.Equal(t, http.StatusOK, res.code)

	res = ts.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{"token": token, "password": "again-new"})
	assert.Equal(t, http.StatusBadRequest, res.code)
}

func TestTeamAndProjectAccess(t *testing.T) {
	ts := newTestServer(t)
	_, managerA := ts.account("manager-a", "manager")
	_, managerB := ts.account("manager-b", "manager")
	xID, devX := ts.account("dev-x", "developer")

	alpha := ts.create("/api/v1/teams", managerA, map[string]any{"name": "Alpha"}, "team")

	res := ts.do(http.MethodPost, "/api/v1/teams", managerA, map[string]any{"name": "Alpha"})
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "CONFLICT", res.status())

	project := ts.create("/api/v1/projects", managerA, map[string]any{"team": alpha, "name": "P"}, "project")

	res = ts.do(http.MethodPut, "/api/v1/projects/"+project, managerB, map[string]any{"status": "Completed"})
	assert.Equal(t, http.StatusForbidden, res.code)
	assert.Equal(t, "FORBIDDEN", res.status())

	res = ts.do(http.MethodGet, "/api/v1/projects/"+project, devX, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	inv := ts.create("/api/v1/teams/"+alpha+"/invitations", managerA, map[string]any{"email": "dev-x@example.com"}, "invitation")

	res = ts.do(http.MethodGet, "/api/v1/invitations", devX, nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Len(t, res.list("invitations"), 1)

	res = ts.do(http.MethodPost, "/api/v1/invitations/"+inv+"/respond", devX, map[string]any{"accept": true})
	require.Equal(t, http.StatusOK, res.code, res.body)

	res = ts.do(http.MethodGet, "/api/v1/projects/"+project, devX, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "P", res.object("project")["name"])

	res = ts.do(http.MethodPost, "/api/v1/invitations/"+inv+"/respond", devX, map[string]any{"accept": false})
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "INVALID_STATE", res.status())
	assert.Contains(t, res.body["message"], "accepted")

	res = ts.do(http.MethodGet, "/api/v1/teams/"+alpha+"/members", managerA, nil)
	require.Equal(t, http.StatusOK, res.code)
	developers := 0
	for _, m := range res.list("members") {
		member := m.(map[string]any)
		if member["id"] == xID {
			developers++
			assert.Equal(t, "Developer", member["role"])
		}
	}
	assert.Equal(t, 1, developers)

	res = ts.do(http.MethodPut, "/api/v1/projects/"+project, managerA, map[string]any{"status": "Completed"})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Completed", res.object("project")["status"])

	res = ts.do(http.MethodGet, "/api/v1/projects/00000000-0000-0000-0000-000000000000", managerA, nil)
	assert.Equal(t, http.StatusNotFound, res.code)

	res = ts.do(http.MethodGet, "/api/v1/projects/not-a-uuid", managerA, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "INVALID_INPUT", res.status())
}

func TestTaskCompletionByAssignee(t *testing.T) {
	ts := newTestServer(t)
	_, manager := ts.account("manager", "manager")
	xID, devX := ts.account("dev-x", "developer")
	_, devY := ts.account("dev-y", "developer")

	alpha := ts.create("/api/v1/teams", manager, map[string]any{"name": "Alpha"}, "team")
	ts.invite(manager, alpha, "dev-x", devX)
	ts.invite(manager, alpha, "dev-y", devY)

	project := ts.create("/api/v1/projects", manager, map[string]any{"team": alpha, "name": "P"}, "project")
	task := ts.create("/api/v1/tasks", manager, map[string]any{
		"project_id": project, "developer_id": xID, "name": "T",
	}, "task")

	res := ts.do(http.MethodGet, "/api/v1/tasks/"+task, devY, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	res = ts.do(http.MethodPut, "/api/v1/tasks/"+task, devX, map[string]any{"status": "completed", "priority": "high"})
	assert.Equal(t, http.StatusForbidden, res.code)

	res = ts.do(http.MethodGet, "/api/v1/tasks/"+task, devX, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "active", res.object("task")["status"])
	assert.Equal(t, "medium", res.object("task")["priority"])

	res = ts.do(http.MethodPut, "/api/v1/tasks/"+task, devX, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, res.code, res.body)
	assert.Equal(t, "completed", res.object("task")["status"])

	res = ts.do(http.MethodGet, "/api/v1/tasks", devX, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, res.list("tasks"), 1)

	res = ts.do(http.MethodGet, "/api/v1/tasks", devY, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Empty(t, res.list("tasks"))
}

func TestBugsAndClients(t *testing.T) {
	ts := newTestServer(t)
	_, manager := ts.account("manager", "manager")
	_, other := ts.account("other", "manager")
	xID, devX := ts.account("dev-x", "developer")

	alpha := ts.create("/api/v1/teams", manager, map[string]any{"name": "Alpha"}, "team")
	ts.invite(manager, alpha, "dev-x", devX)
	project := ts.create("/api/v1/projects", manager, map[string]any{"team": alpha, "name": "P"}, "project")

	bug := ts.create("/api/v1/bugs", manager, map[string]any{
		"project_id": project, "developer_id": xID, "name": "Crash", "priority": "high",
	}, "bug")

	res := ts.do(http.MethodGet, "/api/v1/bugs?project_id="+project, manager, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, res.list("bugs"), 1)

	res = ts.do(http.MethodDelete, "/api/v1/bugs/"+bug, other, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	res = ts.do(http.MethodDelete, "/api/v1/bugs/"+bug, devX, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	res = ts.do(http.MethodDelete, "/api/v1/bugs/"+bug, manager, nil)
	assert.Equal(t, http.StatusOK, res.code)

	client := ts.create("/api/v1/clients", manager, map[string]any{"team": alpha, "name": "Acme", "type": "Local"}, "client")

	res = ts.do(http.MethodPut, "/api/v1/clients/"+client, manager, map[string]any{"team": alpha})
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = ts.do(http.MethodPut, "/api/v1/clients/"+client, manager, map[string]any{"type": "Freelance"})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Freelance", res.object("client")["type"])

	res = ts.do(http.MethodGet, "/api/v1/clients?team_id="+alpha, devX, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, res.list("clients"), 1)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer abc":   "abc",
		"BeArEr  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"abc":          "",
		"":             "",
	}

	for header, want := range cases {
		assert.Equal(t, want, bearerToken([]byte(header)), "header %q", header)
	}
}
