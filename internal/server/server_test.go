package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spicyhq/peppers/internal/authorization"
	"github.com/spicyhq/peppers/internal/config"
	"github.com/spicyhq/peppers/internal/kv"
	"github.com/spicyhq/peppers/internal/notify"
	"github.com/spicyhq/peppers/internal/observability"
	pepperdomain "github.com/spicyhq/peppers/internal/pepper/domain"
	pepperrepo "github.com/spicyhq/peppers/internal/pepper/repository"
	pepperservice "github.com/spicyhq/peppers/internal/pepper/service"
	"github.com/spicyhq/peppers/internal/revision"
	"github.com/spicyhq/peppers/internal/seed"
)

type peppersResponse struct {
	Peppers []pepperdomain.Pepper `json:"peppers"`
}

type errorBody struct {
	Error struct {
		Type    string            `json:"type"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	store := kv.NewMemoryStore()
	tracker := revision.NewTracker(store, log)
	repo := pepperrepo.New(store, tracker, log)
	svc := pepperservice.New(pepperservice.Params{Log: log, Repo: repo})

	enforcer, err := authorization.NewEnforcer()
	require.NoError(t, err)
	authz := authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer})

	reader := revision.NewCachedReader(tracker, func() time.Duration { return 0 }, nil)
	notifier := notify.New(reader, log, notify.Options{
		PollInterval:      func() time.Duration { return 5 * time.Millisecond },
		BackoffMultiplier: func() int { return 2 },
	})

	holder, err := config.NewStreamConfigHolder(log)
	require.NoError(t, err)

	engine := NewEngine(observability.Config{Environment: "test"})
	return NewServer(ServerParams{
		Gin:       engine,
		Cfg:       config.Config{},
		Log:       log,
		PepperSvc: svc,
		AuthzSvc:  authz,
		Notifier:  notifier,
		Revisions: reader,
		Holder:    holder,
	})
}

func doRequest(t *testing.T, srv *Server, method, path, role string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", "org-1")
	req.Header.Set("X-Member-ID", "m1")
	if role != "" {
		req.Header.Set("X-Member-Role", role)
	}

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodePeppers(t *testing.T, rec *httptest.ResponseRecorder) []pepperdomain.Pepper {
	t.Helper()
	var resp peppersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Peppers
}

func TestListRequiresTenantHeader(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/peppers", nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListReturnsSeededPeppers(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/peppers", "member", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	peppers := decodePeppers(t, rec)
	assert.Len(t, peppers, len(seed.DefaultPeppers()))
}

func TestAddPepper(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/peppers", "member", map[string]string{
		"pepperText": "YAML is a programming language",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	peppers := decodePeppers(t, rec)
	require.Len(t, peppers, len(seed.DefaultPeppers())+1)

	added := peppers[len(peppers)-1]
	assert.Equal(t, "YAML is a programming language", added.Text)
	assert.Equal(t, "m1", added.CreatorID)
}

func TestAddPepperRejectsEmptyText(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/peppers", "member", map[string]string{
		"pepperText": "   ",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Type)
}

func TestDeleteForeignPepperForbiddenForMember(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/peppers", "member", nil)
	peppers := decodePeppers(t, rec)
	seedID := peppers[0].ID

	rec = doRequest(t, srv, http.MethodDelete, "/api/peppers/"+seedID, "member", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ownership_error", body.Error.Type)
	assert.Equal(t, seedID, body.Error.Details["pepperID"])
	assert.Equal(t, "m1", body.Error.Details["memberID"])
}

func TestAdminDeletesForeignPepper(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/peppers", "admin", nil)
	peppers := decodePeppers(t, rec)
	seedID := peppers[0].ID

	rec = doRequest(t, srv, http.MethodDelete, "/api/peppers/"+seedID, "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	peppers = decodePeppers(t, rec)
	assert.Len(t, peppers, len(seed.DefaultPeppers())-1)
}

func TestResetRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/api/peppers", "member", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "forbidden", body.Error.Type)
}

func TestAdminResetsTenant(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/peppers", "admin", map[string]string{
		"pepperText": "temporary",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodDelete, "/api/peppers", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	peppers := decodePeppers(t, rec)
	assert.Len(t, peppers, len(seed.DefaultPeppers()))
}

func TestUpvoteRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/peppers", "member", nil)
	peppers := decodePeppers(t, rec)
	target := peppers[len(peppers)-1].ID

	rec = doRequest(t, srv, http.MethodPost, "/api/peppers/"+target+"/upvotes", "member", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	peppers = decodePeppers(t, rec)
	// One upvote moves the pepper to the top.
	require.Equal(t, target, peppers[0].ID)
	assert.True(t, peppers[0].HasUpvote("m1"))

	rec = doRequest(t, srv, http.MethodDelete, "/api/peppers/"+target+"/upvotes", "member", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	peppers = decodePeppers(t, rec)
	assert.Equal(t, target, peppers[len(peppers)-1].ID)
}

func TestStateChangesStreamsInitialRevision(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Engine())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/peppers/state-changes", nil)
	require.NoError(t, err)
	req.Header.Set("X-Org-ID", "org-1")
	req.Header.Set("X-Member-ID", "m1")
	req.Header.Set("X-Member-Role", "member")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	require.NotEmpty(t, data)

	var event struct {
		Revision int64  `json:"revision"`
		Reason   string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, "current", event.Reason)
	assert.Equal(t, int64(1), event.Revision)
}
