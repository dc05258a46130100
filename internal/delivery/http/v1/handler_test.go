package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/mpmf/NexxtTask/internal/delivery/http/v1"
	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/services"
	"github.com/mpmf/NexxtTask/tests/testutil"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := testutil.NewTestStore(t)
	logger := zerolog.Nop()
	h := v1.New(
		logger,
		services.NewAuthService(logger, s, "nexxttask-test", []byte("secret"), time.Hour, 24*time.Hour),
		services.NewTaskService(logger, s),
		services.NewTagService(logger, s),
		services.NewUserService(logger, s),
	)

	router := gin.New()
	h.Register(router.Group("/api/v1"))
	return &testServer{t: t, router: router}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) signUp(email string) (userID, token string) {
	ts.t.Helper()

	rec := ts.do(http.MethodPost, "/auth/signup", "", gin.H{
		"email":     email,
		"password":  "password123",
		"full_name": "Test User",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		UserID      string `json:"user_id"`
		AccessToken string `json:"access_token"`
	}
	decode(ts.t, rec, &res)
	return res.UserID, res.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	return body.Error
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/tasks", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userID, token := ts.signUp("alice@example.com")

	rec = ts.do(http.MethodPost, "/auth/signup", "", gin.H{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/auth/signup", "", gin.H{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/auth/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user model.User
	decode(t, rec, &user)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)

	rec = ts.do(http.MethodPost, "/auth/signin", "", gin.H{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/auth/signin", "", gin.H{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var signedIn struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decode(t, rec, &signedIn)

	rec = ts.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": signedIn.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = ts.do(http.MethodPost, "/auth/signout", signedIn.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodGet, "/auth/user", signedIn.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)
	_, alice := ts.signUp("alice@example.com")
	bobID, bob := ts.signUp("bob@example.com")

	rec := ts.do(http.MethodPost, "/tasks", alice, gin.H{
		"title":       "Plan launch",
		"description": "Q3",
		"checklists": []gin.H{
			{"title": "Prep", "items": []string{"draft", "review"}},
		},
		"tag_names": []string{"launch", " launch ", "marketing"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task model.Task
	decode(t, rec, &task)
	require.Len(t, task.Checklists, 1)
	require.Len(t, task.Checklists[0].Items, 2)
	assert.Len(t, task.Tags, 2)
	assert.Equal(t, 0, task.Progress)

	rec = ts.do(http.MethodGet, "/tasks/"+task.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPatch, "/tasks/"+task.ID, bob, gin.H{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "you do not have access to this task")

	rec = ts.do(http.MethodPost, "/tasks/"+task.ID+"/assignments", alice, gin.H{"user_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodPost, "/tasks/"+task.ID+"/assignments", alice, gin.H{"user_id": bobID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	itemID := task.Checklists[0].Items[0].ID
	rec = ts.do(http.MethodPost, "/items/"+itemID+"/toggle", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/tasks/"+task.ID+"/progress", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var progress struct {
		Progress int `json:"progress"`
	}
	decode(t, rec, &progress)
	assert.Equal(t, 50, progress.Progress)

	rec = ts.do(http.MethodPut, "/tasks/"+task.ID+"/status", bob, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPut, "/tasks/"+task.ID+"/status", bob, gin.H{"status": "paused"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodDelete, "/tasks/"+task.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "only the task owner can delete this task")

	rec = ts.do(http.MethodDelete, "/tasks/"+task.ID, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodGet, "/tasks/"+task.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTasks_ViewsAndPages(t *testing.T) {
	ts := newTestServer(t)
	_, alice := ts.signUp("alice@example.com")

	var ids []string
	for i := 0; i < 12; i++ {
		rec := ts.do(http.MethodPost, "/tasks", alice, gin.H{"title": "Task", "tag_names": []string{"Backend"}})
		require.Equal(t, http.StatusCreated, rec.Code)
		var task model.Task
		decode(t, rec, &task)
		ids = append(ids, task.ID)
	}
	rec := ts.do(http.MethodPut, "/tasks/"+ids[0]+"/status", alice, gin.H{"status": "canceled"})
	require.Equal(t, http.StatusOK, rec.Code)

	type listResponse struct {
		Tasks      []model.Task `json:"tasks"`
		TotalPages int          `json:"total_pages"`
		Total      int          `json:"total"`
	}

	rec = ts.do(http.MethodGet, "/tasks?view=active&page=2", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res listResponse
	decode(t, rec, &res)
	assert.Equal(t, 11, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Len(t, res.Tasks, 1)

	rec = ts.do(http.MethodGet, "/tasks?view=archived", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = listResponse{}
	decode(t, rec, &res)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, ids[0], res.Tasks[0].ID)

	rec = ts.do(http.MethodGet, "/tasks?tag=front", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = listResponse{}
	decode(t, rec, &res)
	assert.Equal(t, 0, res.Total)

	rec = ts.do(http.MethodGet, "/tasks?tag=back&per_page=50", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = listResponse{}
	decode(t, rec, &res)
	assert.Len(t, res.Tasks, 12)

	rec = ts.do(http.MethodGet, "/tasks?view=sideways", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChecklistRoutes(t *testing.T) {
	ts := newTestServer(t)
	_, alice := ts.signUp("alice@example.com")

	rec := ts.do(http.MethodPost, "/tasks", alice, gin.H{"title": "Lists"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task model.Task
	decode(t, rec, &task)

	rec = ts.do(http.MethodPost, "/tasks/"+task.ID+"/checklists", alice, gin.H{"title": "A"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var a model.Checklist
	decode(t, rec, &a)

	rec = ts.do(http.MethodPost, "/tasks/"+task.ID+"/checklists", alice, gin.H{"title": "B", "items": []string{"x"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var b model.Checklist
	decode(t, rec, &b)
	assert.Equal(t, 1, b.Position)

	rec = ts.do(http.MethodPut, "/tasks/"+task.ID+"/checklists/order", alice, gin.H{"ids": []string{b.ID, a.ID}})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodPatch, "/checklists/"+a.ID, alice, gin.H{"title": "A2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/checklists/"+a.ID+"/items", alice, gin.H{"content": "first"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var item model.ChecklistItem
	decode(t, rec, &item)

	rec = ts.do(http.MethodPatch, "/items/"+item.ID, alice, gin.H{"is_checked": true})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &item)
	assert.True(t, item.IsChecked)

	rec = ts.do(http.MethodGet, "/tasks/"+task.ID, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &task)
	require.Len(t, task.Checklists, 2)
	assert.Equal(t, b.ID, task.Checklists[0].ID)
	assert.Equal(t, "A2", task.Checklists[1].Title)
	assert.Equal(t, 50, task.Progress)

	rec = ts.do(http.MethodDelete, "/items/"+item.ID, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodDelete, "/items/"+item.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodDelete, "/checklists/"+a.ID, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTagRoutes(t *testing.T) {
	ts := newTestServer(t)
	_, alice := ts.signUp("alice@example.com")
	ts.signUp("bob@example.com")

	rec := ts.do(http.MethodPost, "/tags", alice, gin.H{"name": "infra"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var tag model.Tag
	decode(t, rec, &tag)

	rec = ts.do(http.MethodPost, "/tags", alice, gin.H{"name": "infra"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/tags/resolve", alice, gin.H{"names": []string{"infra", "ops"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var resolved []model.Tag
	decode(t, rec, &resolved)
	require.Len(t, resolved, 2)
	assert.Equal(t, tag.ID, resolved[0].ID)

	rec = ts.do(http.MethodGet, "/tags", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/tasks", alice, gin.H{"title": "Tagged"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task model.Task
	decode(t, rec, &task)

	rec = ts.do(http.MethodPost, "/tasks/"+task.ID+"/tags", alice, gin.H{"tag_id": tag.ID})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodPost, "/tasks/"+task.ID+"/tags", alice, gin.H{"tag_id": tag.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = ts.do(http.MethodDelete, "/tasks/"+task.ID+"/tags/"+tag.ID, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodGet, "/team-members", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var members []model.TeamMember
	decode(t, rec, &members)
	assert.Len(t, members, 2)
}
