package api_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask_OwnerIsRequester(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.register("Alice", "alice@example.com")
	bob, _ := s.register("Bob", "bob@example.com")

	w := s.doJSON(http.MethodPost, "/tasks", aliceToken, map[string]interface{}{
		"description": "  water plants  ",
		"owner":       bob.ID.String(),
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var task api.TaskResponse
	decode(t, w, &task)
	assert.Equal(t, alice.ID, task.Owner)
	assert.Equal(t, "water plants", task.Description)
	assert.False(t, task.Completed)
}

func TestCreateTask_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "missing description", body: `{"completed":true}`, wantMsg: "description is required"},
		{name: "blank description", body: `{"description":"   "}`, wantMsg: "description is required"},
		{name: "wrong type", body: `{"description":"x","completed":"yes"}`, wantMsg: api.MsgInvalidBody},
		{name: "not json", body: `description=x`, wantMsg: api.MsgInvalidBody},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			_, token := s.register("Alice", "alice@example.com")

			w := s.do(http.MethodPost, "/tasks", token, tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.wantMsg, errorBody(t, w).Error)
			assert.Zero(t, s.db.TaskCount())
		})
	}
}

func TestTasks_RequireAuthentication(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Alice", "alice@example.com")
	task := s.createTask(token, "read", false)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/tasks"},
		{http.MethodGet, "/tasks"},
		{http.MethodGet, "/tasks/" + task.ID.String()},
		{http.MethodPatch, "/tasks/" + task.ID.String()},
		{http.MethodDelete, "/tasks/" + task.ID.String()},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := s.do(p.method, p.path, "", `{"description":"x"}`)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Please authenticate.", errorBody(t, w).Error)
		})
	}
	assert.Equal(t, 1, s.db.TaskCount())
}

func TestListTasks_ScopedToRequester(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register("Alice", "alice@example.com")
	_, bobToken := s.register("Bob", "bob@example.com")

	s.createTask(aliceToken, "alice 1", false)
	s.createTask(aliceToken, "alice 2", true)
	s.createTask(bobToken, "bob 1", true)

	for _, query := range []string{"", "?completed=true", "?completed=false", "?sortBy=description:asc&limit=5"} {
		t.Run(query, func(t *testing.T) {
			w := s.do(http.MethodGet, "/tasks"+query, bobToken, "")
			require.Equal(t, http.StatusOK, w.Code)

			var tasks []api.TaskResponse
			decode(t, w, &tasks)
			for _, task := range tasks {
				assert.Equal(t, "bob 1", task.Description)
			}
		})
	}
}

func TestListTasks_Filters(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Alice", "alice@example.com")

	s.createTask(token, "a", false)
	s.createTask(token, "b", true)
	s.createTask(token, "c", false)
	s.createTask(token, "d", true)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"a", "b", "c", "d"}},
		{query: "?completed=true", want: []string{"b", "d"}},
		{query: "?completed=false", want: []string{"a", "c"}},
		{query: "?completed=nope", want: []string{"a", "c"}},
		{query: "?sortBy=description:desc", want: []string{"d", "c", "b", "a"}},
		{query: "?sortBy=description:asc", want: []string{"a", "b", "c", "d"}},
		{query: "?sortBy=description", want: []string{"d", "c", "b", "a"}},
		{query: "?sortBy=owner:asc", want: []string{"a", "b", "c", "d"}},
		{query: "?sortBy=completed:asc", want: []string{"a", "c", "b", "d"}},
		{query: "?limit=2", want: []string{"a", "b"}},
		{query: "?limit=2&skip=1", want: []string{"b", "c"}},
		{query: "?skip=3", want: []string{"d"}},
		{query: "?skip=10", want: []string{}},
		{query: "?limit=2abc", want: []string{"a", "b"}},
		{query: "?limit=abc&skip=xyz", want: []string{"a", "b", "c", "d"}},
		{query: "?limit=0", want: []string{"a", "b", "c", "d"}},
		{query: "?limit=-1", want: []string{"a", "b", "c", "d"}},
		{query: "?completed=true&sortBy=description:desc&limit=1", want: []string{"d"}},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			w := s.do(http.MethodGet, "/tasks"+tc.query, token, "")
			require.Equal(t, http.StatusOK, w.Code)

			var tasks []api.TaskResponse
			decode(t, w, &tasks)
			got := make([]string, 0, len(tasks))
			for _, task := range tasks {
				got = append(got, task.Description)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetTask(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register("Alice", "alice@example.com")
	_, bobToken := s.register("Bob", "bob@example.com")
	task := s.createTask(aliceToken, "private", false)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{name: "owner", path: "/tasks/" + task.ID.String(), token: aliceToken, wantStatus: http.StatusOK},
		{name: "other user", path: "/tasks/" + task.ID.String(), token: bobToken, wantStatus: http.StatusNotFound},
		{name: "unknown id", path: "/tasks/" + uuid.NewString(), token: aliceToken, wantStatus: http.StatusNotFound},
		{name: "malformed id", path: "/tasks/not-an-id", token: aliceToken, wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(http.MethodGet, tc.path, tc.token, "")
			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus == http.StatusOK {
				var got api.TaskResponse
				decode(t, w, &got)
				assert.Equal(t, task.ID, got.ID)
			} else {
				assert.Equal(t, api.MsgTaskNotFound, errorBody(t, w).Error)
			}
		})
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Alice", "alice@example.com")
	task := s.createTask(token, "draft", false)
	path := "/tasks/" + task.ID.String()

	w := s.do(http.MethodPatch, path, token, `{"completed":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated api.TaskResponse
	decode(t, w, &updated)
	assert.True(t, updated.Completed)
	assert.Equal(t, "draft", updated.Description)

	w = s.do(http.MethodPatch, path, token, `{"description":"final","completed":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &updated)
	assert.False(t, updated.Completed)
	assert.Equal(t, "final", updated.Description)
}

func TestUpdateTask_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "disallowed field alone",
			body:       `{"owner":"` + uuid.NewString() + `"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    api.MsgInvalidUpdates,
		},
		{
			name:       "disallowed field with allowed ones",
			body:       `{"description":"changed","completed":true,"_id":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    api.MsgInvalidUpdates,
		},
		{
			name:       "wrong type",
			body:       `{"completed":"yes"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    api.MsgInvalidBody,
		},
		{
			name:       "blank description",
			body:       `{"description":" "}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "description is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			_, token := s.register("Alice", "alice@example.com")
			task := s.createTask(token, "original", false)
			path := "/tasks/" + task.ID.String()

			w := s.do(http.MethodPatch, path, token, tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantMsg, errorBody(t, w).Error)

			w = s.do(http.MethodGet, path, token, "")
			require.Equal(t, http.StatusOK, w.Code)
			var unchanged api.TaskResponse
			decode(t, w, &unchanged)
			assert.Equal(t, "original", unchanged.Description)
			assert.False(t, unchanged.Completed)
			assert.Equal(t, task.UpdatedAt, unchanged.UpdatedAt)
		})
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register("Alice", "alice@example.com")
	_, bobToken := s.register("Bob", "bob@example.com")
	task := s.createTask(aliceToken, "mine", false)

	w := s.do(http.MethodPatch, "/tasks/"+task.ID.String(), bobToken, `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPatch, "/tasks/garbage", aliceToken, `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTask_Twice(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Alice", "alice@example.com")
	task := s.createTask(token, "once", false)
	path := "/tasks/" + task.ID.String()

	w := s.do(http.MethodDelete, path, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var deleted api.TaskResponse
	decode(t, w, &deleted)
	assert.Equal(t, task.ID, deleted.ID)

	w = s.do(http.MethodDelete, path, token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, api.MsgTaskNotFound, errorBody(t, w).Error)
}

func TestDeleteTask_OtherOwner(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register("Alice", "alice@example.com")
	_, bobToken := s.register("Bob", "bob@example.com")
	task := s.createTask(aliceToken, "keep", false)

	w := s.do(http.MethodDelete, "/tasks/"+task.ID.String(), bobToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, s.db.TaskCount())
}
