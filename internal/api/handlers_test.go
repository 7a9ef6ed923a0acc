package api_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskmanager-api/internal/api"
	"github.com/phrazzld/taskmanager-api/internal/api/middleware"
	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/mocks"
	"github.com/phrazzld/taskmanager-api/internal/platform/media"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

// testServer wires the handlers to in-memory stores behind the same routes
// the server registers.
type testServer struct {
	t        *testing.T
	db       *mocks.Database
	users    *mocks.MockUserStore
	sessions *mocks.MockSessionStore
	tasks    *mocks.MockTaskStore
	notifier *mocks.MockNotifier
	router   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := mocks.NewDatabase()
	s := &testServer{
		t:        t,
		db:       db,
		users:    mocks.NewMockUserStore(db),
		sessions: mocks.NewMockSessionStore(db),
		tasks:    mocks.NewMockTaskStore(db),
		notifier: mocks.NewMockNotifier(),
	}
	tokens := auth.NewTestJWTService()

	userSvc, err := service.NewUserService(service.UserServiceDeps{
		Users:     s.users,
		Sessions:  s.sessions,
		Tx:        &mocks.MockTransactor{},
		Tokens:    tokens,
		Passwords: auth.NewBcryptVerifier(),
		Notifier:  s.notifier,
		Avatars:   media.NewAvatarProcessor(media.DefaultMaxBytes, 32),
		Logger:    log,
	})
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(s.tasks, &mocks.MockTransactor{}, log)
	require.NoError(t, err)

	users := api.NewUserHandler(userSvc, media.DefaultMaxBytes, log)
	tasks := api.NewTaskHandler(taskSvc, log)
	authMiddleware := middleware.NewAuthMiddleware(auth.NewSessionVerifier(tokens, s.users, s.sessions, log))

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(log))
	r.Post("/users", users.Register)
	r.Post("/users/login", users.Login)
	r.Get("/users/{id}/avatar", users.GetAvatar)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/users/logout", users.Logout)
		r.Post("/users/logoutAll", users.LogoutAll)
		r.Get("/users/me", users.GetMe)
		r.Patch("/users/me", users.UpdateMe)
		r.Delete("/users/me", users.DeleteMe)
		r.Post("/users/me/avatar", users.UploadAvatar)
		r.Delete("/users/me/avatar", users.DeleteAvatar)
		r.Get("/users/{id}", users.GetUser)

		r.Post("/tasks", tasks.CreateTask)
		r.Get("/tasks", tasks.ListTasks)
		r.Get("/tasks/{id}", tasks.GetTask)
		r.Patch("/tasks/{id}", tasks.UpdateTask)
		r.Delete("/tasks/{id}", tasks.DeleteTask)
	})
	s.router = r
	return s
}

func (s *testServer) do(method, path, token string, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(s.t, err)
	return s.do(method, path, token, string(raw))
}

// register creates an account and returns it with its first token.
func (s *testServer) register(name, email string) (api.UserResponse, string) {
	s.t.Helper()
	w := s.doJSON(http.MethodPost, "/users", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "correct-horse",
		"age":      30,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var resp api.AuthResponse
	decode(s.t, w, &resp)
	return resp.User, resp.Token
}

func (s *testServer) login(email, password string) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.doJSON(http.MethodPost, "/users/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (s *testServer) createTask(token, description string, completed bool) api.TaskResponse {
	s.t.Helper()
	w := s.doJSON(http.MethodPost, "/tasks", token, map[string]interface{}{
		"description": description,
		"completed":   completed,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var task api.TaskResponse
	decode(s.t, w, &task)
	return task
}

func (s *testServer) uploadAvatar(token, filename string, data []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(api.AvatarField, filename)
	require.NoError(s.t, err)
	_, err = part.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	decode(t, w, &body)
	return body
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

