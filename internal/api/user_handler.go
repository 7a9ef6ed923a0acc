package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/platform/media"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// AvatarField is the multipart form field carrying an avatar upload.
const AvatarField = "avatar"

// multipartOverhead is the room left for multipart framing on top of the
// avatar size limit before the request body is cut off.
const multipartOverhead = 64 << 10

// UserHandler handles account, session and avatar requests.
type UserHandler struct {
	users          service.UserService
	maxAvatarBytes int64
	logger         *slog.Logger
}

// NewUserHandler creates a new UserHandler. maxAvatarBytes <= 0 selects
// media.DefaultMaxBytes.
func NewUserHandler(users service.UserService, maxAvatarBytes int64, logger *slog.Logger) *UserHandler {
	if users == nil {
		panic("user service cannot be nil for UserHandler")
	}
	if maxAvatarBytes <= 0 {
		maxAvatarBytes = media.DefaultMaxBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:          users,
		maxAvatarBytes: maxAvatarBytes,
		logger:         logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user registered",
		slog.String("user_id", result.User.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		User:  userToResponse(result.User),
		Token: result.Token,
	})
}

// Login handles POST /users/login. Unknown emails and wrong passwords get
// the same response.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Email and password are required", err)
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if status := MapErrorToStatusCode(err); status == http.StatusUnauthorized {
			shared.RespondWithErrorAndLog(w, r, status, MsgUnableToLogin, err, shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to login")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User:  userToResponse(result.User),
		Token: result.Token,
	})
}

// Logout handles POST /users/logout, revoking the token of this request.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := h.users.Logout(r.Context(), session.User.ID, session.Token); err != nil {
		HandleAPIError(w, r, err, "Failed to logout")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Logged out.")
}

// LogoutAll handles POST /users/logoutAll, revoking every token of the user.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := h.users.LogoutAll(r.Context(), session.User.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to logout")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Logged out of all sessions.")
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(session.User))
}

// GetUser handles GET /users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	userID, ok := getPathUUID(r, "id")
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgUserNotFound)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UpdateMe handles PATCH /users/me. Only name, email, password and age may
// be changed; a body naming any other field is rejected without applying
// anything.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	keys, err := shared.DecodeJSONObject(w, r, &req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := domain.ValidateUpdateFields(keys, domain.UserUpdatableFields); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), session.User.ID, req.patch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// DeleteMe handles DELETE /users/me and responds with the removed account.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	user, err := h.users.DeleteAccount(r.Context(), session.User.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user deleted",
		slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UploadAvatar handles POST /users/me/avatar with the image in the
// multipart field "avatar".
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	filename, data, err := h.readAvatar(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.users.UploadAvatar(r.Context(), session.User.ID, filename, data); err != nil {
		HandleAPIError(w, r, err, "Failed to save avatar")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, MsgAvatarUploaded)
}

// readAvatar reads the uploaded file. Bodies larger than the avatar limit
// plus framing are cut off and reported as media.ErrTooLarge; a missing
// file part is reported as media.ErrUnsupportedType.
func (h *UserHandler) readAvatar(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxAvatarBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, fmt.Errorf("%w: %w", media.ErrTooLarge, err)
		}
		return "", nil, fmt.Errorf("%w: %w", media.ErrUnsupportedType, err)
	}

	file, header, err := r.FormFile(AvatarField)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", media.ErrUnsupportedType, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read avatar upload: %w", err)
	}
	return header.Filename, data, nil
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := h.users.ClearAvatar(r.Context(), session.User.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete avatar")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "The avatar was deleted.")
}

// GetAvatar handles the public GET /users/{id}/avatar and writes the PNG
// bytes.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := getPathUUID(r, "id")
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgAvatarMissing)
		return
	}

	image, err := h.users.GetAvatar(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, MsgAvatarMissing)
			return
		}
		HandleAPIError(w, r, err, "Failed to load avatar")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(image)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(image); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("failed to write avatar",
			slog.String("error", err.Error()))
	}
}
