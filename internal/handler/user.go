package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/respond"
	"github.com/sakif/recipe-share/internal/service"
)

type ProfileService interface {
	Profile(ctx context.Context, userID int64) (*model.User, error)
	UpdatePhoto(ctx context.Context, userID int64, photo *service.Upload) (string, error)
}

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	users     ProfileService
	maxUpload int64
	logger    *slog.Logger
}

func NewUserHandler(users ProfileService, maxUpload int64, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, maxUpload: maxUpload, logger: logger}
}

// PhotoResponse is the body of a successful profile photo upload.
type PhotoResponse struct {
	Message  string `json:"message"`
	PhotoURL string `json:"photoUrl"`
}

// HandleProfile returns the caller's user record.
//
// HTTP: GET /users/profile
// Auth: Required
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	user, err := h.users.Profile(r.Context(), userID)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, user)
}

// HandleUpdatePhoto replaces the caller's profile photo.
//
// HTTP: PUT /users/profile-photo
// Auth: Required
// REQUEST BODY: multipart/form-data with a "photo" file
func (h *UserHandler) HandleUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	form, err := readForm(w, r, h.maxUpload)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	defer form.Close()

	photo, err := form.file(fieldPhoto)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	path, err := h.users.UpdatePhoto(r.Context(), userID, photo)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, PhotoResponse{Message: "Profile photo updated", PhotoURL: path})
}
