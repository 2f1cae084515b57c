package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
	"github.com/sakif/recipe-share/internal/storage"
)

// UserService serves the authenticated user's own profile.
type UserService struct {
	users  repository.UserRepository
	images storage.ImageStore
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, images storage.ImageStore, logger *slog.Logger) *UserService {
	return &UserService{users: users, images: images, logger: logger}
}

// Profile returns the user's record. The password hash never leaves the
// process: model.User excludes it from JSON.
func (s *UserService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdatePhoto stores a new profile photo and records its path.
//
// If recording the path fails, the freshly stored image is removed again so
// no file is left that no row points to. The previous photo, if any, is
// removed once the new one is recorded.
func (s *UserService) UpdatePhoto(ctx context.Context, userID int64, photo *Upload) (string, error) {
	if photo == nil {
		return "", apperror.ValidationFailed("photo", "no photo uploaded")
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	path, err := saveImage(ctx, s.images, photo)
	if err != nil {
		return "", err
	}

	if err := s.users.UpdatePhoto(ctx, userID, path); err != nil {
		discardImage(ctx, s.images, path, s.logger)
		return "", fmt.Errorf("service/user: recording photo for user %d: %w", userID, err)
	}

	if current.PhotoURL != nil && *current.PhotoURL != path {
		discardImage(ctx, s.images, *current.PhotoURL, s.logger)
	}

	s.logger.Info("profile photo updated", slog.Int64("userID", userID), slog.String("path", path))
	return path, nil
}
