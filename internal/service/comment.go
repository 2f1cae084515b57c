package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

// CommentService contains the business logic for recipe comments.
type CommentService struct {
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, logger: logger}
}

// Create adds a comment to a recipe. An unknown recipe is a 404, reported by
// the repository from the foreign key.
func (s *CommentService) Create(ctx context.Context, userID, recipeID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}

	comment := &model.Comment{
		Text:     text,
		UserID:   userID,
		RecipeID: recipeID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to create comment", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.Int64("id", comment.ID),
		slog.Int64("recipeID", recipeID),
	)
	return comment, nil
}

// List returns a recipe's comments, newest first. An unknown recipe simply
// has no comments.
func (s *CommentService) List(ctx context.Context, recipeID int64, opts repository.ListOptions) ([]model.Comment, error) {
	return s.comments.ListByRecipe(ctx, recipeID, opts.Normalize())
}

func (s *CommentService) Update(ctx context.Context, id, userID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperror.ValidationFailed("text", "comment text is required")
	}

	if err := s.comments.Update(ctx, id, userID, text); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("updating comment %d: %w", id, err)
	}

	s.logger.Info("comment updated", slog.Int64("id", id))
	return nil
}

func (s *CommentService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.comments.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("deleting comment %d: %w", id, err)
	}

	s.logger.Info("comment deleted", slog.Int64("id", id))
	return nil
}
