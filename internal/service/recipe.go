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
	"github.com/sakif/recipe-share/internal/storage"
)

// RecipeService contains the business logic for recipes.
//
// Ownership is enforced by the repository: Update and Delete match on both
// the recipe id and the caller's id, so "not yours" and "doesn't exist" are
// the same 404. The service never compares owners itself.
type RecipeService struct {
	recipes repository.RecipeRepository
	images  storage.ImageStore
	logger  *slog.Logger
}

func NewRecipeService(recipes repository.RecipeRepository, images storage.ImageStore, logger *slog.Logger) *RecipeService {
	return &RecipeService{recipes: recipes, images: images, logger: logger}
}

// RecipeInput is everything needed to create a recipe.
type RecipeInput struct {
	Name        string
	Ingredients string
	Steps       string
	Image       *Upload // optional
}

// RecipeUpdate carries the fields a client sent. A nil or blank field is
// left unchanged.
type RecipeUpdate struct {
	Name        *string
	Ingredients *string
	Steps       *string
	Image       *Upload
}

// Create validates the input, stores the optional image and inserts the recipe.
func (s *RecipeService) Create(ctx context.Context, userID int64, in RecipeInput) (*model.Recipe, error) {
	recipe := &model.Recipe{
		Name:        strings.TrimSpace(in.Name),
		Ingredients: strings.TrimSpace(in.Ingredients),
		Steps:       strings.TrimSpace(in.Steps),
		UserID:      userID,
	}
	if recipe.Name == "" || recipe.Ingredients == "" || recipe.Steps == "" {
		return nil, apperror.ValidationFailed("", "name, ingredients and steps are required")
	}

	if in.Image != nil {
		path, err := saveImage(ctx, s.images, in.Image)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = &path
	}

	if err := s.recipes.Create(ctx, recipe); err != nil {
		if recipe.ImageURL != nil {
			discardImage(ctx, s.images, *recipe.ImageURL, s.logger)
		}
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to create recipe", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating recipe: %w", err)
	}

	s.logger.Info("recipe created",
		slog.Int64("id", recipe.ID),
		slog.Int64("userID", userID),
	)
	return recipe, nil
}

func (s *RecipeService) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	return s.recipes.GetByID(ctx, id)
}

// List returns recipes newest first, each with its comment count.
func (s *RecipeService) List(ctx context.Context, opts repository.ListOptions) ([]model.Recipe, error) {
	return s.recipes.List(ctx, opts.Normalize())
}

// Search matches term case-insensitively against name and ingredients.
func (s *RecipeService) Search(ctx context.Context, term string, opts repository.ListOptions) ([]model.Recipe, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperror.ValidationFailed("q", "search term is required")
	}
	return s.recipes.Search(ctx, term, opts.Normalize())
}

// Update applies a partial update.
//
// FLOW WITH A NEW IMAGE:
//  1. Load the recipe; unknown id or another user's recipe → 404 before
//     the upload is even looked at
//  2. Store the new image
//  3. Run the owner-guarded UPDATE
//  4. On failure remove the new image; on success remove the old one
func (s *RecipeService) Update(ctx context.Context, id, userID int64, in RecipeUpdate) error {
	patch := repository.RecipePatch{
		Name:        nonBlank(in.Name),
		Ingredients: nonBlank(in.Ingredients),
		Steps:       nonBlank(in.Steps),
	}
	if patch.IsEmpty() && in.Image == nil {
		return apperror.ValidationFailed("", "no fields to update")
	}

	var previousImage *string
	if in.Image != nil {
		current, err := s.recipes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.UserID != userID {
			return apperror.NotFound("recipe")
		}
		previousImage = current.ImageURL

		path, err := saveImage(ctx, s.images, in.Image)
		if err != nil {
			return err
		}
		patch.ImagePath = &path
	}

	if err := s.recipes.Update(ctx, id, userID, patch); err != nil {
		if patch.ImagePath != nil {
			discardImage(ctx, s.images, *patch.ImagePath, s.logger)
		}
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation) {
			return err
		}
		s.logger.Error("failed to update recipe",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("updating recipe %d: %w", id, err)
	}

	if previousImage != nil && patch.ImagePath != nil && *previousImage != *patch.ImagePath {
		discardImage(ctx, s.images, *previousImage, s.logger)
	}

	s.logger.Info("recipe updated", slog.Int64("id", id))
	return nil
}

// Delete removes the recipe (its comments go with it via ON DELETE CASCADE)
// and then its image.
func (s *RecipeService) Delete(ctx context.Context, id, userID int64) error {
	current, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete recipe",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting recipe %d: %w", id, err)
	}

	if current.ImageURL != nil {
		discardImage(ctx, s.images, *current.ImageURL, s.logger)
	}

	s.logger.Info("recipe deleted", slog.Int64("id", id))
	return nil
}

// nonBlank returns a pointer to the trimmed value, or nil when the field was
// absent or only whitespace.
func nonBlank(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
