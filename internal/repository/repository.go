// Package repository declares the storage contracts the service layer depends on.
//
// Services only see these interfaces. The SQL implementation lives in
// repository/sqlstore, and service tests swap in hand-written fakes.
package repository

import (
	"context"

	"github.com/sakif/recipe-share/internal/model"
)

// MaxPageSize caps ListOptions.Limit.
const MaxPageSize = 100

// ListOptions paginates list queries. A zero Limit means "no limit":
// the mobile client fetches whole lists and never sends paging parameters.
type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize clamps Limit to MaxPageSize and negative values to zero.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit < 0 {
		o.Limit = 0
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// RecipePatch is a sparse update. A nil field is left unchanged.
type RecipePatch struct {
	Name        *string
	Ingredients *string
	Steps       *string
	ImagePath   *string
}

// IsEmpty reports whether the patch would change nothing.
func (p RecipePatch) IsEmpty() bool {
	return p.Name == nil && p.Ingredients == nil && p.Steps == nil && p.ImagePath == nil
}

type UserRepository interface {
	// Create inserts u and fills in its ID and CreatedAt.
	// A duplicate email yields apperror.ErrConflict.
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePhoto(ctx context.Context, id int64, photoPath string) error
	// Delete removes the user together with their recipes and comments.
	Delete(ctx context.Context, id int64) error
}

type RecipeRepository interface {
	Create(ctx context.Context, r *model.Recipe) error
	GetByID(ctx context.Context, id int64) (*model.Recipe, error)
	List(ctx context.Context, opts ListOptions) ([]model.Recipe, error)
	Search(ctx context.Context, term string, opts ListOptions) ([]model.Recipe, error)
	// Update and Delete match on both id and owner. A recipe that does not
	// exist and one owned by someone else both yield apperror.ErrNotFound.
	Update(ctx context.Context, id, userID int64, patch RecipePatch) error
	Delete(ctx context.Context, id, userID int64) error
}

type CommentRepository interface {
	// Create yields apperror.ErrNotFound when the recipe does not exist.
	Create(ctx context.Context, c *model.Comment) error
	ListByRecipe(ctx context.Context, recipeID int64, opts ListOptions) ([]model.Comment, error)
	Update(ctx context.Context, id, userID int64, text string) error
	Delete(ctx context.Context, id, userID int64) error
}
