package sqlstore

import (
	"context"
	"fmt"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

var _ repository.CommentRepository = (*CommentDB)(nil)

// CommentDB is the comments table.
type CommentDB struct {
	db *DB
}

// Create inserts a comment and fills in ID, CreatedAt and AuthorName.
//
// The recipe's existence is checked by the foreign key, not by a SELECT
// beforehand: a recipe deleted between the check and the insert would slip
// through otherwise. The violation is reported as NotFound("recipe"); the
// author always exists because the id came from a validated token, unless
// the account was deleted, which reads the same way to the client.
func (c *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	comment.CreatedAt = c.db.now()

	err := c.db.conn.QueryRowxContext(ctx, c.db.rebind(
		`INSERT INTO comments (text, user_id, recipe_id, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`),
		comment.Text,
		comment.UserID,
		comment.RecipeID,
		comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("recipe")
		}
		return fmt.Errorf("sqlstore: creating comment: %w", err)
	}

	// The response carries the author's name like every other comment view.
	err = c.db.conn.GetContext(ctx, &comment.AuthorName, c.db.rebind(
		`SELECT name FROM users WHERE id = ?`), comment.UserID)
	if err != nil {
		return fmt.Errorf("sqlstore: loading comment author: %w", err)
	}

	return nil
}

// ListByRecipe returns a recipe's comments newest first, with author names.
// An unknown recipe yields an empty list.
func (c *CommentDB) ListByRecipe(ctx context.Context, recipeID int64, opts repository.ListOptions) ([]model.Comment, error) {
	query, args := c.db.paginate(`
	SELECT cm.id, cm.text, cm.user_id, cm.recipe_id, cm.created_at,
	       u.name AS author_name
	FROM comments cm
	JOIN users u ON u.id = cm.user_id
	WHERE cm.recipe_id = ?
	ORDER BY cm.created_at DESC, cm.id DESC`,
		[]any{recipeID},
		opts,
	)

	comments := []model.Comment{}
	if err := c.db.conn.SelectContext(ctx, &comments, c.db.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqlstore: listing comments for recipe %d: %w", recipeID, err)
	}

	return comments, nil
}

// Update replaces the text of a comment owned by userID.
func (c *CommentDB) Update(ctx context.Context, id, userID int64, text string) error {
	if text == "" {
		return apperror.ValidationFailed("text", "comment text is required")
	}

	result, err := c.db.conn.ExecContext(ctx, c.db.rebind(
		`UPDATE comments SET text = ? WHERE id = ? AND user_id = ?`), text, id, userID)
	if err != nil {
		return fmt.Errorf("sqlstore: updating comment %d: %w", id, err)
	}

	return expectAffected(result, "comment")
}

// Delete removes a comment owned by userID.
func (c *CommentDB) Delete(ctx context.Context, id, userID int64) error {
	result, err := c.db.conn.ExecContext(ctx, c.db.rebind(
		`DELETE FROM comments WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting comment %d: %w", id, err)
	}

	return expectAffected(result, "comment")
}
