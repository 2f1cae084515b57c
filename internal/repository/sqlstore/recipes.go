package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

var _ repository.RecipeRepository = (*RecipeDB)(nil)

// RecipeDB is the recipes table.
type RecipeDB struct {
	db *DB
}

// selectRecipes is the read view shared by GetByID, List and Search:
// the row, the author's name, and the number of comments.
//
// comment_count is a correlated subquery rather than LEFT JOIN + GROUP BY so
// the SELECT list doesn't have to repeat every column in a GROUP BY clause.
const selectRecipes = `
	SELECT r.id, r.name, r.ingredients, r.steps, r.image_path, r.user_id, r.created_at,
	       u.name AS author_name,
	       (SELECT COUNT(*) FROM comments c WHERE c.recipe_id = r.id) AS comment_count
	FROM recipes r
	JOIN users u ON u.id = r.user_id`

// newestFirst breaks created_at ties by id so the order is total.
const newestFirst = ` ORDER BY r.created_at DESC, r.id DESC`

// Create inserts a recipe and fills in ID and CreatedAt.
// An unknown UserID (FK violation) is reported as a missing user.
func (r *RecipeDB) Create(ctx context.Context, recipe *model.Recipe) error {
	recipe.CreatedAt = r.db.now()

	err := r.db.conn.QueryRowxContext(ctx, r.db.rebind(
		`INSERT INTO recipes (name, ingredients, steps, image_path, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		recipe.Name,
		recipe.Ingredients,
		recipe.Steps,
		recipe.ImageURL,
		recipe.UserID,
		recipe.CreatedAt,
	).Scan(&recipe.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user")
		}
		return fmt.Errorf("sqlstore: creating recipe: %w", err)
	}

	return nil
}

// GetByID retrieves one recipe with its author name and comment count.
func (r *RecipeDB) GetByID(ctx context.Context, id int64) (*model.Recipe, error) {
	var recipe model.Recipe

	err := r.db.conn.GetContext(ctx, &recipe, r.db.rebind(selectRecipes+` WHERE r.id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recipe")
		}
		return nil, fmt.Errorf("sqlstore: getting recipe %d: %w", id, err)
	}

	return &recipe, nil
}

// List returns recipes newest first.
func (r *RecipeDB) List(ctx context.Context, opts repository.ListOptions) ([]model.Recipe, error) {
	query, args := r.db.paginate(selectRecipes+newestFirst, nil, opts)

	// SelectContext runs the query and appends one struct per row.
	// It closes the rows and checks rows.Err() for us.
	recipes := []model.Recipe{}
	if err := r.db.conn.SelectContext(ctx, &recipes, r.db.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqlstore: listing recipes: %w", err)
	}

	return recipes, nil
}

// Search returns recipes whose name or ingredients contain term,
// case-insensitively, newest first.
//
// LIKE treats % and _ in the term as wildcards. escapeLike neutralizes them so
// a search for "100%" matches the literal text.
func (r *RecipeDB) Search(ctx context.Context, term string, opts repository.ListOptions) ([]model.Recipe, error) {
	pattern := "%" + escapeLike(term) + "%"
	lower := r.db.lower()

	query, args := r.db.paginate(
		selectRecipes+`
	WHERE `+lower+`(r.name) LIKE `+lower+`(?) ESCAPE '\'
	   OR `+lower+`(r.ingredients) LIKE `+lower+`(?) ESCAPE '\'`+newestFirst,
		[]any{pattern, pattern},
		opts,
	)

	recipes := []model.Recipe{}
	if err := r.db.conn.SelectContext(ctx, &recipes, r.db.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqlstore: searching recipes: %w", err)
	}

	return recipes, nil
}

// Update applies a sparse patch in one statement.
//
// KEY CONCEPTS:
//
//  1. STATIC SQL FOR A SPARSE UPDATE:
//     COALESCE(?, col) keeps the current value when the argument is NULL. A nil
//     field in the patch becomes NULL, so the statement text never changes with
//     the set of fields. No string building, one prepared statement.
//
//  2. OWNERSHIP IN THE WHERE CLAUSE:
//     `AND user_id = ?` makes the check and the write atomic. There is no
//     window between "is this yours?" and "update it".
func (r *RecipeDB) Update(ctx context.Context, id, userID int64, patch repository.RecipePatch) error {
	if patch.IsEmpty() {
		return apperror.ValidationFailed("", "no fields to update")
	}

	result, err := r.db.conn.ExecContext(ctx, r.db.rebind(
		`UPDATE recipes
		 SET name        = COALESCE(?, name),
		     ingredients = COALESCE(?, ingredients),
		     steps       = COALESCE(?, steps),
		     image_path  = COALESCE(?, image_path)
		 WHERE id = ? AND user_id = ?`),
		patch.Name,
		patch.Ingredients,
		patch.Steps,
		patch.ImagePath,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating recipe %d: %w", id, err)
	}

	return expectAffected(result, "recipe")
}

// Delete removes a recipe owned by userID. Its comments go with it (ON DELETE CASCADE).
func (r *RecipeDB) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.db.conn.ExecContext(ctx, r.db.rebind(
		`DELETE FROM recipes WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting recipe %d: %w", id, err)
	}

	return expectAffected(result, "recipe")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// paginate appends LIMIT/OFFSET when opts asks for them.
// A zero Limit returns every row.
func (db *DB) paginate(query string, args []any, opts repository.ListOptions) (string, []any) {
	opts = opts.Normalize()

	switch {
	case opts.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	case opts.Offset > 0 && db.driver == DriverPostgres:
		query += ` OFFSET ?`
		args = append(args, opts.Offset)
	case opts.Offset > 0:
		// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, opts.Offset)
	}

	return query, args
}
