package model

import "time"

// Comment is a user's comment on a recipe.
type Comment struct {
	ID         int64     `json:"id"         db:"id"`
	Text       string    `json:"text"       db:"text"`
	UserID     int64     `json:"userId"     db:"user_id"`
	RecipeID   int64     `json:"recipeId"   db:"recipe_id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}
