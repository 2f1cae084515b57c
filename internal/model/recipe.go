package model

import "time"

// Recipe is a user-authored recipe.
//
// AuthorName and CommentCount are read-side fields: they come from a JOIN on
// users and a COUNT over comments, and are never written back.
type Recipe struct {
	ID           int64     `json:"id"           db:"id"`
	Name         string    `json:"name"         db:"name"`
	Ingredients  string    `json:"ingredients"  db:"ingredients"`
	Steps        string    `json:"steps"        db:"steps"`
	ImageURL     *string   `json:"imageUrl"     db:"image_path"`
	UserID       int64     `json:"userId"       db:"user_id"`
	AuthorName   string    `json:"authorName"   db:"author_name"`
	CommentCount int64     `json:"commentCount" db:"comment_count"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
}
