// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
//
// Each struct carries two tag sets:
//   - `json:"..."` controls the API representation (camelCase, as the mobile client expects)
//   - `db:"..."`   tells sqlx which column fills which field (snake_case, as the schema uses)
package model

import "time"

// User represents a registered account.
//
// WHY PasswordHash HAS `json:"-"`?
// The "-" tag makes encoding/json skip the field entirely, so no handler can
// leak a hash by accident, even when it serializes the whole struct.
//
// WHY PhotoURL *string?
// A user without a profile photo must serialize as "photoUrl": null, not "".
// A nil pointer gives us that for free, and sqlx scans SQL NULL into nil.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"` // stored trimmed + lower-cased
	PasswordHash string    `json:"-"         db:"password_hash"`
	PhotoURL     *string   `json:"photoUrl"  db:"photo_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
