package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` fails to compile if *Y stops implementing X, so a
// missing method shows up here instead of at the call site in server.go.
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table.
type UserDB struct {
	db *DB
}

const userColumns = `id, name, email, password_hash, photo_url, created_at`

// Create inserts a new user and fills in ID and CreatedAt.
//
// KEY CONCEPTS:
//
//  1. RETURNING id:
//     The database assigns the id (AUTOINCREMENT / BIGSERIAL). RETURNING hands
//     it back in the same round trip, on both SQLite (3.35+) and Postgres,
//     where LastInsertId is not supported.
//
//  2. LETTING THE UNIQUE INDEX DECIDE:
//     We don't SELECT-then-INSERT to check the email. Two concurrent
//     registrations could both pass the SELECT. The UNIQUE constraint is the
//     only race-free check, so we translate its violation into a Conflict.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = u.db.now()

	err := u.db.conn.QueryRowxContext(ctx, u.db.rebind(
		`INSERT INTO users (name, email, password_hash, photo_url, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`),
		user.Name,
		user.Email,
		user.PasswordHash,
		user.PhotoURL,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "email already registered")
		}
		return fmt.Errorf("sqlstore: creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (u *UserDB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User

	// GetContext runs the query, expects exactly one row and scans it into
	// the struct by `db` tag. No row → sql.ErrNoRows, like QueryRow().Scan().
	err := u.db.conn.GetContext(ctx, &user, u.db.rebind(
		`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("sqlstore: getting user %d: %w", id, err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by (normalized) email, for login.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User

	err := u.db.conn.GetContext(ctx, &user, u.db.rebind(
		`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("sqlstore: getting user by email: %w", err)
	}

	return &user, nil
}

// UpdatePhoto records a new profile photo path.
func (u *UserDB) UpdatePhoto(ctx context.Context, id int64, photoPath string) error {
	result, err := u.db.conn.ExecContext(ctx, u.db.rebind(
		`UPDATE users SET photo_url = ? WHERE id = ?`), photoPath, id)
	if err != nil {
		return fmt.Errorf("sqlstore: updating photo for user %d: %w", id, err)
	}
	return expectAffected(result, "user")
}

// Delete removes a user. ON DELETE CASCADE removes their recipes, the
// comments on those recipes, and their comments elsewhere.
func (u *UserDB) Delete(ctx context.Context, id int64) error {
	result, err := u.db.conn.ExecContext(ctx, u.db.rebind(
		`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting user %d: %w", id, err)
	}
	return expectAffected(result, "user")
}

// expectAffected turns "0 rows affected" into NotFound.
//
// For owner-scoped statements (WHERE id = ? AND user_id = ?) this is also
// how a wrong owner surfaces: the row exists, but the WHERE clause doesn't
// match it, so the caller learns nothing about other users' rows.
func expectAffected(result sql.Result, resource string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource)
	}
	return nil
}
