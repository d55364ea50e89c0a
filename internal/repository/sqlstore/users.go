package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/xid"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/model"
	"github.com/sakif/my-applications/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at"}

// CreateUser inserts u with a fresh ID. The email UNIQUE constraint is the
// final arbiter for concurrent signups with the same address.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = xid.New().String()
	u.CreatedAt = db.timestamp()

	_, err := db.exec(ctx, db.conn, db.sb.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Email already registered")
		}
		return fmt.Errorf("sqlstore: inserting user %s: %w", u.Email, err)
	}
	return nil
}

// GetUserByID returns apperror.ErrNotFound if no user has that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, sq.Eq{"id": id}, id)
}

// GetUserByEmail expects an already normalized email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, sq.Eq{"email": email}, email)
}

func (db *DB) getUser(ctx context.Context, where sq.Eq, key string) (*model.User, error) {
	row, err := db.queryRow(ctx, db.conn, db.sb.Select(userColumns...).From("users").Where(where))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting user %s: %w", key, err)
	}

	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("sqlstore: getting user %s: %w", key, err)
	}
	return &u, nil
}

// DeleteUser removes the account. Activity, usage, favourites and
// suggestions go with it through ON DELETE CASCADE.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	res, err := db.exec(ctx, db.conn, db.sb.Delete("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("sqlstore: deleting user %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: deleting user %s: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}
