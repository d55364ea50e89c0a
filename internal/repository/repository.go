// Package repository declares the storage interfaces the services depend on.
// The sqlstore package implements all of them on SQLite or PostgreSQL.
package repository

import (
	"context"

	"github.com/sakif/my-applications/internal/model"
)

type UserRepository interface {
	// CreateUser inserts u, filling ID and CreatedAt. A duplicate email
	// returns an error matching apperror.ErrConflict.
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// DeleteUser removes the user and, by cascade, every per-user row.
	DeleteUser(ctx context.Context, id string) error
}

// ActivityRepository stores the bounded per-user collections. Each mutating
// call runs in a single transaction and returns the collection as it stands
// after the change.
type ActivityRepository interface {
	TouchRecent(ctx context.Context, entry model.RecentActivity, keep int) ([]model.RecentActivity, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]model.RecentActivity, error)
	ClearRecent(ctx context.Context, userID string) error

	IncrementUsage(ctx context.Context, userID, tab string, limit int) ([]model.ToolUsage, error)
	ListUsage(ctx context.Context, userID string, limit int) ([]model.ToolUsage, error)
	ClearUsage(ctx context.Context, userID string) error

	// ToggleFavourite removes the (user, tab) favourite if it exists and
	// inserts fav otherwise.
	ToggleFavourite(ctx context.Context, fav model.Favourite) ([]model.Favourite, error)
	ListFavourites(ctx context.Context, userID string) ([]model.Favourite, error)
	ClearFavourites(ctx context.Context, userID string) error

	AddSuggestion(ctx context.Context, s model.Suggestion, keep int) ([]model.Suggestion, error)
	ListSuggestions(ctx context.Context, userID string, limit int) ([]model.Suggestion, error)
	ClearSuggestions(ctx context.Context, userID string) error
}

type MinutesRepository interface {
	SaveMinutes(ctx context.Context, rec *model.MinutesRecord) error
}
