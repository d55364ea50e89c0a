package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/xid"

	"github.com/sakif/my-applications/internal/model"
	"github.com/sakif/my-applications/internal/repository"
)

var _ repository.ActivityRepository = (*DB)(nil)

const (
	recentTable     = "user_recent_activity"
	usageTable      = "user_tool_usage"
	favouriteTable  = "user_favourites"
	suggestionTable = "user_suggestions"
)

// --- recent activity ---

// TouchRecent upserts the (user, tab) entry with a fresh timestamp, drops
// everything beyond the keep most recent entries and returns what is left.
func (db *DB) TouchRecent(ctx context.Context, entry model.RecentActivity, keep int) ([]model.RecentActivity, error) {
	var out []model.RecentActivity

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := db.exec(ctx, tx, db.sb.Insert(recentTable).
			Columns("user_id", "tab", "name", "created_at").
			Values(entry.UserID, entry.Tab, entry.Name, db.timestamp()).
			Suffix("ON CONFLICT (user_id, tab) DO UPDATE SET name = excluded.name, created_at = excluded.created_at"))
		if err != nil {
			return fmt.Errorf("sqlstore: upserting recent %s: %w", entry.Tab, err)
		}

		_, err = db.exec(ctx, tx, db.sb.Delete(recentTable).
			Where(sq.Eq{"user_id": entry.UserID}).
			Where(sq.Expr(
				"tab NOT IN (SELECT tab FROM "+recentTable+" WHERE user_id = ? ORDER BY created_at DESC, tab ASC LIMIT ?)",
				entry.UserID, keep,
			)))
		if err != nil {
			return fmt.Errorf("sqlstore: pruning recent: %w", err)
		}

		out, err = db.listRecent(ctx, tx, entry.UserID, keep)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecent returns the newest entries first.
func (db *DB) ListRecent(ctx context.Context, userID string, limit int) ([]model.RecentActivity, error) {
	return db.listRecent(ctx, db.conn, userID, limit)
}

func (db *DB) listRecent(ctx context.Context, q querier, userID string, limit int) ([]model.RecentActivity, error) {
	rows, err := db.query(ctx, q, db.sb.Select("user_id", "tab", "name", "created_at").
		From(recentTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "tab ASC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing recent: %w", err)
	}
	defer rows.Close()

	out := []model.RecentActivity{}
	for rows.Next() {
		var r model.RecentActivity
		if err := rows.Scan(&r.UserID, &r.Tab, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning recent: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (db *DB) ClearRecent(ctx context.Context, userID string) error {
	return db.clear(ctx, recentTable, userID)
}

// --- usage counters ---

// IncrementUsage adds one to the (user, tab) counter, creating it at 1.
func (db *DB) IncrementUsage(ctx context.Context, userID, tab string, limit int) ([]model.ToolUsage, error) {
	var out []model.ToolUsage

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := db.exec(ctx, tx, db.sb.Insert(usageTable).
			Columns("user_id", "tab", "count", "updated_at").
			Values(userID, tab, 1, db.timestamp()).
			Suffix("ON CONFLICT (user_id, tab) DO UPDATE SET count = "+usageTable+".count + 1, updated_at = excluded.updated_at"))
		if err != nil {
			return fmt.Errorf("sqlstore: incrementing usage %s: %w", tab, err)
		}

		out, err = db.listUsage(ctx, tx, userID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsage orders by count, most used first. Ties sort by tab.
func (db *DB) ListUsage(ctx context.Context, userID string, limit int) ([]model.ToolUsage, error) {
	return db.listUsage(ctx, db.conn, userID, limit)
}

func (db *DB) listUsage(ctx context.Context, q querier, userID string, limit int) ([]model.ToolUsage, error) {
	rows, err := db.query(ctx, q, db.sb.Select("user_id", "tab", "count", "updated_at").
		From(usageTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("count DESC", "tab ASC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing usage: %w", err)
	}
	defer rows.Close()

	out := []model.ToolUsage{}
	for rows.Next() {
		var u model.ToolUsage
		if err := rows.Scan(&u.UserID, &u.Tab, &u.Count, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (db *DB) ClearUsage(ctx context.Context, userID string) error {
	return db.clear(ctx, usageTable, userID)
}

// --- favourites ---

func (db *DB) ToggleFavourite(ctx context.Context, fav model.Favourite) ([]model.Favourite, error) {
	var out []model.Favourite

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := db.exec(ctx, tx, db.sb.Delete(favouriteTable).
			Where(sq.Eq{"user_id": fav.UserID, "tab": fav.Tab}))
		if err != nil {
			return fmt.Errorf("sqlstore: removing favourite %s: %w", fav.Tab, err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlstore: removing favourite %s: %w", fav.Tab, err)
		}

		if removed == 0 {
			_, err = db.exec(ctx, tx, db.sb.Insert(favouriteTable).
				Columns("user_id", "tab", "name", "icon", "created_at").
				Values(fav.UserID, fav.Tab, fav.Name, fav.Icon, db.timestamp()).
				Suffix("ON CONFLICT (user_id, tab) DO NOTHING"))
			if err != nil {
				return fmt.Errorf("sqlstore: adding favourite %s: %w", fav.Tab, err)
			}
		}

		out, err = db.listFavourites(ctx, tx, fav.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListFavourites returns the newest favourites first. The collection is
// naturally bounded by the number of tools, so no limit applies.
func (db *DB) ListFavourites(ctx context.Context, userID string) ([]model.Favourite, error) {
	return db.listFavourites(ctx, db.conn, userID)
}

func (db *DB) listFavourites(ctx context.Context, q querier, userID string) ([]model.Favourite, error) {
	rows, err := db.query(ctx, q, db.sb.Select("user_id", "tab", "name", "icon", "created_at").
		From(favouriteTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "tab ASC"))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing favourites: %w", err)
	}
	defer rows.Close()

	out := []model.Favourite{}
	for rows.Next() {
		var f model.Favourite
		if err := rows.Scan(&f.UserID, &f.Tab, &f.Name, &f.Icon, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning favourite: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (db *DB) ClearFavourites(ctx context.Context, userID string) error {
	return db.clear(ctx, favouriteTable, userID)
}

// --- suggestions ---

// AddSuggestion stores s under a new ID and keeps only the newest keep
// suggestions of that user.
func (db *DB) AddSuggestion(ctx context.Context, s model.Suggestion, keep int) ([]model.Suggestion, error) {
	var out []model.Suggestion

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := db.exec(ctx, tx, db.sb.Insert(suggestionTable).
			Columns("id", "user_id", "tool_idea", "note", "created_at").
			Values(xid.New().String(), s.UserID, s.ToolIdea, s.Note, db.timestamp()))
		if err != nil {
			return fmt.Errorf("sqlstore: inserting suggestion: %w", err)
		}

		_, err = db.exec(ctx, tx, db.sb.Delete(suggestionTable).
			Where(sq.Eq{"user_id": s.UserID}).
			Where(sq.Expr(
				"id NOT IN (SELECT id FROM "+suggestionTable+" WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?)",
				s.UserID, keep,
			)))
		if err != nil {
			return fmt.Errorf("sqlstore: pruning suggestions: %w", err)
		}

		out, err = db.listSuggestions(ctx, tx, s.UserID, keep)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) ListSuggestions(ctx context.Context, userID string, limit int) ([]model.Suggestion, error) {
	return db.listSuggestions(ctx, db.conn, userID, limit)
}

func (db *DB) listSuggestions(ctx context.Context, q querier, userID string, limit int) ([]model.Suggestion, error) {
	rows, err := db.query(ctx, q, db.sb.Select("id", "user_id", "tool_idea", "note", "created_at").
		From(suggestionTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing suggestions: %w", err)
	}
	defer rows.Close()

	out := []model.Suggestion{}
	for rows.Next() {
		var s model.Suggestion
		if err := rows.Scan(&s.ID, &s.UserID, &s.ToolIdea, &s.Note, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning suggestion: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) ClearSuggestions(ctx context.Context, userID string) error {
	return db.clear(ctx, suggestionTable, userID)
}

func (db *DB) clear(ctx context.Context, table, userID string) error {
	if _, err := db.exec(ctx, db.conn, db.sb.Delete(table).Where(sq.Eq{"user_id": userID})); err != nil {
		return fmt.Errorf("sqlstore: clearing %s: %w", table, err)
	}
	return nil
}
