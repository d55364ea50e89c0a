package sqlstore

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/my-applications/internal/model"
	"github.com/sakif/my-applications/internal/repository"
)

var _ repository.MinutesRepository = (*DB)(nil)

// SaveMinutes fills rec.ID and rec.CreatedAt unless the caller set them.
func (db *DB) SaveMinutes(ctx context.Context, rec *model.MinutesRecord) error {
	if rec.ID == "" {
		rec.ID = xid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = db.timestamp()
	}

	_, err := db.exec(ctx, db.conn, db.sb.Insert("mom_records").
		Columns("id", "mode", "transcript", "mom", "artifact", "created_at").
		Values(rec.ID, string(rec.Mode), rec.Transcript, rec.Minutes, rec.Artifact, rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlstore: saving minutes %s: %w", rec.ID, err)
	}
	return nil
}
