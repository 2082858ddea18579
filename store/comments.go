package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GetComment returns the note stored for sqltext, "" when there is none.
func (d *DB) GetComment(ctx context.Context, sqltext string) (string, error) {
	query := fmt.Sprintf(`
		SELECT comments
		  FROM %s
		 WHERE sqltext = ?`, d.table(commentsTable))

	var c sql.NullString
	err := d.db.GetContext(ctx, &c, d.rebind(query), sqltext)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "loading comment")
	}
	return c.String, nil
}

// UpsertComment stores the note for sqltext, replacing any previous one.
// Concurrent writers race; the last one wins.
func (d *DB) UpsertComment(ctx context.Context, sqltext, comments string, now time.Time) error {
	query := fmt.Sprintf(`
		SELECT id
		  FROM %s
		 WHERE sqltext = ?`, d.table(commentsTable))

	var id int64
	err := d.db.GetContext(ctx, &id, d.rebind(query), sqltext)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert := fmt.Sprintf(`
			INSERT INTO %s (sqltext, comments, timemodified)
			VALUES (?, ?, ?)`, d.table(commentsTable))
		if _, err := d.db.ExecContext(ctx, d.rebind(insert), sqltext, comments, now.Unix()); err != nil {
			return errors.Wrap(err, "inserting comment")
		}
		d.logger.Debug("comment created")
	case err != nil:
		return errors.Wrap(err, "loading comment")
	default:
		update := fmt.Sprintf(`
			UPDATE %s
			   SET comments = ?, timemodified = ?
			 WHERE id = ?`, d.table(commentsTable))
		if _, err := d.db.ExecContext(ctx, d.rebind(update), comments, now.Unix(), id); err != nil {
			return errors.Wrapf(err, "updating comment %d", id)
		}
		d.logger.Debug("comment updated", zap.Int64("id", id))
	}
	return nil
}
