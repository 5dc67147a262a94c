package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Put stores rec under its name. It reports changed=false and leaves the
// catalog untouched when the stored record has the same kind and
// fingerprint. Otherwise the record gets a new revision, which is also
// appended to the history.
func (c *Catalog) Put(ctx context.Context, rec Record) (changed bool, err error) {
	if rec.Name == "" {
		return false, fmt.Errorf("put: empty name")
	}
	if rec.Fingerprint == "" {
		return false, fmt.Errorf("put %s: empty fingerprint", rec.Name)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("put %s: begin tx: %w", rec.Name, err)
	}
	defer tx.Rollback() // No-op if committed

	var kind, fingerprint string
	err = tx.QueryRowContext(ctx,
		`SELECT kind, fingerprint FROM definitions WHERE name = ?`, rec.Name,
	).Scan(&kind, &fingerprint)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("put %s: read current: %w", rec.Name, err)
	case Kind(kind) == rec.Kind && fingerprint == rec.Fingerprint:
		c.logger.Debug("definition unchanged", "name", rec.Name, "fingerprint", short(rec.Fingerprint))
		return false, nil
	}

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return false, fmt.Errorf("put %s: %w", rec.Name, err)
	}
	revision := c.revisions.Next()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO definitions (name, kind, fingerprint, revision, body, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			kind = excluded.kind,
			fingerprint = excluded.fingerprint,
			revision = excluded.revision,
			body = excluded.body,
			seq = excluded.seq
	`, rec.Name, string(rec.Kind), rec.Fingerprint, revision, rec.Body, seq)
	if err != nil {
		return false, fmt.Errorf("put %s: write definition: %w", rec.Name, err)
	}

	if err := appendRevision(ctx, tx, revision, rec.Name, rec.Kind, rec.Fingerprint, seq, false); err != nil {
		return false, fmt.Errorf("put %s: %w", rec.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("put %s: commit: %w", rec.Name, err)
	}

	c.logger.Info("definition stored",
		"name", rec.Name,
		"kind", rec.Kind,
		"revision", revision,
		"fingerprint", short(rec.Fingerprint))
	return true, nil
}

// Delete removes the record with the given name and records a tombstone
// revision. It reports whether a record existed.
func (c *Catalog) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("delete %s: begin tx: %w", name, err)
	}
	defer tx.Rollback() // No-op if committed

	var kind, fingerprint string
	err = tx.QueryRowContext(ctx,
		`SELECT kind, fingerprint FROM definitions WHERE name = ?`, name,
	).Scan(&kind, &fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM definitions WHERE name = ?`, name); err != nil {
		return false, fmt.Errorf("delete %s: %w", name, err)
	}

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", name, err)
	}
	revision := c.revisions.Next()
	if err := appendRevision(ctx, tx, revision, name, Kind(kind), fingerprint, seq, true); err != nil {
		return false, fmt.Errorf("delete %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete %s: commit: %w", name, err)
	}

	c.logger.Info("definition deleted", "name", name, "revision", revision)
	return true, nil
}

func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM revisions`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func appendRevision(ctx context.Context, tx *sql.Tx, revision, name string, kind Kind, fingerprint string, seq int64, deleted bool) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (revision, name, kind, fingerprint, seq, deleted)
		VALUES (?, ?, ?, ?, ?, ?)
	`, revision, name, string(kind), fingerprint, seq, deleted)
	if err != nil {
		return fmt.Errorf("append revision: %w", err)
	}
	return nil
}

func short(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}
