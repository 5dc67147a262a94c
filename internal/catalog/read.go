package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Get returns the record stored under name, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, name string) (Record, error) {
	var rec Record
	var kind string
	err := c.db.QueryRowContext(ctx, `
		SELECT name, kind, fingerprint, revision, body
		FROM definitions
		WHERE name = ?
	`, name).Scan(&rec.Name, &kind, &rec.Fingerprint, &rec.Revision, &rec.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s: %w", name, err)
	}
	rec.Kind = Kind(kind)
	return rec, nil
}

// List returns every record ordered by name (binary collation).
// Returns an empty slice (not nil) for an empty catalog.
func (c *Catalog) List(ctx context.Context) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT name, kind, fingerprint, revision, body
		FROM definitions
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var kind string
		if err := rows.Scan(&rec.Name, &kind, &rec.Fingerprint, &rec.Revision, &rec.Body); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		rec.Kind = Kind(kind)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definitions: %w", err)
	}
	return records, nil
}

// History returns the revisions of name, oldest first.
func (c *Catalog) History(ctx context.Context, name string) ([]Revision, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT revision, name, kind, fingerprint, seq, deleted
		FROM revisions
		WHERE name = ?
		ORDER BY seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", name, err)
	}
	defer rows.Close()

	revs := []Revision{}
	for rows.Next() {
		var r Revision
		var kind string
		if err := rows.Scan(&r.Revision, &r.Name, &kind, &r.Fingerprint, &r.Seq, &r.Deleted); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		r.Kind = Kind(kind)
		revs = append(revs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return revs, nil
}
