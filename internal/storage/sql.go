package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// sqlRepository stores each collection as one row of a key/value table.
// The SQLite and Postgres backends differ only in their statements.
type sqlRepository struct {
	db     *sql.DB
	upsert string
	load   string
}

func (r *sqlRepository) Load(ctx context.Context) (*Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, r.load)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raw := make(map[string][]byte)
	for rows.Next() {
		var (
			name    string
			payload []byte
		)
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, err
		}
		raw[name] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return decodeSnapshot(raw)
}

func (r *sqlRepository) Save(ctx context.Context, snap *Snapshot) error {
	encoded, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	names := make([]string, 0, len(encoded))
	for name := range encoded {
		names = append(names, name)
	}
	sort.Strings(names)

	now := time.Now().UTC()
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, r.upsert, name, string(encoded[name]), now); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return tx.Commit()
}

func (r *sqlRepository) Close() error {
	return r.db.Close()
}
