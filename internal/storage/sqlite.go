package storage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	sqlRepository
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{sqlRepository{
		db: db,
		upsert: `
			INSERT INTO collections (name, payload, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
		`,
		load: `SELECT name, payload FROM collections`,
	}}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := r.db.Exec(schema)
	return err
}
