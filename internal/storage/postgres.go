package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
)

type PostgresRepository struct {
	sqlRepository
}

func NewPostgresRepository(connStr string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	repo := &PostgresRepository{sqlRepository{
		db: db,
		upsert: `
			INSERT INTO collections (name, payload, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
		`,
		load: `SELECT name, payload::text FROM collections`,
	}}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *PostgresRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	_, err := r.db.Exec(schema)
	return err
}
