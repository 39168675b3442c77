package database

import (
	"context"
	"database/sql"
	"errors"
)

// Repository is the sqlite-backed BlobStore.
type Repository struct {
	Db *Database
}

func NewRepository(db *Database) *Repository {
	return &Repository{Db: db}
}

func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.Db.db.QueryRowContext(ctx, `
		SELECT value
		FROM blobs
		WHERE key = ?
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *Repository) Put(ctx context.Context, key, value string) error {
	_, err := r.Db.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO blobs (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, key, value)
	return err
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	_, err := r.Db.db.ExecContext(ctx, "DELETE FROM blobs WHERE key = ?", key)
	return err
}

func (r *Repository) Close() error {
	return r.Db.Close()
}
