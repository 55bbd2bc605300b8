package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/quicklogin/internal/model"
)

var _ model.KVStore = (*KVRepository)(nil)

type KVRepository struct {
	db        *sql.DB
	namespace string
	now       func() time.Time
}

func NewKVRepository(db *sql.DB, namespace string) *KVRepository {
	return &KVRepository{
		db:        db,
		namespace: namespaceOrDefault(namespace),
		now:       time.Now,
	}
}

func (r *KVRepository) GetValue(ctx context.Context, key string) (int64, error) {
	const query = `SELECT value FROM kv_store WHERE namespace = ? AND key = ?`

	var value int64
	err := r.db.QueryRowContext(ctx, query, r.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get value: %w", err)
	}
	return value, nil
}

func (r *KVRepository) SetValue(ctx context.Context, key string, value int64) error {
	const query = `
        INSERT INTO kv_store (namespace, key, value, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (namespace, key) DO UPDATE
        SET value = excluded.value, updated_at = excluded.updated_at
    `
	if _, err := r.db.ExecContext(ctx, query, r.namespace, key, value, r.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

func (r *KVRepository) RemoveValue(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_store WHERE namespace = ? AND key = ?`

	if _, err := r.db.ExecContext(ctx, query, r.namespace, key); err != nil {
		return fmt.Errorf("failed to remove value: %w", err)
	}
	return nil
}
