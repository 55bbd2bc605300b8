package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/quicklogin/internal/model"
)

var _ model.KVStore = (*KVRepository)(nil)

type KVRepository struct {
	db        *Connection
	namespace string
}

func NewKVRepository(db *Connection, namespace string) *KVRepository {
	return &KVRepository{db: db, namespace: namespaceOrDefault(namespace)}
}

func (r *KVRepository) GetValue(ctx context.Context, key string) (int64, error) {
	const query = `
        SELECT value FROM kv_store WHERE namespace = $1 AND key = $2
    `
	var value int64
	err := r.db.QueryRow(ctx, query, r.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get value: %w", err)
	}
	return value, nil
}

func (r *KVRepository) SetValue(ctx context.Context, key string, value int64) error {
	const query = `
        INSERT INTO kv_store (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (namespace, key) DO UPDATE
        SET value = EXCLUDED.value, updated_at = NOW()
    `
	if _, err := r.db.Exec(ctx, query, r.namespace, key, value); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

func (r *KVRepository) RemoveValue(ctx context.Context, key string) error {
	const query = `
        DELETE FROM kv_store WHERE namespace = $1 AND key = $2
    `
	if _, err := r.db.Exec(ctx, query, r.namespace, key); err != nil {
		return fmt.Errorf("failed to remove value: %w", err)
	}
	return nil
}
