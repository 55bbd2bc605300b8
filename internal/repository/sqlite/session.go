package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/quicklogin/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

// SessionRepository keeps one active session per namespace. Timestamps are
// stored as epoch milliseconds.
type SessionRepository struct {
	db        *sql.DB
	namespace string
}

func NewSessionRepository(db *sql.DB, namespace string) *SessionRepository {
	return &SessionRepository{db: db, namespace: namespaceOrDefault(namespace)}
}

func (r *SessionRepository) Save(ctx context.Context, session model.Session) error {
	const query = `
        INSERT INTO sessions (
            namespace, user_id, phone, nickname, access_token, refresh_token, expires_at, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (namespace) DO UPDATE SET
            user_id = excluded.user_id,
            phone = excluded.phone,
            nickname = excluded.nickname,
            access_token = excluded.access_token,
            refresh_token = excluded.refresh_token,
            expires_at = excluded.expires_at,
            created_at = excluded.created_at
    `

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	var expiresAt sql.NullInt64
	if !session.ExpiresAt.IsZero() {
		expiresAt = sql.NullInt64{Int64: session.ExpiresAt.UnixMilli(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		r.namespace, string(session.UserID), session.Phone, session.Nickname,
		session.AccessToken, session.RefreshToken, expiresAt, session.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Load(ctx context.Context) (model.Session, error) {
	const query = `
        SELECT user_id, phone, nickname, access_token, refresh_token, expires_at, created_at
        FROM sessions WHERE namespace = ?
    `
	var (
		s         model.Session
		userID    string
		expiresAt sql.NullInt64
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, r.namespace).Scan(
		&userID, &s.Phone, &s.Nickname, &s.AccessToken, &s.RefreshToken, &expiresAt, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	s.UserID = model.UserID(userID)
	if expiresAt.Valid {
		s.ExpiresAt = time.UnixMilli(expiresAt.Int64)
	}
	s.CreatedAt = time.UnixMilli(createdAt)

	return s, nil
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	const query = `DELETE FROM sessions WHERE namespace = ?`

	if _, err := r.db.ExecContext(ctx, query, r.namespace); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
