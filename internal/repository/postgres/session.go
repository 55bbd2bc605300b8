package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/quicklogin/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

// SessionRepository keeps one active session per namespace.
type SessionRepository struct {
	db        *Connection
	namespace string
}

func NewSessionRepository(db *Connection, namespace string) *SessionRepository {
	return &SessionRepository{db: db, namespace: namespaceOrDefault(namespace)}
}

func (r *SessionRepository) Save(ctx context.Context, session model.Session) error {
	const query = `
        INSERT INTO sessions (
            namespace, user_id, phone, nickname, access_token, refresh_token, expires_at, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (namespace) DO UPDATE SET
            user_id = EXCLUDED.user_id,
            phone = EXCLUDED.phone,
            nickname = EXCLUDED.nickname,
            access_token = EXCLUDED.access_token,
            refresh_token = EXCLUDED.refresh_token,
            expires_at = EXCLUDED.expires_at,
            created_at = EXCLUDED.created_at
    `

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(ctx, query,
		r.namespace, string(session.UserID), session.Phone, session.Nickname,
		session.AccessToken, session.RefreshToken, nullableTime(session.ExpiresAt), session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Load(ctx context.Context) (model.Session, error) {
	const query = `
        SELECT user_id, phone, nickname, access_token, refresh_token, expires_at, created_at
        FROM sessions WHERE namespace = $1
    `
	var (
		s         model.Session
		userID    string
		expiresAt *time.Time
	)
	err := r.db.QueryRow(ctx, query, r.namespace).Scan(
		&userID, &s.Phone, &s.Nickname, &s.AccessToken, &s.RefreshToken, &expiresAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	s.UserID = model.UserID(userID)
	if expiresAt != nil {
		s.ExpiresAt = *expiresAt
	}
	return s, nil
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	const query = `
        DELETE FROM sessions WHERE namespace = $1
    `
	if _, err := r.db.Exec(ctx, query, r.namespace); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
