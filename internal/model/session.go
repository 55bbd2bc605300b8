package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// UserStore owns the authenticated session.
type UserStore interface {
	WechatQuickLogin(ctx context.Context, loginCode, phoneCode string) error
}

// SessionStore persists the authenticated session.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Load(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
}

// UserID is an opaque backend user identifier. Backends issue it as a JSON
// string or a JSON number; both decode to the same textual form.
type UserID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid user id %s: %w", data, err)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string {
	return string(id)
}

// Session is the authenticated session returned by the backend.
type Session struct {
	UserID       UserID
	Phone        string
	Nickname     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the access token is past its expiry at now.
// A zero ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TokenParser extracts claims from a backend access token.
type TokenParser interface {
	ParseAccessToken(token string) (TokenClaims, error)
}

// TokenClaims are the access token fields the client relies on.
type TokenClaims struct {
	UserID    UserID
	ExpiresAt time.Time
}

// SMSSender asks the backend to deliver a verification code.
type SMSSender interface {
	SendSMSCode(ctx context.Context, phone string) error
}

// Requester sends a JSON request to the backend and decodes the response
// data into out.
type Requester interface {
	Post(ctx context.Context, path string, in, out any) error
	Get(ctx context.Context, path string, out any) error
}
