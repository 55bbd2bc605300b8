package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/quicklogin/internal/logger"
	"github.com/dtroode/quicklogin/internal/model"
)

const (
	quickLoginPath = "/auth/wechat/quick-login"
	profilePath    = "/user/profile"
)

var _ model.UserStore = (*User)(nil)

type quickLoginRequest struct {
	LoginCode string `json:"loginCode" validate:"required"`
	PhoneCode string `json:"phoneCode" validate:"required"`
}

type quickLoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         userProfile `json:"user"`
}

type userProfile struct {
	ID       model.UserID `json:"id"`
	Phone    string       `json:"phone"`
	Nickname string       `json:"nickname"`
}

// User is the user session store: it exchanges login codes for a session
// and keeps the session in a SessionStore.
type User struct {
	api      model.Requester
	sessions model.SessionStore
	tokens   model.TokenParser
	logger   *logger.Logger
	now      func() time.Time
}

// NewUser creates the user session store.
func NewUser(api model.Requester, sessions model.SessionStore, tokens model.TokenParser, logger *logger.Logger) *User {
	return &User{
		api:      api,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

// WechatQuickLogin exchanges a platform login code and a phone grant code
// for a session. Any backend rejection fails the call; codes are never
// resent.
func (u *User) WechatQuickLogin(ctx context.Context, loginCode, phoneCode string) error {
	req := quickLoginRequest{LoginCode: loginCode, PhoneCode: phoneCode}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid quick login request: %w", err)
	}

	var resp quickLoginResponse
	if err := u.api.Post(ctx, quickLoginPath, req, &resp); err != nil {
		u.logger.Error("User service: quick login request failed",
			"error", err.Error())
		return fmt.Errorf("quick login failed: %w", err)
	}
	if resp.Token == "" {
		return errors.New("quick login response has no token")
	}

	claims, err := u.tokens.ParseAccessToken(resp.Token)
	if err != nil {
		u.logger.Error("User service: failed to parse access token",
			"error", err.Error())
		return fmt.Errorf("failed to parse access token: %w", err)
	}

	userID := claims.UserID
	if userID == "" {
		userID = resp.User.ID
	}

	session := model.Session{
		UserID:       userID,
		Phone:        resp.User.Phone,
		Nickname:     resp.User.Nickname,
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    claims.ExpiresAt,
		CreatedAt:    u.now(),
	}
	if err := u.sessions.Save(ctx, session); err != nil {
		u.logger.Error("User service: failed to save session",
			"user_id", userID.String(),
			"error", err.Error())
		return fmt.Errorf("failed to save session: %w", err)
	}

	u.logger.Info("User service: session established",
		"user_id", userID.String(),
		"phone", logger.MaskPhone(session.Phone))

	return nil
}

// Current returns the stored session. An expired session is cleared and
// reported as model.ErrNotFound.
func (u *User) Current(ctx context.Context) (model.Session, error) {
	session, err := u.sessions.Load(ctx)
	if err != nil {
		return model.Session{}, err
	}
	if session.Expired(u.now()) {
		u.logger.Info("User service: session expired",
			"user_id", session.UserID.String())
		if err := u.sessions.Clear(ctx); err != nil {
			return model.Session{}, fmt.Errorf("failed to clear expired session: %w", err)
		}
		return model.Session{}, model.ErrNotFound
	}
	return session, nil
}

// Refresh re-reads the user profile with the stored access token and saves
// the updated session. The backend error is returned unchanged in the chain,
// so a rejected token can be told apart by the caller.
func (u *User) Refresh(ctx context.Context) (model.Session, error) {
	session, err := u.Current(ctx)
	if err != nil {
		return model.Session{}, err
	}

	var profile userProfile
	if err := u.api.Get(ctx, profilePath, &profile); err != nil {
		u.logger.Error("User service: profile request failed",
			"user_id", session.UserID.String(),
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if profile.ID != "" && session.UserID != "" && profile.ID != session.UserID {
		return model.Session{}, fmt.Errorf("profile user %s does not match session user %s", profile.ID, session.UserID)
	}

	if session.UserID == "" {
		session.UserID = profile.ID
	}
	if profile.Phone != "" {
		session.Phone = profile.Phone
	}
	if profile.Nickname != "" {
		session.Nickname = profile.Nickname
	}
	if err := u.sessions.Save(ctx, session); err != nil {
		return model.Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	u.logger.Debug("User service: profile refreshed",
		"user_id", session.UserID.String())
	return session, nil
}

// AccessToken returns the current access token or "" when logged out.
func (u *User) AccessToken(ctx context.Context) string {
	session, err := u.Current(ctx)
	if err != nil {
		return ""
	}
	return session.AccessToken
}

// Logout drops the stored session.
func (u *User) Logout(ctx context.Context) error {
	if err := u.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	u.logger.Info("User service: logged out")
	return nil
}
