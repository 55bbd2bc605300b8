package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/quicklogin/internal/model"
)

// Claims represents backend access token claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID    model.UserID `json:"user_id,omitempty"`
	TokenType string       `json:"typ"`
}

const typeAccess = "access"

var _ model.TokenParser = (*JWT)(nil)

// JWT reads access tokens issued by the backend. With an empty secret the
// signature is not checked: the client only needs the claims, the backend
// stays the authority on validity.
type JWT struct {
	secretKey string
	parser    *jwt.Parser
}

// NewJWT creates a token parser. secretKey may be empty.
func NewJWT(secretKey string) *JWT {
	return &JWT{
		secretKey: secretKey,
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// ParseAccessToken extracts the user ID and expiry from an access token.
func (j *JWT) ParseAccessToken(tokenString string) (model.TokenClaims, error) {
	claims := &Claims{}

	if j.secretKey == "" {
		if _, _, err := j.parser.ParseUnverified(tokenString, claims); err != nil {
			return model.TokenClaims{}, fmt.Errorf("failed to parse access token: %w", err)
		}
	} else {
		token, err := j.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
			}
			return []byte(j.secretKey), nil
		})
		if err != nil {
			return model.TokenClaims{}, fmt.Errorf("failed to parse access token: %w", err)
		}
		if !token.Valid {
			return model.TokenClaims{}, errors.New("access token is invalid")
		}
	}

	if claims.TokenType != "" && claims.TokenType != typeAccess {
		return model.TokenClaims{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}

	userID := claims.UserID
	if userID == "" {
		userID = model.UserID(claims.Subject)
	}

	result := model.TokenClaims{UserID: userID}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}
