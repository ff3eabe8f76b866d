package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/contractchecker-server/internal/model"
)

// Claims represents session JWT claims. The subject carries the caller uid.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

var _ model.SessionTokenManager = (*SessionJWT)(nil)

// SessionJWT implements SessionTokenManager backed by symmetric HMAC.
type SessionJWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

// NewSessionJWT creates a session token manager with the provided secret key
// and token lifetime.
func NewSessionJWT(secretKey string, ttl time.Duration) *SessionJWT {
	return &SessionJWT{secretKey: secretKey, ttl: ttl, now: time.Now}
}

const typeSession = "session"

// GenerateSessionToken creates a session token for uid.
func (j *SessionJWT) GenerateSessionToken(uid string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("uid is empty")
	}

	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		TokenType: typeSession,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ParseSessionToken validates a session token and extracts the uid.
func (j *SessionJWT) ParseSessionToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("session token is invalid")
	}
	if claims.TokenType != typeSession {
		return "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}
	return claims.Subject, nil
}
