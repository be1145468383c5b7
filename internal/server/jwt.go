package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/server/middleware"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "resume_session"

// tokenIssuer is written to the iss claim.
const tokenIssuer = "resume-builder"

// Claims represents session token claims. The subject is the session ID.
type Claims struct {
	jwt.RegisteredClaims
}

// GetSessionID returns the session ID from the claims.
// This implements the middleware.SessionIDGetter interface.
func (c *Claims) GetSessionID() string {
	return c.Subject
}

// AsTokenValidator returns a TokenValidator adapter for this SessionTokens.
// This allows SessionTokens to be used with middleware without creating import cycles.
func (s *SessionTokens) AsTokenValidator() middleware.TokenValidator {
	return &sessionTokenValidator{service: s}
}

// sessionTokenValidator adapts SessionTokens to middleware.TokenValidator interface.
type sessionTokenValidator struct {
	service *SessionTokens
}

func (v *sessionTokenValidator) ValidateToken(tokenString string) (middleware.SessionIDGetter, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// SessionTokens issues and validates HS256 session tokens.
type SessionTokens struct {
	key    []byte
	secure bool
}

// NewSessionTokens creates a token service keyed from the session configuration.
func NewSessionTokens(cfg *config.SessionConfig) (*SessionTokens, error) {
	key, err := cfg.SigningKey()
	if err != nil {
		return nil, err
	}
	return &SessionTokens{key: key}, nil
}

// GenerateToken generates a token for session that expires with it.
func (s *SessionTokens) GenerateToken(session *pipeline.Session) (string, error) {
	if session == nil || session.ID == "" {
		return "", fmt.Errorf("session is required")
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.ID,
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a token and returns the claims.
func (s *SessionTokens) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrSignatureInvalid), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		default:
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no session")
	}

	return claims, nil
}

// Cookie returns the session cookie carrying token until the session expires.
func (s *SessionTokens) Cookie(token string, session *pipeline.Session) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
