package config

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

// sessionKeyInfo binds derived keys to their use.
const sessionKeyInfo = "resume-builder session token v1"

// MinSessionTTL is the shortest accepted session lifetime.
const MinSessionTTL = time.Minute

// SessionConfig holds configuration for session token signing and expiry.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	// Ephemeral is set when Secret was generated for this process; tokens
	// do not survive a restart.
	Ephemeral bool
}

// NewSessionConfig creates a session configuration. An empty secret is
// replaced with a random one.
func NewSessionConfig(secret string, ttl time.Duration) (*SessionConfig, error) {
	cfg := &SessionConfig{Secret: secret, TTL: ttl}
	if cfg.Secret == "" {
		generated, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Secret = generated
		cfg.Ephemeral = true
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Session builds the session configuration from SessionSecret and SessionTTL.
func (c *Config) Session() (*SessionConfig, error) {
	ttl, err := c.SessionDuration()
	if err != nil {
		return nil, err
	}
	return NewSessionConfig(c.SessionSecret, ttl)
}

// SigningKey derives the HMAC key for session tokens from the secret.
func (c *SessionConfig) SigningKey() ([]byte, error) {
	if c.Secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}
	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(c.Secret), nil, []byte(sessionKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	return key, nil
}

// normalize validates the configuration.
func (c *SessionConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("SESSION_SECRET cannot be empty")
	}
	if c.TTL < MinSessionTTL {
		return fmt.Errorf("SESSION_TTL must be at least %s, got: %s", MinSessionTTL, c.TTL)
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
