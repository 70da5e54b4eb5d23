// Package auth signs users in against the AceAI identity service and keeps
// the resulting session on disk. Guests never touch this package.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/acejesus/aceai/internal/errors"
)

// Session is a signed-in identity. The token is the bearer credential for
// the identity service; UserID keys the remote chat store.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// DisplayName returns the best available name for greeting the user.
func (s *Session) DisplayName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	default:
		return s.Email
	}
}

// Expired reports whether the token's lifetime has passed. A session
// without an expiry never expires locally; the service is the judge.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// SessionFromToken builds a session from a JWT issued by the identity
// service. Claims are read without signature verification; the token is
// only trusted by the service that issued it, the client just displays
// what it says.
func SessionFromToken(token string) (*Session, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, apierrors.NewParseError(fmt.Sprintf("malformed identity token: %v", err), "token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierrors.NewParseError("unexpected claims shape", "token")
	}

	s := &Session{Token: token}
	if sub, err := claims.GetSubject(); err == nil {
		s.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		s.Email = email
	}
	if first, ok := claims["first_name"].(string); ok {
		s.FirstName = first
	}
	if last, ok := claims["last_name"].(string); ok {
		s.LastName = last
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}

	if s.UserID == "" {
		return nil, apierrors.NewParseError("identity token has no subject", "token")
	}
	return s, nil
}

// SaveSession writes the session next to the rest of the configuration.
// 0o600: the file holds the bearer token.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// LoadSession reads the persisted session. A missing file means not
// signed in; an expired session is surfaced as such so the caller can
// prompt for a fresh login.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apierrors.NewParseError(fmt.Sprintf("corrupt session file: %v", err), path)
	}
	if s.Token == "" {
		return nil, apierrors.ErrNotAuthenticated
	}
	if s.Expired() {
		return nil, apierrors.ErrSessionExpired
	}
	return &s, nil
}

// ClearSession removes the persisted session. Missing is fine.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
