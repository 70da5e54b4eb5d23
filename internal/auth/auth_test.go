package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/acejesus/aceai/internal/errors"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

func TestSessionFromToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := mintToken(t, jwt.MapClaims{
		"sub":        "user-1",
		"email":      "ada@example.com",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"exp":        exp.Unix(),
	})

	s, err := SessionFromToken(token)
	if err != nil {
		t.Fatalf("SessionFromToken failed: %v", err)
	}
	if s.UserID != "user-1" || s.Email != "ada@example.com" {
		t.Errorf("session = %+v", s)
	}
	if s.DisplayName() != "Ada Lovelace" {
		t.Errorf("DisplayName = %q", s.DisplayName())
	}
	if !s.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", s.ExpiresAt, exp)
	}
}

func TestSessionFromToken_NoSubject(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{"email": "x@example.com"})
	if _, err := SessionFromToken(token); err == nil {
		t.Error("expected error for token without subject")
	}
}

func TestSessionFromToken_Garbage(t *testing.T) {
	if _, err := SessionFromToken("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestSessionPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	// Missing file reads as not signed in.
	if _, err := LoadSession(path); !errors.Is(err, apierrors.ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}

	s := &Session{
		Token:     "tok",
		UserID:    "user-1",
		Email:     "ada@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := SaveSession(path, s); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if loaded.UserID != s.UserID || loaded.Token != s.Token {
		t.Errorf("loaded = %+v", loaded)
	}

	if err := ClearSession(path); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if _, err := LoadSession(path); !errors.Is(err, apierrors.ErrNotAuthenticated) {
		t.Errorf("err after clear = %v", err)
	}
	// Clearing twice is fine.
	if err := ClearSession(path); err != nil {
		t.Errorf("second ClearSession failed: %v", err)
	}
}

func TestLoadSession_Expired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := &Session{Token: "tok", UserID: "u", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := SaveSession(path, s); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if _, err := LoadSession(path); !errors.Is(err, apierrors.ErrSessionExpired) {
		t.Errorf("err = %v, want ErrSessionExpired", err)
	}
}

func TestLogin(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{
		"sub":   "user-9",
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprintf(w, `{"token":%q}`, token)
	}))
	defer srv.Close()

	s, err := NewClient(srv.URL).Login(context.Background(), "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if s.UserID != "user-9" {
		t.Errorf("UserID = %s", s.UserID)
	}
}

func TestLoginWithGoogle(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{
		"sub":   "user-g",
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/google" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"id_token":"google-id-token"`) {
			t.Errorf("body = %s", body)
		}
		fmt.Fprintf(w, `{"token":%q}`, token)
	}))
	defer srv.Close()

	s, err := NewClient(srv.URL).LoginWithGoogle(context.Background(), "google-id-token")
	if err != nil {
		t.Fatalf("LoginWithGoogle failed: %v", err)
	}
	if s.UserID != "user-g" {
		t.Errorf("UserID = %s", s.UserID)
	}
}

func TestLogin_ServiceErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":"invalid-credential","message":"bad password"}}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), "ada@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if !apierrors.IsAuthError(err) {
		t.Errorf("err = %T, want AuthError", err)
	}
	if got := apierrors.FriendlyAuthMessage(err); got != "Invalid email or password. Please try again." {
		t.Errorf("friendly message = %q", got)
	}
}

func TestRegister_EmailInUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":{"code":"email-already-in-use"}}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Register(context.Background(), "Ada", "Lovelace", "ada@example.com", "hunter2")
	var ae *apierrors.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %T, want AuthError", err)
	}
	if ae.Code != apierrors.CodeEmailInUse {
		t.Errorf("code = %s", ae.Code)
	}
}

func TestAuthFailure_NoCode(t *testing.T) {
	err := authFailure(http.StatusBadGateway, []byte("upstream down"))
	if apierrors.IsAuthError(err) {
		t.Error("transport failure should not look like an identity failure")
	}
	if got := apierrors.GetHTTPStatus(err); got != http.StatusBadGateway {
		t.Errorf("status = %d", got)
	}
}
