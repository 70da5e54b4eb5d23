package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthError_Is(t *testing.T) {
	err := NewAuthError(CodeInvalidCredential, "bad password")

	if !errors.Is(err, ErrNotAuthenticated) {
		t.Error("AuthError should match ErrNotAuthenticated")
	}
	if !IsAuthError(err) {
		t.Error("IsAuthError should report true")
	}
	if !IsAuthError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsAuthError should see through wrapping")
	}
}

func TestStoreError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewStoreError("save", inner)

	if !errors.Is(err, ErrStoreUnavailable) {
		t.Error("StoreError should match ErrStoreUnavailable")
	}
	if !errors.Is(err, inner) {
		t.Error("StoreError should unwrap to the cause")
	}
	if !IsStoreError(fmt.Errorf("saving chats: %w", err)) {
		t.Error("IsStoreError should see through wrapping")
	}
}

func TestGetHTTPStatus(t *testing.T) {
	err := NewAPIError(429, "/chat/completions", "rate limited")
	if got := GetHTTPStatus(err); got != 429 {
		t.Errorf("GetHTTPStatus = %d, want 429", got)
	}
	if got := GetHTTPStatus(errors.New("plain")); got != 0 {
		t.Errorf("GetHTTPStatus = %d, want 0", got)
	}
}

func TestFriendlyAuthMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"email in use", NewAuthError(CodeEmailInUse, ""), "This email is already registered. Please sign in instead."},
		{"bad credentials", NewAuthError(CodeInvalidCredential, ""), "Invalid email or password. Please try again."},
		{"weak password", NewAuthError(CodeWeakPassword, ""), "Password should be at least 6 characters."},
		{"invalid email", NewAuthError(CodeInvalidEmail, ""), "Please enter a valid email address."},
		{"cancelled", NewAuthError(CodeSignInCancelled, ""), "Sign-in was cancelled. Please try again."},
		{"unknown code passes message through", NewAuthError("quota-exceeded", "too many accounts"), "too many accounts"},
		{"unknown code without message", NewAuthError("quota-exceeded", ""), "An error occurred during authentication."},
		{"non-auth error passes through", errors.New("disk full"), "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FriendlyAuthMessage(tt.err); got != tt.want {
				t.Errorf("FriendlyAuthMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
