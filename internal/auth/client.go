package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/acejesus/aceai/internal/errors"
)

// Client talks to the identity service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an identity client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// Register creates an account and returns the signed-in session.
func (c *Client) Register(ctx context.Context, firstName, lastName, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/register", registerRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  password,
	})
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/login", loginRequest{Email: email, Password: password})
}

// LoginWithGoogle exchanges a Google ID token for a session.
func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	return c.authenticate(ctx, "/auth/google", googleLoginRequest{IDToken: idToken})
}

// authenticate posts a credential payload and turns the returned token
// into a session.
func (c *Client) authenticate(ctx context.Context, path string, payload any) (*Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, authFailure(resp.StatusCode, respBody)
	}

	token := gjson.GetBytes(respBody, "token").String()
	if token == "" {
		return nil, apierrors.NewParseError("auth response has no token", path)
	}
	return SessionFromToken(token)
}

// authFailure maps a service error body to a typed auth error. The
// service reports identity problems with a short error code; anything
// else is a transport-level failure.
func authFailure(status int, body []byte) error {
	code := gjson.GetBytes(body, "error.code").String()
	if code == "" {
		code = gjson.GetBytes(body, "code").String()
	}
	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = gjson.GetBytes(body, "message").String()
	}

	if code != "" {
		return apierrors.NewAuthError(code, message)
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	return apierrors.NewAPIError(status, "auth", message)
}
