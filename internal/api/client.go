// Package api is the client for the AceAI completions and file endpoints.
// The service speaks the OpenAI-compatible REST dialect with bearer-token
// authentication.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/acejesus/aceai/internal/models"
)

// Client talks to an OpenAI-compatible endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64

	// httpClient serves request/response calls; streamClient has no hard
	// timeout and relies on context cancellation.
	httpClient   *http.Client
	streamClient *http.Client
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithModel sets the completions model id.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) ClientOption {
	return func(c *Client) {
		c.temperature = temperature
	}
}

// WithHTTPClient overrides the client used for request/response calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithStreamClient overrides the client used for streaming calls.
func WithStreamClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.streamClient = hc
	}
}

// NewClient creates a new Client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		model:        models.DefaultModel,
		temperature:  models.DefaultTemperature,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		streamClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model id.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
