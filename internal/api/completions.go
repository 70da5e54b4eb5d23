package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/acejesus/aceai/internal/errors"
	"github.com/acejesus/aceai/internal/models"
)

const completionsPath = "/chat/completions"

// maxErrorBody caps how much of an error response is read back.
const maxErrorBody = 1 << 20

type completionRequest struct {
	Model       string                     `json:"model"`
	Messages    []models.CompletionMessage `json:"messages"`
	Temperature float64                    `json:"temperature"`
	Stream      bool                       `json:"stream,omitempty"`
}

// StreamChat sends the message sequence and invokes onFragment for every
// content delta in arrival order. It returns once the stream terminates;
// an onFragment error aborts the stream.
func (c *Client) StreamChat(ctx context.Context, messages []models.CompletionMessage, onFragment func(string) error) error {
	resp, err := c.postCompletions(ctx, messages, true, c.streamClient)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// SSE framing: "data:" lines accumulate until a blank line ends the
	// event. The service terminates the stream with a [DONE] event.
	br := bufio.NewReader(resp.Body)
	var dataBuf strings.Builder

	flush := func() error {
		raw := strings.TrimSpace(dataBuf.String())
		dataBuf.Reset()
		if raw == "" {
			return nil
		}
		if raw == "[DONE]" {
			return errStreamDone
		}
		if fragment := gjson.Get(raw, "choices.0.delta.content").String(); fragment != "" {
			return onFragment(fragment)
		}
		return nil
	}

	for {
		line, readErr := br.ReadString('\n')
		if line != "" {
			trim := strings.TrimRight(line, "\r\n")
			if trim == "" {
				if err := flush(); err != nil {
					if err == errStreamDone {
						return nil
					}
					return err
				}
			} else if strings.HasPrefix(trim, "data:") {
				if dataBuf.Len() > 0 {
					dataBuf.WriteString("\n")
				}
				dataBuf.WriteString(strings.TrimSpace(strings.TrimPrefix(trim, "data:")))
			}
		}

		if readErr != nil {
			if err := flush(); err != nil && err != errStreamDone {
				return err
			}
			if readErr == io.EOF {
				return nil
			}
			return fmt.Errorf("completion stream read failed: %w", readErr)
		}
	}
}

// Complete sends the message sequence and returns the full answer text.
func (c *Client) Complete(ctx context.Context, messages []models.CompletionMessage) (string, error) {
	resp, err := c.postCompletions(ctx, messages, false, c.httpClient)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	content := gjson.GetBytes(body, "choices.0.message.content").String()
	if content == "" {
		return "", apierrors.NewParseError("no content in completion response", completionsPath)
	}
	return content, nil
}

func (c *Client) postCompletions(ctx context.Context, messages []models.CompletionMessage, stream bool, hc *http.Client) (*http.Response, error) {
	payload := completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		Stream:      stream,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(completionsPath), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apierrors.NewAPIError(resp.StatusCode, completionsPath, apiErrorMessage(body))
	}
	return resp, nil
}

// apiErrorMessage pulls the service's error message out of a failure body.
func apiErrorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
		return msg
	}
	return strings.TrimSpace(string(body))
}

type streamDoneError struct{}

func (streamDoneError) Error() string { return "stream done" }

var errStreamDone error = streamDoneError{}
