package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/acejesus/aceai/internal/errors"
	"github.com/acejesus/aceai/internal/models"
)

// sseServer streams the given content fragments as chat.completion chunks.
func sseServer(t *testing.T, fragments []string, capture *completionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fl := w.(http.Flusher)
		for _, frag := range fragments {
			chunk := map[string]any{
				"choices": []map[string]any{
					{"delta": map[string]any{"content": frag}},
				},
			}
			b, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", b)
			fl.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		fl.Flush()
	}))
}

func TestStreamChat_DeliversFragmentsInOrder(t *testing.T) {
	fragments := []string{"<think>", "reasoning ", "done</think>", "Hello", " there"}
	var captured completionRequest
	srv := sseServer(t, fragments, &captured)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")

	var got []string
	err := client.StreamChat(context.Background(), []models.CompletionMessage{
		{Role: models.RoleSystem, Content: models.SystemPrompt},
		{Role: models.RoleUser, Content: "hi"},
	}, func(frag string) error {
		got = append(got, frag)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}

	if len(got) != len(fragments) {
		t.Fatalf("got %d fragments, want %d: %v", len(got), len(fragments), got)
	}
	for i := range fragments {
		if got[i] != fragments[i] {
			t.Errorf("fragment[%d] = %q, want %q", i, got[i], fragments[i])
		}
	}

	if captured.Model != models.DefaultModel {
		t.Errorf("request model = %s", captured.Model)
	}
	if !captured.Stream {
		t.Error("request should set stream")
	}
	if captured.Temperature != models.DefaultTemperature {
		t.Errorf("request temperature = %v", captured.Temperature)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != models.RoleSystem {
		t.Errorf("request messages = %+v", captured.Messages)
	}
}

func TestStreamChat_CallbackErrorAborts(t *testing.T) {
	srv := sseServer(t, []string{"a", "b", "c"}, nil)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	abort := errors.New("abort")

	count := 0
	err := client.StreamChat(context.Background(), nil, func(string) error {
		count++
		return abort
	})
	if !errors.Is(err, abort) {
		t.Errorf("err = %v, want abort", err)
	}
	if count != 1 {
		t.Errorf("callback ran %d times after aborting", count)
	}
}

func TestStreamChat_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	err := client.StreamChat(context.Background(), nil, func(string) error { return nil })
	if err == nil {
		t.Fatal("expected error for 429")
	}
	if got := apierrors.GetHTTPStatus(err); got != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", got)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error should carry the service message, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"42"}}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", WithModel("custom-model"), WithTemperature(0.1))

	answer, err := client.Complete(context.Background(), []models.CompletionMessage{
		{Role: models.RoleUser, Content: "meaning of life?"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if answer != "42" {
		t.Errorf("answer = %q", answer)
	}
}

func TestComplete_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	if _, err := client.Complete(context.Background(), nil); err == nil {
		t.Error("expected error for empty completion")
	}
}
