package genai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "github.com/pratham/chatterm/internal/errors"
	"github.com/pratham/chatterm/internal/models"
)

func TestBuildMessages(t *testing.T) {
	history := []models.Message{
		{ID: "1", Sender: models.SenderUser, Content: "hi"},
		{ID: "2", Sender: models.SenderBot, Content: "hello"},
		{ID: "3", Sender: models.SenderBot, Content: models.PendingContent, Status: models.StatusErrored},
	}

	got := buildMessages(history, "how are you")

	if len(got) != 3 {
		t.Fatalf("got %d messages, want 3 (placeholder skipped)", len(got))
	}
	if got[0].Role != "user" || got[0].Content != "hi" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Role != "assistant" || got[1].Content != "hello" {
		t.Errorf("second = %+v", got[1])
	}
	if got[2].Role != "user" || got[2].Content != "how are you" {
		t.Errorf("last = %+v", got[2])
	}
}

func TestGenerate(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		io.WriteString(w, `{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "**Hi!!**"}, "finish_reason": "stop"}]
		}`)
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "test-key", "test-model")
	got, err := g.Generate(context.Background(), nil, "hello")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got != "**Hi!!**" {
		t.Errorf("response = %q, want raw model text", got)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Errorf("request messages = %+v", gotReq.Messages)
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": "cmpl-1", "object": "chat.completion", "choices": []}`)
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "", "test-model")
	if _, err := g.Generate(context.Background(), nil, "hello"); !apierrors.IsGatewayError(err) {
		t.Errorf("expected gateway error for empty choices, got %v", err)
	}
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "", "test-model")
	if _, err := g.Generate(context.Background(), nil, "hello"); !apierrors.IsGatewayError(err) {
		t.Errorf("expected gateway error for 503, got %v", err)
	}
}
