package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ai"
)

func TestChatCompletion(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  {\"ok\":true}  "}}]}`))
	}))
	defer srv.Close()

	c := New("k", srv.URL+"/")
	out, err := c.CompleteWithSystem(context.Background(), "gpt-4o-mini", "sys", "hi", ai.Options{JSON: true, Temperature: 0.9})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected reply %q", out)
	}
	if got["temperature"] != 0.9 {
		t.Fatalf("expected temperature 0.9, got %v", got["temperature"])
	}
	if _, ok := got["response_format"]; !ok {
		t.Fatal("expected response_format in JSON mode")
	}
}

func TestMissingKey(t *testing.T) {
	if _, err := New("", "").Complete(context.Background(), "gpt", "hi"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	if _, err := New("k", srv.URL).Complete(context.Background(), "gpt", "hi"); err == nil {
		t.Fatal("expected status error")
	}
}
