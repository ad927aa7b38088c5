package naming_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidqueue/internal/config"
	"vidqueue/internal/naming"
)

func TestLLMFactoryTalksToConfiguredEndpoint(t *testing.T) {
	var gotAuth, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Clean Name"}}]}`))
	}))
	defer server.Close()

	factory := naming.LLMFactory(config.LLMConfig{BaseURL: server.URL, TimeoutSeconds: 5, RetryAttempts: 1})
	a := naming.NewAssistant(staticKeys{keys: []string{"secret"}}, []string{"gemma-3-27b-it"}, factory)
	if status := a.Probe(context.Background()); !status.Available {
		t.Fatalf("expected probe success, got %+v", status)
	}
	name, ok := a.SuggestFilename(context.Background(), "whatever")
	if !ok || name != "Clean Name" {
		t.Fatalf("unexpected suggestion %q %v", name, ok)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotModel != "gemma-3-27b-it" {
		t.Fatalf("unexpected model %q", gotModel)
	}
}
