package worker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xyen-quiz-service/internal/domain"
)

func TestRemoteDispatchPostsJob(t *testing.T) {
	var got dispatchRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	remote := NewRemote(server.URL, "api-key", "https://self/api/v1/quiz-callback", server.Client())
	err := remote.Dispatch(domain.Quiz{
		ID:          "quiz-1",
		DocumentURL: "https://blob/doc.pdf",
		Type:        domain.TypeYesNo,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if auth != "Bearer api-key" {
		t.Fatalf("missing bearer auth, got %q", auth)
	}
	if got.QuizID != "quiz-1" || got.URL != "https://blob/doc.pdf" || got.Type != domain.TypeYesNo {
		t.Fatalf("unexpected payload %+v", got)
	}
	if got.CallbackURL != "https://self/api/v1/quiz-callback" {
		t.Fatalf("callback url not forwarded: %q", got.CallbackURL)
	}
}

func TestRemoteDispatchSurfacesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	remote := NewRemote(server.URL, "api-key", "https://self/cb", server.Client())
	err := remote.Dispatch(domain.Quiz{ID: "quiz-1"})
	if err == nil {
		t.Fatalf("expected error for 503")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "queue full") {
		t.Fatalf("error should carry status and detail: %v", err)
	}
}
