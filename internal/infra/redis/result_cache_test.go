package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"xyen-quiz-service/internal/domain"
	"xyen-quiz-service/internal/infra/memory"
)

func TestResultCacheCachesCompletedQuizzes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := memory.NewQuizStore()
	seedQuiz(t, store, "quiz-1", domain.StatusCompleted)

	loader := &countingLoader{inner: store}
	cache := NewResultCache(newClient(mr), loader, time.Minute)

	quiz, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Status != domain.StatusCompleted || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz from loader: %+v", quiz)
	}
	if loader.calls != 1 {
		t.Fatalf("expected one loader call, got %d", loader.calls)
	}
	if !mr.Exists("quiz:quiz-1:result") {
		t.Fatalf("expected redis key to be set for completed quiz")
	}

	// Second read is a cache hit.
	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("get quiz from cache: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestResultCacheSkipsNonTerminalQuizzes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := memory.NewQuizStore()
	seedQuiz(t, store, "quiz-2", domain.StatusProcessing)

	loader := &countingLoader{inner: store}
	cache := NewResultCache(newClient(mr), loader, time.Minute)

	if _, err := cache.GetQuiz(ctx, "quiz-2"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if mr.Exists("quiz:quiz-2:result") {
		t.Fatalf("processing quiz must not be cached")
	}

	if _, err := cache.GetQuiz(ctx, "quiz-2"); err != nil {
		t.Fatalf("get quiz again: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected loader hit on every read, got %d", loader.calls)
	}
}

type countingLoader struct {
	inner QuizLoader
	calls int
}

func (l *countingLoader) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	l.calls++
	return l.inner.GetQuiz(ctx, id)
}

func seedQuiz(t *testing.T, store *memory.QuizStore, id string, status domain.QuizStatus) {
	t.Helper()
	ctx := context.Background()
	quiz := domain.Quiz{
		ID:          id,
		OwnerID:     "u1",
		Title:       "History",
		DocumentURL: "https://blob/doc.pdf",
		Type:        domain.TypeYesNo,
		Status:      domain.StatusQueued,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := store.CreateQuiz(ctx, quiz); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	switch status {
	case domain.StatusProcessing:
		if err := store.MarkProcessing(ctx, id); err != nil {
			t.Fatalf("mark processing: %v", err)
		}
	case domain.StatusCompleted:
		questions := []domain.Question{{
			ID:   "q1",
			Text: "Is water wet?",
			Type: "yes-no",
			Choices: []domain.Choice{
				{ID: "a", Text: "Yes", IsCorrect: true},
				{ID: "b", Text: "No", IsCorrect: false},
			},
		}}
		if _, err := store.CompleteQuiz(ctx, id, questions); err != nil {
			t.Fatalf("complete quiz: %v", err)
		}
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}
