package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"xyen-quiz-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore, useful for
// tests and single-process deployments.
type QuizStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	docs    map[string]domain.Document
	quizzes map[string]domain.Quiz
}

func NewQuizStore() *QuizStore {
	return NewQuizStoreWithClock(time.Now)
}

// NewQuizStoreWithClock allows deterministic timestamps in tests.
func NewQuizStoreWithClock(now func() time.Time) *QuizStore {
	return &QuizStore{
		now:     now,
		docs:    make(map[string]domain.Document),
		quizzes: make(map[string]domain.Quiz),
	}
}

func (s *QuizStore) CreateDocument(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *QuizStore) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *QuizStore) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (s *QuizStore) ListQuizzes(_ context.Context, ownerID string, onlyCompleted bool) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		if quiz.OwnerID != ownerID {
			continue
		}
		if onlyCompleted && quiz.Status != domain.StatusCompleted {
			continue
		}
		out = append(out, cloneQuiz(quiz))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *QuizStore) MarkProcessing(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	if quiz.Status != domain.StatusQueued {
		return nil
	}
	quiz.Status = domain.StatusProcessing
	quiz.UpdatedAt = s.now()
	s.quizzes[id] = quiz
	return nil
}

func (s *QuizStore) CompleteQuiz(_ context.Context, id string, questions []domain.Question) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return false, domain.ErrQuizNotFound
	}
	if quiz.Status.IsTerminal() {
		return false, nil
	}
	quiz.Status = domain.StatusCompleted
	quiz.Questions = append([]domain.Question(nil), questions...)
	quiz.ErrorDetail = ""
	quiz.UpdatedAt = s.now()
	s.quizzes[id] = quiz
	return true, nil
}

func (s *QuizStore) FailQuiz(_ context.Context, id string, detail string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return false, domain.ErrQuizNotFound
	}
	if quiz.Status.IsTerminal() {
		return false, nil
	}
	quiz.Status = domain.StatusFailed
	quiz.ErrorDetail = detail
	quiz.UpdatedAt = s.now()
	s.quizzes[id] = quiz
	return true, nil
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	if quiz.Questions != nil {
		quiz.Questions = append([]domain.Question(nil), quiz.Questions...)
	}
	return quiz
}
