package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"xyen-quiz-service/internal/domain"
)

// QuizStore persists documents and quiz jobs (in-memory, Postgres, etc).
// CompleteQuiz and FailQuiz report whether the transition was applied; a
// false return means the job was already terminal and the call is a no-op.
type QuizStore interface {
	CreateDocument(ctx context.Context, doc domain.Document) error
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context, ownerID string, onlyCompleted bool) ([]domain.Quiz, error)
	MarkProcessing(ctx context.Context, id string) error
	CompleteQuiz(ctx context.Context, id string, questions []domain.Question) (bool, error)
	FailQuiz(ctx context.Context, id string, detail string) (bool, error)
}

// Dispatcher hands a freshly created job to whatever runs generation: an
// in-process worker or a remote service that reports back via callback.
type Dispatcher interface {
	Dispatch(quiz domain.Quiz) error
}

// PipelineService owns the job lifecycle from creation through the terminal
// COMPLETED/FAILED transition.
type PipelineService struct {
	store      QuizStore
	dispatcher Dispatcher
	hub        *StatusHub
	secret     string
	now        func() time.Time
}

func NewPipelineService(store QuizStore, dispatcher Dispatcher, hub *StatusHub, callbackSecret string) *PipelineService {
	return &PipelineService{
		store:      store,
		dispatcher: dispatcher,
		hub:        hub,
		secret:     callbackSecret,
		now:        time.Now,
	}
}

// Start validates the request, persists the document and a QUEUED job, moves
// it to PROCESSING, and dispatches generation. It returns the job id without
// waiting for generation to finish. A dispatch failure still yields the id:
// the job exists, terminally FAILED.
func (s *PipelineService) Start(ctx context.Context, ownerID, documentURL, title string, quizType domain.QuizType) (string, error) {
	if documentURL == "" || title == "" || quizType == "" {
		return "", domain.ErrMissingField
	}
	if !quizType.Valid() {
		return "", fmt.Errorf("%w: unknown quiz type %q", domain.ErrMissingField, quizType)
	}

	now := s.now()
	doc := domain.Document{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		URL:       documentURL,
		CreatedAt: now,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}

	quiz := domain.Quiz{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		DocumentID:  doc.ID,
		DocumentURL: doc.URL,
		Type:        quizType,
		Status:      domain.StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return "", fmt.Errorf("create quiz: %w", err)
	}

	if err := s.store.MarkProcessing(ctx, quiz.ID); err != nil {
		s.failQuietly(quiz.ID, "could not start processing: "+err.Error())
		return quiz.ID, fmt.Errorf("mark processing: %w", err)
	}
	quiz.Status = domain.StatusProcessing
	s.hub.Publish(quiz.ID, domain.StatusProcessing)

	if err := s.dispatcher.Dispatch(quiz); err != nil {
		log.Printf("pipeline: dispatch failed for quiz %s: %v", quiz.ID, err)
		s.failQuietly(quiz.ID, "generation dispatch failed: "+err.Error())
	}
	return quiz.ID, nil
}

// Complete records a successful generation outcome. Late or duplicate calls
// against a terminal job are no-ops. An empty question list is treated as a
// failed generation, never as a completed quiz.
func (s *PipelineService) Complete(ctx context.Context, quizID string, questions []domain.Question) error {
	if len(questions) == 0 {
		return s.Fail(ctx, quizID, "generation produced no questions")
	}
	applied, err := s.store.CompleteQuiz(ctx, quizID, questions)
	if err != nil {
		return fmt.Errorf("complete quiz %s: %w", quizID, err)
	}
	if applied {
		log.Printf("pipeline: quiz %s completed with %d questions", quizID, len(questions))
		s.hub.Publish(quizID, domain.StatusCompleted)
	}
	return nil
}

// Fail records a failed generation outcome with a human-readable detail.
// Late or duplicate calls against a terminal job are no-ops.
func (s *PipelineService) Fail(ctx context.Context, quizID, detail string) error {
	if detail == "" {
		detail = "unknown error"
	}
	applied, err := s.store.FailQuiz(ctx, quizID, detail)
	if err != nil {
		return fmt.Errorf("fail quiz %s: %w", quizID, err)
	}
	if applied {
		log.Printf("pipeline: quiz %s failed: %s", quizID, detail)
		s.hub.Publish(quizID, domain.StatusFailed)
	}
	return nil
}

// CompleteFromCallback applies a remote worker's reported outcome. The token
// must match the pre-shared secret; a callback for an already-terminal job is
// acknowledged without touching the record.
func (s *PipelineService) CompleteFromCallback(ctx context.Context, token, quizID string, success bool, questions []domain.Question, errDetail string) error {
	if token == "" || token != s.secret {
		return domain.ErrUnauthorized
	}

	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.Status.IsTerminal() {
		log.Printf("pipeline: ignoring callback for terminal quiz %s (%s)", quizID, quiz.Status)
		return nil
	}

	if success && len(questions) > 0 {
		return s.Complete(ctx, quizID, questions)
	}
	return s.Fail(ctx, quizID, errDetail)
}

// GetStatus is a read-only status lookup.
func (s *PipelineService) GetStatus(ctx context.Context, quizID string) (domain.QuizStatus, error) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return "", err
	}
	return quiz.Status, nil
}

// GetQuiz returns the full job record including any generated questions.
func (s *PipelineService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.store.GetQuiz(ctx, quizID)
}

// ListQuizzes returns the owner's jobs, newest first, optionally restricted
// to COMPLETED ones.
func (s *PipelineService) ListQuizzes(ctx context.Context, ownerID string, onlyCompleted bool) ([]domain.Quiz, error) {
	return s.store.ListQuizzes(ctx, ownerID, onlyCompleted)
}

// failQuietly records a FAILED outcome on a fresh context. The inbound
// request context may already be canceled (client gone, deadline hit) and the
// terminal write must not die with it.
func (s *PipelineService) failQuietly(quizID, detail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Fail(ctx, quizID, detail); err != nil {
		log.Printf("pipeline: could not mark quiz %s failed: %v", quizID, err)
	}
}
