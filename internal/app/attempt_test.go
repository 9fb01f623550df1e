package app_test

import (
	"errors"
	"fmt"
	"testing"

	"xyen-quiz-service/internal/app"
	"xyen-quiz-service/internal/domain"
)

// attemptQuestions builds n two-choice questions where choice "a" is correct.
func attemptQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, domain.Question{
			ID:   fmt.Sprintf("q%d", i),
			Text: fmt.Sprintf("Question %d", i),
			Type: "yes-no",
			Choices: []domain.Choice{
				{ID: "a", Text: "Yes", IsCorrect: true},
				{ID: "b", Text: "No", IsCorrect: false},
			},
		})
	}
	return questions
}

func TestNewAttemptRequiresQuestions(t *testing.T) {
	if _, err := app.NewAttempt(nil); err == nil {
		t.Fatalf("expected error for empty question list")
	}
}

func TestAllCorrectScoresFullMarks(t *testing.T) {
	attempt, err := app.NewAttempt(attemptQuestions(5))
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	for i := 1; i <= 5; i++ {
		if err := attempt.SelectAnswer(fmt.Sprintf("q%d", i), "a"); err != nil {
			t.Fatalf("select q%d: %v", i, err)
		}
	}

	unanswered, err := attempt.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if unanswered != 0 {
		t.Fatalf("expected no unanswered questions, got %d", unanswered)
	}

	score, err := attempt.ConfirmSubmit()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if score != 5 {
		t.Fatalf("expected score 5, got %d", score)
	}
	if attempt.State() != app.AttemptReviewed {
		t.Fatalf("expected reviewed state, got %s", attempt.State())
	}
}

func TestUnansweredQuestionsCountAsIncorrect(t *testing.T) {
	attempt, _ := app.NewAttempt(attemptQuestions(4))

	// Answer only the first two, one right and one wrong.
	if err := attempt.SelectAnswer("q1", "a"); err != nil {
		t.Fatalf("select q1: %v", err)
	}
	if err := attempt.SelectAnswer("q2", "b"); err != nil {
		t.Fatalf("select q2: %v", err)
	}

	unanswered, err := attempt.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if unanswered != 2 {
		t.Fatalf("expected 2 unanswered, got %d", unanswered)
	}

	score, err := attempt.ConfirmSubmit()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if score != 1 {
		t.Fatalf("expected score 1, got %d", score)
	}
}

func TestZeroAnswersScoresZero(t *testing.T) {
	attempt, _ := app.NewAttempt(attemptQuestions(3))

	unanswered, err := attempt.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if unanswered != 3 {
		t.Fatalf("expected 3 unanswered, got %d", unanswered)
	}

	score, err := attempt.ConfirmSubmit()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected score 0, got %d", score)
	}
}

func TestSelectAnswerValidation(t *testing.T) {
	attempt, _ := app.NewAttempt(attemptQuestions(2))

	if err := attempt.SelectAnswer("q9", "a"); !errors.Is(err, app.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
	if err := attempt.SelectAnswer("q1", "z"); !errors.Is(err, app.ErrUnknownChoice) {
		t.Fatalf("expected ErrUnknownChoice, got %v", err)
	}

	// Re-selecting overwrites without moving the cursor.
	if err := attempt.SelectAnswer("q1", "b"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := attempt.SelectAnswer("q1", "a"); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if choice, _ := attempt.Answer("q1"); choice != "a" {
		t.Fatalf("expected overwritten answer a, got %s", choice)
	}
	if attempt.Index() != 0 {
		t.Fatalf("selecting must not advance the cursor")
	}
	if attempt.AnsweredCount() != 1 {
		t.Fatalf("expected one recorded answer, got %d", attempt.AnsweredCount())
	}
}

func TestNavigationBoundaries(t *testing.T) {
	attempt, _ := app.NewAttempt(attemptQuestions(2))

	if err := attempt.Previous(); err != nil {
		t.Fatalf("previous at start: %v", err)
	}
	if attempt.Index() != 0 {
		t.Fatalf("previous at the first question must be a no-op")
	}

	if err := attempt.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := attempt.Next(); err != nil {
		t.Fatalf("next at end: %v", err)
	}
	if attempt.Index() != 1 {
		t.Fatalf("next at the last question must be a no-op, index %d", attempt.Index())
	}
	if attempt.CurrentQuestion().ID != "q2" {
		t.Fatalf("cursor points at %s", attempt.CurrentQuestion().ID)
	}
}

func TestPhaseGuards(t *testing.T) {
	attempt, _ := app.NewAttempt(attemptQuestions(2))

	if err := attempt.CancelSubmit(); !errors.Is(err, app.ErrAttemptState) {
		t.Fatalf("cancel while answering: %v", err)
	}
	if _, err := attempt.ConfirmSubmit(); !errors.Is(err, app.ErrAttemptState) {
		t.Fatalf("confirm while answering: %v", err)
	}
	if err := attempt.Review(); !errors.Is(err, app.ErrAttemptState) {
		t.Fatalf("review while answering: %v", err)
	}

	if _, err := attempt.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := attempt.SelectAnswer("q1", "a"); !errors.Is(err, app.ErrAttemptState) {
		t.Fatalf("select while submitting: %v", err)
	}
	if err := attempt.Next(); !errors.Is(err, app.ErrAttemptState) {
		t.Fatalf("next while submitting: %v", err)
	}

	if err := attempt.CancelSubmit(); err != nil {
		t.Fatalf("cancel submit: %v", err)
	}
	if attempt.State() != app.AttemptAnswering {
		t.Fatalf("cancel must return to answering, got %s", attempt.State())
	}
}

func TestReviewFlowAndReset(t *testing.T) {
	attempt, _ := app.NewAttempt(attemptQuestions(2))
	if err := attempt.SelectAnswer("q1", "a"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := attempt.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := attempt.ConfirmSubmit(); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if err := attempt.Review(); err != nil {
		t.Fatalf("review: %v", err)
	}
	if attempt.State() != app.AttemptReviewing {
		t.Fatalf("expected reviewing, got %s", attempt.State())
	}
	if err := attempt.BackToResults(); err != nil {
		t.Fatalf("back to results: %v", err)
	}
	if attempt.State() != app.AttemptReviewed {
		t.Fatalf("expected reviewed, got %s", attempt.State())
	}

	attempt.Reset()
	if attempt.State() != app.AttemptAnswering || attempt.Index() != 0 {
		t.Fatalf("reset must return to answering at the first question")
	}
	if attempt.AnsweredCount() != 0 {
		t.Fatalf("reset must clear answers")
	}
	if _, scored := attempt.Score(); scored {
		t.Fatalf("reset must clear the score")
	}
}
