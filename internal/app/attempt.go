package app

import (
	"errors"
	"fmt"

	"xyen-quiz-service/internal/domain"
)

// AttemptState names a phase of an in-progress quiz attempt.
type AttemptState string

const (
	// AttemptAnswering is the default phase: navigating and picking answers.
	AttemptAnswering AttemptState = "answering"
	// AttemptSubmitting is the confirmation prompt before scoring.
	AttemptSubmitting AttemptState = "submitting"
	// AttemptReviewed shows the computed score.
	AttemptReviewed AttemptState = "reviewed"
	// AttemptReviewing shows the per-question breakdown.
	AttemptReviewing AttemptState = "reviewing"
)

var (
	// ErrAttemptState is returned when an operation is invalid in the current phase.
	ErrAttemptState = errors.New("operation not valid in current attempt state")
	// ErrUnknownQuestion is returned for an answer against a question id the quiz lacks.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrUnknownChoice is returned for an answer naming a choice the question lacks.
	ErrUnknownChoice = errors.New("unknown choice")
)

// Attempt is an ephemeral record of one user's pass over a completed quiz's
// questions. It is never persisted; retrying always starts a fresh attempt.
// All transitions are synchronous, driven by discrete user actions.
type Attempt struct {
	questions []domain.Question
	answers   map[string]string // question id -> selected choice id
	index     int
	score     int
	scored    bool
	state     AttemptState
}

// NewAttempt opens an attempt over the given questions.
func NewAttempt(questions []domain.Question) (*Attempt, error) {
	if len(questions) == 0 {
		return nil, errors.New("attempt needs at least one question")
	}
	return &Attempt{
		questions: questions,
		answers:   make(map[string]string),
		state:     AttemptAnswering,
	}, nil
}

// State returns the current phase.
func (a *Attempt) State() AttemptState { return a.state }

// Index returns the cursor position.
func (a *Attempt) Index() int { return a.index }

// CurrentQuestion returns the question under the cursor.
func (a *Attempt) CurrentQuestion() domain.Question { return a.questions[a.index] }

// Answer returns the recorded choice for a question, if any.
func (a *Attempt) Answer(questionID string) (string, bool) {
	choiceID, ok := a.answers[questionID]
	return choiceID, ok
}

// AnsweredCount returns how many questions have a recorded answer.
func (a *Attempt) AnsweredCount() int { return len(a.answers) }

// Score returns the computed score; ok is false before ConfirmSubmit.
func (a *Attempt) Score() (int, bool) { return a.score, a.scored }

// SelectAnswer records (or overwrites) the answer for a question. It does not
// advance the cursor.
func (a *Attempt) SelectAnswer(questionID, choiceID string) error {
	if a.state != AttemptAnswering {
		return fmt.Errorf("%w: select in %s", ErrAttemptState, a.state)
	}
	question, ok := a.findQuestion(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	for _, c := range question.Choices {
		if c.ID == choiceID {
			a.answers[questionID] = choiceID
			return nil
		}
	}
	return ErrUnknownChoice
}

// Next moves the cursor forward; a no-op at the last question.
func (a *Attempt) Next() error {
	if a.state != AttemptAnswering {
		return fmt.Errorf("%w: next in %s", ErrAttemptState, a.state)
	}
	if a.index < len(a.questions)-1 {
		a.index++
	}
	return nil
}

// Previous moves the cursor back; a no-op at the first question.
func (a *Attempt) Previous() error {
	if a.state != AttemptAnswering {
		return fmt.Errorf("%w: previous in %s", ErrAttemptState, a.state)
	}
	if a.index > 0 {
		a.index--
	}
	return nil
}

// Submit enters the confirmation phase. Partial submissions are allowed; the
// returned count tells the caller how many questions are still unanswered so
// it can warn the user.
func (a *Attempt) Submit() (unanswered int, err error) {
	if a.state != AttemptAnswering {
		return 0, fmt.Errorf("%w: submit in %s", ErrAttemptState, a.state)
	}
	a.state = AttemptSubmitting
	return len(a.questions) - len(a.answers), nil
}

// CancelSubmit returns from the confirmation prompt to answering.
func (a *Attempt) CancelSubmit() error {
	if a.state != AttemptSubmitting {
		return fmt.Errorf("%w: cancel submit in %s", ErrAttemptState, a.state)
	}
	a.state = AttemptAnswering
	return nil
}

// ConfirmSubmit scores the attempt: one point per question whose recorded
// answer is the correct choice. Unanswered questions count as incorrect.
func (a *Attempt) ConfirmSubmit() (int, error) {
	if a.state != AttemptSubmitting {
		return 0, fmt.Errorf("%w: confirm submit in %s", ErrAttemptState, a.state)
	}

	score := 0
	for _, q := range a.questions {
		answered, ok := a.answers[q.ID]
		if !ok {
			continue
		}
		if correct, has := q.CorrectChoice(); has && answered == correct.ID {
			score++
		}
	}

	a.score = score
	a.scored = true
	a.state = AttemptReviewed
	return score, nil
}

// Review opens the per-question breakdown after scoring.
func (a *Attempt) Review() error {
	if a.state != AttemptReviewed {
		return fmt.Errorf("%w: review in %s", ErrAttemptState, a.state)
	}
	a.state = AttemptReviewing
	return nil
}

// BackToResults returns from the breakdown to the score view.
func (a *Attempt) BackToResults() error {
	if a.state != AttemptReviewing {
		return fmt.Errorf("%w: back to results in %s", ErrAttemptState, a.state)
	}
	a.state = AttemptReviewed
	return nil
}

// Reset clears all answers and the score, returning to the first question.
// Valid from any state.
func (a *Attempt) Reset() {
	a.answers = make(map[string]string)
	a.index = 0
	a.score = 0
	a.scored = false
	a.state = AttemptAnswering
}

func (a *Attempt) findQuestion(questionID string) (domain.Question, bool) {
	for _, q := range a.questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return domain.Question{}, false
}
