package domain

import "time"

// QuizStatus tracks a generation job through its lifecycle.
type QuizStatus string

const (
	StatusQueued     QuizStatus = "QUEUED"
	StatusProcessing QuizStatus = "PROCESSING"
	StatusCompleted  QuizStatus = "COMPLETED"
	StatusFailed     QuizStatus = "FAILED"
)

// IsTerminal reports whether no further transitions are accepted.
func (s QuizStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// QuizType selects the kind of questions the generator produces.
type QuizType string

const (
	TypeMultiChoice QuizType = "MULTICHOICE"
	TypeYesNo       QuizType = "YESANDNO"
)

// Valid reports whether the type is one the generator understands.
func (t QuizType) Valid() bool {
	return t == TypeMultiChoice || t == TypeYesNo
}

// Choice represents a possible answer for a question.
type Choice struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models a generated question with exactly one correct choice.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"` // "multiple-choice" or "yes-no"
	Choices []Choice `json:"choices"`
}

// CorrectChoice returns the choice flagged correct, if any.
func (q Question) CorrectChoice() (Choice, bool) {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c, true
		}
	}
	return Choice{}, false
}

// Document records an uploaded source file by its blob-store URL.
type Document struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Quiz is one user-initiated request to turn a document into a quiz.
// Questions is set exactly once, on the transition into COMPLETED;
// ErrorDetail only on the transition into FAILED.
type Quiz struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	DocumentID  string     `json:"documentId"`
	DocumentURL string     `json:"documentUrl"`
	Type        QuizType   `json:"type"`
	Status      QuizStatus `json:"status"`
	Questions   []Question `json:"questions,omitempty"`
	ErrorDetail string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
