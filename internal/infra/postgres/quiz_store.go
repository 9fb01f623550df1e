package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"xyen-quiz-service/internal/domain"
)

// QuizStore is the Postgres implementation of app.QuizStore. Question data is
// stored as JSONB on the quiz row; terminal-state protection lives in the
// UPDATE predicates so duplicate completions race safely at the row level.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) CreateDocument(ctx context.Context, doc domain.Document) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (id, owner_id, url, created_at) VALUES ($1, $2, $3, $4)`,
		doc.ID, doc.OwnerID, doc.URL, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, owner_id, title, document_id, document_url, type, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		quiz.ID, quiz.OwnerID, quiz.Title, quiz.DocumentID, quiz.DocumentURL,
		string(quiz.Type), string(quiz.Status), quiz.CreatedAt, quiz.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, title, document_id, document_url, type, status, data, error, created_at, updated_at
		 FROM quizzes WHERE id = $1`, id)
	quiz, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizStore) ListQuizzes(ctx context.Context, ownerID string, onlyCompleted bool) ([]domain.Quiz, error) {
	query := `SELECT id, owner_id, title, document_id, document_url, type, status, data, error, created_at, updated_at
		 FROM quizzes WHERE owner_id = $1`
	if onlyCompleted {
		query += ` AND status = 'COMPLETED'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *QuizStore) MarkProcessing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET status = 'PROCESSING', updated_at = now() WHERE id = $1 AND status = 'QUEUED'`, id)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either already past QUEUED (fine) or missing entirely.
		if _, err := s.GetQuiz(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *QuizStore) CompleteQuiz(ctx context.Context, id string, questions []domain.Question) (bool, error) {
	data, err := json.Marshal(questions)
	if err != nil {
		return false, fmt.Errorf("marshal questions: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET status = 'COMPLETED', data = $2, error = NULL, updated_at = now()
		 WHERE id = $1 AND status NOT IN ('COMPLETED', 'FAILED')`, id, data)
	if err != nil {
		return false, fmt.Errorf("complete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetQuiz(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (s *QuizStore) FailQuiz(ctx context.Context, id string, detail string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET status = 'FAILED', error = $2, updated_at = now()
		 WHERE id = $1 AND status NOT IN ('COMPLETED', 'FAILED')`, id, detail)
	if err != nil {
		return false, fmt.Errorf("fail quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetQuiz(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var (
		quiz       domain.Quiz
		quizType   string
		quizStatus string
		data       []byte
		errDetail  *string
	)
	err := row.Scan(&quiz.ID, &quiz.OwnerID, &quiz.Title, &quiz.DocumentID, &quiz.DocumentURL,
		&quizType, &quizStatus, &data, &errDetail, &quiz.CreatedAt, &quiz.UpdatedAt)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz.Type = domain.QuizType(quizType)
	quiz.Status = domain.QuizStatus(quizStatus)
	if errDetail != nil {
		quiz.ErrorDetail = *errDetail
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &quiz.Questions); err != nil {
			return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	return quiz, nil
}
