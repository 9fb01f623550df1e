package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"xyen-quiz-service/internal/app"
	"xyen-quiz-service/internal/domain"
)

// QuizReader serves full quiz reads; in production this is the Redis result
// cache wrapped around the store.
type QuizReader interface {
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
}

// Handler wires the pipeline use cases to the REST surface.
type Handler struct {
	service *app.PipelineService
	quizzes QuizReader
	auth    Authenticator
}

func NewHandler(service *app.PipelineService, quizzes QuizReader, auth Authenticator) *Handler {
	return &Handler{service: service, quizzes: quizzes, auth: auth}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/quizzes", h.createQuiz)
	mux.HandleFunc("GET /api/v1/quizzes", h.listQuizzes)
	mux.HandleFunc("GET /api/v1/quizzes/{quizId}", h.getQuiz)
	mux.HandleFunc("GET /api/v1/quizzes/{quizId}/status", h.getStatus)
	mux.HandleFunc("POST /api/v1/quiz-callback", h.callback)
}

type createQuizRequest struct {
	DocumentURL string          `json:"documentUrl"`
	Type        domain.QuizType `json:"type"`
	Title       string          `json:"title"`
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quizID, err := h.service.Start(r.Context(), userID, req.DocumentURL, req.Title, req.Type)
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) {
			writeError(w, http.StatusBadRequest, "document link, quiz type and title are required")
			return
		}
		log.Printf("http: create quiz failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create quiz")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"quizId": quizID})
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	onlyCompleted := r.URL.Query().Get("completed") == "1" || r.URL.Query().Get("completed") == "true"
	quizzes, err := h.service.ListQuizzes(r.Context(), userID, onlyCompleted)
	if err != nil {
		log.Printf("http: list quizzes failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list quizzes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	quiz, err := h.quizzes.GetQuiz(r.Context(), r.PathValue("quizId"))
	if err != nil || quiz.OwnerID != userID {
		if err != nil && !errors.Is(err, domain.ErrQuizNotFound) {
			log.Printf("http: get quiz failed: %v", err)
		}
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.Authenticate(r); err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	quizID := r.PathValue("quizId")
	status, err := h.service.GetStatus(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			writeError(w, http.StatusNotFound, "quiz not found")
			return
		}
		log.Printf("http: get status failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": status, "quizId": quizID})
}

type callbackRequest struct {
	QuizID  string            `json:"quizId"`
	Success bool              `json:"success"`
	Data    []domain.Question `json:"data"`
	Error   string            `json:"error"`
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuizID == "" {
		writeError(w, http.StatusBadRequest, "quiz ID is required")
		return
	}

	err := h.service.CompleteFromCallback(r.Context(), bearerToken(r), req.QuizID, req.Success, req.Data, req.Error)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
	case err != nil:
		log.Printf("http: callback failed for quiz %s: %v", req.QuizID, err)
		writeError(w, http.StatusInternalServerError, "server error")
	default:
		// Failure reports are acknowledged with 200 as well; the worker only
		// needs to know the outcome was received.
		writeJSON(w, http.StatusOK, map[string]bool{"success": req.Success})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("http: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
