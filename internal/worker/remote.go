package worker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"xyen-quiz-service/internal/domain"
)

// Remote hands the job to an external generation service. The service does
// the extraction and generation itself and reports the outcome by POSTing to
// our callback endpoint with the shared secret.
type Remote struct {
	serviceURL  string
	apiKey      string
	callbackURL string
	httpClient  *http.Client
}

// NewRemote builds a remote dispatcher. A nil httpClient gets a sane default.
func NewRemote(serviceURL, apiKey, callbackURL string, httpClient *http.Client) *Remote {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{
		serviceURL:  serviceURL,
		apiKey:      apiKey,
		callbackURL: callbackURL,
		httpClient:  httpClient,
	}
}

type dispatchRequest struct {
	QuizID      string          `json:"quizId"`
	URL         string          `json:"url"`
	Type        domain.QuizType `json:"type"`
	CallbackURL string          `json:"callbackUrl"`
}

// Dispatch submits the job to the remote service. A non-2xx answer is a
// dispatch failure; the caller is responsible for failing the job.
func (d *Remote) Dispatch(quiz domain.Quiz) error {
	body, err := json.Marshal(dispatchRequest{
		QuizID:      quiz.ID,
		URL:         quiz.DocumentURL,
		Type:        quiz.Type,
		CallbackURL: d.callbackURL,
	})
	if err != nil {
		return fmt.Errorf("marshal dispatch request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, d.serviceURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call generation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("generation service returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
