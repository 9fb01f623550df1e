// Package genai wraps the external text-generation model behind a small
// client that produces validated question lists.
package genai

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"xyen-quiz-service/internal/domain"
	"xyen-quiz-service/internal/sanitize"
)

// questionCount is the fixed number of questions requested per document.
const questionCount = 10

const systemPrompt = `You are an expert quiz generator. Your task is to output a quiz in valid JSON format only - do not include any extra text or commentary, and generate either multiple choice (4 choices) or yes/no questions depending on which you are asked for. The JSON must follow this structure:
[
  {
    "id": "q1",
    "text": "What is the capital of France?",
    "type": "multiple-choice",
    "choices": [
      { "id": "a", "text": "Paris", "isCorrect": true },
      { "id": "b", "text": "Berlin", "isCorrect": false },
      { "id": "c", "text": "Madrid", "isCorrect": false },
      { "id": "d", "text": "Rome", "isCorrect": false }
    ]
  },
  {
    "id": "q2",
    "text": "Is the sky blue?",
    "type": "yes-no",
    "choices": [
      { "id": "a", "text": "Yes", "isCorrect": true },
      { "id": "b", "text": "No", "isCorrect": false }
    ]
  }
]
Do not use a markdown code block, do not add line breaks, do not add JSON backticks. Plain JSON, nothing else.`

// Config carries the model endpoint settings.
type Config struct {
	APIKey  string
	BaseURL string // optional; empty uses the provider default
	Model   string
}

// chatCompleter is the slice of the OpenAI client the generator uses;
// satisfied by *openai.Client and by fakes in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client turns extracted document text into a question list with a single
// completion call. Retry policy belongs to the caller.
type Client struct {
	chat  chatCompleter
	model string
}

// NewClient builds a generation client for the configured model endpoint.
func NewClient(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	return &Client{
		chat:  openai.NewClientWithConfig(clientCfg),
		model: model,
	}
}

// Generate asks the model for questions over the given source text and runs
// the repair pipeline on the raw response.
func (c *Client) Generate(ctx context.Context, text string, quizType domain.QuizType) ([]domain.Question, error) {
	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(text, quizType)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, domain.ErrEmptyResponse
	}
	raw := resp.Choices[0].Message.Content

	questions, err := sanitize.Questions(raw)
	if err != nil {
		log.Printf("genai: sanitizer rejected model output: %v", err)
		return nil, domain.ErrInvalidOutput
	}
	if len(questions) == 0 {
		return nil, domain.ErrInvalidOutput
	}
	return questions, nil
}

func buildUserPrompt(text string, quizType domain.QuizType) string {
	kind := "multiple choice"
	if quizType == domain.TypeYesNo {
		kind = "yes or no"
	}

	var sb strings.Builder
	sb.WriteString("Based on the following text:\n\n")
	sb.WriteString(text)
	sb.WriteString(fmt.Sprintf("\n\nGenerate a quiz with %d %s questions. Be sure to generate from the given text.", questionCount, kind))
	return sb.String()
}
