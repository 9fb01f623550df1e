// Package worker runs the generation step for a dispatched job, either in
// process or by handing it to a remote service that reports back via the
// callback endpoint.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"xyen-quiz-service/internal/domain"
)

// TextExtractor fetches plain text for an uploaded document.
type TextExtractor interface {
	Extract(ctx context.Context, documentURL string) (string, error)
}

// QuestionGenerator produces questions from extracted text.
type QuestionGenerator interface {
	Generate(ctx context.Context, text string, quizType domain.QuizType) ([]domain.Question, error)
}

// Recorder receives the terminal outcome of a generation run. Implemented by
// the pipeline service.
type Recorder interface {
	Complete(ctx context.Context, quizID string, questions []domain.Question) error
	Fail(ctx context.Context, quizID, detail string) error
}

// Inline runs extraction and generation on a background goroutine in the same
// process. Dispatch returns immediately; every failure inside the run is
// converted into a FAILED transition, never propagated to the caller.
type Inline struct {
	extractor TextExtractor
	generator QuestionGenerator
	timeout   time.Duration

	mu       sync.Mutex
	recorder Recorder
	wg       sync.WaitGroup
}

// NewInline builds an in-process dispatcher. A zero timeout defaults to ten
// minutes per job.
func NewInline(extractor TextExtractor, generator QuestionGenerator, timeout time.Duration) *Inline {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Inline{extractor: extractor, generator: generator, timeout: timeout}
}

// BindRecorder wires the outcome sink. The pipeline service both owns this
// dispatcher and receives its results, so binding happens after construction.
func (d *Inline) BindRecorder(r Recorder) {
	d.mu.Lock()
	d.recorder = r
	d.mu.Unlock()
}

// Dispatch schedules the job and returns without waiting for generation.
func (d *Inline) Dispatch(quiz domain.Quiz) error {
	d.wg.Add(1)
	go d.run(quiz)
	return nil
}

// Wait blocks until all in-flight jobs finish; used on shutdown and in tests.
func (d *Inline) Wait() {
	d.wg.Wait()
}

func (d *Inline) run(quiz domain.Quiz) {
	defer d.wg.Done()

	// The HTTP caller has long since been answered; the job gets its own
	// bounded context.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	d.mu.Lock()
	recorder := d.recorder
	d.mu.Unlock()
	if recorder == nil {
		log.Printf("worker: no recorder bound, dropping quiz %s", quiz.ID)
		return
	}

	text, err := d.extractor.Extract(ctx, quiz.DocumentURL)
	if err != nil {
		log.Printf("worker: extraction failed for quiz %s: %v", quiz.ID, err)
		d.recordFailure(recorder, quiz.ID, "text extraction failed: "+err.Error())
		return
	}

	questions, err := d.generator.Generate(ctx, text, quiz.Type)
	if err != nil {
		log.Printf("worker: generation failed for quiz %s: %v", quiz.ID, err)
		d.recordFailure(recorder, quiz.ID, "quiz generation failed: "+err.Error())
		return
	}

	// Record against a fresh context: the job context may be the very thing
	// that expired, and the terminal write must still land.
	recordCtx, recordCancel := recordContext()
	defer recordCancel()
	if err := recorder.Complete(recordCtx, quiz.ID, questions); err != nil {
		log.Printf("worker: could not record completion for quiz %s: %v", quiz.ID, err)
	}
}

func (d *Inline) recordFailure(recorder Recorder, quizID, detail string) {
	ctx, cancel := recordContext()
	defer cancel()
	if err := recorder.Fail(ctx, quizID, detail); err != nil {
		log.Printf("worker: could not record failure for quiz %s: %v", quizID, err)
	}
}

// recordContext bounds a terminal-outcome write. Detached from the job
// context so a timed-out job still gets marked FAILED instead of sticking in
// PROCESSING.
func recordContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
