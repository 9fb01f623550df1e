package app

import (
	"sync"

	"xyen-quiz-service/internal/domain"
)

// StatusUpdate is one observed job transition.
type StatusUpdate struct {
	QuizID string            `json:"quizId"`
	Status domain.QuizStatus `json:"status"`
}

// StatusHub fans job status transitions out to in-process subscribers
// (the websocket transport). Publishing to a quiz nobody watches is free.
type StatusHub struct {
	mu   sync.Mutex
	subs map[string]map[chan StatusUpdate]struct{}
}

func NewStatusHub() *StatusHub {
	return &StatusHub{subs: make(map[string]map[chan StatusUpdate]struct{})}
}

// Subscribe returns a channel receiving updates for quizID. The caller must
// invoke the returned cancel function to avoid leaks.
func (h *StatusHub) Subscribe(quizID string) (<-chan StatusUpdate, func()) {
	ch := make(chan StatusUpdate, 8)

	h.mu.Lock()
	if h.subs[quizID] == nil {
		h.subs[quizID] = make(map[chan StatusUpdate]struct{})
	}
	h.subs[quizID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[quizID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, quizID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a transition to every subscriber of quizID. A slow
// subscriber loses its oldest update rather than blocking the pipeline.
func (h *StatusHub) Publish(quizID string, status domain.QuizStatus) {
	update := StatusUpdate{QuizID: quizID, Status: status}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[quizID] {
		select {
		case ch <- update:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
