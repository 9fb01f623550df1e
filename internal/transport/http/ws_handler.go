package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"xyen-quiz-service/internal/app"
)

// WSHandler streams job status transitions to a websocket client so the UI
// can react without polling. The HTTP status endpoint remains the fallback.
type WSHandler struct {
	service  *app.PipelineService
	hub      *app.StatusHub
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.PipelineService, hub *app.StatusHub) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and pushes status updates for one quiz until
// it turns terminal or the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Subscribe before the initial read so no transition slips between them.
	updates, cancel := h.hub.Subscribe(quizID)
	defer cancel()

	status, err := h.service.GetStatus(r.Context(), quizID)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	if err := conn.WriteJSON(app.StatusUpdate{QuizID: quizID, Status: status}); err != nil {
		return
	}
	if status.IsTerminal() {
		return
	}

	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
			if update.Status.IsTerminal() {
				return
			}
		case <-disconnected:
			return
		}
	}
}
