package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"course-quiz-service/internal/app"
)

// FeedHandler streams per-module generation progress to websocket
// clients while a course batch runs.
type FeedHandler struct {
	generator *app.Generator
	upgrader  websocket.Upgrader
}

func NewFeedHandler(generator *app.Generator) *FeedHandler {
	return &FeedHandler{
		generator: generator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type feedMessage struct {
	Type    string            `json:"type"`
	Payload app.ProgressEvent `json:"payload"`
}

// ServeWS upgrades the request and forwards progress events for the
// requested course until the client disconnects.
func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		http.Error(w, "missing courseId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.generator.SubscribeProgress(courseID)
	defer cancel()

	// The read loop only exists to notice the peer going away;
	// inbound frames are ignored.
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
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(feedMessage{Type: "progress", Payload: event}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-disconnected:
			return
		}
	}
}
