package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"resto-backend/internal/cache"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// BoardHandler pushes order lifecycle events to connected kitchen and
// counter displays. Events originate from the redis pub/sub channel the
// notification service publishes to, so boards on any instance see them.
type BoardHandler struct{}

func NewBoardHandler() *BoardHandler {
	return &BoardHandler{}
}

// OrderBoard upgrades to a websocket and relays order events until the
// client hangs up.
func (h *BoardHandler) OrderBoard(w http.ResponseWriter, r *http.Request) {
	sub := cache.Subscribe(r.Context(), cache.OrderEventsChannel)
	if sub == nil {
		http.Error(w, "Live updates unavailable", http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Board] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine only watches for the client closing the socket.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
