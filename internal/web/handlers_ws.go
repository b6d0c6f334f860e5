package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// wsEventMessage is one frame on /ws/events.
type wsEventMessage struct {
	Type    string    `json:"type"` // hello, progress
	Percent float64   `json:"percent,omitempty"`
	Status  string    `json:"status,omitempty"`
	Done    bool      `json:"done,omitempty"`
	Time    time.Time `json:"time"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     allowWSOrigin,
}

func allowWSOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil || originURL.Host == "" {
		return false
	}

	return strings.EqualFold(originURL.Host, r.Host)
}

// handleEventsWS streams launch progress events to the client until it
// disconnects or the server shuts down.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if !s.authorizeRequest(r) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	if s.events == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "EVENTS_UNAVAILABLE", "event stream is not available")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := s.events.Subscribe()
	defer cancel()

	if err := conn.WriteJSON(wsEventMessage{Type: "hello", Time: time.Now().UTC()}); err != nil {
		return
	}

	// Drain client frames so pings and close messages are processed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			msg := wsEventMessage{
				Type:    "progress",
				Percent: ev.Percent,
				Status:  ev.Status,
				Done:    ev.Done,
				Time:    time.Now().UTC(),
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-clientGone:
			return
		case <-s.baseCtx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return
		}
	}
}
