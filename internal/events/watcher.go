package events

import (
	"time"

	"github.com/gorilla/websocket"
)

type Watcher struct {
	Hub     *Hub
	Kind    string
	Conn    *websocket.Conn
	Receive chan []byte
}

func newWatcher(hub *Hub, kind string, conn *websocket.Conn) *Watcher {
	return &Watcher{
		Hub:     hub,
		Kind:    kind,
		Conn:    conn,
		Receive: make(chan []byte, watcherBuffer),
	}
}

func (w *Watcher) WriteEvents() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = w.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-w.Receive:
			_ = w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = w.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			writer, err := w.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				w.Hub.Leave(w)
				return
			}
			_, _ = writer.Write(message)

			// Add queued events to the current websocket message.
			n := len(w.Receive)
			for i := 0; i < n; i++ {
				queued, ok := <-w.Receive
				if !ok {
					break
				}
				_, _ = writer.Write(newline)
				_, _ = writer.Write(queued)
			}

			if err := writer.Close(); err != nil {
				w.Hub.Leave(w)
				return
			}
		case <-ticker.C:
			_ = w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				w.Hub.Leave(w)
				return
			}
		}
	}
}

// ReadEvents discards inbound messages and keeps the read deadline fresh. It unregisters the
// watcher once the peer goes away.
func (w *Watcher) ReadEvents() {
	defer w.Hub.Leave(w)

	w.Conn.SetReadLimit(maxMessageSize)
	_ = w.Conn.SetReadDeadline(time.Now().Add(pongWait))
	w.Conn.SetPongHandler(func(string) error {
		return w.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := w.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
