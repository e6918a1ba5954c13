package events

import (
	"context"
	json2 "encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans events out to websocket watchers. All watcher bookkeeping happens on the Run goroutine.
type Hub struct {
	watchers map[*Watcher]bool
	events   chan Event
	join     chan *Watcher
	leave    chan *Watcher
	done     chan struct{}
	stopOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		watchers: make(map[*Watcher]bool),
		events:   make(chan Event),
		join:     make(chan *Watcher),
		leave:    make(chan *Watcher),
		done:     make(chan struct{}),
	}
}

// Run processes joins, leaves and events until ctx is cancelled. Watchers still connected at that
// point have their receive channels closed, which sends a close frame to the peer.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })

	for {
		select {
		case watcher := <-h.join:
			h.watchers[watcher] = true
		case watcher := <-h.leave:
			h.remove(watcher)
		case event := <-h.events:
			h.broadcast(event)
		case <-ctx.Done():
			for watcher := range h.watchers {
				h.remove(watcher)
			}
			return
		}
	}
}

func (h *Hub) remove(w *Watcher) {
	if _, ok := h.watchers[w]; ok {
		delete(h.watchers, w)
		close(w.Receive)
	}
}

func (h *Hub) broadcast(e Event) {
	msg, err := json2.Marshal(e)
	if err != nil {
		return
	}

	for watcher := range h.watchers {
		if watcher.Kind != "" && watcher.Kind != e.Kind {
			continue
		}
		select {
		case watcher.Receive <- msg:
		default:
			h.remove(watcher)
		}
	}
}

func (h *Hub) Publish(ctx context.Context, e Event) error {
	select {
	case h.events <- e:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join registers a watcher for events of the given kind ("" for all kinds) and starts its
// read and write pumps. It returns once the hub has accepted the watcher.
func (h *Hub) Join(kind string, conn *websocket.Conn) (*Watcher, error) {
	watcher := newWatcher(h, kind, conn)

	select {
	case h.join <- watcher:
	case <-h.done:
		_ = conn.Close()
		return nil, ErrHubClosed
	}

	go watcher.WriteEvents()
	go watcher.ReadEvents()

	return watcher, nil
}

// Leave unregisters a watcher. Safe to call more than once.
func (h *Hub) Leave(w *Watcher) {
	select {
	case h.leave <- w:
	case <-h.done:
	}
}
