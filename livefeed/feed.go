// Package livefeed fans state snapshots out to websocket subscribers.
// Delivery is best-effort: a slow or dead subscriber is dropped, and no
// write error ever reaches the code that published the update.
package livefeed

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

type Feed struct {
	subscribers map[string][]*websocket.Conn
	mu          sync.Mutex
}

func NewFeed() *Feed {
	return &Feed{
		subscribers: make(map[string][]*websocket.Conn),
	}
}

// HandleWS subscribes the caller to the topic in the path and blocks
// until the client disconnects.
func (f *Feed) HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	topic := ps.ByName("topic")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.subscribers[topic] = append(f.subscribers[topic], conn)
	f.mu.Unlock()

	for {
		// Keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	f.mu.Lock()
	conns := f.subscribers[topic]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	f.subscribers[topic] = newList
	f.mu.Unlock()

	conn.Close()
}

// Publish writes val to every subscriber of the topic, pruning the ones
// whose writes fail.
func (f *Feed) Publish(topic string, val []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	conns := f.subscribers[topic]
	newList := conns[:0]

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}

	f.subscribers[topic] = newList
}

// SubscriberCount reports how many connections are on a topic.
func (f *Feed) SubscriberCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[topic])
}
