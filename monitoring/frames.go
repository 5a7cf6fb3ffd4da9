package monitoring

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	frameQueueLen = 4
	writeWait     = time.Second
)

// frameMsg is what /ws/frames pushes for every generation.
type frameMsg struct {
	Name       string  `json:"name"`
	Generation uint64  `json:"generation"`
	Iteration  uint64  `json:"iteration"`
	Now        float64 `json:"now"`
	Population int     `json:"population"`
	Cells      string  `json:"cells"`
}

// frameHub fans frames out to websocket clients. A client that cannot keep up
// misses frames; the scheduler never waits on it.
type frameHub struct {
	upgrader websocket.Upgrader

	lock    sync.Mutex
	clients map[chan frameMsg]struct{}
}

func newFrameHub() *frameHub {
	return &frameHub{
		clients: make(map[chan frameMsg]struct{}),
	}
}

func (h *frameHub) numClients() int {
	h.lock.Lock()
	defer h.lock.Unlock()

	return len(h.clients)
}

func (h *frameHub) subscribe() chan frameMsg {
	ch := make(chan frameMsg, frameQueueLen)

	h.lock.Lock()
	h.clients[ch] = struct{}{}
	h.lock.Unlock()

	return ch
}

func (h *frameHub) unsubscribe(ch chan frameMsg) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *frameHub) broadcast(msg frameMsg) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *frameHub) closeAll() {
	h.lock.Lock()
	defer h.lock.Unlock()

	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *frameHub) serveWS(
	w http.ResponseWriter,
	r *http.Request,
	first frameMsg,
) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitoring: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	go h.drainReads(conn, ch)

	if err := writeFrame(conn, first); err != nil {
		return
	}

	for msg := range ch {
		if err := writeFrame(conn, msg); err != nil {
			return
		}
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// drainReads consumes control frames and unsubscribes once the peer goes
// away.
func (h *frameHub) drainReads(conn *websocket.Conn, ch chan frameMsg) {
	for {
		if _, _, err := conn.NextReader(); err != nil {
			h.unsubscribe(ch)
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, msg frameMsg) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(msg)
}
