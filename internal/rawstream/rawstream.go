// Package rawstream fans the byte-aligned raw dibit stream out to live
// websocket subscribers and/or a zstd-compressed recording file, grounded on
// the websocket broadcast and zstd packet encoding patterns used for PCM
// audio in madpsy-ka9q_ubersdr.
package rawstream

import (
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 65536,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client buffers one subscriber's outbound packets so a slow reader can't
// block the broadcaster; a full buffer drops the packet rather than stall.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	outbox  chan []byte
	done    chan struct{}
}

func newClient(conn *websocket.Conn) *client {
	c := &client{conn: conn, outbox: make(chan []byte, 64), done: make(chan struct{})}
	go c.run()
	return c
}

func (c *client) run() {
	defer close(c.done)
	for packet := range c.outbox {
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		err := c.conn.WriteMessage(websocket.BinaryMessage, packet)
		c.writeMu.Unlock()
		if err != nil {
			return
		}
	}
}

func (c *client) send(packet []byte) bool {
	select {
	case c.outbox <- packet:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	close(c.outbox)
	<-c.done
	c.conn.Close()
}

// Hub broadcasts the raw dibit byte stream to every connected websocket
// subscriber.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *log.Logger
}

// NewHub constructs an empty broadcast hub. A nil logger disables logging.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{clients: make(map[*client]struct{}), logger: logger}
}

// ServeHTTP upgrades the request to a websocket and registers it as a
// broadcast subscriber until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("rawstream: upgrade failed: %v", err)
		}
		return
	}

	c := newClient(conn)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	// Drain inbound messages (clients don't send anything meaningful) until
	// the connection closes, then deregister.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.close()
	}()
}

// Broadcast fans packet out to every connected subscriber, dropping it for
// any client whose outbox is full rather than blocking the caller.
func (h *Hub) Broadcast(packet []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.send(packet)
	}
}

// ClientCount reports the number of currently connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Recorder writes the raw byte-aligned dibit stream to a zstd-compressed
// file.
type Recorder struct {
	mu      sync.Mutex
	encoder *zstd.Encoder
}

// NewRecorder wraps w with a zstd encoder so every Write call is
// transparently compressed. Production code passes a real *os.File; tests
// pass an in-memory buffer.
func NewRecorder(w io.Writer) (*Recorder, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &Recorder{encoder: enc}, nil
}

// Write compresses and writes one raw-stream packet.
func (r *Recorder) Write(packet []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.encoder.Write(packet)
	return err
}

// Close flushes and closes the underlying zstd encoder.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.encoder.Close()
}
