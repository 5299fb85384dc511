// Package telemetry streams read-only simulation statistics to websocket
// clients. It is presentation-side glue: the simulation core never depends
// on it.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Stats is one per-tick statistics sample as sent to clients.
type Stats struct {
	Tick         int64   `json:"tick"`
	Count        int     `json:"count"`
	AverageSpeed float64 `json:"averageSpeed"`
	Coherence    float64 `json:"coherence"`
	TickMillis   float64 `json:"tickMillis"`
	Parallel     bool    `json:"parallel"`
}

// Broadcaster fans Stats samples out to all connected websocket clients.
// Samples are dropped rather than blocking the simulation loop when the
// queue is full.
type Broadcaster struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan Stats
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// NewBroadcaster creates a broadcaster and starts its hub goroutine.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Stats, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// Handler returns the HTTP handler that upgrades connections and registers
// them with the hub.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		select {
		case b.register <- conn:
		case <-b.done:
			conn.Close()
			return
		}

		// Read pump: clients send nothing we care about, but reading is
		// what detects a closed connection.
		go func() {
			defer func() {
				select {
				case b.unregister <- conn:
				case <-b.done:
				}
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

// Publish queues a sample for delivery. It never blocks: when the queue is
// full the sample is dropped, since the next tick produces a fresher one.
func (b *Broadcaster) Publish(s Stats) {
	select {
	case b.broadcast <- s:
	default:
	}
}

// ClientCount reports the number of currently connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// run is the hub goroutine handling registration and fan-out.
func (b *Broadcaster) run() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return

		case conn := <-b.register:
			b.mu.Lock()
			b.clients[conn] = true
			b.mu.Unlock()

		case conn := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[conn]; ok {
				delete(b.clients, conn)
				conn.Close()
			}
			b.mu.Unlock()

		case s := <-b.broadcast:
			payload, err := json.Marshal(s)
			if err != nil {
				continue
			}

			b.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(b.clients))
			for conn := range b.clients {
				conns = append(conns, conn)
			}
			b.mu.RUnlock()

			var failed []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					failed = append(failed, conn)
				}
			}
			if len(failed) > 0 {
				b.mu.Lock()
				for _, conn := range failed {
					if _, ok := b.clients[conn]; ok {
						delete(b.clients, conn)
						conn.Close()
					}
				}
				b.mu.Unlock()
			}
		}
	}
}

// Close disconnects all clients and stops the hub goroutine.
func (b *Broadcaster) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.wg.Wait()

		b.mu.Lock()
		for conn := range b.clients {
			conn.Close()
			delete(b.clients, conn)
		}
		b.mu.Unlock()
	})
	return nil
}
