// Package dashboard pushes dataset change notifications to connected
// browsers over Server-Sent Events.
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"OrcaBI/internal/starschema"

	"github.com/google/uuid"
)

const (
	EventConnected      = "connected"
	EventPing           = "ping"
	EventDatasetUpdated = "dataset_updated"
)

// Event is the JSON payload of one SSE message.
type Event struct {
	Type     string         `json:"type"`
	BatchID  string         `json:"batch_id,omitempty"`
	Source   string         `json:"source,omitempty"`
	Checksum string         `json:"checksum,omitempty"`
	Counts   map[string]int `json:"counts,omitempty"`
	Time     string         `json:"time"`
}

var errClientGone = errors.New("sse: client disconnected")

type SSEClient struct {
	id      string
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	done    chan struct{}
	once    sync.Once
}

func (c *SSEClient) close() {
	c.once.Do(func() { close(c.done) })
}

type SSEServer struct {
	mu       sync.RWMutex
	clients  map[string]*SSEClient
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSSEServer starts the keep-alive loop; interval <= 0 disables pings.
func NewSSEServer(interval time.Duration) *SSEServer {
	s := &SSEServer{
		clients:  make(map[string]*SSEClient),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	if interval > 0 {
		go s.pingClients()
	}
	return s
}

// HandleSSE holds the connection open until the client leaves or the server
// stops.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &SSEClient{
		id:      uuid.New().String(),
		writer:  w,
		flusher: flusher,
		done:    make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[client.id] = client
	s.mu.Unlock()
	log.Printf("[SSE] Connected client %s from %s", client.id, r.RemoteAddr)

	// remove must finish before the handler returns; see SSEServer.remove
	defer func() {
		s.remove(client)
		log.Printf("[SSE] Disconnected client %s", client.id)
	}()

	if err := client.send(Event{Type: EventConnected, Time: now()}); err != nil {
		return
	}

	select {
	case <-client.done:
	case <-r.Context().Done():
	case <-s.stopCh:
	}
}

func (c *SSEClient) send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		return errClientGone
	default:
	}
	if _, err := fmt.Fprintf(c.writer, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return err
	}
	c.flusher.Flush()
	return nil
}

func (s *SSEServer) remove(c *SSEClient) {
	s.mu.Lock()
	if s.clients[c.id] == c {
		delete(s.clients, c.id)
	}
	s.mu.Unlock()

	// once done is closed under c.mu no send can reach the writer, so the
	// handler may return and let net/http finish the response
	c.mu.Lock()
	c.close()
	c.mu.Unlock()
}

// Broadcast sends ev to every client, dropping those that fail.
func (s *SSEServer) Broadcast(ev Event) {
	s.mu.RLock()
	clients := make([]*SSEClient, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(ev); errors.Is(err, errClientGone) {
			continue
		} else if err != nil {
			log.Printf("[SSE] Send to client %s failed: %v", c.id, err)
			s.remove(c)
		}
	}
}

// NotifySwap is registered with Store.OnSwap.
func (s *SSEServer) NotifySwap(snap *starschema.Snapshot) {
	s.Broadcast(Event{
		Type:     EventDatasetUpdated,
		BatchID:  snap.Meta.BatchID,
		Source:   snap.Meta.Source,
		Checksum: snap.Meta.Checksum,
		Counts:   snap.Counts(),
		Time:     now(),
	})
}

func (s *SSEServer) pingClients() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Broadcast(Event{Type: EventPing, Time: now()})
		case <-s.stopCh:
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *SSEServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *SSEServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		for id, c := range s.clients {
			c.close()
			delete(s.clients, id)
		}
		s.mu.Unlock()
	})
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
