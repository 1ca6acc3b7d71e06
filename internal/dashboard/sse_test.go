package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"OrcaBI/internal/starschema"
)

func readEvent(t *testing.T, sc *bufio.Scanner) Event {
	t.Helper()
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad event payload %q: %v", line, err)
		}
		return ev
	}
	t.Fatalf("stream ended: %v", sc.Err())
	return Event{}
}

func TestSSEServer_BroadcastsSwaps(t *testing.T) {
	hub := NewSSEServer(0)
	defer hub.Stop()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleSSE))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	if ev := readEvent(t, sc); ev.Type != EventConnected {
		t.Fatalf("first event = %+v", ev)
	}
	if n := hub.ClientCount(); n != 1 {
		t.Fatalf("ClientCount = %d", n)
	}

	store := starschema.NewStore()
	store.OnSwap(hub.NotifySwap)
	store.Swap(&starschema.Snapshot{
		Budget: []starschema.BudgetFact{{ID: "orc_0"}},
		Meta:   starschema.Meta{BatchID: "b-1", Source: "custos.xlsx"},
	})

	ev := readEvent(t, sc)
	if ev.Type != EventDatasetUpdated || ev.BatchID != "b-1" || ev.Counts["fato_orcamento"] != 1 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestSSEServer_StopIsIdempotent(t *testing.T) {
	hub := NewSSEServer(time.Hour)
	hub.Stop()
	hub.Stop()
	if hub.ClientCount() != 0 {
		t.Error("expected no clients after stop")
	}
}

func TestSSEClient_NoWritesAfterRemove(t *testing.T) {
	hub := NewSSEServer(0)
	defer hub.Stop()

	rec := httptest.NewRecorder()
	c := &SSEClient{id: "c-1", writer: rec, flusher: rec, done: make(chan struct{})}
	hub.mu.Lock()
	hub.clients[c.id] = c
	hub.mu.Unlock()

	hub.remove(c)
	if err := c.send(Event{Type: EventPing, Time: now()}); !errors.Is(err, errClientGone) {
		t.Fatalf("send after remove: got %v", err)
	}
	hub.Broadcast(Event{Type: EventPing, Time: now()})
	if rec.Body.Len() != 0 {
		t.Errorf("removed client received %q", rec.Body.String())
	}
}

func TestSSEServer_BroadcastWhileClientsLeave(t *testing.T) {
	hub := NewSSEServer(time.Millisecond)
	defer hub.Stop()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleSSE))
	defer srv.Close()

	stop := make(chan struct{})
	var broadcasting sync.WaitGroup
	broadcasting.Add(1)
	go func() {
		defer broadcasting.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Broadcast(Event{Type: EventDatasetUpdated, BatchID: "b", Time: now()})
			}
		}
	}()

	var clients sync.WaitGroup
	for i := 0; i < 20; i++ {
		clients.Add(1)
		go func() {
			defer clients.Done()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
			if err != nil {
				t.Error(err)
				return
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Error(err)
				return
			}
			sc := bufio.NewScanner(resp.Body)
			for j := 0; j < 3 && sc.Scan(); j++ {
			}
			cancel()
			resp.Body.Close()
		}()
	}
	clients.Wait()

	deadline := time.Now().Add(5 * time.Second)
	for hub.ClientCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	close(stop)
	broadcasting.Wait()
	if n := hub.ClientCount(); n != 0 {
		t.Errorf("ClientCount = %d after all clients left", n)
	}
}
