package wshub

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastAfterDetachDoesNotPanic(t *testing.T) {
	hub := NewHub(slog.Default())
	c := &client{
		patientID: "patient-1",
		send:      make(chan []byte, 1),
		done:      make(chan struct{}),
	}
	hub.clients["patient-1"] = map[*client]struct{}{c: {}}

	hub.detach(c)
	// A broadcaster that snapshotted the client before the detach still
	// delivers into the select; the done case must absorb it.
	hub.Broadcast("patient-1", []byte(`{"metric":"heart_rate"}`))

	if got := hub.SubscriberCount("patient-1"); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
	select {
	case payload := <-c.send:
		t.Fatalf("expected no payload queued after detach, got %s", payload)
	default:
	}
}

func TestDetachIsIdempotent(t *testing.T) {
	hub := NewHub(slog.Default())
	c := &client{
		patientID: "patient-1",
		send:      make(chan []byte, 1),
		done:      make(chan struct{}),
	}
	hub.clients["patient-1"] = map[*client]struct{}{c: {}}

	hub.detach(c)
	hub.detach(c)

	select {
	case <-c.done:
	default:
		t.Fatal("expected done to be closed")
	}
}

func TestConcurrentBroadcastAndDetach(t *testing.T) {
	hub := NewHub(slog.Default())
	clients := make([]*client, 0, 8)
	for i := 0; i < 8; i++ {
		c := &client{
			patientID: "patient-1",
			send:      make(chan []byte, sendQueueDepth),
			done:      make(chan struct{}),
		}
		clients = append(clients, c)
		if hub.clients["patient-1"] == nil {
			hub.clients["patient-1"] = make(map[*client]struct{})
		}
		hub.clients["patient-1"][c] = struct{}{}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			hub.Broadcast("patient-1", []byte("payload"))
		}
	}()
	go func() {
		defer wg.Done()
		for _, c := range clients {
			hub.detach(c)
		}
	}()
	wg.Wait()

	if got := hub.SubscriberCount("patient-1"); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
}

func TestSubscribeDeliversBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.Subscribe(w, r, "patient-1"); err != nil {
			t.Errorf("subscribe failed: %v", err)
		}
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount("patient-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never attached")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast("patient-1", []byte(`{"metric":"spo2","value":93.5}`))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(payload) != `{"metric":"spo2","value":93.5}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
}
