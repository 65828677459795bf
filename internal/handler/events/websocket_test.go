package events

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	eventsService "github.com/caremeal/caremeal/app/internal/service/events"
)

func TestWebSocketReceivesPublishedEvents(t *testing.T) {
	hub := eventsService.NewHub()
	r := chi.NewRouter()
	NewWebSocketHandler(hub).RegisterRoutes(r)

	server := httptest.NewServer(r)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never attached")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(eventsService.MealUpdated, map[string]string{"date": "2025-03-12"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event eventsService.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if event.Type != eventsService.MealUpdated {
		t.Fatalf("expected %s, got %s", eventsService.MealUpdated, event.Type)
	}
	if event.Timestamp == 0 {
		t.Fatal("expected timestamp to be set")
	}
}

func TestWebSocketDetachesOnClose(t *testing.T) {
	hub := eventsService.NewHub()
	r := chi.NewRouter()
	NewWebSocketHandler(hub).RegisterRoutes(r)

	server := httptest.NewServer(r)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never attached")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected subscriber to detach, still %d", hub.Subscribers())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
