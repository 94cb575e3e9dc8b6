package chatws

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := NewClient(nil, "room1", "u1")

	hub.register <- client

	msg := outboundPayload{Action: "chat", Content: "hello test"}
	data, _ := json.Marshal(msg)
	hub.broadcast <- broadcastMsg{Room: "room1", Data: data}

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client

	select {
	case <-client.done:
	case <-time.After(1 * time.Second):
		t.Fatal("unregister did not release the client")
	}
}

func TestHubBroadcastSkipsOtherRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := NewClient(nil, "roomA", "u1")
	b := NewClient(nil, "roomB", "u2")
	hub.register <- a
	hub.register <- b

	hub.broadcast <- broadcastMsg{Room: "roomA", Data: []byte("only-a")}

	select {
	case got := <-a.Send:
		if string(got) != "only-a" {
			t.Fatalf("expected only-a, got %s", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	select {
	case got := <-b.Send:
		t.Fatalf("roomB should not receive, got %s", got)
	case <-time.After(100 * time.Millisecond):
	}
}

// A client can disconnect while its history replay is still queueing
// messages. The sender must stop cleanly instead of panicking on a
// closed channel.
func TestDeliverStopsWhenClientDropsMidReplay(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := NewClient(nil, "room1", "u1")
	hub.register <- client

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		// keep sending until the buffer is full and the client is
		// dropped out from under us
		for client.deliver([]byte("history")) {
		}
	}()

	hub.unregister <- client

	select {
	case <-stopped:
	case <-time.After(1 * time.Second):
		t.Fatal("replay sender still blocked after unregister")
	}
}

func TestDeliverStopsWhenRoomCloses(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := NewClient(nil, "room1", "u1")
	hub.register <- client

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for client.deliver([]byte("history")) {
		}
	}()

	hub.CloseRoom("room1")

	select {
	case <-stopped:
	case <-time.After(1 * time.Second):
		t.Fatal("replay sender still blocked after CloseRoom")
	}
}
