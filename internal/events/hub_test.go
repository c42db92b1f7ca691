package events

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestHub(maxConnPerUser int) *Hub {
	return NewHub(maxConnPerUser, time.Second, time.Second, time.Second)
}

func TestHub_RegisterRespectsConnectionCap(t *testing.T) {
	hub := newTestHub(1)

	first := NewClient("c1", "alice", "laptop", nil, hub)
	second := NewClient("c2", "alice", "phone", nil, hub)

	hub.registerClient(first)
	hub.registerClient(second)

	if got := hub.UserConnections("alice"); got != 1 {
		t.Errorf("UserConnections() = %d, want 1", got)
	}

	if _, ok := <-second.Send; ok {
		t.Error("expected rejected client's send channel to be closed")
	}
}

func TestHub_PingPong(t *testing.T) {
	hub := newTestHub(5)

	client := NewClient("c1", "alice", "laptop", nil, hub)
	hub.registerClient(client)

	ping, _ := json.Marshal(Message{Type: TypePing})
	hub.processMessage(&ClientMessage{Client: client, Message: ping})

	select {
	case raw := <-client.Send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshaling reply: %v", err)
		}
		if msg.Type != TypePong {
			t.Errorf("reply type = %s, want %s", msg.Type, TypePong)
		}
	default:
		t.Fatal("expected a pong reply")
	}
}

// A client rejected at the cap still has a running read pump, so its traffic
// reaches the hub after its Send channel is closed. Replying to it would
// panic the hub loop and take the process down.
func TestHub_PingFromRejectedClient(t *testing.T) {
	hub := newTestHub(1)

	accepted := NewClient("c1", "alice", "laptop", nil, hub)
	rejected := NewClient("c2", "alice", "phone", nil, hub)
	hub.registerClient(accepted)
	hub.registerClient(rejected)

	ping, _ := json.Marshal(Message{Type: TypePing})
	hub.processMessage(&ClientMessage{Client: rejected, Message: ping})

	select {
	case <-accepted.Send:
		t.Error("expected no reply routed to the accepted client")
	default:
	}
}

func TestHub_BroadcastToUser(t *testing.T) {
	hub := newTestHub(5)

	laptop := NewClient("c1", "alice", "laptop", nil, hub)
	phone := NewClient("c2", "alice", "phone", nil, hub)
	other := NewClient("c3", "bob", "laptop", nil, hub)
	for _, c := range []*Client{laptop, phone, other} {
		hub.registerClient(c)
	}

	msg, err := NewMessage(TypeNoteDeleted, NoteDeletedPayload{NoteID: "n-1"})
	if err != nil {
		t.Fatalf("building message: %v", err)
	}
	hub.BroadcastToUser("alice", msg)

	for _, c := range []*Client{laptop, phone} {
		select {
		case raw := <-c.Send:
			var got Message
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("unmarshaling event: %v", err)
			}
			if got.Type != TypeNoteDeleted {
				t.Errorf("event type = %s, want %s", got.Type, TypeNoteDeleted)
			}
		default:
			t.Errorf("expected client %s to receive the event", c.ID)
		}
	}

	select {
	case <-other.Send:
		t.Error("expected bob's client to receive nothing")
	default:
	}
}
