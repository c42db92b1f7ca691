package events

import (
	"encoding/json"
	"sync"
	"time"

	"stickynotes-server/internal/domain"

	"github.com/sirupsen/logrus"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

// Hub tracks connected clients per user and fans note change events out to
// everyone with access to the note.
type Hub struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	clientsMutex   sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	HandleMessage  chan *ClientMessage
	maxConnPerUser int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
}

func NewHub(maxConnPerUser int, writeWait, pongWait, pingPeriod time.Duration) *Hub {
	return &Hub{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		HandleMessage:  make(chan *ClientMessage),
		maxConnPerUser: maxConnPerUser,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case clientMsg := <-h.HandleMessage:
			h.processMessage(clientMsg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()

	if h.userIndex[client.UserID] == nil {
		h.userIndex[client.UserID] = make(map[string]bool)
	}

	if len(h.userIndex[client.UserID]) >= h.maxConnPerUser {
		logrus.Warnf("max connections reached for user %s", client.UserID)
		close(client.Send)
		return
	}

	h.clients[client.ID] = client
	h.userIndex[client.UserID][client.ID] = true

	logrus.Debugf("client registered: %s (user: %s, device: %s)", client.ID, client.UserID, client.DeviceID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		delete(h.userIndex[client.UserID], client.ID)

		if len(h.userIndex[client.UserID]) == 0 {
			delete(h.userIndex, client.UserID)
		}

		close(client.Send)
		logrus.Debugf("client unregistered: %s", client.ID)
	}
}

// processMessage handles client-originated traffic. The only inbound message
// the hub understands is an application-level ping. Clients rejected at the
// connection cap still have a running read pump, so only registered clients
// get a reply; a rejected client's Send channel is already closed.
func (h *Hub) processMessage(clientMsg *ClientMessage) {
	h.clientsMutex.RLock()
	_, registered := h.clients[clientMsg.Client.ID]
	h.clientsMutex.RUnlock()
	if !registered {
		return
	}

	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		logrus.Warnf("error unmarshaling client message: %v", err)
		return
	}

	if msg.Type == TypePing {
		pong, err := NewMessage(TypePong, nil)
		if err != nil {
			return
		}
		pongBytes, _ := json.Marshal(pong)
		select {
		case clientMsg.Client.Send <- pongBytes:
		default:
		}
	}
}

func (h *Hub) BroadcastToUser(userID string, message *Message) {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()

	messageBytes, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("error marshaling event message: %v", err)
		return
	}

	clientIDs, exists := h.userIndex[userID]
	if !exists {
		return
	}

	for clientID := range clientIDs {
		client := h.clients[clientID]
		select {
		case client.Send <- messageBytes:
		default:
			logrus.Warnf("client %s send buffer full, dropping event", clientID)
		}
	}
}

func (h *Hub) UserConnections(userID string) int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()

	if clients, exists := h.userIndex[userID]; exists {
		return len(clients)
	}
	return 0
}

func (h *Hub) publish(msgType MessageType, payload interface{}, recipients []string) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		logrus.Errorf("error building %s event: %v", msgType, err)
		return
	}
	for _, userID := range recipients {
		h.BroadcastToUser(userID, msg)
	}
}

// The methods below satisfy service.NoteEventSink.

func (h *Hub) NoteCreated(note *domain.NoteResponse, recipients []string) {
	h.publish(TypeNoteCreated, note, recipients)
}

func (h *Hub) NoteUpdated(note *domain.NoteResponse, recipients []string) {
	h.publish(TypeNoteUpdated, note, recipients)
}

func (h *Hub) NoteDeleted(noteID string, recipients []string) {
	h.publish(TypeNoteDeleted, NoteDeletedPayload{NoteID: noteID}, recipients)
}

func (h *Hub) NoteShared(note *domain.NoteResponse, recipients []string) {
	h.publish(TypeNoteShared, note, recipients)
}
