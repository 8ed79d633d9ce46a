package schedulews

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	websocket "github.com/gofiber/contrib/websocket"

	"github.com/fitversal/coach-scheduler/internal/models"
)

// Hub fans schedule-change events out to a coach's open connections. Clients
// only listen; all writes originate from the scheduling service.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	coachID string
	send    chan []byte
}

type Event struct {
	Type        string `json:"type"`
	CoachID     string `json:"coach_id"`
	SessionID   string `json:"session_id"`
	ClientID    string `json:"client_id"`
	ScheduledAt string `json:"scheduled_at"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, coachID string) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		coachID: coachID,
		send:    make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.coachID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.coachID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.coachID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.coachID)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifySessionChange implements the scheduling service's notifier contract.
func (h *Hub) NotifySessionChange(coachID int64, event string, session models.Session) {
	h.broadcast <- &Event{
		Type:        event,
		CoachID:     strconv.FormatInt(coachID, 10),
		SessionID:   strconv.FormatInt(session.ID, 10),
		ClientID:    strconv.FormatInt(session.ClientID, 10),
		ScheduledAt: session.ScheduledAt.Format(time.RFC3339),
		Status:      string(session.Status),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func (h *Hub) deliver(event *Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("schedule hub encode event: %v", err)
		return
	}
	h.sendToCoach(event.CoachID, encoded)
}

func (h *Hub) sendToCoach(coachID string, payload []byte) {
	set, ok := h.clients[coachID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, coachID)
	}
}

// ReadPump drains the connection until the peer goes away. Incoming frames
// carry no meaning on this feed.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
