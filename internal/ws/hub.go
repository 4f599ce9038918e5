package ws

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is one connected dashboard.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans queue updates out to every connected client. Delivery is best
// effort: a client that cannot keep up is dropped rather than ever blocking
// an allocation.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("queue ws client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Debug("queue ws client unregistered")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// QueueUpdate is pushed to dashboards after every successful allocation.
type QueueUpdate struct {
	DoctorID    string `json:"doctorId"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	QueueNumber int    `json:"queueNumber"`
}

func (h *Hub) BroadcastQueueUpdate(update QueueUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("queue update dropped, broadcast channel full")
	}
}
