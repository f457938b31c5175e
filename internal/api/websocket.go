package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// AnalysisEvent is one analysis outcome streamed to websocket subscribers
type AnalysisEvent struct {
	QueryType     string    `json:"query_type"`
	UserIntent    string    `json:"user_intent,omitempty"`
	Error         string    `json:"error,omitempty"`
	Substitutions int       `json:"substitutions_found"`
	Timestamp     time.Time `json:"timestamp"`
}

// Hub fans analysis events out to connected websocket clients
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]bool
}

// NewHub creates an empty subscriber hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]bool)}
}

// Broadcast sends an event to every connected client. Slow clients drop
// events rather than blocking the analysis path.
func (h *Hub) Broadcast(event AnalysisEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling analysis event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Println("WebSocket buffer full, dropping event")
		}
	}
}

func (h *Hub) register(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client] {
		delete(h.clients, client)
		close(client.send)
	}
}

// wsClient maintains one websocket connection
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// handleWebSocket upgrades the connection and starts the pumps
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register(client)

	go client.writePump()
	go client.readPump(s.hub)
}

// readPump drains the connection; the event stream is one-way, so
// incoming messages only keep the read deadline fresh.
func (c *wsClient) readPump(hub *Hub) {
	defer func() {
		hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pushes queued events and keepalive pings to the client
func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
