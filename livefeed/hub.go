package livefeed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"aquiguaira/middleware"
	"aquiguaira/models"
	"aquiguaira/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const writeWait = 10 * time.Second

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

// Hub fans domain events out to connected admin dashboards. Only Run touches
// the client set.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
			}

		case m := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.Send <- m:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.Send)
				}
			}

		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.Send)
			}
			return
		}
	}
}

// Stop disconnects every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish is the mq listener: it encodes the event and broadcasts it.
func (h *Hub) Publish(ev models.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("livefeed: marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// WebSocketHandler serves GET /api/admin/live?token=<jwt>. Browsers cannot set
// headers on a websocket handshake, so the admin token travels in the query.
func WebSocketHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		claims, err := middleware.ParseToken(r.URL.Query().Get("token"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		if !claims.IsAdmin() {
			utils.RespondWithError(w, http.StatusForbidden, "Acesso restrito a administradores")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 64),
			UserID: claims.UserID,
		}

		if !hub.add(client) {
			conn.Close()
			return
		}
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump only drains control frames; the feed is one-way.
func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.remove(c)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
