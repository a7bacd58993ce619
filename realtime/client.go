package realtime

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/utils"
)

// Identity is the decoded token of an authenticated connection. Anonymous
// connections (customers) carry none.
type Identity struct {
	UserID uint
	Role   string
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	identity *Identity
	closed   bool // guarded by hub.mu
}

// HandleConnection runs the pumps for one websocket peer and blocks until
// the peer disconnects. Authentication already happened during the upgrade;
// ident is nil for anonymous customers.
func (h *Hub) HandleConnection(conn *websocket.Conn, ident *Identity) {
	c := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 64),
		identity: ident,
	}
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			utils.InfoLogger.Printf("realtime: ignoring malformed frame: %v", err)
			continue
		}
		c.handleEvent(msg)
	}
}

func (c *Client) writePump() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// trySend never blocks; the caller holds the hub's read lock.
func (c *Client) trySend(payload []byte) {
	select {
	case c.send <- payload:
	default:
		utils.InfoLogger.Printf("realtime: dropping event for slow client")
	}
}

func (c *Client) handleEvent(msg inboundMessage) {
	switch msg.Event {
	case EventJoinWaiterRoom:
		c.joinRoleRoom(waiterRoom, models.RoleWaiter)
	case EventJoinChefRoom:
		c.joinRoleRoom(chefRoom, models.RoleChef)
	case EventJoinWaitingRoom:
		if tempID := normalizeTempID(msg.Data); tempID != "" {
			c.hub.join(waitingRoom(tempID), c)
		}
	case EventJoinOrderRoom:
		c.joinOrderRoom(msg.Data)
	case EventCustomerRequestService:
		var payload struct {
			TableNumber string `json:"tableNumber"`
		}
		_ = json.Unmarshal(msg.Data, &payload)
		c.hub.broadcast(waiterRoom, EventWaiterNotification, map[string]string{
			"message":      "customer requests service",
			"table_number": payload.TableNumber,
		})
	}
}

// joinRoleRoom admits only connections whose token carries the required
// role. Refusal is silent: no membership, no error frame.
func (c *Client) joinRoleRoom(room, role string) {
	if c.identity == nil || c.identity.Role != role {
		utils.InfoLogger.Printf("realtime: refused %s join", room)
		return
	}
	c.hub.join(room, c)
}

// joinOrderRoom gates the order tracking room on the order's access key.
// Missing order and wrong key are deliberately indistinguishable so the
// endpoint cannot be used as a key-guessing oracle.
func (c *Client) joinOrderRoom(data json.RawMessage) {
	var payload struct {
		OrderID   uint   `json:"orderId"`
		AccessKey string `json:"accessKey"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.OrderID == 0 {
		return
	}

	key, err := c.hub.accessKey(payload.OrderID)
	if err != nil || key == "" || key != payload.AccessKey {
		utils.InfoLogger.Printf("realtime: refused order room join for order %d", payload.OrderID)
		return
	}
	c.hub.join(orderRoom(payload.OrderID), c)
}

// normalizeTempID coerces the correlation id to a stable room key. Clients
// send it either as a bare scalar or wrapped in {"tempId": ...}.
func normalizeTempID(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var wrapped struct {
		TempID json.RawMessage `json:"tempId"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.TempID != nil {
		return normalizeTempID(wrapped.TempID)
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
