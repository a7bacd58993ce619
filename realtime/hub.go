package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/services"
	"github.com/openresto/restaurant-orders/utils"
)

const (
	waiterRoom = "waiter_room"
	chefRoom   = "chef_room"
)

func orderRoom(orderID uint) string {
	return fmt.Sprintf("order_%d", orderID)
}

func waitingRoom(tempID string) string {
	return "waiting_" + tempID
}

// AccessKeyLookup resolves an order's stored capability token. The hub only
// needs this one read, so it takes a function instead of the whole store.
type AccessKeyLookup func(orderID uint) (string, error)

// Hub owns the connection registry and the room memberships. All mutation
// goes through join/removeClient; broadcasts take the read lock only and
// never block on a slow peer.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[string]map[*Client]struct{}
	accessKey AccessKeyLookup
}

func NewHub(accessKey AccessKeyLookup) *Hub {
	return &Hub{
		rooms:     make(map[string]map[*Client]struct{}),
		accessKey: accessKey,
	}
}

// join is idempotent; a connection may be in many rooms at once.
func (h *Hub) join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

// removeClient drops the connection from every room and closes its send
// channel. Holding the write lock here is what makes trySend (under the
// read lock) safe against sends on a closed channel.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(c.send)
}

// broadcast emits one event to every member of a room. Sends are
// best-effort: a client whose buffer is full just misses the event.
func (h *Hub) broadcast(room, event string, data interface{}) {
	payload, err := json.Marshal(outboundMessage{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Printf("realtime: marshal %s failed: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.trySend(payload)
	}
}

func (h *Hub) roomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// --- services.Notifier ---

func (h *Hub) NotifyWaiterNewOrder(order models.Order) {
	h.broadcast(waiterRoom, EventWaiterNewOrder, order)
}

func (h *Hub) NotifyChefNewConfirmedOrder(order models.Order) {
	h.broadcast(chefRoom, EventChefNewConfirmed, order)
}

func (h *Hub) NotifyCustomerOrderStatus(orderID uint, status string) {
	h.broadcast(orderRoom(orderID), EventOrderStatusUpdated, map[string]interface{}{
		"order_id":   orderID,
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
}

func (h *Hub) NotifyOrderCreated(tempID string, payload services.OrderCreatedPayload) {
	h.broadcast(waitingRoom(tempID), EventOrderCreatedSuccess, payload)
}

func (h *Hub) NotifyOrderCreationFailed(tempID string, reason string) {
	h.broadcast(waitingRoom(tempID), EventOrderCreatedFail, map[string]string{
		"reason": reason,
	})
}

var _ services.Notifier = (*Hub)(nil)
