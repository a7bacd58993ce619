package realtime

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/services"
	"github.com/openresto/restaurant-orders/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func newTestHub(keys map[uint]string) *Hub {
	return NewHub(func(orderID uint) (string, error) {
		key, ok := keys[orderID]
		if !ok {
			return "", services.ErrOrderNotFound
		}
		return key, nil
	})
}

// newTestClient builds a registered client without a network connection;
// events land in its send buffer.
func newTestClient(h *Hub, ident *Identity) *Client {
	return &Client{hub: h, send: make(chan []byte, 8), identity: ident}
}

func received(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case payload := <-c.send:
			out = append(out, payload)
		default:
			return out
		}
	}
}

func event(name string, data string) inboundMessage {
	return inboundMessage{Event: name, Data: json.RawMessage(data)}
}

func TestJoinWaiterRoomRequiresWaiterRole(t *testing.T) {
	h := newTestHub(nil)

	waiter := newTestClient(h, &Identity{UserID: 1, Role: models.RoleWaiter})
	chef := newTestClient(h, &Identity{UserID: 2, Role: models.RoleChef})
	anon := newTestClient(h, nil)

	waiter.handleEvent(event(EventJoinWaiterRoom, "null"))
	chef.handleEvent(event(EventJoinWaiterRoom, "null"))
	anon.handleEvent(event(EventJoinWaiterRoom, "null"))

	assert.Equal(t, 1, h.roomSize(waiterRoom))

	chef.handleEvent(event(EventJoinChefRoom, "null"))
	assert.Equal(t, 1, h.roomSize(chefRoom))
}

func TestJoinIsIdempotent(t *testing.T) {
	h := newTestHub(nil)
	waiter := newTestClient(h, &Identity{UserID: 1, Role: models.RoleWaiter})

	waiter.handleEvent(event(EventJoinWaiterRoom, "null"))
	waiter.handleEvent(event(EventJoinWaiterRoom, "null"))
	assert.Equal(t, 1, h.roomSize(waiterRoom))
}

func TestNormalizeTempID(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`"abc"`, "abc"},
		{`"  abc  "`, "abc"},
		{`{"tempId":"abc"}`, "abc"},
		{`{"tempId": 42}`, "42"},
		{`42`, "42"},
		{`{"other":"x"}`, ""},
		{`null`, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeTempID(json.RawMessage(tc.raw)), "raw=%s", tc.raw)
	}
}

func TestWaitingRoomReceivesOutcome(t *testing.T) {
	h := newTestHub(nil)
	customer := newTestClient(h, nil)
	bystander := newTestClient(h, nil)

	customer.handleEvent(event(EventJoinWaitingRoom, `"abc"`))
	bystander.handleEvent(event(EventJoinWaitingRoom, `"xyz"`))

	h.NotifyOrderCreated("abc", services.OrderCreatedPayload{
		OrderID:     7,
		AccessKey:   "key-7",
		TotalAmount: 100000,
	})

	msgs := received(customer)
	assert.Len(t, msgs, 1)

	var out struct {
		Event string `json:"event"`
		Data  struct {
			OrderID   uint   `json:"order_id"`
			AccessKey string `json:"access_key"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(msgs[0], &out))
	assert.Equal(t, EventOrderCreatedSuccess, out.Event)
	assert.Equal(t, uint(7), out.Data.OrderID)
	assert.Equal(t, "key-7", out.Data.AccessKey)

	assert.Empty(t, received(bystander))
}

func TestOrderRoomJoinRequiresAccessKey(t *testing.T) {
	h := newTestHub(map[uint]string{7: "secret-key"})

	holder := newTestClient(h, nil)
	holder.handleEvent(event(EventJoinOrderRoom, `{"orderId":7,"accessKey":"secret-key"}`))
	assert.Equal(t, 1, h.roomSize(orderRoom(7)))

	h.NotifyCustomerOrderStatus(7, models.StatusConfirmed)
	assert.Len(t, received(holder), 1)
}

func TestOrderRoomJoinFailuresAreIndistinguishable(t *testing.T) {
	h := newTestHub(map[uint]string{7: "secret-key"})

	attempts := []struct {
		name string
		data string
	}{
		{"wrong key", `{"orderId":7,"accessKey":"guess"}`},
		{"empty key", `{"orderId":7,"accessKey":""}`},
		{"missing order", `{"orderId":8,"accessKey":"secret-key"}`},
		{"malformed", `"just a string"`},
	}

	for _, attempt := range attempts {
		c := newTestClient(h, nil)
		c.handleEvent(event(EventJoinOrderRoom, attempt.data))

		// Same observable outcome in every case: no membership, no frames.
		assert.Equal(t, 0, h.roomSize(orderRoom(7)), attempt.name)
		assert.Equal(t, 0, h.roomSize(orderRoom(8)), attempt.name)
		assert.Empty(t, received(c), attempt.name)
	}
}

func TestCustomerRequestServiceReachesWaiters(t *testing.T) {
	h := newTestHub(nil)

	waiter := newTestClient(h, &Identity{UserID: 1, Role: models.RoleWaiter})
	waiter.handleEvent(event(EventJoinWaiterRoom, "null"))

	customer := newTestClient(h, nil)
	customer.handleEvent(event(EventCustomerRequestService, `{"tableNumber":"B1"}`))

	msgs := received(waiter)
	assert.Len(t, msgs, 1)

	var out struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(msgs[0], &out))
	assert.Equal(t, EventWaiterNotification, out.Event)
	assert.Equal(t, "B1", out.Data["table_number"])
}

func TestRemoveClientLeavesAllRooms(t *testing.T) {
	h := newTestHub(nil)

	waiter := newTestClient(h, &Identity{UserID: 1, Role: models.RoleWaiter})
	waiter.handleEvent(event(EventJoinWaiterRoom, "null"))
	waiter.handleEvent(event(EventJoinWaitingRoom, `"abc"`))
	assert.Equal(t, 1, h.roomSize(waiterRoom))

	h.removeClient(waiter)
	assert.Equal(t, 0, h.roomSize(waiterRoom))
	assert.Equal(t, 0, h.roomSize(waitingRoom("abc")))

	// Broadcast after removal must not panic on the closed channel.
	h.NotifyWaiterNewOrder(models.Order{ID: 1})
}

func TestBroadcastDropsWhenClientBufferFull(t *testing.T) {
	h := newTestHub(nil)

	slow := &Client{hub: h, send: make(chan []byte, 1), identity: nil}
	slow.handleEvent(event(EventJoinWaitingRoom, `"abc"`))

	h.NotifyOrderCreationFailed("abc", "reason one")
	h.NotifyOrderCreationFailed("abc", fmt.Sprintf("reason %d", 2))

	// Buffer holds one; the second is dropped, not blocked on.
	assert.Len(t, received(slow), 1)
}
