// Package realtime is the websocket fan-out fabric: it keeps the registry
// of live connections, their room memberships, and pushes typed events to
// waiters, chefs and anonymous customers.
package realtime

import "encoding/json"

// Inbound event names (client -> server).
const (
	EventJoinWaiterRoom         = "join_waiter_room"
	EventJoinChefRoom           = "join_chef_room"
	EventJoinWaitingRoom        = "join_waiting_room"
	EventJoinOrderRoom          = "join_order_room"
	EventCustomerRequestService = "customer_request_service"
)

// Outbound event names (server -> client).
const (
	EventWaiterNewOrder      = "waiter_new_order"
	EventChefNewConfirmed    = "chef_new_confirmed_order"
	EventOrderStatusUpdated  = "order_status_updated"
	EventOrderCreatedSuccess = "order_created_success"
	EventOrderCreatedFail    = "order_created_fail"
	EventWaiterNotification  = "waiter_notification"
)

// inboundMessage is the single decoded shape every handler sees. Data stays
// raw because each event normalizes its own payload.
type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
