package services

import "github.com/openresto/restaurant-orders/models"

// OrderCreatedPayload is delivered to the waiting room of the submission
// that produced the order. The access key lets the anonymous submitter join
// the order's tracking room afterwards.
type OrderCreatedPayload struct {
	OrderID     uint    `json:"order_id"`
	AccessKey   string  `json:"access_key"`
	TableID     uint    `json:"table_id"`
	TotalAmount float64 `json:"total_amount"`
}

// Notifier is the event-emission capability the order pipeline depends on.
// Implementations are fire-and-forget; delivery failures must never affect
// the caller. The websocket hub implements it in production, tests record
// calls with a stub.
type Notifier interface {
	NotifyWaiterNewOrder(order models.Order)
	NotifyChefNewConfirmedOrder(order models.Order)
	NotifyCustomerOrderStatus(orderID uint, status string)
	NotifyOrderCreated(tempID string, payload OrderCreatedPayload)
	NotifyOrderCreationFailed(tempID string, reason string)
}
