// Package queue carries order submissions from the HTTP boundary to the
// reservation logic over a durable RabbitMQ queue, so a slow or contended
// table reservation never blocks the submitting client.
package queue

import "github.com/openresto/restaurant-orders/services"

// NewOrderMessage is the one message type on the intake queue. TempID is the
// client-chosen correlation id; the asynchronous outcome is delivered to the
// waiting room named after it.
type NewOrderMessage struct {
	TableNumber string                    `json:"tableNumber"`
	Items       []services.OrderItemInput `json:"items"`
	TempID      string                    `json:"tempId"`
}
