package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/openresto/restaurant-orders/services"
	"github.com/openresto/restaurant-orders/utils"
)

// Consumer drains the intake queue and drives the reservation coordinator.
// Messages are acked unconditionally once handled: a failed reservation is
// an outcome (reported to the submitter's waiting room), not a reason to
// redeliver, since redelivery would risk creating the order twice. There is
// no dedup key, so a broker-level redelivery of an already-processed message
// would create a second order.
type Consumer struct {
	url      string
	queue    string
	orders   *services.OrderService
	notifier services.Notifier
}

func NewConsumer(url, queueName string, orders *services.OrderService, notifier services.Notifier) *Consumer {
	return &Consumer{url: url, queue: queueName, orders: orders, notifier: notifier}
}

// Start runs the consume loop until ctx is cancelled, reconnecting with
// backoff when the broker drops. Intended to run as its own goroutine.
func (c *Consumer) Start(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			utils.ErrorLogger.Printf("intake consumer: dial failed: %v; retrying in %s", err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			utils.ErrorLogger.Printf("intake consumer: consume loop ended: %v; reconnecting", err)
		}
		conn.Close()
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		utils.ErrorLogger.Printf("intake consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.Handle(d.Body)
			_ = d.Ack(false)
		}
	}
}

// Handle processes one submission. Every path ends with a notification into
// the submitter's waiting room; processing errors are converted into a
// failure event instead of propagating, so a poisoned message can never
// wedge the queue.
func (c *Consumer) Handle(body []byte) {
	var msg NewOrderMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		utils.ErrorLogger.Printf("intake consumer: dropping malformed submission: %v", err)
		return
	}

	order, err := c.orders.CreateOrder(msg.TableNumber, msg.Items)
	if err != nil {
		utils.InfoLogger.Printf("submission %s rejected: %v", msg.TempID, err)
		c.notifier.NotifyOrderCreationFailed(msg.TempID, err.Error())
		return
	}

	utils.InfoLogger.Printf("submission %s created order %d (table %s, total %.2f)",
		msg.TempID, order.ID, msg.TableNumber, order.TotalAmount)

	c.notifier.NotifyOrderCreated(msg.TempID, services.OrderCreatedPayload{
		OrderID:     order.ID,
		AccessKey:   order.AccessKey,
		TableID:     order.TableID,
		TotalAmount: order.TotalAmount,
	})
	c.notifier.NotifyWaiterNewOrder(*order)
}
