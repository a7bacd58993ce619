package main

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/openresto/restaurant-orders/controllers"
	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/queue"
	"github.com/openresto/restaurant-orders/realtime"
	"github.com/openresto/restaurant-orders/services"
	"github.com/openresto/restaurant-orders/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	utils.InitJWT()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	db       *gorm.DB
	svc      *services.OrderService
	hub      *realtime.Hub
	consumer *queue.Consumer
	server   *httptest.Server
}

// setupEnv wires the full pipeline minus the broker: the consumer's Handle
// is driven directly with marshalled submissions, everything downstream
// (reservation, hub, websocket delivery) is real.
func setupEnv(t *testing.T) *testEnv {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Floor{}, &models.Table{}, &models.Category{},
		&models.Product{}, &models.Order{}, &models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	table := models.Table{Number: "B1", Capacity: 4, IsAvailable: true}
	assert.NoError(t, db.Create(&table).Error)
	category := models.Category{Name: "Mains"}
	assert.NoError(t, db.Create(&category).Error)
	product := models.Product{CategoryID: category.ID, Name: "Pho Bo", Price: 50000, IsEnable: true}
	assert.NoError(t, db.Create(&product).Error)

	var svc *services.OrderService
	hub := realtime.NewHub(func(orderID uint) (string, error) {
		return svc.AccessKey(orderID)
	})
	svc = services.NewOrderService(db, hub)
	consumer := queue.NewConsumer("amqp://unused", "orders.new", svc, hub)

	r := gin.New()
	wsCtrl := controllers.NewWSController(hub)
	r.GET("/ws", wsCtrl.Connect)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &testEnv{db: db, svc: svc, hub: hub, consumer: consumer, server: server}
}

func (env *testEnv) dial(t *testing.T, token string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	frame, err := json.Marshal(map[string]interface{}{"event": event, "data": data})
	assert.NoError(t, err)
	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
	// Give the read pump a beat to process the join before broadcasting.
	time.Sleep(150 * time.Millisecond)
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("websocket read: %v", err)
	}
	var msg struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(frame, &msg))
	return msg.Event, msg.Data
}

func submission(tempID string) []byte {
	body, _ := json.Marshal(queue.NewOrderMessage{
		TableNumber: "B1",
		Items:       []services.OrderItemInput{{ProductID: 1, Quantity: 2}},
		TempID:      tempID,
	})
	return body
}

// Scenario: a successful submission is answered in the waiting room with an
// order id and access key, the table flips to occupied, and the access key
// then admits the customer to the order's tracking room.
func TestSubmissionToTrackingFlow(t *testing.T) {
	env := setupEnv(t)

	customer := env.dial(t, "")
	sendEvent(t, customer, "join_waiting_room", "abc")

	env.consumer.Handle(submission("abc"))

	event, data := readEvent(t, customer)
	assert.Equal(t, "order_created_success", event)

	var created struct {
		OrderID     uint    `json:"order_id"`
		AccessKey   string  `json:"access_key"`
		TotalAmount float64 `json:"total_amount"`
	}
	assert.NoError(t, json.Unmarshal(data, &created))
	assert.NotZero(t, created.OrderID)
	assert.NotEmpty(t, created.AccessKey)
	assert.Equal(t, float64(100000), created.TotalAmount)

	var table models.Table
	env.db.Where("number = ?", "B1").First(&table)
	assert.False(t, table.IsAvailable)

	// Join the tracking room with the received key and watch the first
	// transition arrive.
	sendEvent(t, customer, "join_order_room", map[string]interface{}{
		"orderId":   created.OrderID,
		"accessKey": created.AccessKey,
	})

	_, err := env.svc.Advance(created.OrderID)
	assert.NoError(t, err)

	event, data = readEvent(t, customer)
	assert.Equal(t, "order_status_updated", event)

	var status struct {
		Status string `json:"status"`
	}
	assert.NoError(t, json.Unmarshal(data, &status))
	assert.Equal(t, models.StatusConfirmed, status.Status)
}

// Scenario: submitting against an occupied table yields a failure event in
// the waiting room and creates nothing.
func TestSubmissionAgainstOccupiedTable(t *testing.T) {
	env := setupEnv(t)
	env.db.Model(&models.Table{}).Where("number = ?", "B1").Update("is_available", false)

	customer := env.dial(t, "")
	sendEvent(t, customer, "join_waiting_room", "abc")

	env.consumer.Handle(submission("abc"))

	event, data := readEvent(t, customer)
	assert.Equal(t, "order_created_fail", event)

	var failure struct {
		Reason string `json:"reason"`
	}
	assert.NoError(t, json.Unmarshal(data, &failure))
	assert.Contains(t, failure.Reason, "table")

	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

// Scenario: a logged-in waiter in the waiter room hears about new orders.
func TestWaiterRoomReceivesNewOrders(t *testing.T) {
	env := setupEnv(t)

	token, err := utils.GenerateToken(1, models.RoleWaiter)
	assert.NoError(t, err)

	waiter := env.dial(t, token)
	sendEvent(t, waiter, "join_waiter_room", nil)

	env.consumer.Handle(submission("abc"))

	event, data := readEvent(t, waiter)
	assert.Equal(t, "waiter_new_order", event)

	var order models.Order
	assert.NoError(t, json.Unmarshal(data, &order))
	assert.NotZero(t, order.ID)
	assert.Equal(t, models.StatusPending, order.Status)
}

// A customer token is optional, but a bad one terminates the handshake.
func TestInvalidTokenRejectsConnection(t *testing.T) {
	env := setupEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	assert.Error(t, err)
	if resp != nil {
		assert.Equal(t, 401, resp.StatusCode)
	}
}

// A chef's token does not open the waiter room.
func TestChefCannotJoinWaiterRoom(t *testing.T) {
	env := setupEnv(t)

	token, err := utils.GenerateToken(2, models.RoleChef)
	assert.NoError(t, err)

	chef := env.dial(t, token)
	sendEvent(t, chef, "join_waiter_room", nil)

	env.consumer.Handle(submission("abc"))

	// Nothing should arrive; the read must time out.
	chef.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	_, _, err = chef.ReadMessage()
	assert.Error(t, err)
}
