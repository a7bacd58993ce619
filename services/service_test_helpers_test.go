package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/utils"
)

// recorderNotifier records emitted events so tests can assert on the
// notification side effects without a live connection layer.
type recorderNotifier struct {
	mu             sync.Mutex
	WaiterOrders   []models.Order
	ChefOrders     []models.Order
	StatusUpdates  []string
	Created        map[string]OrderCreatedPayload
	CreationFailed map[string]string
}

func newRecorderNotifier() *recorderNotifier {
	return &recorderNotifier{
		Created:        make(map[string]OrderCreatedPayload),
		CreationFailed: make(map[string]string),
	}
}

func (r *recorderNotifier) NotifyWaiterNewOrder(order models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.WaiterOrders = append(r.WaiterOrders, order)
}

func (r *recorderNotifier) NotifyChefNewConfirmedOrder(order models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ChefOrders = append(r.ChefOrders, order)
}

func (r *recorderNotifier) NotifyCustomerOrderStatus(orderID uint, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StatusUpdates = append(r.StatusUpdates, status)
}

func (r *recorderNotifier) NotifyOrderCreated(tempID string, payload OrderCreatedPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Created[tempID] = payload
}

func (r *recorderNotifier) NotifyOrderCreationFailed(tempID string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CreationFailed[tempID] = reason
}

func setupTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Floor{},
		&models.Table{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// seedCatalog creates one available table "B1" and one enabled product
// priced at 50000, returning the product id.
func seedCatalog(t *testing.T, db *gorm.DB) uint {
	table := models.Table{Number: "B1", Capacity: 4, IsAvailable: true}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("seed table: %v", err)
	}

	category := models.Category{Name: "Mains"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	product := models.Product{
		CategoryID: category.ID,
		Name:       "Pho Bo",
		Price:      50000,
		IsEnable:   true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}
