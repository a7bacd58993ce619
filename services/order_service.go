package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/utils"
)

type OrderService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewOrderService(db *gorm.DB, notifier Notifier) *OrderService {
	return &OrderService{DB: db, Notifier: notifier}
}

// OrderItemInput is one requested line in a submission. Price is never
// client-supplied; it is resolved from the catalog at reservation time.
type OrderItemInput struct {
	ProductID uint   `json:"productId"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

// CreateOrder reserves the table and creates the order atomically.
//
// Preconditions are checked first (table available, every product present
// and enabled); then a single transaction flips the table to occupied and
// inserts the order with its items. The availability flip is a guarded
// UPDATE whose affected-row count decides the winner when two submissions
// race for the same table, so at most one reservation succeeds.
func (s *OrderService) CreateOrder(tableNumber string, items []OrderItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	var table models.Table
	if err := s.DB.Where("number = ?", tableNumber).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: table %q", ErrTableUnavailable, tableNumber)
		}
		return nil, err
	}
	if !table.IsAvailable {
		return nil, fmt.Errorf("%w: table %q is occupied", ErrTableUnavailable, tableNumber)
	}

	products, err := s.resolveProducts(items)
	if err != nil {
		return nil, err
	}

	var total float64
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, in := range items {
		p := products[in.ProductID]
		total += p.Price * float64(in.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: p.ID,
			Quantity:  in.Quantity,
			Price:     p.Price,
			Note:      in.Note,
		})
	}

	order := models.Order{
		TableID:     table.ID,
		Status:      models.StatusPending,
		TotalAmount: total,
		AccessKey:   utils.NewAccessKey(),
		Items:       orderItems,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Table{}).
			Where("id = ? AND is_available = ?", table.ID, true).
			Updates(map[string]interface{}{"is_available": false, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race: someone else reserved the table first.
			return fmt.Errorf("%w: table %q is occupied", ErrTableUnavailable, tableNumber)
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.Preload("Items").Preload("Items.Product").Preload("Table").
		First(&order, order.ID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderItems replaces the order's line items wholesale and recomputes
// the total. Only legal while the order is still PENDING.
func (s *OrderService) UpdateOrderItems(orderID uint, items []OrderItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	var order models.Order
	if err := s.DB.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: order %d is %s, items can only change while PENDING",
			ErrIllegalTransition, orderID, order.Status)
	}

	products, err := s.resolveProducts(items)
	if err != nil {
		return nil, err
	}

	var total float64
	newItems := make([]models.OrderItem, 0, len(items))
	for _, in := range items {
		p := products[in.ProductID]
		total += p.Price * float64(in.Quantity)
		newItems = append(newItems, models.OrderItem{
			OrderID:   order.ID,
			ProductID: p.ID,
			Quantity:  in.Quantity,
			Price:     p.Price,
			Note:      in.Note,
		})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&newItems).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{"total_amount": total, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(order.ID)
}

// resolveProducts batch-reads every referenced product and validates the
// request against the catalog. Missing ids and disabled products fail the
// whole submission before any state is touched.
func (s *OrderService) resolveProducts(items []OrderItemInput) (map[uint]models.Product, error) {
	ids := make([]uint, 0, len(items))
	for _, in := range items {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for product %d", in.Quantity, in.ProductID)
		}
		ids = append(ids, in.ProductID)
	}

	var products []models.Product
	if err := s.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, in := range items {
		p, ok := byID[in.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, in.ProductID)
		}
		if !p.IsEnable {
			return nil, fmt.Errorf("%w: %s", ErrProductDisabled, p.Name)
		}
	}
	return byID, nil
}

func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.Preload("Items").Preload("Items.Product").Preload("Table").
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) ListOrders() ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.Preload("Items").Preload("Items.Product").Preload("Table").
		Order("created_at desc").Find(&orders).Error
	return orders, err
}

// AccessKey returns the stored capability token for an order. Used by the
// websocket hub to gate order-room joins; a missing order returns
// ErrOrderNotFound, which the hub treats the same as a key mismatch.
func (s *OrderService) AccessKey(orderID uint) (string, error) {
	var order models.Order
	if err := s.DB.Select("id", "access_key").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrOrderNotFound
		}
		return "", err
	}
	return order.AccessKey, nil
}

// DeleteOrder removes an order administratively. If the order still holds
// its table, the table is released in the same transaction.
func (s *OrderService) DeleteOrder(orderID uint) error {
	var order models.Order
	if err := s.DB.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if order.Status != models.StatusPaid {
			if err := tx.Model(&models.Table{}).Where("id = ?", order.TableID).
				Update("is_available", true).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
}
