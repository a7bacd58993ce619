package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openresto/restaurant-orders/models"
)

// nextStatus is the fixed transition table. Statuses absent from the map
// (PAID, or anything unexpected in the column) have no successor.
var nextStatus = map[string]string{
	models.StatusPending:    models.StatusConfirmed,
	models.StatusConfirmed:  models.StatusInProgress,
	models.StatusInProgress: models.StatusCompleted,
	models.StatusCompleted:  models.StatusPaid,
}

// NextStatus returns the single legal successor of a status, if any.
func NextStatus(current string) (string, bool) {
	next, ok := nextStatus[current]
	return next, ok
}

// Advance moves an order to its next status. The write is guarded on the
// status read earlier, so two concurrent advances cannot both apply the
// same transition. Reaching PAID is the checkout: the order's table is
// released inside the same transaction.
//
// Notifications fire after the commit and are best-effort; a lost event
// never rolls back the status change.
func (s *OrderService) Advance(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.Preload("Items").Preload("Items.Product").Preload("Table").
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	next, ok := NextStatus(order.Status)
	if !ok {
		return nil, fmt.Errorf("%w: no transition from %s", ErrIllegalTransition, order.Status)
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]interface{}{"status": next, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d changed concurrently", ErrIllegalTransition, order.ID)
		}
		if next == models.StatusPaid {
			return tx.Model(&models.Table{}).Where("id = ?", order.TableID).
				Update("is_available", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = next
	order.UpdatedAt = now
	if next == models.StatusConfirmed {
		s.Notifier.NotifyChefNewConfirmedOrder(order)
	}
	s.Notifier.NotifyCustomerOrderStatus(order.ID, next)

	return &order, nil
}
