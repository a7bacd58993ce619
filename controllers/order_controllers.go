package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/queue"
	"github.com/openresto/restaurant-orders/services"
	"github.com/openresto/restaurant-orders/utils"
)

// OrderPublisher is the piece of the intake queue the boundary needs.
type OrderPublisher interface {
	PublishNewOrder(ctx context.Context, msg queue.NewOrderMessage) error
}

type OrderController struct {
	Service   *services.OrderService
	Publisher OrderPublisher
}

func NewOrderController(svc *services.OrderService, pub OrderPublisher) *OrderController {
	return &OrderController{Service: svc, Publisher: pub}
}

// SubmitOrder -> fire-and-forget intake. The submission is validated for
// shape only, enqueued, and acknowledged immediately with the client's
// correlation id; the outcome arrives over the websocket waiting room.
func (oc *OrderController) SubmitOrder(c *gin.Context) {
	type itemReq struct {
		ProductID uint   `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
		Note      string `json:"note"`
	}
	type reqBody struct {
		TableNumber string    `json:"tableNumber" binding:"required"`
		Items       []itemReq `json:"items" binding:"required,min=1,dive"`
		TempID      string    `json:"tempId" binding:"required"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	items := make([]services.OrderItemInput, 0, len(body.Items))
	for _, it := range body.Items {
		items = append(items, services.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Note:      it.Note,
		})
	}

	msg := queue.NewOrderMessage{
		TableNumber: body.TableNumber,
		Items:       items,
		TempID:      body.TempID,
	}
	if err := oc.Publisher.PublishNewOrder(c.Request.Context(), msg); err != nil {
		utils.RespondError(c, http.StatusServiceUnavailable, err)
		return
	}

	utils.RespondJSON(c, http.StatusAccepted, "Order submission accepted", gin.H{
		"tempId": body.TempID,
	})
}

// GetAllOrders -> list orders with items for the staff dashboard.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Service.ListOrders()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.GetOrder(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderItems -> replace the line items wholesale (PENDING orders only).
func (oc *OrderController) UpdateOrderItems(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type reqBody struct {
		Items []services.OrderItemInput `json:"items" binding:"required,min=1"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.UpdateOrderItems(uint(id), body.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// AdvanceOrderStatus -> move the order one step forward in its lifecycle.
func (oc *OrderController) AdvanceOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.Advance(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	role, _ := c.Get("role")
	if role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := oc.Service.DeleteOrder(uint(id)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": id})
}
