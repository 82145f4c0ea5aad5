package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"car-inventory/internal/models"
)

// OrderLedger is the slice of the order repository the handlers use.
type OrderLedger interface {
	CreateOrder(custID string, lines []models.OrderLineRequest) (*models.Order, error)
	UpdateLine(orderID, carID string, newQuantity int) error
	DeleteLine(orderID, carID string) error
	OrdersForCustomer(custID string) ([]models.CustomerOrderLine, error)
	Stats() (*models.ShopStats, error)
}

// OrderEvents publishes order lifecycle events after a commit.
type OrderEvents interface {
	OrderCreated(order *models.Order) error
	OrderUpdated(orderID, carID string, quantity int) error
	OrderDeleted(orderID, carID string) error
}

type OrderHandler struct {
	ledger OrderLedger
	events OrderEvents
}

func NewOrderHandler(ledger OrderLedger, events OrderEvents) *OrderHandler {
	return &OrderHandler{
		ledger: ledger,
		events: events,
	}
}

// GetOrders returns a customer's order lines flattened with car details.
// An unknown customer simply has no orders yet.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	lines, err := h.ledger.OrdersForCustomer(c.Param("cust_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if lines == nil {
		lines = []models.CustomerOrderLine{}
	}
	c.JSON(http.StatusOK, lines)
}

// CreateOrder opens an order with the requested lines
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, err)
		return
	}

	order, err := h.ledger.CreateOrder(c.Param("cust_id"), req.Order)
	if err != nil {
		respondFailure(c, err)
		return
	}

	if err := h.events.OrderCreated(order); err != nil {
		log.Printf("⚠️ Failed to publish event: %v", err)
		// Don't fail the request, the order is already committed
	}

	log.Printf("✅ Order %s created with total $%s", order.OrderID, order.OrderTotal.StringFixed(2))
	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": "New Order was created!",
	})
}

// UpdateOrder changes the quantity of one line on an order
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, err)
		return
	}

	orderID := c.Param("order_id")
	if err := h.ledger.UpdateLine(orderID, req.CarID, req.Quantity); err != nil {
		respondFailure(c, err)
		return
	}

	if err := h.events.OrderUpdated(orderID, req.CarID, req.Quantity); err != nil {
		log.Printf("⚠️ Failed to publish event: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": "Order was successfully updated!",
	})
}

// DeleteOrder removes one line from an order, returning its stock
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	var req models.DeleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, err)
		return
	}

	orderID := c.Param("order_id")
	if err := h.ledger.DeleteLine(orderID, req.CarID); err != nil {
		respondFailure(c, err)
		return
	}

	if err := h.events.OrderDeleted(orderID, req.CarID); err != nil {
		log.Printf("⚠️ Failed to publish event: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": "Order was successfully deleted!",
	})
}

// ShopStats returns the storefront dashboard numbers
func (h *OrderHandler) ShopStats(c *gin.Context) {
	stats, err := h.ledger.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
