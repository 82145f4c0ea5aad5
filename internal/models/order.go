package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID     string          `json:"order_id"`
	OrderTotal  decimal.Decimal `json:"order_total"`
	Lines       []OrderLine     `json:"lines,omitempty"`
	DateCreated time.Time       `json:"date_created"`
}

func NewOrder() *Order {
	return &Order{
		OrderID:    uuid.NewString(),
		OrderTotal: decimal.Zero,
	}
}

// IncrementTotal adds a line price to the running total.
func (o *Order) IncrementTotal(price decimal.Decimal) decimal.Decimal {
	o.OrderTotal = o.OrderTotal.Add(price)
	return o.OrderTotal
}

// DecrementTotal removes a line price from the running total.
func (o *Order) DecrementTotal(price decimal.Decimal) decimal.Decimal {
	o.OrderTotal = o.OrderTotal.Sub(price)
	return o.OrderTotal
}

// OrderLine joins one car, one order and one customer with a quantity
// and a computed price.
type OrderLine struct {
	CarOrderID string          `json:"car_order_id"`
	CarID      string          `json:"car_id"`
	OrderID    string          `json:"order_id"`
	CustID     string          `json:"cust_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

func NewOrderLine(carID string, quantity int, unitPrice decimal.Decimal, orderID, custID string) (*OrderLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	line := &OrderLine{
		CarOrderID: uuid.NewString(),
		CarID:      carID,
		OrderID:    orderID,
		CustID:     custID,
	}
	line.SetPrice(unitPrice, quantity)
	return line, nil
}

// SetPrice recomputes the line price as quantity times unit price.
// The price field is never written any other way.
func (l *OrderLine) SetPrice(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	l.Quantity = quantity
	l.Price = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return l.Price
}

// LineAdjustment is the result of planning a quantity change on an
// existing order line.
type LineAdjustment struct {
	NewPrice decimal.Decimal
	// StockDelta > 0 takes units from stock, < 0 returns them.
	StockDelta int
	// TotalDelta is applied to the owning order's total.
	TotalDelta decimal.Decimal
}

// PlanLineUpdate computes the new line price at the car's current unit
// price and the stock/total adjustments that keep the order total equal
// to the sum of its line prices. Changing to the same quantity is a
// complete no-op, including the price.
func PlanLineUpdate(unitPrice decimal.Decimal, oldQuantity, newQuantity int, oldPrice decimal.Decimal) (LineAdjustment, error) {
	if newQuantity < 1 {
		return LineAdjustment{}, ErrInvalidQuantity
	}
	if newQuantity == oldQuantity {
		return LineAdjustment{NewPrice: oldPrice, TotalDelta: decimal.Zero}, nil
	}

	newPrice := unitPrice.Mul(decimal.NewFromInt(int64(newQuantity)))
	return LineAdjustment{
		NewPrice:   newPrice,
		StockDelta: newQuantity - oldQuantity,
		TotalDelta: newPrice.Sub(oldPrice),
	}, nil
}

type CreateOrderRequest struct {
	Order []OrderLineRequest `json:"order" binding:"required"`
}

type OrderLineRequest struct {
	CarID    string          `json:"car_id" binding:"required"`
	Quantity int             `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

type UpdateOrderRequest struct {
	CarID    string `json:"car_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

type DeleteOrderRequest struct {
	CarID string `json:"car_id" binding:"required"`
}

// CustomerOrderLine is the flattened record returned for a customer's
// orders: catalog attributes of the car merged with the line's quantity
// and identifiers.
type CustomerOrderLine struct {
	CarID       string          `json:"car_id"`
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	Year        string          `json:"year"`
	Color       string          `json:"color"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	OrderID     string          `json:"order_id"`
	LineID      string          `json:"id"`
}

// ShopStats backs the storefront dashboard.
type ShopStats struct {
	Cars      int             `json:"cars"`
	Customers int             `json:"customers"`
	Sales     decimal.Decimal `json:"sales"`
}
