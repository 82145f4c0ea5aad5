package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Car struct {
	CarID       string          `json:"car_id"`
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	Year        string          `json:"year"`
	Color       string          `json:"color"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	DateAdded   time.Time       `json:"-"`
}

func NewCar(req CarRequest) *Car {
	return &Car{
		CarID:       uuid.NewString(),
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Color:       req.Color,
		Image:       req.Image,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
}

// DecrementQuantity takes n units out of stock. Quantity never goes
// negative; taking more than is on hand fails with ErrInsufficientStock.
func (c *Car) DecrementQuantity(n int) error {
	if n < 0 {
		return ErrInvalidQuantity
	}
	if n > c.Quantity {
		return ErrInsufficientStock
	}
	c.Quantity -= n
	return nil
}

// IncrementQuantity returns n units to stock.
func (c *Car) IncrementQuantity(n int) error {
	if n < 0 {
		return ErrInvalidQuantity
	}
	c.Quantity += n
	return nil
}

// CarRequest is the payload for both creating and updating a car.
type CarRequest struct {
	Make        string          `json:"make" binding:"required"`
	Model       string          `json:"model" binding:"required"`
	Year        string          `json:"year" binding:"required"`
	Color       string          `json:"color" binding:"required"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Quantity    int             `json:"quantity"`
}

// ImageQuery is the search text used to look up an image when the
// request does not supply one.
func (r CarRequest) ImageQuery() string {
	return r.Color + r.Year + r.Make + r.Model
}
