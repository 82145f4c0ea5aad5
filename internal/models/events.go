package models

import "github.com/shopspring/decimal"

// OrderEvent is published after an order mutation commits. Consumers use
// the car ids to invalidate catalog cache entries whose quantities moved.
type OrderEvent struct {
	OrderID string           `json:"order_id"`
	CustID  string           `json:"cust_id,omitempty"`
	Total   decimal.Decimal  `json:"total"`
	Lines   []OrderLineEvent `json:"lines"`
}

type OrderLineEvent struct {
	CarID    string `json:"car_id"`
	Quantity int    `json:"quantity"`
}
