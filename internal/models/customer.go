package models

import "time"

// Customer identity comes from the caller, not the store. A customer row
// is created lazily the first time an order references an unknown id.
type Customer struct {
	CustID      string    `json:"cust_id"`
	DateCreated time.Time `json:"date_created"`
}
