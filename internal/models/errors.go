package models

import "errors"

// Domain error kinds. Mutation handlers collapse all of these to the
// generic wire response; the concrete kind is only logged server-side.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCarInUse          = errors.New("car is referenced by open orders")
)
