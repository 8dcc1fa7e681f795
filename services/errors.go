package services

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned when checkout is invoked for a user with no cart
// lines. Nothing has been written when this is returned.
var ErrEmptyCart = errors.New("cart is empty")

// ErrMissingUserID is returned for a checkout request with no user id.
var ErrMissingUserID = errors.New("user id is required")

// InsufficientStockError is the advisory pre-check failure: at read time the
// recorded stock could not cover the requested quantity. The authoritative
// check is still the conditional decrement at commit.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// LookupError wraps a store read failure with the resource being read, so
// infrastructure faults stay distinguishable from business outcomes without
// leaking store wire errors to the end caller.
type LookupError struct {
	Resource string
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Resource, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
