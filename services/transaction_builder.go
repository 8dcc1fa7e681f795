package services

import (
	"fmt"

	"github.com/sari-store/sari-backend/models"
)

// BuildCheckoutTransaction assembles the atomic write-set for one checkout:
// one conditional stock decrement per distinct product plus the order insert.
// Duplicate product lines are merged into a single decrement; DynamoDB
// rejects two operations on the same key within one transaction, so the
// merge happens here by construction, not as a store error. Decrement order
// follows first appearance in the cart, so the write-set is stable for a
// given cart.
//
// This is pure assembly: no I/O, and it only fails on malformed input
// (no lines, or a non-positive quantity).
func BuildCheckoutTransaction(items []models.CartItem, order models.Order) (*models.CheckoutTransaction, error) {
	merged, err := MergeQuantities(items)
	if err != nil {
		return nil, err
	}
	return &models.CheckoutTransaction{
		Decrements: merged,
		Order:      order,
	}, nil
}

// MergeQuantities folds cart lines into one decrement per distinct product,
// preserving first-seen product order.
func MergeQuantities(items []models.CartItem) ([]models.StockDecrement, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	index := make(map[string]int, len(items))
	merged := make([]models.StockDecrement, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for product %s", it.Quantity, it.ProductID)
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, models.StockDecrement{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return merged, nil
}
