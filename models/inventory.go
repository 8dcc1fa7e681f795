package models

import "time"

// Inventory represents the stock record of a product in DynamoDB.
// Stock never goes negative: it is only mutated through the conditional
// decrement inside a checkout transaction.
type Inventory struct {
	ProductID string    `json:"product_id"`
	Stock     int       `json:"stock"`
	UpdatedAt time.Time `json:"updated_at"`
}
