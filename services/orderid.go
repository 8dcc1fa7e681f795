package services

import "github.com/google/uuid"

// GenerateOrderID returns a collision-resistant order identifier. Every
// checkout attempt gets a fresh one; an aborted attempt's id is discarded,
// never reused.
func GenerateOrderID() string {
	return uuid.NewString()
}
