package models

// StockDecrement is one conditional write inside a checkout transaction:
// Stock = Stock - Quantity, guarded by Stock >= Quantity at commit time.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// CheckoutTransaction is the in-memory write-set for one checkout attempt:
// one decrement per distinct product plus exactly one order insert. It is
// never persisted on its own; it either commits entirely or not at all.
type CheckoutTransaction struct {
	Decrements []StockDecrement
	Order      Order
}

// CheckoutResult is what a committed checkout returns to the caller.
type CheckoutResult struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
}
