package models

// CartItem is a single line in a user's cart. Lines are keyed by ItemID in
// the cart table; (UserID, ProductID) is the natural dedup key but nothing
// enforces it, so checkout merges duplicate product lines before committing.
type CartItem struct {
	ItemID    string  `json:"item_id"`
	UserID    string  `json:"user_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CartTotal computes the order total over a set of cart lines.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}
