package models

import "time"

// Payment / delivery states an order starts out in. Status transitions after
// checkout are owned by other systems; this service only ever creates orders.
const (
	PaymentStatusPaid     = "PAID"
	DeliveryStatusPending = "PENDING"
	PaymentMethodCash     = "Cash"
	DeliveryMethodPickup  = "Pickup"
	DefaultPickupLocation = "ADB-405"
	DefaultDeliveryWindow = "Tomorrow"
)

// Order is created exactly once per successful checkout and never mutated
// here afterwards.
type Order struct {
	OrderID        string      `json:"order_id"`
	UserID         string      `json:"user_id"`
	CreatedAt      time.Time   `json:"created_at"`
	Lines          []OrderLine `json:"lines"`
	TotalAmount    float64     `json:"total_amount"`
	PaymentMethod  string      `json:"payment_method"`
	PaymentStatus  string      `json:"payment_status"`
	DeliveryMethod string      `json:"delivery_method"`
	DeliveryStatus string      `json:"delivery_status"`
	PickupLocation string      `json:"pickup_location"`
	ETA            string      `json:"eta"`
}

// OrderLine is one purchased cart line frozen onto the order, making the
// order self-describing without a read back to the cart table.
type OrderLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderLinesFromCart snapshots cart lines as order lines.
func OrderLinesFromCart(items []CartItem) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return lines
}

// FulfillmentDefaults carries the payment/delivery metadata stamped onto new
// orders. The campus store is cash-and-pickup today, but the values are
// configuration, not constants baked into the checkout path.
type FulfillmentDefaults struct {
	PaymentMethod  string
	PaymentStatus  string
	DeliveryMethod string
	DeliveryStatus string
	PickupLocation string
	ETA            string
}

// DefaultFulfillment mirrors the store's current fixed setup.
func DefaultFulfillment() FulfillmentDefaults {
	return FulfillmentDefaults{
		PaymentMethod:  PaymentMethodCash,
		PaymentStatus:  PaymentStatusPaid,
		DeliveryMethod: DeliveryMethodPickup,
		DeliveryStatus: DeliveryStatusPending,
		PickupLocation: DefaultPickupLocation,
		ETA:            DefaultDeliveryWindow,
	}
}

// OrderPlacedEvent is the notification published (best-effort) after a
// checkout commits.
type OrderPlacedEvent struct {
	Event       string    `json:"event"` // "order.placed"
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}
