package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sari-store/sari-backend/models"
	"github.com/sari-store/sari-backend/services"
)

func TestBuildCheckoutTransaction_MergesDuplicateProducts(t *testing.T) {
	items := []models.CartItem{
		{UserID: "u1", ProductID: "A", Quantity: 1, UnitPrice: 50},
		{UserID: "u1", ProductID: "B", Quantity: 1, UnitPrice: 30},
		{UserID: "u1", ProductID: "A", Quantity: 1, UnitPrice: 50},
	}

	txn, err := services.BuildCheckoutTransaction(items, models.Order{OrderID: "o1"})
	require.NoError(t, err)

	// One decrement per distinct product, in first-seen order, quantities folded.
	require.Len(t, txn.Decrements, 2)
	assert.Equal(t, models.StockDecrement{ProductID: "A", Quantity: 2}, txn.Decrements[0])
	assert.Equal(t, models.StockDecrement{ProductID: "B", Quantity: 1}, txn.Decrements[1])
	assert.Equal(t, "o1", txn.Order.OrderID)
}

func TestBuildCheckoutTransaction_EmptyCart(t *testing.T) {
	_, err := services.BuildCheckoutTransaction(nil, models.Order{})
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestBuildCheckoutTransaction_NonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -3} {
		items := []models.CartItem{{ProductID: "A", Quantity: qty, UnitPrice: 10}}
		_, err := services.BuildCheckoutTransaction(items, models.Order{})
		assert.Error(t, err)
	}
}

func TestMergeQuantities_StableOrder(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "C", Quantity: 1},
		{ProductID: "A", Quantity: 2},
		{ProductID: "C", Quantity: 4},
		{ProductID: "B", Quantity: 1},
	}

	merged, err := services.MergeQuantities(items)
	require.NoError(t, err)

	require.Len(t, merged, 3)
	assert.Equal(t, "C", merged[0].ProductID)
	assert.Equal(t, 5, merged[0].Quantity)
	assert.Equal(t, "A", merged[1].ProductID)
	assert.Equal(t, "B", merged[2].ProductID)
}

func TestCartTotal(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "A", Quantity: 2, UnitPrice: 50},
		{ProductID: "B", Quantity: 1, UnitPrice: 30},
	}
	assert.InDelta(t, 130.0, models.CartTotal(items), 1e-9)
}

func TestDefaultFulfillment(t *testing.T) {
	d := models.DefaultFulfillment()
	assert.Equal(t, "Cash", d.PaymentMethod)
	assert.Equal(t, "PAID", d.PaymentStatus)
	assert.Equal(t, "Pickup", d.DeliveryMethod)
	assert.Equal(t, "PENDING", d.DeliveryStatus)
	assert.Equal(t, "ADB-405", d.PickupLocation)
}
