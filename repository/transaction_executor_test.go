package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sari-store/sari-backend/models"
)

func sampleTransaction() *models.CheckoutTransaction {
	return &models.CheckoutTransaction{
		Decrements: []models.StockDecrement{
			{ProductID: "A", Quantity: 2},
			{ProductID: "B", Quantity: 1},
		},
		Order: models.Order{
			OrderID:   "order-1",
			UserID:    "2021-00123",
			CreatedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
			Lines: []models.OrderLine{
				{ProductID: "A", Quantity: 2, UnitPrice: 50},
				{ProductID: "B", Quantity: 1, UnitPrice: 30},
			},
			TotalAmount:    130,
			PaymentMethod:  models.PaymentMethodCash,
			PaymentStatus:  models.PaymentStatusPaid,
			DeliveryMethod: models.DeliveryMethodPickup,
			DeliveryStatus: models.DeliveryStatusPending,
			PickupLocation: models.DefaultPickupLocation,
			ETA:            models.DefaultDeliveryWindow,
		},
	}
}

func TestBuildTransactItems(t *testing.T) {
	txn := sampleTransaction()

	items, err := buildTransactItems(txn, "Sari-inventory", "Sari-orders")
	require.NoError(t, err)

	// One conditional update per decrement, the order put last.
	require.Len(t, items, 3)

	for i, dec := range txn.Decrements {
		update := items[i].Update
		require.NotNil(t, update, "item %d should be an Update", i)
		assert.Equal(t, "Sari-inventory", *update.TableName)
		assert.Equal(t, "SET Stock = Stock - :qty", *update.UpdateExpression)
		assert.Equal(t, "Stock >= :qty", *update.ConditionExpression)

		keyAV, ok := update.Key["ProductID"].(*types.AttributeValueMemberS)
		require.True(t, ok)
		assert.Equal(t, dec.ProductID, keyAV.Value)

		qtyAV, ok := update.ExpressionAttributeValues[":qty"].(*types.AttributeValueMemberN)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("%d", dec.Quantity), qtyAV.Value)
	}

	put := items[2].Put
	require.NotNil(t, put)
	assert.Equal(t, "Sari-orders", *put.TableName)

	orderIDAV, ok := put.Item["OrderID"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "order-1", orderIDAV.Value)

	// Legacy attribute names carried from the original tables.
	userAV, ok := put.Item["StudentID"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "2021-00123", userAV.Value)
	_, ok = put.Item["TotalPayment"].(*types.AttributeValueMemberN)
	assert.True(t, ok)
	_, ok = put.Item["MOP"].(*types.AttributeValueMemberS)
	assert.True(t, ok)

	// Line items are written under the legacy Cart attribute.
	cartAV, ok := put.Item["Cart"].(*types.AttributeValueMemberL)
	require.True(t, ok)
	require.Len(t, cartAV.Value, 2)
	line, ok := cartAV.Value[0].(*types.AttributeValueMemberM)
	require.True(t, ok)
	lineProduct, ok := line.Value["ProductID"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "A", lineProduct.Value)
	_, ok = line.Value["Quantity"].(*types.AttributeValueMemberN)
	assert.True(t, ok)
	_, ok = line.Value["Price"].(*types.AttributeValueMemberN)
	assert.True(t, ok)
}

func TestBuildTransactItems_NoDecrements(t *testing.T) {
	txn := &models.CheckoutTransaction{Order: models.Order{OrderID: "o"}}
	_, err := buildTransactItems(txn, "inv", "orders")
	assert.Error(t, err)
}

func TestBuildTransactItems_TooManyItems(t *testing.T) {
	txn := &models.CheckoutTransaction{Order: models.Order{OrderID: "o"}}
	for i := 0; i < maxTransactItems; i++ {
		txn.Decrements = append(txn.Decrements, models.StockDecrement{
			ProductID: fmt.Sprintf("p-%d", i),
			Quantity:  1,
		})
	}
	_, err := buildTransactItems(txn, "inv", "orders")
	assert.Error(t, err)
}

func TestAbortError_NamesLosingProduct(t *testing.T) {
	txn := sampleTransaction()

	cause := &types.TransactionCanceledException{
		Message: aws.String("Transaction cancelled"),
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
		},
	}

	err := abortError(txn, cause)

	var aborted *TransactionAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, "B", aborted.ProductID)
	assert.Equal(t, "stock precondition failed", aborted.Reason)
	assert.ErrorIs(t, err, cause)
}

func TestAbortError_ConditionalFailureOnOrderPutIsGeneric(t *testing.T) {
	txn := sampleTransaction()

	// Only the order put (last item) failed its condition; no product can be
	// blamed.
	cause := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}

	err := abortError(txn, cause)

	var aborted *TransactionAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Empty(t, aborted.ProductID)
}

func TestAbortError_Conflict(t *testing.T) {
	txn := sampleTransaction()
	err := abortError(txn, &types.TransactionConflictException{})

	var aborted *TransactionAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Empty(t, aborted.ProductID)
	assert.Equal(t, "transaction conflict", aborted.Reason)
}

func TestAbortError_GenericRejection(t *testing.T) {
	txn := sampleTransaction()
	cause := errors.New("throughput exceeded")

	err := abortError(txn, cause)

	var aborted *TransactionAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, "store rejected transaction", aborted.Reason)
	assert.ErrorIs(t, err, cause)
}
