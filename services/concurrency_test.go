package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sari-store/sari-backend/models"
	"github.com/sari-store/sari-backend/repository"
	"github.com/sari-store/sari-backend/services"
)

// memoryStore emulates the store's atomic conditional batch: all decrements
// are checked and applied together with the order insert under one lock, or
// nothing is applied at all. It backs both the executor and the inventory
// reads so concurrent checkouts race exactly as they would against DynamoDB.
type memoryStore struct {
	mu     sync.Mutex
	stock  map[string]int
	orders map[string]models.Order
}

func newMemoryStore(stock map[string]int) *memoryStore {
	s := &memoryStore{stock: make(map[string]int), orders: make(map[string]models.Order)}
	for k, v := range stock {
		s.stock[k] = v
	}
	return s
}

func (s *memoryStore) Execute(_ context.Context, txn *models.CheckoutTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dec := range txn.Decrements {
		if s.stock[dec.ProductID] < dec.Quantity {
			return &repository.TransactionAbortedError{
				ProductID: dec.ProductID,
				Reason:    "stock precondition failed",
			}
		}
	}
	if _, exists := s.orders[txn.Order.OrderID]; exists {
		return &repository.TransactionAbortedError{Reason: "order already exists"}
	}
	for _, dec := range txn.Decrements {
		s.stock[dec.ProductID] -= dec.Quantity
	}
	s.orders[txn.Order.OrderID] = txn.Order
	return nil
}

func (s *memoryStore) GetStock(_ context.Context, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stock, ok := s.stock[productID]
	if !ok {
		return 0, repository.ErrInventoryNotFound
	}
	return stock, nil
}

func (s *memoryStore) Put(_ context.Context, inv *models.Inventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[inv.ProductID] = inv.Stock
	return nil
}

func (s *memoryStore) snapshot() (map[string]int, map[string]models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stock := make(map[string]int, len(s.stock))
	for k, v := range s.stock {
		stock[k] = v
	}
	orders := make(map[string]models.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = v
	}
	return stock, orders
}

func TestCheckout_NoOversellingUnderConcurrency(t *testing.T) {
	const (
		initialStock = 5
		attempts     = 20
	)

	store := newMemoryStore(map[string]int{"A": initialStock})

	var wg sync.WaitGroup
	committed := make(chan string, attempts)
	for i := 0; i < attempts; i++ {
		userID := fmt.Sprintf("user-%d", i)
		cart := &mockCartRepo{items: []models.CartItem{
			{UserID: userID, ProductID: "A", Quantity: 1, UnitPrice: 15},
		}}
		svc := services.NewCheckoutService(cart, store, &mockOrderRepo{}, store,
			models.DefaultFulfillment(), zap.NewNop())

		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Checkout(context.Background(), userID, "")
			if err == nil {
				committed <- res.OrderID
				return
			}
			// Losers must fail with a stock outcome, never anything else.
			var stockErr *services.InsufficientStockError
			var aborted *repository.TransactionAbortedError
			if !errors.As(err, &stockErr) && !errors.As(err, &aborted) {
				t.Errorf("unexpected checkout failure: %v", err)
			}
		}()
	}
	wg.Wait()
	close(committed)

	var orderIDs []string
	for id := range committed {
		orderIDs = append(orderIDs, id)
	}

	stock, orders := store.snapshot()

	// Committed decrements never exceed the initial stock, and stock never
	// goes negative.
	assert.LessOrEqual(t, len(orderIDs), initialStock)
	assert.GreaterOrEqual(t, stock["A"], 0)
	assert.Equal(t, initialStock-len(orderIDs), stock["A"])

	// Exactly one order per commit, all ids distinct.
	require.Len(t, orders, len(orderIDs))
	seen := make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		_, dup := seen[id]
		require.False(t, dup, "duplicate order id %s", id)
		seen[id] = struct{}{}
		_, ok := orders[id]
		assert.True(t, ok, "committed order %s missing from store", id)
	}
}

func TestExecute_AbortLeavesNoPartialState(t *testing.T) {
	store := newMemoryStore(map[string]int{"A": 3, "B": 0})

	// A's decrement would succeed on its own; B's precondition fails, so the
	// whole batch must discard with A untouched and no order visible.
	txn := &models.CheckoutTransaction{
		Decrements: []models.StockDecrement{
			{ProductID: "A", Quantity: 2},
			{ProductID: "B", Quantity: 1},
		},
		Order: models.Order{OrderID: "order-abort", UserID: "u1"},
	}

	err := store.Execute(context.Background(), txn)

	var aborted *repository.TransactionAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, "B", aborted.ProductID)

	stock, orders := store.snapshot()
	assert.Equal(t, 3, stock["A"])
	assert.Equal(t, 0, stock["B"])
	assert.Empty(t, orders)
}
