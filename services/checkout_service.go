package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sari-store/sari-backend/models"
	awspkg "github.com/sari-store/sari-backend/pkg/aws"
	"github.com/sari-store/sari-backend/repository"
)

// CheckoutService turns a user's cart into a paid order. Each invocation is
// an independent unit of work: load the cart, pre-check stock, assemble the
// write-set, submit it atomically. Correctness under concurrent checkouts
// comes entirely from the store's conditional batch; there is no in-process
// locking, and an abort is surfaced to the caller rather than retried.
type CheckoutService struct {
	cartRepo    repository.CartRepository
	invRepo     repository.InventoryRepository
	orderRepo   repository.OrderRepository
	executor    repository.TransactionExecutor
	idempotency repository.IdempotencyStore
	snsClient   awspkg.SNSPublisher
	snsTopicArn string
	metrics     *awspkg.MetricsClient
	defaults    models.FulfillmentDefaults
	logger      *zap.Logger
}

func NewCheckoutService(
	cartRepo repository.CartRepository,
	invRepo repository.InventoryRepository,
	orderRepo repository.OrderRepository,
	executor repository.TransactionExecutor,
	defaults models.FulfillmentDefaults,
	logger *zap.Logger,
) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		cartRepo:  cartRepo,
		invRepo:   invRepo,
		orderRepo: orderRepo,
		executor:  executor,
		defaults:  defaults,
		logger:    logger,
	}
}

// WithIdempotency enables the replay guard: a checkout carrying a key the
// same user already committed under returns the recorded result instead of
// committing again.
func (s *CheckoutService) WithIdempotency(store repository.IdempotencyStore) *CheckoutService {
	s.idempotency = store
	return s
}

// WithNotifications enables the best-effort order.placed publish after commit.
func (s *CheckoutService) WithNotifications(client awspkg.SNSPublisher, topicArn string) *CheckoutService {
	s.snsClient = client
	s.snsTopicArn = topicArn
	return s
}

// WithMetrics enables CloudWatch business metrics.
func (s *CheckoutService) WithMetrics(metrics *awspkg.MetricsClient) *CheckoutService {
	s.metrics = metrics
	return s
}

// Checkout runs one checkout attempt for userID. idempotencyKey may be empty.
//
// Outcomes: a CheckoutResult on commit, or one of ErrMissingUserID,
// ErrEmptyCart, *InsufficientStockError (pre-check), *repository.
// TransactionAbortedError (lost the race at commit), *LookupError (store
// unreachable). An abort leaves no partial effects; the caller may start a
// fresh attempt, which re-reads the cart and stock and gets a new OrderID.
func (s *CheckoutService) Checkout(ctx context.Context, userID, idempotencyKey string) (*models.CheckoutResult, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	if idempotencyKey != "" && s.idempotency != nil {
		res, err := s.idempotency.Get(ctx, userID, idempotencyKey)
		if err != nil {
			// Degraded guard, not a checkout failure.
			s.logger.Warn("idempotency lookup failed", zap.Error(err), zap.String("user_id", userID))
		} else if res != nil {
			s.logger.Info("checkout replay served from idempotency record",
				zap.String("user_id", userID), zap.String("order_id", res.OrderID))
			return res, nil
		}
	}

	items, total, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.precheckStock(ctx, items); err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			s.count(ctx, awspkg.MetricCheckoutRejected, map[string]string{"Reason": "InsufficientStock"})
		}
		return nil, err
	}

	order := models.Order{
		OrderID:        GenerateOrderID(),
		UserID:         userID,
		CreatedAt:      time.Now().UTC(),
		Lines:          models.OrderLinesFromCart(items),
		TotalAmount:    total,
		PaymentMethod:  s.defaults.PaymentMethod,
		PaymentStatus:  s.defaults.PaymentStatus,
		DeliveryMethod: s.defaults.DeliveryMethod,
		DeliveryStatus: s.defaults.DeliveryStatus,
		PickupLocation: s.defaults.PickupLocation,
		ETA:            s.defaults.ETA,
	}

	txn, err := BuildCheckoutTransaction(items, order)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := s.executor.Execute(ctx, txn); err != nil {
		var aborted *repository.TransactionAbortedError
		if errors.As(err, &aborted) {
			s.logger.Warn("checkout transaction aborted",
				zap.String("user_id", userID),
				zap.String("order_id", order.OrderID),
				zap.String("product_id", aborted.ProductID),
				zap.String("reason", aborted.Reason))
			s.count(ctx, awspkg.MetricCheckoutAborted, nil)
		}
		return nil, err
	}

	result := &models.CheckoutResult{OrderID: order.OrderID, TotalAmount: total}

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.Put(ctx, userID, idempotencyKey, result); err != nil {
			s.logger.Warn("idempotency record failed", zap.Error(err), zap.String("order_id", order.OrderID))
		}
	}
	s.publishOrderPlaced(ctx, order)
	s.count(ctx, awspkg.MetricCheckoutCommitted, nil)
	if s.metrics != nil && s.metrics.IsEnabled() {
		_ = s.metrics.RecordLatency(ctx, awspkg.MetricCheckoutLatency, time.Since(start), nil)
	}

	s.logger.Info("checkout committed",
		zap.String("user_id", userID),
		zap.String("order_id", order.OrderID),
		zap.Float64("total", total),
		zap.Int("products", len(txn.Decrements)))
	return result, nil
}

// LookupOrder fetches a committed order. Callers use it to resolve an
// indeterminate checkout outcome before deciding whether to resubmit.
func (s *CheckoutService) LookupOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, err
		}
		return nil, &LookupError{Resource: "order", Err: err}
	}
	return order, nil
}

// loadCart aggregates the user's cart lines and their total.
func (s *CheckoutService) loadCart(ctx context.Context, userID string) ([]models.CartItem, float64, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, &LookupError{Resource: "cart", Err: err}
	}
	if len(items) == 0 {
		return nil, 0, ErrEmptyCart
	}
	return items, models.CartTotal(items), nil
}

// precheckStock is the fast-fail read: it rejects the checkout on the first
// product whose recorded stock cannot cover the merged requested quantity.
// Stock may still change before commit; the conditional decrement is the
// authority.
func (s *CheckoutService) precheckStock(ctx context.Context, items []models.CartItem) error {
	merged, err := MergeQuantities(items)
	if err != nil {
		return err
	}
	for _, dec := range merged {
		stock, err := s.invRepo.GetStock(ctx, dec.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrInventoryNotFound) {
				// No stock record reads as zero stock, as in the legacy system.
				stock = 0
			} else {
				return &LookupError{Resource: "inventory", Err: err}
			}
		}
		if stock < dec.Quantity {
			return &InsufficientStockError{
				ProductID: dec.ProductID,
				Requested: dec.Quantity,
				Available: stock,
			}
		}
	}
	return nil
}

func (s *CheckoutService) publishOrderPlaced(ctx context.Context, order models.Order) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		return
	}
	event := models.OrderPlacedEvent{
		Event:       "order.placed",
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Timestamp:   order.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("marshal order.placed event failed", zap.Error(err))
		return
	}
	if err := s.snsClient.Publish(ctx, s.snsTopicArn, payload); err != nil {
		// Best-effort: the order is committed regardless.
		s.logger.Warn("order.placed publish failed", zap.Error(err), zap.String("order_id", order.OrderID))
	}
}

func (s *CheckoutService) count(ctx context.Context, metric string, dims map[string]string) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	_ = s.metrics.RecordCount(ctx, metric, dims)
}
