package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sari-store/sari-backend/models"
	"github.com/sari-store/sari-backend/repository"
	"github.com/sari-store/sari-backend/services"
)

// CheckoutAPI is what the HTTP adapter needs from the checkout core.
type CheckoutAPI interface {
	Checkout(ctx context.Context, userID, idempotencyKey string) (*models.CheckoutResult, error)
	LookupOrder(ctx context.Context, orderID string) (*models.Order, error)
}

// CheckoutController maps checkout outcomes onto the HTTP surface. The
// outcome taxonomy stays visible to callers: an insufficient-stock pre-check
// failure and a lost commit race get distinct error codes so clients can
// react differently.
type CheckoutController struct {
	service CheckoutAPI
}

func NewCheckoutController(service CheckoutAPI) *CheckoutController {
	return &CheckoutController{service: service}
}

type checkoutRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Checkout handles POST /cart/checkout.
func (cc *CheckoutController) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	idempotencyKey := c.GetHeader("X-Idempotency-Key")

	result, err := cc.service.Checkout(c.Request.Context(), req.UserID, idempotencyKey)
	if err != nil {
		cc.writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Transaction successful.",
		"order_id":     result.OrderID,
		"total_amount": result.TotalAmount,
	})
}

func (cc *CheckoutController) writeCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingUserID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required", "code": "missing_user_id"})
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty.", "code": "empty_cart"})
	default:
		var stockErr *services.InsufficientStockError
		var aborted *repository.TransactionAbortedError
		var lookup *services.LookupError
		switch {
		case errors.As(err, &stockErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":      "Insufficient stock",
				"code":       "insufficient_stock",
				"product_id": stockErr.ProductID,
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			})
		case errors.As(err, &aborted):
			resp := gin.H{
				"error": "Checkout conflicted with a concurrent order. Please try again.",
				"code":  "transaction_aborted",
			}
			if aborted.ProductID != "" {
				resp["product_id"] = aborted.ProductID
			}
			c.JSON(http.StatusConflict, resp)
		case errors.As(err, &lookup):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store temporarily unavailable", "code": "lookup_failure"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout failed", "code": "internal"})
		}
	}
}

// GetOrder handles GET /orders/:orderId. Callers use it after an
// indeterminate checkout outcome to confirm whether the order committed.
func (cc *CheckoutController) GetOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order ID"})
		return
	}

	order, err := cc.service.LookupOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, order)
}
