package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sari-store/sari-backend/controllers"
)

// RegisterRoutes registers the checkout service routes.
func RegisterRoutes(r *gin.Engine, checkout *controllers.CheckoutController) {
	cart := r.Group("/cart")
	{
		cart.POST("/checkout", checkout.Checkout)
	}

	orders := r.Group("/orders")
	{
		orders.GET("/:orderId", checkout.GetOrder)
	}
}
