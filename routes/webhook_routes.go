package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/goyoulink/goyoulink_backend/controllers"
)

// RegisterWebhookRoutes sets up the order platform webhook endpoints. These
// carry their own HMAC authentication, not JWT.
func RegisterWebhookRoutes(e *echo.Echo, webhookController *controllers.WebhookController) {
	g := e.Group("/webhook")

	g.POST("/shopify/orders/create", webhookController.HandleOrderCreate)
	g.POST("/shopify/orders/fulfilled", webhookController.HandleOrderFulfilled)
	g.POST("/shopify/orders/cancelled", webhookController.HandleOrderCancelled)
	g.POST("/shopify/refunds/create", webhookController.HandleRefundCreate)

	g.GET("/test", webhookController.HandleTest)
	g.POST("/test", webhookController.HandleTest)
}
