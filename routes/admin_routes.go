package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/goyoulink/goyoulink_backend/controllers"
	"github.com/goyoulink/goyoulink_backend/middleware"
	"github.com/goyoulink/goyoulink_backend/websocket"
)

// RegisterAdminRoutes sets up the administrative API
func RegisterAdminRoutes(e *echo.Echo, adminController *controllers.AdminController, hub *websocket.Hub) {
	e.POST("/api/admin/login", adminController.Login)

	r := e.Group("/api/admin")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireRole(middleware.RoleAdmin))

	r.GET("/stats", adminController.GetStats)

	r.GET("/affiliates", adminController.ListAffiliates)
	r.POST("/affiliates", adminController.CreateAffiliate)
	r.GET("/affiliates/:id", adminController.GetAffiliate)
	r.PUT("/affiliates/:id", adminController.UpdateAffiliate)

	r.GET("/orders", adminController.ListOrders)
	r.POST("/orders/:id/status", adminController.UpdateOrderStatus)

	r.GET("/payouts", adminController.ListPayouts)
	r.POST("/payouts", adminController.CreatePayout)

	r.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub)
	})
}
