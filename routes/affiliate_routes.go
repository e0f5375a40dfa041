package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/goyoulink/goyoulink_backend/controllers"
	"github.com/goyoulink/goyoulink_backend/middleware"
)

// RegisterAffiliateRoutes sets up the partner portal API
func RegisterAffiliateRoutes(e *echo.Echo, affiliateController *controllers.AffiliateController) {
	e.POST("/api/partner/login", affiliateController.Login)

	r := e.Group("/api/partner")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireRole(middleware.RolePartner))

	r.GET("/stats", affiliateController.GetStats)
	r.GET("/orders", affiliateController.GetOrders)
	r.GET("/clicks", affiliateController.GetClicks)
	r.GET("/payouts", affiliateController.GetPayouts)
	r.GET("/links", affiliateController.GetLinks)
}
