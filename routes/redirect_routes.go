package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/goyoulink/goyoulink_backend/controllers"
)

// RegisterRedirectRoutes sets up the short-link front door. Registered last
// so the catch-all :code parameter cannot shadow the API routes.
func RegisterRedirectRoutes(e *echo.Echo, redirectController *controllers.RedirectController) {
	e.GET("/:code", redirectController.Redirect)
	e.GET("/:code/*", redirectController.Redirect)
}
