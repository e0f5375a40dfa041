package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goyoulink/goyoulink_backend/config"
	"github.com/goyoulink/goyoulink_backend/models"
	"github.com/goyoulink/goyoulink_backend/services"
)

// RedirectController is the short-link front door. It never surfaces an error
// to the visitor: anything that goes wrong degrades to a plain redirect to
// the storefront without attribution.
type RedirectController struct {
	settings *config.Settings
	clicks   *services.ClickRecorder
}

// NewRedirectController creates the redirect controller
func NewRedirectController(settings *config.Settings, clicks *services.ClickRecorder) *RedirectController {
	return &RedirectController{settings: settings, clicks: clicks}
}

// Redirect resolves a short code, records the click and 302s to the
// storefront with the affiliate's ref code attached. An optional trailing
// path is carried over, e.g. /abc123/products/yokumoku-cigare →
// <target>/products/yokumoku-cigare?ref=<refCode>. The ?src= query parameter
// tags the click's traffic source.
func (rc *RedirectController) Redirect(c echo.Context) error {
	shortCode := c.Param("code")
	productPath := c.Param("*")

	target := rc.settings.RedirectTarget
	if productPath != "" {
		target = target + "/" + productPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	affiliate, err := rc.clicks.Record(ctx, shortCode, services.ClickMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		Referer:   c.Request().Referer(),
		LandedURL: c.Request().RequestURI,
		Source:    models.SourceFromAlias(c.QueryParam("src")),
	})
	if err != nil {
		log.Printf("Error recording click for short code %s: %v", shortCode, err)
	}
	if affiliate == nil {
		// Unknown or inactive short code, send the visitor on their way.
		return c.Redirect(http.StatusFound, target)
	}

	return c.Redirect(http.StatusFound, target+"?ref="+affiliate.RefCode)
}
