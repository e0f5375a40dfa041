package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goyoulink/goyoulink_backend/config"
	customMiddleware "github.com/goyoulink/goyoulink_backend/middleware"
	"github.com/goyoulink/goyoulink_backend/models"
	"github.com/goyoulink/goyoulink_backend/repositories"
	"github.com/goyoulink/goyoulink_backend/services"
	"github.com/goyoulink/goyoulink_backend/utils"
)

// AffiliateController serves the partner portal API. Partners authenticate
// with their referral code and can read their own stats, orders, clicks and
// payouts; nothing here writes to the ledger.
type AffiliateController struct {
	settings   *config.Settings
	affiliates *repositories.AffiliateRepository
	orders     *repositories.OrderRepository
	clicks     *repositories.ClickRepository
	payouts    *repositories.PayoutRepository
}

// NewAffiliateController creates the partner portal controller
func NewAffiliateController(settings *config.Settings, affiliates *repositories.AffiliateRepository, orders *repositories.OrderRepository, clicks *repositories.ClickRepository, payouts *repositories.PayoutRepository) *AffiliateController {
	return &AffiliateController{
		settings:   settings,
		affiliates: affiliates,
		orders:     orders,
		clicks:     clicks,
		payouts:    payouts,
	}
}

// Login exchanges an active referral code for a partner session token
func (pc *AffiliateController) Login(c echo.Context) error {
	var req models.PartnerLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Referral code is required",
		})
	}

	ctx, cancel := requestCtx()
	defer cancel()

	affiliate, err := pc.affiliates.AffiliateByRefCode(ctx, req.RefCode)
	if err == services.ErrNotFound {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Referral code invalid or deactivated",
		})
	}
	if err != nil {
		return storeError(c, err)
	}
	if affiliate.Status != models.AffiliateStatusActive {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Referral code invalid or deactivated",
		})
	}

	token, err := utils.GenerateJWT(affiliate.ID.Hex(), affiliate.Name, customMiddleware.RolePartner)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    models.LoginResponse{Token: token, Name: affiliate.Name},
	})
}

// sessionAffiliate resolves the authenticated partner from the JWT claims
func (pc *AffiliateController) sessionAffiliate(ctx context.Context, c echo.Context) (*models.Affiliate, error) {
	subjectID, ok := c.Get("subjectId").(string)
	if !ok {
		return nil, services.ErrNotFound
	}
	id, err := primitive.ObjectIDFromHex(subjectID)
	if err != nil {
		return nil, services.ErrNotFound
	}
	return pc.affiliates.AffiliateByID(ctx, id)
}

// GetStats returns the partner's summary plus per-source click counts
func (pc *AffiliateController) GetStats(c echo.Context) error {
	ctx, cancel := requestCtx()
	defer cancel()

	affiliate, err := pc.sessionAffiliate(ctx, c)
	if err == services.ErrNotFound {
		return sessionExpired(c)
	}
	if err != nil {
		return storeError(c, err)
	}

	pendingCount, err := pc.orders.Count(ctx, &affiliate.ID, models.OrderStatusPending)
	if err != nil {
		return storeError(c, err)
	}
	confirmedCount, err := pc.orders.Count(ctx, &affiliate.ID, models.OrderStatusConfirmed)
	if err != nil {
		return storeError(c, err)
	}
	clicksBySource, err := pc.clicks.CountBySource(ctx, affiliate.ID)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Stats retrieved",
		Data: map[string]interface{}{
			"summary": models.AffiliateSummary{
				Affiliate:            affiliate,
				PendingOrdersCount:   pendingCount,
				ConfirmedOrdersCount: confirmedCount,
				ShortURL:             pc.settings.ShortURLDomain + "/" + affiliate.ShortCode,
			},
			"clicksBySource": clicksBySource,
		},
	})
}

// GetOrders returns the partner's referral orders
func (pc *AffiliateController) GetOrders(c echo.Context) error {
	ctx, cancel := requestCtx()
	defer cancel()

	affiliate, err := pc.sessionAffiliate(ctx, c)
	if err == services.ErrNotFound {
		return sessionExpired(c)
	}
	if err != nil {
		return storeError(c, err)
	}

	orders, err := pc.orders.ListByAffiliate(ctx, affiliate.ID, c.QueryParam("status"), 100)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved",
		Data:    orders,
	})
}

// GetClicks returns the partner's recent clicks
func (pc *AffiliateController) GetClicks(c echo.Context) error {
	ctx, cancel := requestCtx()
	defer cancel()

	affiliate, err := pc.sessionAffiliate(ctx, c)
	if err == services.ErrNotFound {
		return sessionExpired(c)
	}
	if err != nil {
		return storeError(c, err)
	}

	clicks, err := pc.clicks.ListByAffiliate(ctx, affiliate.ID, 100)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Clicks retrieved",
		Data:    clicks,
	})
}

// GetPayouts returns the partner's payout history
func (pc *AffiliateController) GetPayouts(c echo.Context) error {
	ctx, cancel := requestCtx()
	defer cancel()

	affiliate, err := pc.sessionAffiliate(ctx, c)
	if err == services.ErrNotFound {
		return sessionExpired(c)
	}
	if err != nil {
		return storeError(c, err)
	}

	payouts, err := pc.payouts.ListByAffiliate(ctx, affiliate.ID, 100)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payouts retrieved",
		Data:    payouts,
	})
}

// GetLinks returns the partner's promotion URLs
func (pc *AffiliateController) GetLinks(c echo.Context) error {
	ctx, cancel := requestCtx()
	defer cancel()

	affiliate, err := pc.sessionAffiliate(ctx, c)
	if err == services.ErrNotFound {
		return sessionExpired(c)
	}
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Links retrieved",
		Data: models.PartnerLinks{
			ShortURL:  pc.settings.ShortURLDomain + "/" + affiliate.ShortCode,
			DirectURL: pc.settings.RedirectTarget + "?ref=" + affiliate.RefCode,
		},
	})
}

func sessionExpired(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Status:  http.StatusUnauthorized,
		Message: "Session expired, please log in again",
	})
}
