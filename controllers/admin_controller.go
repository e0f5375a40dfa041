package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goyoulink/goyoulink_backend/config"
	customMiddleware "github.com/goyoulink/goyoulink_backend/middleware"
	"github.com/goyoulink/goyoulink_backend/models"
	"github.com/goyoulink/goyoulink_backend/repositories"
	"github.com/goyoulink/goyoulink_backend/services"
	"github.com/goyoulink/goyoulink_backend/utils"
)

// AdminController serves the administrative API: affiliate management, order
// oversight and payout creation. Everything that touches balances or order
// status still goes through the ledger; the controller never writes counters
// itself.
type AdminController struct {
	settings   *config.Settings
	affiliates *repositories.AffiliateRepository
	orders     *repositories.OrderRepository
	payouts    *repositories.PayoutRepository
	ledger     *services.Ledger
	email      *utils.EmailService
}

// NewAdminController creates the admin controller
func NewAdminController(settings *config.Settings, affiliates *repositories.AffiliateRepository, orders *repositories.OrderRepository, payouts *repositories.PayoutRepository, ledger *services.Ledger, email *utils.EmailService) *AdminController {
	return &AdminController{
		settings:   settings,
		affiliates: affiliates,
		orders:     orders,
		payouts:    payouts,
		ledger:     ledger,
		email:      email,
	}
}

func requestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Login authenticates the console credentials and issues a JWT
func (ac *AdminController) Login(c echo.Context) error {
	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Username and password are required",
		})
	}

	if req.Username != ac.settings.AdminUsername || !utils.CheckPassword(req.Password, ac.settings.AdminPassword) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	token, err := utils.GenerateJWT(req.Username, req.Username, customMiddleware.RoleAdmin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    models.LoginResponse{Token: token},
	})
}

// GetStats returns the dashboard headline numbers
func (ac *AdminController) GetStats(c echo.Context) error {
	ctx, cancel := requestCtx()
	defer cancel()

	activeAffiliates, err := ac.affiliates.CountByStatus(ctx, models.AffiliateStatusActive)
	if err != nil {
		return storeError(c, err)
	}
	totalOrders, err := ac.orders.Count(ctx, nil, "")
	if err != nil {
		return storeError(c, err)
	}
	pendingOrders, err := ac.orders.Count(ctx, nil, models.OrderStatusPending)
	if err != nil {
		return storeError(c, err)
	}
	totalSales, totalCommission, pendingCommission, err := ac.affiliates.SumBalances(ctx)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard stats retrieved",
		Data: models.DashboardStats{
			TotalAffiliates:   activeAffiliates,
			TotalOrders:       totalOrders,
			PendingOrders:     pendingOrders,
			TotalSales:        totalSales,
			TotalCommission:   totalCommission,
			PendingCommission: pendingCommission,
		},
	})
}

// ListAffiliates returns affiliates, optionally filtered by status or type
func (ac *AdminController) ListAffiliates(c echo.Context) error {
	ctx, cancel := requestCtx()
	defer cancel()

	affiliates, err := ac.affiliates.List(ctx, c.QueryParam("status"), c.QueryParam("type"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Affiliates retrieved",
		Data:    affiliates,
	})
}

// CreateAffiliate registers a new affiliate, generating codes when absent
func (ac *AdminController) CreateAffiliate(c echo.Context) error {
	var req models.CreateAffiliateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	refCode := req.RefCode
	if refCode == "" {
		generated, err := utils.GenerateRefCode()
		if err != nil {
			return storeError(c, err)
		}
		refCode = generated
	}

	shortCode, err := utils.GenerateShortCode()
	if err != nil {
		return storeError(c, err)
	}

	rate := ac.settings.DefaultCommissionRate
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
	}

	now := time.Now()
	affiliate := &models.Affiliate{
		Name:           req.Name,
		Email:          req.Email,
		Domain:         req.Domain,
		RefCode:        refCode,
		ShortCode:      shortCode,
		CommissionRate: rate,
		Status:         models.AffiliateStatusActive,
		Type:           req.Type,
		Social:         req.Social,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	ctx, cancel := requestCtx()
	defer cancel()

	if err := ac.affiliates.Insert(ctx, affiliate); err != nil {
		log.Printf("Error creating affiliate: %v", err)
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Failed to create affiliate, referral code may already be taken",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Affiliate created",
		Data:    affiliate,
	})
}

// GetAffiliate returns one affiliate's summary
func (ac *AdminController) GetAffiliate(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid affiliate ID",
		})
	}

	ctx, cancel := requestCtx()
	defer cancel()

	summary, err := ac.affiliateSummary(ctx, id)
	if err == services.ErrNotFound {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Affiliate not found",
		})
	}
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Affiliate retrieved",
		Data:    summary,
	})
}

func (ac *AdminController) affiliateSummary(ctx context.Context, id primitive.ObjectID) (*models.AffiliateSummary, error) {
	affiliate, err := ac.affiliates.AffiliateByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pendingCount, err := ac.orders.Count(ctx, &id, models.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	confirmedCount, err := ac.orders.Count(ctx, &id, models.OrderStatusConfirmed)
	if err != nil {
		return nil, err
	}

	return &models.AffiliateSummary{
		Affiliate:            affiliate,
		PendingOrdersCount:   pendingCount,
		ConfirmedOrdersCount: confirmedCount,
		ShortURL:             ac.settings.ShortURLDomain + "/" + affiliate.ShortCode,
	}, nil
}

// UpdateAffiliate edits an affiliate's profile. Commission rate changes only
// affect future orders; already-recorded orders keep their snapshotted rate.
func (ac *AdminController) UpdateAffiliate(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid affiliate ID",
		})
	}

	var req models.UpdateAffiliateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Domain != nil {
		set["domain"] = *req.Domain
	}
	if req.CommissionRate != nil {
		set["commissionRate"] = *req.CommissionRate
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if req.Social != nil {
		set["social"] = req.Social
	}

	if len(set) == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No fields to update",
		})
	}

	ctx, cancel := requestCtx()
	defer cancel()

	if err := ac.affiliates.Update(ctx, id, set); err != nil {
		if err == services.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Affiliate not found",
			})
		}
		return storeError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Affiliate updated",
	})
}

// ListOrders returns referral orders, optionally filtered by status
func (ac *AdminController) ListOrders(c echo.Context) error {
	ctx, cancel := requestCtx()
	defer cancel()

	orders, err := ac.orders.ListAll(ctx, c.QueryParam("status"), 100)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved",
		Data:    orders,
	})
}

// UpdateOrderStatus manually drives an order through the ledger state
// machine. The same transition rules apply as for webhooks; an illegal
// transition is reported, not forced.
func (ac *AdminController) UpdateOrderStatus(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order ID",
		})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || !models.IsValidOrderStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid status",
		})
	}

	ctx, cancel := requestCtx()
	defer cancel()

	order, err := ac.orders.OrderByID(ctx, id)
	if err == services.ErrNotFound {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Order not found",
		})
	}
	if err != nil {
		return storeError(c, err)
	}

	var applied bool
	switch req.Status {
	case models.OrderStatusConfirmed:
		applied, err = ac.ledger.ConfirmOrder(ctx, order.ShopifyOrderID)
	case models.OrderStatusCancelled:
		applied, err = ac.ledger.CancelOrder(ctx, order.ShopifyOrderID)
	case models.OrderStatusRefunded:
		applied, err = ac.ledger.RefundOrder(ctx, order.ShopifyOrderID)
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Orders cannot be moved back to pending",
		})
	}
	if err != nil {
		return storeError(c, err)
	}
	if !applied {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "No transition applied, order is already " + order.Status,
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order status updated",
	})
}

// ListPayouts returns recorded payouts
func (ac *AdminController) ListPayouts(c echo.Context) error {
	ctx, cancel := requestCtx()
	defer cancel()

	payouts, err := ac.payouts.ListAll(ctx, 100)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payouts retrieved",
		Data:    payouts,
	})
}

// CreatePayout records a commission disbursement through the ledger and
// notifies the affiliate by mail when SMTP is configured
func (ac *AdminController) CreatePayout(c echo.Context) error {
	var req models.CreatePayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	affiliateID, err := primitive.ObjectIDFromHex(req.AffiliateID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid affiliate ID",
		})
	}

	ctx, cancel := requestCtx()
	defer cancel()

	affiliate, err := ac.affiliates.AffiliateByID(ctx, affiliateID)
	if err == services.ErrNotFound {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Affiliate not found",
		})
	}
	if err != nil {
		return storeError(c, err)
	}

	payout, err := ac.ledger.ApplyPayout(ctx, affiliate, &req)
	if err == services.ErrInsufficientPending {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Payout exceeds pending commission",
		})
	}
	if err != nil {
		return storeError(c, err)
	}

	ac.email.SendPayoutNotification(affiliate.Email, affiliate.Name, payout.Amount, payout.Currency, payout.Reference)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Payout recorded",
		Data:    payout,
	})
}

func storeError(c echo.Context, err error) error {
	log.Printf("Store error: %v", err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Database error",
	})
}
