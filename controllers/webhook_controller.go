package controllers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goyoulink/goyoulink_backend/config"
	"github.com/goyoulink/goyoulink_backend/models"
	"github.com/goyoulink/goyoulink_backend/services"
	"github.com/goyoulink/goyoulink_backend/utils"
)

// SignatureHeader is the HMAC header the order platform signs webhooks with
const SignatureHeader = "X-Shopify-Hmac-Sha256"

// WebhookController is the inbound event ingestion pipeline. Each handler:
// verify the signature over the raw body, parse the tolerant payload, then
// hand the event to the ledger. Business no-ops (unattributed orders, unknown
// order ids, replayed webhooks) are acknowledged with 200 so the platform
// never retries them; only signature failures, malformed payloads and store
// failures are reported as errors.
type WebhookController struct {
	settings   *config.Settings
	affiliates services.AffiliateStore
	resolver   *services.AttributionResolver
	ledger     *services.Ledger
}

// NewWebhookController creates the webhook controller
func NewWebhookController(settings *config.Settings, affiliates services.AffiliateStore, resolver *services.AttributionResolver, ledger *services.Ledger) *WebhookController {
	return &WebhookController{
		settings:   settings,
		affiliates: affiliates,
		resolver:   resolver,
		ledger:     ledger,
	}
}

// readAndVerify reads the raw body and checks the webhook signature against
// it. Verification must use the bytes exactly as received; a re-serialized
// payload would not match the platform's signature.
func (wc *WebhookController) readAndVerify(c echo.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, false
	}
	signature := c.Request().Header.Get(SignatureHeader)
	return body, utils.VerifyWebhookSignature(wc.settings.ShopifyWebhookSecret, body, signature)
}

func webhookCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func ack(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, models.WebhookResponse{Status: "ok", Message: message})
}

// HandleOrderCreate processes the order-created webhook: resolve attribution,
// and when a known active affiliate is responsible, record the referral order
func (wc *WebhookController) HandleOrderCreate(c echo.Context) error {
	body, ok := wc.readAndVerify(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
	}

	ev, err := models.ParseOrderEvent(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}

	ctx, cancel := webhookCtx()
	defer cancel()

	attribution, err := wc.resolver.Resolve(ctx, ev)
	if err != nil {
		log.Printf("Error resolving attribution for order %s: %v", ev.ID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Store error"})
	}
	if attribution.Code == "" {
		return ack(c, "No referral code")
	}

	affiliate, err := wc.affiliates.AffiliateByRefCode(ctx, attribution.Code)
	if err == services.ErrNotFound {
		return ack(c, "Invalid referral code")
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Store error"})
	}
	if affiliate.Status != models.AffiliateStatusActive {
		return ack(c, "Affiliate inactive")
	}

	total, err := ev.TotalPrice.Float64()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}

	currency := ev.Currency
	if currency == "" {
		currency = "JPY"
	}

	order, err := wc.ledger.RecordOrder(ctx, affiliate, services.NewOrderInput{
		ShopifyOrderID: ev.ID.String(),
		OrderNumber:    ev.Name,
		OrderTotal:     total,
		Currency:       currency,
		CustomerEmail:  ev.Email,
		OrderCreatedAt: ev.CreatedAt,
	})
	if err == services.ErrDuplicateOrder {
		return ack(c, "Order already exists")
	}
	if err != nil {
		log.Printf("Error recording referral order %s: %v", ev.ID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Store error"})
	}

	return c.JSON(http.StatusOK, models.WebhookResponse{
		Status:  "ok",
		Message: "Referral order created",
		OrderID: order.ID.Hex(),
	})
}

// HandleOrderFulfilled processes the fulfillment webhook, confirming the
// order's commission
func (wc *WebhookController) HandleOrderFulfilled(c echo.Context) error {
	return wc.handleTransition(c, "Order confirmed", wc.ledger.ConfirmOrder)
}

// HandleOrderCancelled processes the cancellation webhook
func (wc *WebhookController) HandleOrderCancelled(c echo.Context) error {
	return wc.handleTransition(c, "Order cancelled", wc.ledger.CancelOrder)
}

func (wc *WebhookController) handleTransition(c echo.Context, appliedMessage string, transition func(context.Context, string) (bool, error)) error {
	body, ok := wc.readAndVerify(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
	}

	ev, err := models.ParseOrderEvent(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}

	ctx, cancel := webhookCtx()
	defer cancel()

	applied, err := transition(ctx, ev.ID.String())
	if err != nil {
		log.Printf("Error transitioning order %s: %v", ev.ID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Store error"})
	}
	if !applied {
		return ack(c, "No action needed")
	}
	return ack(c, appliedMessage)
}

// HandleRefundCreate processes the refund-created webhook. The payload
// references the refunded order through order_id, not id.
func (wc *WebhookController) HandleRefundCreate(c echo.Context) error {
	body, ok := wc.readAndVerify(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
	}

	ev, err := models.ParseRefundEvent(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}

	ctx, cancel := webhookCtx()
	defer cancel()

	applied, err := wc.ledger.RefundOrder(ctx, ev.OrderID.String())
	if err != nil {
		log.Printf("Error refunding order %s: %v", ev.OrderID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Store error"})
	}
	if !applied {
		return ack(c, "No action needed")
	}
	return ack(c, "Order refunded")
}

// HandleTest confirms the webhook endpoint is reachable
func (wc *WebhookController) HandleTest(c echo.Context) error {
	return ack(c, "Webhook endpoint is working")
}
