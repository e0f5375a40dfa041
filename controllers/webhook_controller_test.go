package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/goyoulink/goyoulink_backend/config"
	"github.com/goyoulink/goyoulink_backend/models"
	"github.com/goyoulink/goyoulink_backend/services"
	"github.com/goyoulink/goyoulink_backend/utils"
)

const testWebhookSecret = "test-secret"

func newWebhookFixture() (*WebhookController, *fakeStore) {
	store := newFakeStore()
	settings := &config.Settings{ShopifyWebhookSecret: testWebhookSecret}
	ledger := services.NewLedger(store, store, store, false, false)
	resolver := services.NewAttributionResolver(store)
	return NewWebhookController(settings, store, resolver, ledger), store
}

func postWebhook(t *testing.T, handler echo.HandlerFunc, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook/shopify/orders/create", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func postSigned(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	return postWebhook(t, handler, body, utils.ComputeWebhookSignature(testWebhookSecret, []byte(body)))
}

func decodeAck(t *testing.T, rec *httptest.ResponseRecorder) models.WebhookResponse {
	t.Helper()
	var resp models.WebhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestOrderCreateRejectsBadSignature(t *testing.T) {
	wc, store := newWebhookFixture()

	rec := postWebhook(t, wc.HandleOrderCreate, `{"id":1001}`, "bogus")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if len(store.orders) != 0 {
		t.Error("order recorded despite bad signature")
	}
}

func TestOrderCreateRejectsMalformedPayload(t *testing.T) {
	wc, _ := newWebhookFixture()

	rec := postSigned(t, wc.HandleOrderCreate, `{"name":"#1001"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestOrderCreateWithoutReferralCode(t *testing.T) {
	wc, store := newWebhookFixture()

	rec := postSigned(t, wc.HandleOrderCreate, `{"id":1001,"total_price":"10000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decodeAck(t, rec); resp.Message != "No referral code" {
		t.Errorf("message = %q, want %q", resp.Message, "No referral code")
	}
	if len(store.orders) != 0 {
		t.Error("unattributed order was recorded")
	}
}

func TestOrderCreateUnknownReferralCode(t *testing.T) {
	wc, _ := newWebhookFixture()

	body := `{"id":1001,"note_attributes":[{"name":"ref","value":"nobody"}]}`
	rec := postSigned(t, wc.HandleOrderCreate, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decodeAck(t, rec); resp.Message != "Invalid referral code" {
		t.Errorf("message = %q, want %q", resp.Message, "Invalid referral code")
	}
}

func TestOrderCreateInactiveAffiliate(t *testing.T) {
	wc, store := newWebhookFixture()
	store.addAffiliate(&models.Affiliate{
		RefCode: "alice123",
		Status:  models.AffiliateStatusInactive,
	})

	body := `{"id":1001,"note_attributes":[{"name":"ref","value":"alice123"}]}`
	rec := postSigned(t, wc.HandleOrderCreate, body)
	if resp := decodeAck(t, rec); resp.Message != "Affiliate inactive" {
		t.Errorf("message = %q, want %q", resp.Message, "Affiliate inactive")
	}
	if len(store.orders) != 0 {
		t.Error("order recorded for inactive affiliate")
	}
}

func TestOrderCreateRecordsReferralOrder(t *testing.T) {
	wc, store := newWebhookFixture()
	affiliate := store.addAffiliate(&models.Affiliate{
		RefCode:        "alice123",
		CommissionRate: 5,
		Status:         models.AffiliateStatusActive,
	})

	body := `{"id":5678901234,"name":"#1001","total_price":"20000.00","currency":"JPY","note_attributes":[{"name":"ref","value":"alice123"}]}`
	rec := postSigned(t, wc.HandleOrderCreate, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeAck(t, rec)
	if resp.Message != "Referral order created" {
		t.Fatalf("message = %q, want %q", resp.Message, "Referral order created")
	}
	if resp.OrderID == "" {
		t.Error("response missing order_id")
	}

	order, err := store.OrderByShopifyID(context.Background(), "5678901234")
	if err != nil {
		t.Fatalf("order not stored: %v", err)
	}
	if order.AffiliateID != affiliate.ID {
		t.Error("order attributed to the wrong affiliate")
	}
	if order.CommissionAmount != 1000.00 {
		t.Errorf("commissionAmount = %v, want 1000.00", order.CommissionAmount)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
}

func TestOrderCreateReplayAcknowledged(t *testing.T) {
	wc, store := newWebhookFixture()
	affiliate := store.addAffiliate(&models.Affiliate{
		RefCode:        "alice123",
		CommissionRate: 5,
		Status:         models.AffiliateStatusActive,
	})

	body := `{"id":1001,"total_price":"10000","note_attributes":[{"name":"ref","value":"alice123"}]}`
	postSigned(t, wc.HandleOrderCreate, body)
	rec := postSigned(t, wc.HandleOrderCreate, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decodeAck(t, rec); resp.Message != "Order already exists" {
		t.Errorf("message = %q, want %q", resp.Message, "Order already exists")
	}
	current, _ := store.AffiliateByID(context.Background(), affiliate.ID)
	if current.TotalOrders != 1 {
		t.Errorf("totalOrders = %d after replay, want 1", current.TotalOrders)
	}
}

func TestOrderLifecycleThroughWebhooks(t *testing.T) {
	wc, store := newWebhookFixture()
	affiliate := store.addAffiliate(&models.Affiliate{
		RefCode:        "alice123",
		CommissionRate: 5,
		Status:         models.AffiliateStatusActive,
	})

	create := `{"id":1001,"total_price":"20000","note_attributes":[{"name":"ref","value":"alice123"}]}`
	postSigned(t, wc.HandleOrderCreate, create)

	rec := postSigned(t, wc.HandleOrderFulfilled, `{"id":1001}`)
	if resp := decodeAck(t, rec); resp.Message != "Order confirmed" {
		t.Fatalf("fulfil message = %q", resp.Message)
	}
	current, _ := store.AffiliateByID(context.Background(), affiliate.ID)
	if current.PendingCommission != 1000.00 {
		t.Fatalf("pending = %v after fulfilment, want 1000.00", current.PendingCommission)
	}

	// Replayed fulfilment is a no-op, not an error.
	rec = postSigned(t, wc.HandleOrderFulfilled, `{"id":1001}`)
	if resp := decodeAck(t, rec); resp.Message != "No action needed" {
		t.Errorf("replay message = %q, want %q", resp.Message, "No action needed")
	}

	rec = postSigned(t, wc.HandleRefundCreate, `{"id":99,"order_id":1001}`)
	if resp := decodeAck(t, rec); resp.Message != "Order refunded" {
		t.Fatalf("refund message = %q", resp.Message)
	}
	current, _ = store.AffiliateByID(context.Background(), affiliate.ID)
	if current.PendingCommission != 0 {
		t.Errorf("pending = %v after refund, want 0", current.PendingCommission)
	}
	if current.TotalCommission != current.PendingCommission+current.PaidCommission {
		t.Errorf("balance invariant broken: %+v", current)
	}
}

func TestOrderCancelledUnknownOrder(t *testing.T) {
	wc, _ := newWebhookFixture()

	rec := postSigned(t, wc.HandleOrderCancelled, `{"id":424242}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decodeAck(t, rec); resp.Message != "No action needed" {
		t.Errorf("message = %q, want %q", resp.Message, "No action needed")
	}
}

func TestRefundRejectsMissingOrderID(t *testing.T) {
	wc, _ := newWebhookFixture()

	rec := postSigned(t, wc.HandleRefundCreate, `{"id":99}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
