package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/goyoulink/goyoulink_backend/models"
	"github.com/goyoulink/goyoulink_backend/utils"
)

// Ledger event types published to the dashboard feed
const (
	EventOrderCreated   = "order_created"
	EventOrderConfirmed = "order_confirmed"
	EventOrderCancelled = "order_cancelled"
	EventOrderRefunded  = "order_refunded"
	EventClick          = "click"
	EventPayout         = "payout"
)

// NewOrderInput carries the attributed order fields extracted from an
// order-created webhook
type NewOrderInput struct {
	ShopifyOrderID string
	OrderNumber    string
	OrderTotal     float64
	Currency       string
	CustomerEmail  string
	OrderCreatedAt string
}

// Ledger owns the referral order state machine and is the only writer of
// affiliate commission balances. Order transitions go through the store's
// compare-and-swap so replayed and out-of-order webhooks settle on the same
// final state, and balance arithmetic always uses the commission amount
// snapshotted on the order, never the affiliate's current rate.
type Ledger struct {
	affiliates AffiliateStore
	orders     OrderStore
	payouts    PayoutStore
	events     EventPublisher

	// allowOverpayout permits payouts above pending commission, clamping the
	// balance effect instead of rejecting.
	allowOverpayout bool
	// reverseOnCancel extends refund-style commission reversal to
	// cancellations of confirmed orders.
	reverseOnCancel bool
}

// NewLedger creates the commission ledger
func NewLedger(affiliates AffiliateStore, orders OrderStore, payouts PayoutStore, allowOverpayout, reverseOnCancel bool) *Ledger {
	return &Ledger{
		affiliates:      affiliates,
		orders:          orders,
		payouts:         payouts,
		allowOverpayout: allowOverpayout,
		reverseOnCancel: reverseOnCancel,
	}
}

// SetEventPublisher attaches the dashboard feed
func (l *Ledger) SetEventPublisher(events EventPublisher) {
	l.events = events
}

func (l *Ledger) publish(eventType string, data interface{}) {
	if l.events != nil {
		l.events.Publish(eventType, data)
	}
}

// RecordOrder registers a newly attributed order in pending status. The
// commission amount is computed and rounded here, once, from the affiliate's
// current rate. Replayed creates fail with ErrDuplicateOrder before any
// balance is touched.
func (l *Ledger) RecordOrder(ctx context.Context, affiliate *models.Affiliate, in NewOrderInput) (*models.ReferralOrder, error) {
	now := time.Now()
	order := &models.ReferralOrder{
		AffiliateID:      affiliate.ID,
		ShopifyOrderID:   in.ShopifyOrderID,
		OrderNumber:      in.OrderNumber,
		OrderTotal:       in.OrderTotal,
		Currency:         in.Currency,
		CommissionRate:   affiliate.CommissionRate,
		CommissionAmount: utils.Round2(in.OrderTotal * affiliate.CommissionRate / 100),
		CustomerEmail:    in.CustomerEmail,
		OrderCreatedAt:   in.OrderCreatedAt,
		Status:           models.OrderStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := l.orders.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	// No commission accrues yet; that waits for fulfillment.
	if err := l.affiliates.IncrementOrderStats(ctx, affiliate.ID, in.OrderTotal); err != nil {
		return nil, err
	}

	l.publish(EventOrderCreated, order)
	return order, nil
}

// ConfirmOrder handles a fulfillment event: pending -> confirmed, accruing the
// snapshotted commission. Returns false without error when the order is
// unknown or not pending (duplicate or out-of-order webhook).
func (l *Ledger) ConfirmOrder(ctx context.Context, shopifyOrderID string) (bool, error) {
	confirmedAt := time.Now()
	prior, err := l.orders.Transition(ctx, shopifyOrderID,
		[]string{models.OrderStatusPending}, models.OrderStatusConfirmed, &confirmedAt)
	if err == ErrNotFound || err == ErrNoTransition {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := l.affiliates.AccrueCommission(ctx, prior.AffiliateID, prior.CommissionAmount); err != nil {
		// Roll the status back so the platform's redelivery retries the whole
		// transition instead of leaving a confirmed order with no accrual.
		if _, rbErr := l.orders.Transition(ctx, shopifyOrderID,
			[]string{models.OrderStatusConfirmed}, models.OrderStatusPending, nil); rbErr != nil {
			log.Printf("Error rolling back confirmation of order %s: %v", shopifyOrderID, rbErr)
		}
		return false, err
	}

	l.publish(EventOrderConfirmed, prior)
	return true, nil
}

// CancelOrder handles a cancellation event: pending|confirmed -> cancelled.
// A pending order never accrued commission, so there is nothing to reverse.
// For a confirmed order the accrual is reversed only when the ledger was
// configured with reverseOnCancel; otherwise only a refund reverses it.
func (l *Ledger) CancelOrder(ctx context.Context, shopifyOrderID string) (bool, error) {
	prior, err := l.orders.Transition(ctx, shopifyOrderID,
		[]string{models.OrderStatusPending, models.OrderStatusConfirmed}, models.OrderStatusCancelled, nil)
	if err == ErrNotFound || err == ErrNoTransition {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if l.reverseOnCancel && prior.Status == models.OrderStatusConfirmed {
		if err := l.affiliates.ReverseCommission(ctx, prior.AffiliateID, prior.CommissionAmount); err != nil {
			if _, rbErr := l.orders.Transition(ctx, shopifyOrderID,
				[]string{models.OrderStatusCancelled}, prior.Status, prior.ConfirmedAt); rbErr != nil {
				log.Printf("Error rolling back cancellation of order %s: %v", shopifyOrderID, rbErr)
			}
			return false, err
		}
	}

	l.publish(EventOrderCancelled, prior)
	return true, nil
}

// RefundOrder handles a refund event: pending|confirmed -> refunded. Only a
// previously confirmed order had accrued commission, so only that case
// reverses balances.
func (l *Ledger) RefundOrder(ctx context.Context, shopifyOrderID string) (bool, error) {
	prior, err := l.orders.Transition(ctx, shopifyOrderID,
		[]string{models.OrderStatusPending, models.OrderStatusConfirmed}, models.OrderStatusRefunded, nil)
	if err == ErrNotFound || err == ErrNoTransition {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if prior.Status == models.OrderStatusConfirmed {
		if err := l.affiliates.ReverseCommission(ctx, prior.AffiliateID, prior.CommissionAmount); err != nil {
			if _, rbErr := l.orders.Transition(ctx, shopifyOrderID,
				[]string{models.OrderStatusRefunded}, prior.Status, prior.ConfirmedAt); rbErr != nil {
				log.Printf("Error rolling back refund of order %s: %v", shopifyOrderID, rbErr)
			}
			return false, err
		}
	}

	l.publish(EventOrderRefunded, prior)
	return true, nil
}

// ApplyPayout records a disbursement and moves the amount from pending to
// paid commission. Payouts above the pending balance are rejected with
// ErrInsufficientPending unless the ledger allows overpayout, in which case
// the balance effect is clamped to what is available.
func (l *Ledger) ApplyPayout(ctx context.Context, affiliate *models.Affiliate, req *models.CreatePayoutRequest) (*models.Payout, error) {
	if err := l.affiliates.DebitPendingForPayout(ctx, affiliate.ID, req.Amount, l.allowOverpayout); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "JPY"
	}

	payout := &models.Payout{
		AffiliateID:    affiliate.ID,
		Amount:         req.Amount,
		Currency:       currency,
		PaymentMethod:  req.PaymentMethod,
		PaymentDetails: req.PaymentDetails,
		Note:           req.Note,
		Reference:      uuid.NewString(),
		PaidAt:         time.Now(),
	}

	if err := l.payouts.InsertPayout(ctx, payout); err != nil {
		return nil, err
	}

	l.publish(EventPayout, payout)
	return payout, nil
}

// IncrementClicks bumps the affiliate's click counter by one. The click
// recorder delegates here so the ledger stays the sole counter writer.
func (l *Ledger) IncrementClicks(ctx context.Context, affiliate *models.Affiliate) error {
	if err := l.affiliates.IncrementClicks(ctx, affiliate.ID); err != nil {
		return err
	}
	l.publish(EventClick, map[string]interface{}{
		"affiliateId": affiliate.ID.Hex(),
		"refCode":     affiliate.RefCode,
	})
	return nil
}
