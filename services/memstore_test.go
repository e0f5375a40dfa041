package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goyoulink/goyoulink_backend/models"
)

// memStore is an in-memory implementation of the ledger's store interfaces.
// It mirrors the atomicity contract of the Mongo repositories: every mutation
// happens under one lock acquisition, and Transition is a compare-and-swap.
type memStore struct {
	mu         sync.Mutex
	affiliates map[primitive.ObjectID]*models.Affiliate
	orders     map[string]*models.ReferralOrder
	clicks     []*models.Click
	payouts    []*models.Payout
}

func newMemStore() *memStore {
	return &memStore{
		affiliates: make(map[primitive.ObjectID]*models.Affiliate),
		orders:     make(map[string]*models.ReferralOrder),
	}
}

func (m *memStore) addAffiliate(a *models.Affiliate) *models.Affiliate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.affiliates[a.ID] = a
	return a
}

func (m *memStore) AffiliateByID(_ context.Context, id primitive.ObjectID) (*models.Affiliate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.affiliates[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memStore) AffiliateByRefCode(_ context.Context, refCode string) (*models.Affiliate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.affiliates {
		if a.RefCode == refCode {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) AffiliateByShortCode(_ context.Context, shortCode string) (*models.Affiliate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.affiliates {
		if a.ShortCode == shortCode {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) IncrementClicks(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.affiliates[id]
	if !ok {
		return ErrNotFound
	}
	a.TotalClicks++
	return nil
}

func (m *memStore) IncrementOrderStats(_ context.Context, id primitive.ObjectID, orderTotal float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.affiliates[id]
	if !ok {
		return ErrNotFound
	}
	a.TotalOrders++
	a.TotalSales += orderTotal
	return nil
}

func (m *memStore) AccrueCommission(_ context.Context, id primitive.ObjectID, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.affiliates[id]
	if !ok {
		return ErrNotFound
	}
	a.PendingCommission += amount
	a.TotalCommission += amount
	return nil
}

func (m *memStore) ReverseCommission(_ context.Context, id primitive.ObjectID, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.affiliates[id]
	if !ok {
		return ErrNotFound
	}
	reversed := amount
	if a.PendingCommission < reversed {
		reversed = a.PendingCommission
	}
	a.PendingCommission -= reversed
	a.TotalCommission -= reversed
	return nil
}

func (m *memStore) DebitPendingForPayout(_ context.Context, id primitive.ObjectID, amount float64, allowOver bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.affiliates[id]
	if !ok {
		return ErrNotFound
	}
	if !allowOver && a.PendingCommission < amount {
		return ErrInsufficientPending
	}
	applied := amount
	if a.PendingCommission < applied {
		applied = a.PendingCommission
	}
	a.PendingCommission -= applied
	a.PaidCommission += applied
	return nil
}

func (m *memStore) OrderByShopifyID(_ context.Context, shopifyOrderID string) (*models.ReferralOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[shopifyOrderID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *memStore) InsertOrder(_ context.Context, order *models.ReferralOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[order.ShopifyOrderID]; exists {
		return ErrDuplicateOrder
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	stored := *order
	m.orders[order.ShopifyOrderID] = &stored
	return nil
}

func (m *memStore) Transition(_ context.Context, shopifyOrderID string, fromStatuses []string, toStatus string, confirmedAt *time.Time) (*models.ReferralOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[shopifyOrderID]
	if !ok {
		return nil, ErrNotFound
	}
	legal := false
	for _, from := range fromStatuses {
		if o.Status == from {
			legal = true
			break
		}
	}
	if !legal {
		return nil, ErrNoTransition
	}
	prior := *o
	o.Status = toStatus
	o.UpdatedAt = time.Now()
	if confirmedAt != nil {
		o.ConfirmedAt = confirmedAt
	}
	return &prior, nil
}

func (m *memStore) InsertClick(_ context.Context, click *models.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if click.ID.IsZero() {
		click.ID = primitive.NewObjectID()
	}
	stored := *click
	m.clicks = append(m.clicks, &stored)
	return nil
}

func (m *memStore) InsertPayout(_ context.Context, payout *models.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payout.ID.IsZero() {
		payout.ID = primitive.NewObjectID()
	}
	stored := *payout
	m.payouts = append(m.payouts, &stored)
	return nil
}

func (m *memStore) clickCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clicks)
}

func (m *memStore) payoutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payouts)
}

// setCommissionRate simulates an admin rate change after orders exist
func (m *memStore) setCommissionRate(id primitive.ObjectID, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.affiliates[id]; ok {
		a.CommissionRate = rate
	}
}
