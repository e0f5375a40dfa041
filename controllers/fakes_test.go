package controllers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goyoulink/goyoulink_backend/models"
	"github.com/goyoulink/goyoulink_backend/services"
)

// fakeStore backs handler tests with an in-memory implementation of the
// service store interfaces. Mutations take the lock once, matching the
// atomicity the Mongo repositories provide.
type fakeStore struct {
	mu         sync.Mutex
	affiliates map[primitive.ObjectID]*models.Affiliate
	orders     map[string]*models.ReferralOrder
	clicks     []*models.Click
	payouts    []*models.Payout
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		affiliates: make(map[primitive.ObjectID]*models.Affiliate),
		orders:     make(map[string]*models.ReferralOrder),
	}
}

func (f *fakeStore) addAffiliate(a *models.Affiliate) *models.Affiliate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	f.affiliates[a.ID] = a
	return a
}

func (f *fakeStore) AffiliateByID(_ context.Context, id primitive.ObjectID) (*models.Affiliate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.affiliates[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeStore) AffiliateByRefCode(_ context.Context, refCode string) (*models.Affiliate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.affiliates {
		if a.RefCode == refCode {
			copied := *a
			return &copied, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *fakeStore) AffiliateByShortCode(_ context.Context, shortCode string) (*models.Affiliate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.affiliates {
		if a.ShortCode == shortCode {
			copied := *a
			return &copied, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *fakeStore) IncrementClicks(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.affiliates[id]
	if !ok {
		return services.ErrNotFound
	}
	a.TotalClicks++
	return nil
}

func (f *fakeStore) IncrementOrderStats(_ context.Context, id primitive.ObjectID, orderTotal float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.affiliates[id]
	if !ok {
		return services.ErrNotFound
	}
	a.TotalOrders++
	a.TotalSales += orderTotal
	return nil
}

func (f *fakeStore) AccrueCommission(_ context.Context, id primitive.ObjectID, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.affiliates[id]
	if !ok {
		return services.ErrNotFound
	}
	a.PendingCommission += amount
	a.TotalCommission += amount
	return nil
}

func (f *fakeStore) ReverseCommission(_ context.Context, id primitive.ObjectID, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.affiliates[id]
	if !ok {
		return services.ErrNotFound
	}
	reversed := amount
	if a.PendingCommission < reversed {
		reversed = a.PendingCommission
	}
	a.PendingCommission -= reversed
	a.TotalCommission -= reversed
	return nil
}

func (f *fakeStore) DebitPendingForPayout(_ context.Context, id primitive.ObjectID, amount float64, allowOver bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.affiliates[id]
	if !ok {
		return services.ErrNotFound
	}
	if !allowOver && a.PendingCommission < amount {
		return services.ErrInsufficientPending
	}
	applied := amount
	if a.PendingCommission < applied {
		applied = a.PendingCommission
	}
	a.PendingCommission -= applied
	a.PaidCommission += applied
	return nil
}

func (f *fakeStore) OrderByShopifyID(_ context.Context, shopifyOrderID string) (*models.ReferralOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[shopifyOrderID]
	if !ok {
		return nil, services.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeStore) InsertOrder(_ context.Context, order *models.ReferralOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.orders[order.ShopifyOrderID]; exists {
		return services.ErrDuplicateOrder
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	f.orders[order.ShopifyOrderID] = order
	return nil
}

func (f *fakeStore) Transition(_ context.Context, shopifyOrderID string, fromStatuses []string, toStatus string, confirmedAt *time.Time) (*models.ReferralOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[shopifyOrderID]
	if !ok {
		return nil, services.ErrNotFound
	}
	legal := false
	for _, from := range fromStatuses {
		if order.Status == from {
			legal = true
			break
		}
	}
	if !legal {
		return nil, services.ErrNoTransition
	}
	prior := *order
	order.Status = toStatus
	order.UpdatedAt = time.Now()
	if confirmedAt != nil {
		order.ConfirmedAt = confirmedAt
	}
	return &prior, nil
}

func (f *fakeStore) InsertClick(_ context.Context, click *models.Click) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if click.ID.IsZero() {
		click.ID = primitive.NewObjectID()
	}
	f.clicks = append(f.clicks, click)
	return nil
}

func (f *fakeStore) InsertPayout(_ context.Context, payout *models.Payout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payout.ID.IsZero() {
		payout.ID = primitive.NewObjectID()
	}
	f.payouts = append(f.payouts, payout)
	return nil
}
