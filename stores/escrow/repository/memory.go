package repository

import (
	"sync"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/escrow"
)

type memoryImpl struct {
	sync.Mutex
	transactions map[domain.Location]escrow.Transaction
}

// NewMemory creates an in-memory escrow repo for tests and local runs
func NewMemory() escrow.Repo {
	return &memoryImpl{
		transactions: map[domain.Location]escrow.Transaction{},
	}
}

func (im *memoryImpl) Get(c ctx.Ctx, gps domain.Location) (*escrow.Transaction, error) {
	im.Lock()
	defer im.Unlock()
	t, ok := im.transactions[gps]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (im *memoryImpl) Insert(c ctx.Ctx, t *escrow.Transaction) error {
	im.Lock()
	defer im.Unlock()
	cp := *t
	cp.Buyer = cp.Buyer.ToLower()
	cp.Seller = cp.Seller.ToLower()
	im.transactions[t.Gps] = cp
	return nil
}

func (im *memoryImpl) Update(c ctx.Ctx, gps domain.Location, updater *escrow.Updater) error {
	im.Lock()
	defer im.Unlock()
	t, ok := im.transactions[gps]
	if !ok {
		return domain.ErrNotFound
	}
	if updater.BuyerConfirmed != nil {
		t.BuyerConfirmed = *updater.BuyerConfirmed
	}
	if updater.SellerConfirmed != nil {
		t.SellerConfirmed = *updater.SellerConfirmed
	}
	if updater.Active != nil {
		t.Active = *updater.Active
	}
	if !updater.UpdatedAt.IsZero() {
		t.UpdatedAt = updater.UpdatedAt
	}
	im.transactions[gps] = t
	return nil
}
