package repository

import (
	"sync"
	"time"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/ledger"
)

type memoryImpl struct {
	sync.Mutex
	balances map[domain.Address]ledger.Balance
}

// NewMemory creates an in-memory balance repo for tests and local runs
func NewMemory() ledger.Repo {
	return &memoryImpl{
		balances: map[domain.Address]ledger.Balance{},
	}
}

func (im *memoryImpl) Get(c ctx.Ctx, account domain.Address) (*ledger.Balance, error) {
	im.Lock()
	defer im.Unlock()
	b, ok := im.balances[account.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (im *memoryImpl) Add(c ctx.Ctx, account domain.Address, amount domain.Amount) error {
	im.Lock()
	defer im.Unlock()
	addr := account.ToLower()
	b := im.balances[addr]
	b.Account = addr
	b.Pending += amount
	b.UpdatedAt = time.Now()
	im.balances[addr] = b
	return nil
}

func (im *memoryImpl) SetZero(c ctx.Ctx, account domain.Address) error {
	im.Lock()
	defer im.Unlock()
	addr := account.ToLower()
	b, ok := im.balances[addr]
	if !ok {
		return domain.ErrNotFound
	}
	b.Pending = 0
	b.UpdatedAt = time.Now()
	im.balances[addr] = b
	return nil
}
