package repository

import (
	"sync"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/account"
)

type memoryImpl struct {
	sync.Mutex
	accounts map[domain.Address]account.Account
}

// NewMemory creates an in-memory account repo for tests and local runs
func NewMemory() account.Repo {
	return &memoryImpl{
		accounts: map[domain.Address]account.Account{},
	}
}

func (im *memoryImpl) Get(c ctx.Ctx, address domain.Address) (*account.Account, error) {
	im.Lock()
	defer im.Unlock()
	a, ok := im.accounts[address.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (im *memoryImpl) Insert(c ctx.Ctx, a *account.Account) error {
	im.Lock()
	defer im.Unlock()
	addr := a.Address.ToLower()
	if _, ok := im.accounts[addr]; ok {
		return domain.ErrAlreadyRegistered
	}
	cp := *a
	cp.Address = addr
	im.accounts[addr] = cp
	return nil
}

func (im *memoryImpl) Update(c ctx.Ctx, address domain.Address, updater *account.Updater) error {
	im.Lock()
	defer im.Unlock()
	addr := address.ToLower()
	a, ok := im.accounts[addr]
	if !ok {
		return domain.ErrNotFound
	}
	if updater.Alias != nil {
		a.Alias = *updater.Alias
	}
	if updater.Email != nil {
		a.Email = *updater.Email
	}
	if updater.Nonce != 0 {
		a.Nonce = updater.Nonce
	}
	if !updater.UpdatedAt.IsZero() {
		a.UpdatedAt = updater.UpdatedAt
	}
	im.accounts[addr] = a
	return nil
}
