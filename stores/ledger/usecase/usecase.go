package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/activity"
	"github.com/deedchain/goapi/domain/ledger"
)

var timeNow = time.Now

type LedgerUseCaseCfg struct {
	Repo     ledger.Repo
	Payout   ledger.Payout
	Activity activity.Usecase
	// Mu serializes all state-changing registry operations
	Mu *sync.Mutex
}

type impl struct {
	repo     ledger.Repo
	payout   ledger.Payout
	activity activity.Usecase
	mu       *sync.Mutex
}

// New creates the pull-payment ledger usecase
func New(cfg *LedgerUseCaseCfg) ledger.Usecase {
	return &impl{
		repo:     cfg.Repo,
		payout:   cfg.Payout,
		activity: cfg.Activity,
		mu:       cfg.Mu,
	}
}

// Credit does not take the registry lock, callers already hold it
func (im *impl) Credit(c ctx.Ctx, account domain.Address, amount domain.Amount) error {
	if amount == 0 {
		return nil
	}
	if err := im.repo.Add(c, account, amount); err != nil {
		c.WithFields(log.Fields{
			"account": account,
			"amount":  amount,
			"err":     err,
		}).Error("repo.Add failed")
		return err
	}
	return nil
}

func (im *impl) BalanceOf(c ctx.Ctx, account domain.Address) (domain.Amount, error) {
	b, err := im.repo.Get(c, account)
	if err == domain.ErrNotFound {
		return 0, nil
	} else if err != nil {
		c.WithFields(log.Fields{"account": account, "err": err}).Error("repo.Get failed")
		return 0, err
	}
	return b.Pending, nil
}

func (im *impl) Withdraw(c ctx.Ctx, caller domain.Address) (domain.Amount, error) {
	c = ctx.WithValue(c, "caller", caller)

	// zero the balance before releasing anything, so a payout that calls
	// back into the ledger finds nothing left to withdraw
	im.mu.Lock()
	b, err := im.repo.Get(c, caller)
	if err == domain.ErrNotFound || (err == nil && b.Pending == 0) {
		im.mu.Unlock()
		return 0, domain.ErrNothingToWithdraw
	} else if err != nil {
		im.mu.Unlock()
		c.WithField("err", err).Error("repo.Get failed")
		return 0, err
	}
	amount := b.Pending
	if err := im.repo.SetZero(c, caller); err != nil {
		im.mu.Unlock()
		c.WithField("err", err).Error("repo.SetZero failed")
		return 0, err
	}
	im.mu.Unlock()

	// the release runs outside the lock, it may be slow or reentrant
	if err := im.payout.Release(c, caller, amount); err != nil {
		c.WithFields(log.Fields{"amount": amount, "err": err}).Error("payout.Release failed")

		// restore the balance so the funds stay withdrawable
		im.mu.Lock()
		creditErr := im.repo.Add(c, caller, amount)
		im.mu.Unlock()
		if creditErr != nil {
			c.WithFields(log.Fields{
				"amount": amount,
				"err":    creditErr,
			}).Error("repo.Add refund failed")
		}
		return 0, err
	}

	a := &activity.Activity{
		Id:      uuid.New().String(),
		Type:    activity.TypeWithdrawal,
		Account: caller.ToLower(),
		Amount:  amount,
		Time:    timeNow(),
	}
	if err := im.activity.Insert(c, a); err != nil {
		c.WithFields(log.Fields{"type": a.Type, "err": err}).Warn("activity.Insert failed")
	}
	return amount, nil
}
