package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/base/ptr"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/activity"
	"github.com/deedchain/goapi/domain/escrow"
	"github.com/deedchain/goapi/domain/ledger"
	"github.com/deedchain/goapi/domain/property"
)

var timeNow = time.Now

type EscrowUseCaseCfg struct {
	Repo         escrow.Repo
	PropertyRepo property.Repo
	Ledger       ledger.Usecase
	Activity     activity.Usecase
	Arbiter      domain.Address
	// Mu serializes all state-changing registry operations
	Mu *sync.Mutex
}

type impl struct {
	repo         escrow.Repo
	propertyRepo property.Repo
	ledger       ledger.Usecase
	activity     activity.Usecase
	arbiter      domain.Address
	mu           *sync.Mutex
}

// New creates the escrow settlement usecase
func New(cfg *EscrowUseCaseCfg) escrow.Usecase {
	return &impl{
		repo:         cfg.Repo,
		propertyRepo: cfg.PropertyRepo,
		ledger:       cfg.Ledger,
		activity:     cfg.Activity,
		arbiter:      cfg.Arbiter.ToLower(),
		mu:           cfg.Mu,
	}
}

func (im *impl) emit(c ctx.Ctx, a *activity.Activity) {
	a.Id = uuid.New().String()
	a.Time = timeNow()
	if err := im.activity.Insert(c, a); err != nil {
		c.WithFields(log.Fields{"type": a.Type, "err": err}).Warn("activity.Insert failed")
	}
}

func (im *impl) Confirm(c ctx.Ctx, caller domain.Address, gps domain.Location) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	c = ctx.WithValues(c, map[string]interface{}{
		"caller": caller,
		"gps":    gps,
	})

	t, err := im.repo.Get(c, gps)
	if err == domain.ErrNotFound {
		return domain.ErrNoActiveTransaction
	} else if err != nil {
		return err
	}
	if !t.Active {
		return domain.ErrNoActiveTransaction
	}

	updater := &escrow.Updater{UpdatedAt: timeNow()}
	switch {
	case caller.Equals(t.Buyer):
		if t.BuyerConfirmed {
			// confirming twice never double-counts
			return nil
		}
		updater.BuyerConfirmed = ptr.Bool(true)
	case caller.Equals(t.Seller):
		if t.SellerConfirmed {
			return nil
		}
		updater.SellerConfirmed = ptr.Bool(true)
	default:
		return domain.ErrUnauthorized
	}

	if err := im.repo.Update(c, gps, updater); err != nil {
		c.WithField("err", err).Error("repo.Update failed")
		return err
	}

	im.emit(c, &activity.Activity{
		Type:    activity.TypeTransactionConfirmed,
		Gps:     gps,
		Account: caller.ToLower(),
	})
	return nil
}

func (im *impl) AdminFinalize(c ctx.Ctx, caller domain.Address, gps domain.Location, newDocHash domain.DocumentHash) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	c = ctx.WithValues(c, map[string]interface{}{
		"caller": caller,
		"gps":    gps,
	})

	if !caller.Equals(im.arbiter) {
		return domain.ErrUnauthorized
	}

	t, err := im.repo.Get(c, gps)
	if err == domain.ErrNotFound {
		return domain.ErrNoActiveTransaction
	} else if err != nil {
		return err
	}
	if !t.Active {
		return domain.ErrNoActiveTransaction
	}
	if !t.BothConfirmed() {
		return domain.ErrNotBothConfirmed
	}

	// transfer title and rewrite the document hash as one unit
	if err := im.propertyRepo.Update(c, gps, &property.Updater{
		Owner:     t.Buyer.ToLowerPtr(),
		DocHash:   &newDocHash,
		UpdatedAt: timeNow(),
	}); err != nil {
		c.WithField("err", err).Error("propertyRepo.Update failed")
		return err
	}

	// deactivate before paying out, so a retry after a partial failure
	// can never credit the seller twice
	if err := im.repo.Update(c, gps, &escrow.Updater{
		Active:    ptr.Bool(false),
		UpdatedAt: timeNow(),
	}); err != nil {
		c.WithField("err", err).Error("repo.Update failed")
		return err
	}

	// seller is paid through the pull-payment ledger
	if err := im.ledger.Credit(c, t.Seller, t.Amount); err != nil {
		c.WithField("err", err).Error("ledger.Credit failed")
		// reopen the transaction so the payout can be retried
		if rerr := im.repo.Update(c, gps, &escrow.Updater{
			Active:    ptr.Bool(true),
			UpdatedAt: timeNow(),
		}); rerr != nil {
			c.WithField("err", rerr).Error("repo.Update reopen failed")
		}
		return err
	}

	im.emit(c, &activity.Activity{
		Type:    activity.TypeTransactionFinalized,
		Gps:     gps,
		Account: t.Seller,
		To:      t.Buyer,
		Amount:  t.Amount,
	})
	return nil
}

func (im *impl) Get(c ctx.Ctx, gps domain.Location) (*escrow.Transaction, error) {
	return im.repo.Get(c, gps)
}
