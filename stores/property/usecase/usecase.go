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
	"github.com/deedchain/goapi/domain/auction"
	"github.com/deedchain/goapi/domain/property"
)

var timeNow = time.Now

type PropertyUseCaseCfg struct {
	Repo        property.Repo
	AuctionRepo auction.Repo
	Activity    activity.Usecase
	Arbiter     domain.Address
	// Mu serializes all state-changing registry operations
	Mu *sync.Mutex
}

type impl struct {
	repo        property.Repo
	auctionRepo auction.Repo
	activity    activity.Usecase
	arbiter     domain.Address
	mu          *sync.Mutex
}

// New creates property usecase
func New(cfg *PropertyUseCaseCfg) property.Usecase {
	return &impl{
		repo:        cfg.Repo,
		auctionRepo: cfg.AuctionRepo,
		activity:    cfg.Activity,
		arbiter:     cfg.Arbiter.ToLower(),
		mu:          cfg.Mu,
	}
}

func (im *impl) emit(c ctx.Ctx, a *activity.Activity) {
	a.Id = uuid.New().String()
	a.Time = timeNow()
	if err := im.activity.Insert(c, a); err != nil {
		c.WithFields(log.Fields{"type": a.Type, "err": err}).Warn("activity.Insert failed")
	}
}

func (im *impl) Register(c ctx.Ctx, caller domain.Address, location string, gps domain.Location, docHash domain.DocumentHash) (*property.Property, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	c = ctx.WithValues(c, map[string]interface{}{
		"caller": caller,
		"gps":    gps,
	})

	if caller.IsEmpty() {
		return nil, domain.ErrInvalidAddress
	}

	if _, err := im.repo.Get(c, gps); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if err != domain.ErrNotFound {
		c.WithField("err", err).Error("repo.Get failed")
		return nil, err
	}

	now := timeNow()
	p := &property.Property{
		Gps:          gps,
		Location:     location,
		Owner:        caller.ToLower(),
		DocHash:      docHash,
		Verified:     false,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := im.repo.Insert(c, p); err != nil {
		c.WithField("err", err).Error("repo.Insert failed")
		return nil, err
	}

	im.emit(c, &activity.Activity{
		Type:    activity.TypePropertyRegistered,
		Gps:     gps,
		Account: caller.ToLower(),
	})
	return p, nil
}

func (im *impl) Verify(c ctx.Ctx, caller domain.Address, gps domain.Location) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	c = ctx.WithValues(c, map[string]interface{}{
		"caller": caller,
		"gps":    gps,
	})

	if !caller.Equals(im.arbiter) {
		return domain.ErrUnauthorized
	}

	p, err := im.repo.Get(c, gps)
	if err != nil {
		return err
	}
	if p.Verified {
		// verifying twice is harmless
		return nil
	}

	if err := im.repo.Update(c, gps, &property.Updater{
		Verified:  ptr.Bool(true),
		UpdatedAt: timeNow(),
	}); err != nil {
		c.WithField("err", err).Error("repo.Update failed")
		return err
	}

	im.emit(c, &activity.Activity{
		Type:    activity.TypePropertyVerified,
		Gps:     gps,
		Account: p.Owner,
	})
	return nil
}

func (im *impl) UpdatePrice(c ctx.Ctx, caller domain.Address, gps domain.Location, price domain.Amount) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	c = ctx.WithValues(c, map[string]interface{}{
		"caller": caller,
		"gps":    gps,
		"price":  price,
	})

	p, err := im.repo.Get(c, gps)
	if err != nil {
		return err
	}
	if !caller.Equals(p.Owner) {
		return domain.ErrUnauthorized
	}
	if price == 0 {
		return domain.ErrInvalidAmount
	}

	a, err := im.auctionRepo.Get(c, gps)
	if err == domain.ErrNotFound {
		return domain.ErrAuctionNotActive
	} else if err != nil {
		c.WithField("err", err).Error("auctionRepo.Get failed")
		return err
	}
	if !a.Active {
		return domain.ErrAuctionNotActive
	}
	if a.HasBid() {
		return domain.ErrAuctionLocked
	}

	if err := im.repo.Update(c, gps, &property.Updater{
		Price:     &price,
		UpdatedAt: timeNow(),
	}); err != nil {
		c.WithField("err", err).Error("repo.Update failed")
		return err
	}

	// the auction has no bid yet, so the new price becomes the bid floor
	if err := im.auctionRepo.Update(c, gps, &auction.Updater{
		HighestBid: &price,
		UpdatedAt:  timeNow(),
	}); err != nil {
		c.WithField("err", err).Error("auctionRepo.Update failed")
		return err
	}

	im.emit(c, &activity.Activity{
		Type:    activity.TypePriceUpdated,
		Gps:     gps,
		Account: caller.ToLower(),
		Amount:  price,
	})
	return nil
}

func (im *impl) Get(c ctx.Ctx, gps domain.Location) (*property.Property, error) {
	return im.repo.Get(c, gps)
}

func (im *impl) Find(c ctx.Ctx, opts ...property.FindPropertyOptions) ([]*property.Property, error) {
	return im.repo.Find(c, opts...)
}
