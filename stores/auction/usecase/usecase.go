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
	"github.com/deedchain/goapi/domain/escrow"
	"github.com/deedchain/goapi/domain/ledger"
	"github.com/deedchain/goapi/domain/property"
)

var timeNow = time.Now

type AuctionUseCaseCfg struct {
	Repo         auction.Repo
	PropertyRepo property.Repo
	EscrowRepo   escrow.Repo
	Ledger       ledger.Usecase
	Activity     activity.Usecase
	Arbiter      domain.Address
	// Mu serializes all state-changing registry operations
	Mu *sync.Mutex
}

type impl struct {
	repo         auction.Repo
	propertyRepo property.Repo
	escrowRepo   escrow.Repo
	ledger       ledger.Usecase
	activity     activity.Usecase
	arbiter      domain.Address
	mu           *sync.Mutex
}

// New creates the auction engine
func New(cfg *AuctionUseCaseCfg) auction.Usecase {
	return &impl{
		repo:         cfg.Repo,
		propertyRepo: cfg.PropertyRepo,
		escrowRepo:   cfg.EscrowRepo,
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

func (im *impl) Open(c ctx.Ctx, caller domain.Address, gps domain.Location, startingPrice domain.Amount, duration time.Duration, paid domain.Amount) (*auction.Auction, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	c = ctx.WithValues(c, map[string]interface{}{
		"caller":        caller,
		"gps":           gps,
		"startingPrice": startingPrice,
	})

	p, err := im.propertyRepo.Get(c, gps)
	if err != nil {
		return nil, err
	}
	if !caller.Equals(p.Owner) {
		return nil, domain.ErrUnauthorized
	}
	if !p.Verified {
		return nil, domain.ErrNotVerified
	}
	if startingPrice == 0 {
		return nil, domain.ErrInvalidAmount
	}
	if duration <= 0 {
		return nil, domain.ErrBadParamInput
	}

	if prev, err := im.repo.Get(c, gps); err == nil && prev.Active {
		return nil, domain.ErrAuctionAlreadyActive
	} else if err != nil && err != domain.ErrNotFound {
		c.WithField("err", err).Error("repo.Get failed")
		return nil, err
	}

	fee := auction.ListingFee(startingPrice)
	if paid < fee {
		return nil, domain.ErrInsufficientFee
	}

	// listing fee goes to the arbiter, any overpayment is returned to the
	// seller through the pull-payment ledger
	if err := im.ledger.Credit(c, im.arbiter, fee); err != nil {
		c.WithField("err", err).Error("ledger.Credit fee failed")
		return nil, err
	}
	if surplus := paid - fee; surplus > 0 {
		if err := im.ledger.Credit(c, caller, surplus); err != nil {
			c.WithField("err", err).Error("ledger.Credit surplus failed")
			return nil, err
		}
	}

	now := timeNow()
	a := &auction.Auction{
		Gps:           gps,
		Seller:        caller.ToLower(),
		StartingPrice: startingPrice,
		HighestBid:    startingPrice,
		EndTime:       now.Add(duration),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := im.repo.Insert(c, a); err != nil {
		c.WithField("err", err).Error("repo.Insert failed")
		return nil, err
	}

	im.emit(c, &activity.Activity{
		Type:    activity.TypeAuctionCreated,
		Gps:     gps,
		Account: caller.ToLower(),
		Amount:  startingPrice,
	})
	return a, nil
}

func (im *impl) Bid(c ctx.Ctx, caller domain.Address, gps domain.Location, amount domain.Amount) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	c = ctx.WithValues(c, map[string]interface{}{
		"caller": caller,
		"gps":    gps,
		"amount": amount,
	})

	a, err := im.repo.Get(c, gps)
	if err == domain.ErrNotFound {
		return domain.ErrAuctionNotActive
	} else if err != nil {
		return err
	}
	if !a.Active {
		return domain.ErrAuctionNotActive
	}
	if !timeNow().Before(a.EndTime) {
		return domain.ErrAuctionEnded
	}
	if amount <= a.HighestBid {
		return domain.ErrInvalidAmount
	}

	prevBidder := a.HighestBidder
	prevBid := a.HighestBid

	// record the new bid before crediting the outbid stake, so a failed
	// call never leaves the stake both refundable and still the highest bid
	if err := im.repo.Update(c, gps, &auction.Updater{
		HighestBidder: caller.ToLowerPtr(),
		HighestBid:    &amount,
		UpdatedAt:     timeNow(),
	}); err != nil {
		c.WithField("err", err).Error("repo.Update failed")
		return err
	}

	// the outbid stake becomes withdrawable, it is never pushed back
	if a.HasBid() {
		if err := im.ledger.Credit(c, prevBidder, prevBid); err != nil {
			c.WithField("err", err).Error("ledger.Credit failed")
			// restore the previous bid so the caller can retry cleanly
			if rerr := im.repo.Update(c, gps, &auction.Updater{
				HighestBidder: prevBidder.ToLowerPtr(),
				HighestBid:    &prevBid,
				UpdatedAt:     timeNow(),
			}); rerr != nil {
				c.WithField("err", rerr).Error("repo.Update revert failed")
			}
			return err
		}
	}

	im.emit(c, &activity.Activity{
		Type:    activity.TypeBidPlaced,
		Gps:     gps,
		Account: caller.ToLower(),
		Amount:  amount,
	})
	return nil
}

func (im *impl) Cancel(c ctx.Ctx, caller domain.Address, gps domain.Location) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	c = ctx.WithValues(c, map[string]interface{}{
		"caller": caller,
		"gps":    gps,
	})

	a, err := im.repo.Get(c, gps)
	if err == domain.ErrNotFound {
		return domain.ErrAuctionNotActive
	} else if err != nil {
		return err
	}
	if !a.Active {
		return domain.ErrAuctionNotActive
	}
	// any bid blocks cancellation, no matter who asks
	if a.HasBid() {
		return domain.ErrHasBids
	}
	if !caller.Equals(a.Seller) {
		return domain.ErrUnauthorized
	}

	if err := im.repo.Update(c, gps, &auction.Updater{
		Active:    ptr.Bool(false),
		UpdatedAt: timeNow(),
	}); err != nil {
		c.WithField("err", err).Error("repo.Update failed")
		return err
	}

	im.emit(c, &activity.Activity{
		Type:    activity.TypeAuctionCanceled,
		Gps:     gps,
		Account: caller.ToLower(),
	})
	return nil
}

func (im *impl) Get(c ctx.Ctx, gps domain.Location) (*auction.Auction, error) {
	return im.repo.Get(c, gps)
}

func (im *impl) CheckTrigger(c ctx.Ctx) (bool, *auction.TriggerData, error) {
	due, err := im.repo.Find(c,
		auction.AuctionWithActive(true),
		auction.AuctionWithEndTimeLTE(timeNow()),
	)
	if err != nil {
		c.WithField("err", err).Error("repo.Find failed")
		return false, nil, err
	}
	if len(due) == 0 {
		return false, nil, nil
	}

	data := &auction.TriggerData{}
	for _, a := range due {
		data.Locations = append(data.Locations, a.Gps)
	}
	return true, data, nil
}

func (im *impl) CloseTriggered(c ctx.Ctx, data *auction.TriggerData) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	if data == nil || len(data.Locations) == 0 {
		return domain.ErrNotDue
	}

	closed := 0
	for _, gps := range data.Locations {
		a, err := im.repo.Get(c, gps)
		if err == domain.ErrNotFound {
			continue
		} else if err != nil {
			return err
		}
		// revalidate under the lock, the trigger data may be stale.
		// a location another keeper already closed is skipped, the rest
		// of the batch still goes through
		if !a.Active || timeNow().Before(a.EndTime) {
			continue
		}
		if err := im.close(c, a); err != nil {
			return err
		}
		closed++
	}
	if closed == 0 {
		return domain.ErrNotDue
	}
	return nil
}

func (im *impl) close(c ctx.Ctx, a *auction.Auction) error {
	gps := a.Gps
	c = ctx.WithValue(c, "gps", gps)

	if err := im.repo.Update(c, gps, &auction.Updater{
		Active:    ptr.Bool(false),
		UpdatedAt: timeNow(),
	}); err != nil {
		c.WithField("err", err).Error("repo.Update failed")
		return err
	}

	if a.HasBid() {
		now := timeNow()
		t := &escrow.Transaction{
			Gps:       gps,
			Buyer:     a.HighestBidder,
			Seller:    a.Seller,
			Amount:    a.HighestBid,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := im.escrowRepo.Insert(c, t); err != nil {
			c.WithField("err", err).Error("escrowRepo.Insert failed")
			return err
		}
	}

	im.emit(c, &activity.Activity{
		Type:    activity.TypeAuctionEnded,
		Gps:     gps,
		Account: a.Seller,
		To:      a.HighestBidder,
		Amount:  a.HighestBid,
	})
	return nil
}
