package repository

import (
	"sort"
	"sync"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/auction"
)

type memoryImpl struct {
	sync.Mutex
	auctions map[domain.Location]auction.Auction
}

// NewMemory creates an in-memory auction repo for tests and local runs
func NewMemory() auction.Repo {
	return &memoryImpl{
		auctions: map[domain.Location]auction.Auction{},
	}
}

func (im *memoryImpl) Get(c ctx.Ctx, gps domain.Location) (*auction.Auction, error) {
	im.Lock()
	defer im.Unlock()
	a, ok := im.auctions[gps]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (im *memoryImpl) Insert(c ctx.Ctx, a *auction.Auction) error {
	im.Lock()
	defer im.Unlock()
	cp := *a
	cp.Seller = cp.Seller.ToLower()
	cp.HighestBidder = cp.HighestBidder.ToLower()
	im.auctions[a.Gps] = cp
	return nil
}

func (im *memoryImpl) Update(c ctx.Ctx, gps domain.Location, updater *auction.Updater) error {
	im.Lock()
	defer im.Unlock()
	a, ok := im.auctions[gps]
	if !ok {
		return domain.ErrNotFound
	}
	if updater.HighestBidder != nil {
		a.HighestBidder = updater.HighestBidder.ToLower()
	}
	if updater.HighestBid != nil {
		a.HighestBid = *updater.HighestBid
	}
	if updater.Active != nil {
		a.Active = *updater.Active
	}
	if !updater.UpdatedAt.IsZero() {
		a.UpdatedAt = updater.UpdatedAt
	}
	im.auctions[gps] = a
	return nil
}

func (im *memoryImpl) Find(c ctx.Ctx, opts ...auction.FindAuctionOptions) ([]*auction.Auction, error) {
	im.Lock()
	defer im.Unlock()
	options, err := auction.GetFindAuctionOptions(opts...)
	if err != nil {
		return nil, err
	}
	res := []*auction.Auction{}
	for _, a := range im.auctions {
		if options.Seller != nil && !a.Seller.Equals(*options.Seller) {
			continue
		}
		if options.Active != nil && a.Active != *options.Active {
			continue
		}
		if options.EndTimeLTE != nil && a.EndTime.After(*options.EndTimeLTE) {
			continue
		}
		cp := a
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].EndTime.Before(res[j].EndTime) })
	return res, nil
}
