package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/database/mongoclient"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/auction"
	"github.com/deedchain/goapi/service/query"
)

type impl struct {
	q query.Mongo
}

// New creates new auction repo
func New(q query.Mongo) auction.Repo {
	return &impl{q}
}

func (im *impl) Get(c ctx.Ctx, gps domain.Location) (*auction.Auction, error) {
	a := &auction.Auction{}
	if err := im.q.FindOne(c, domain.TableAuctions, bson.M{"gps": gps}, a); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"gps": gps, "err": err}).Error("q.FindOne failed")
		return nil, err
	}
	return a, nil
}

func (im *impl) Insert(c ctx.Ctx, a *auction.Auction) error {
	a.Seller = a.Seller.ToLower()
	a.HighestBidder = a.HighestBidder.ToLower()
	// one auction record per property, the previous closed one is replaced
	if err := im.q.Upsert(c, domain.TableAuctions, bson.M{"gps": a.Gps}, a); err != nil {
		c.WithFields(log.Fields{"gps": a.Gps, "err": err}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (im *impl) Update(c ctx.Ctx, gps domain.Location, updater *auction.Updater) error {
	if updater.HighestBidder != nil {
		updater.HighestBidder = updater.HighestBidder.ToLowerPtr()
	}
	updaterBson, err := mongoclient.MakeBsonM(updater)
	if err != nil {
		c.WithFields(log.Fields{"gps": gps, "err": err}).Error("make bsonM failed")
		return err
	}
	if err := im.q.Patch(c, domain.TableAuctions, bson.M{"gps": gps}, updaterBson); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"gps": gps, "err": err}).Error("q.Patch failed")
		return err
	}
	return nil
}

func (im *impl) Find(c ctx.Ctx, opts ...auction.FindAuctionOptions) ([]*auction.Auction, error) {
	options, err := auction.GetFindAuctionOptions(opts...)
	if err != nil {
		c.WithFields(log.Fields{"err": err}).Error("GetFindAuctionOptions failed")
		return nil, err
	}

	selector := bson.M{}
	if options.Seller != nil {
		selector["seller"] = *options.Seller
	}
	if options.Active != nil {
		selector["active"] = *options.Active
	}
	if options.EndTimeLTE != nil {
		selector["endTime"] = bson.M{"$lte": *options.EndTimeLTE}
	}

	offset := 0
	limit := 0
	if options.Offset != nil {
		offset = *options.Offset
	}
	if options.Limit != nil {
		limit = *options.Limit
	}

	res := []*auction.Auction{}
	if err := im.q.Search(c, domain.TableAuctions, offset, limit, "endTime", selector, &res); err != nil {
		c.WithFields(log.Fields{"err": err}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}
