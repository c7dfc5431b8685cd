package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/database/mongoclient"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/escrow"
	"github.com/deedchain/goapi/service/query"
)

type impl struct {
	q query.Mongo
}

// New creates new escrow transaction repo
func New(q query.Mongo) escrow.Repo {
	return &impl{q}
}

func (im *impl) Get(c ctx.Ctx, gps domain.Location) (*escrow.Transaction, error) {
	t := &escrow.Transaction{}
	if err := im.q.FindOne(c, domain.TableTransactions, bson.M{"gps": gps}, t); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"gps": gps, "err": err}).Error("q.FindOne failed")
		return nil, err
	}
	return t, nil
}

func (im *impl) Insert(c ctx.Ctx, t *escrow.Transaction) error {
	t.Buyer = t.Buyer.ToLower()
	t.Seller = t.Seller.ToLower()
	// one settlement per property at a time, a finalized one is replaced
	if err := im.q.Upsert(c, domain.TableTransactions, bson.M{"gps": t.Gps}, t); err != nil {
		c.WithFields(log.Fields{"gps": t.Gps, "err": err}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (im *impl) Update(c ctx.Ctx, gps domain.Location, updater *escrow.Updater) error {
	updaterBson, err := mongoclient.MakeBsonM(updater)
	if err != nil {
		c.WithFields(log.Fields{"gps": gps, "err": err}).Error("make bsonM failed")
		return err
	}
	if err := im.q.Patch(c, domain.TableTransactions, bson.M{"gps": gps}, updaterBson); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"gps": gps, "err": err}).Error("q.Patch failed")
		return err
	}
	return nil
}
