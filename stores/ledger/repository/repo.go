package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/ledger"
	"github.com/deedchain/goapi/service/query"
)

type impl struct {
	q query.Mongo
}

// New creates new balance repo
func New(q query.Mongo) ledger.Repo {
	return &impl{q}
}

func (im *impl) Get(c ctx.Ctx, account domain.Address) (*ledger.Balance, error) {
	b := &ledger.Balance{}
	if err := im.q.FindOne(c, domain.TableBalances, bson.M{"account": account.ToLower()}, b); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"account": account, "err": err}).Error("q.FindOne failed")
		return nil, err
	}
	return b, nil
}

func (im *impl) Add(c ctx.Ctx, account domain.Address, amount domain.Amount) error {
	b := &ledger.Balance{}
	if err := im.q.Increment(c, domain.TableBalances, bson.M{"account": account.ToLower()}, b, "pending", int64(amount)); err != nil {
		c.WithFields(log.Fields{"account": account, "amount": amount, "err": err}).Error("q.Increment failed")
		return err
	}
	return nil
}

func (im *impl) SetZero(c ctx.Ctx, account domain.Address) error {
	update := bson.M{"pending": uint64(0), "updatedAt": time.Now()}
	if err := im.q.Patch(c, domain.TableBalances, bson.M{"account": account.ToLower()}, update); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"account": account, "err": err}).Error("q.Patch failed")
		return err
	}
	return nil
}
