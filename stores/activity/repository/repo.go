package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/activity"
	"github.com/deedchain/goapi/service/query"
)

type impl struct {
	q query.Mongo
}

// New creates new activity repo
func New(q query.Mongo) activity.Repo {
	return &impl{q}
}

func makeSelector(opts ...activity.FindActivityOptions) (bson.M, *int, *int, error) {
	selector := bson.M{}
	options, err := activity.GetFindActivityOptions(opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	if options.Gps != nil {
		selector["gps"] = *options.Gps
	}
	if options.Account != nil {
		selector["account"] = *options.Account
	}
	if len(options.Types) > 0 {
		selector["type"] = bson.M{"$in": options.Types}
	}
	return selector, options.Offset, options.Limit, nil
}

func (im *impl) Insert(c ctx.Ctx, a *activity.Activity) error {
	a.Account = a.Account.ToLower()
	a.To = a.To.ToLower()
	if err := im.q.Insert(c, domain.TableActivities, a); err != nil {
		c.WithFields(log.Fields{"type": a.Type, "err": err}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *impl) FindActivities(c ctx.Ctx, opts ...activity.FindActivityOptions) ([]activity.Activity, error) {
	selector, offset, limit, err := makeSelector(opts...)
	if err != nil {
		c.WithFields(log.Fields{"err": err}).Error("makeSelector failed")
		return nil, err
	}

	offsetVal := 0
	limitVal := 0
	if offset != nil {
		offsetVal = *offset
	}
	if limit != nil {
		limitVal = *limit
	}

	res := []activity.Activity{}
	if err := im.q.Search(c, domain.TableActivities, offsetVal, limitVal, "-time", selector, &res); err != nil {
		c.WithFields(log.Fields{"err": err}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) CountActivities(c ctx.Ctx, opts ...activity.FindActivityOptions) (int, error) {
	selector, _, _, err := makeSelector(opts...)
	if err != nil {
		c.WithFields(log.Fields{"err": err}).Error("makeSelector failed")
		return 0, err
	}

	cnt, err := im.q.Count(c, domain.TableActivities, selector)
	if err != nil {
		c.WithFields(log.Fields{"err": err}).Error("q.Count failed")
		return 0, err
	}
	return cnt, nil
}
