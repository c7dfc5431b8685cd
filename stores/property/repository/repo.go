package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/database/mongoclient"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/property"
	"github.com/deedchain/goapi/service/query"
)

type impl struct {
	q query.Mongo
}

// New creates new property repo
func New(q query.Mongo) property.Repo {
	return &impl{q}
}

func makeSelector(opts ...property.FindPropertyOptions) (bson.M, *int, *int, error) {
	selector := bson.M{}
	options, err := property.GetFindPropertyOptions(opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	if options.Owner != nil {
		selector["owner"] = *options.Owner
	}
	if options.Verified != nil {
		selector["verified"] = *options.Verified
	}
	return selector, options.Offset, options.Limit, nil
}

func (im *impl) Get(c ctx.Ctx, gps domain.Location) (*property.Property, error) {
	p := &property.Property{}
	if err := im.q.FindOne(c, domain.TableProperties, bson.M{"gps": gps}, p); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"gps": gps, "err": err}).Error("q.FindOne failed")
		return nil, err
	}
	return p, nil
}

func (im *impl) Insert(c ctx.Ctx, p *property.Property) error {
	p.Owner = p.Owner.ToLower()
	if err := im.q.Insert(c, domain.TableProperties, p); err == query.ErrDuplicateKey {
		return domain.ErrAlreadyRegistered
	} else if err != nil {
		c.WithFields(log.Fields{"gps": p.Gps, "err": err}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *impl) Update(c ctx.Ctx, gps domain.Location, updater *property.Updater) error {
	if updater.Owner != nil {
		updater.Owner = updater.Owner.ToLowerPtr()
	}
	updaterBson, err := mongoclient.MakeBsonM(updater)
	if err != nil {
		c.WithFields(log.Fields{"gps": gps, "err": err}).Error("make bsonM failed")
		return err
	}
	if err := im.q.Patch(c, domain.TableProperties, bson.M{"gps": gps}, updaterBson); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"gps": gps, "err": err}).Error("q.Patch failed")
		return err
	}
	return nil
}

func (im *impl) Find(c ctx.Ctx, opts ...property.FindPropertyOptions) ([]*property.Property, error) {
	selector, offset, limit, err := makeSelector(opts...)
	if err != nil {
		c.WithFields(log.Fields{"err": err}).Error("makeSelector failed")
		return nil, err
	}

	res := []*property.Property{}
	offsetVal := 0
	limitVal := 0
	if offset != nil {
		offsetVal = *offset
	}
	if limit != nil {
		limitVal = *limit
	}
	if err := im.q.Search(c, domain.TableProperties, offsetVal, limitVal, "-registeredAt", selector, &res); err != nil {
		c.WithFields(log.Fields{"err": err}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(c ctx.Ctx, opts ...property.FindPropertyOptions) (int, error) {
	selector, _, _, err := makeSelector(opts...)
	if err != nil {
		c.WithFields(log.Fields{"err": err}).Error("makeSelector failed")
		return 0, err
	}

	cnt, err := im.q.Count(c, domain.TableProperties, selector)
	if err != nil {
		c.WithFields(log.Fields{"err": err}).Error("q.Count failed")
		return 0, err
	}
	return cnt, nil
}
