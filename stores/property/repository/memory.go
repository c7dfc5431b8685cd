package repository

import (
	"sync"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/property"
)

type memoryImpl struct {
	sync.Mutex
	properties map[domain.Location]property.Property
}

// NewMemory creates an in-memory property repo for tests and local runs
func NewMemory() property.Repo {
	return &memoryImpl{
		properties: map[domain.Location]property.Property{},
	}
}

func (im *memoryImpl) Get(c ctx.Ctx, gps domain.Location) (*property.Property, error) {
	im.Lock()
	defer im.Unlock()
	p, ok := im.properties[gps]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (im *memoryImpl) Insert(c ctx.Ctx, p *property.Property) error {
	im.Lock()
	defer im.Unlock()
	if _, ok := im.properties[p.Gps]; ok {
		return domain.ErrAlreadyRegistered
	}
	cp := *p
	cp.Owner = cp.Owner.ToLower()
	im.properties[p.Gps] = cp
	return nil
}

func (im *memoryImpl) Update(c ctx.Ctx, gps domain.Location, updater *property.Updater) error {
	im.Lock()
	defer im.Unlock()
	p, ok := im.properties[gps]
	if !ok {
		return domain.ErrNotFound
	}
	if updater.Owner != nil {
		p.Owner = updater.Owner.ToLower()
	}
	if updater.DocHash != nil {
		p.DocHash = *updater.DocHash
	}
	if updater.Price != nil {
		p.Price = *updater.Price
	}
	if updater.Verified != nil {
		p.Verified = *updater.Verified
	}
	if !updater.UpdatedAt.IsZero() {
		p.UpdatedAt = updater.UpdatedAt
	}
	im.properties[gps] = p
	return nil
}

func (im *memoryImpl) Find(c ctx.Ctx, opts ...property.FindPropertyOptions) ([]*property.Property, error) {
	im.Lock()
	defer im.Unlock()
	options, err := property.GetFindPropertyOptions(opts...)
	if err != nil {
		return nil, err
	}
	res := []*property.Property{}
	for _, p := range im.properties {
		if options.Owner != nil && !p.Owner.Equals(*options.Owner) {
			continue
		}
		if options.Verified != nil && p.Verified != *options.Verified {
			continue
		}
		cp := p
		res = append(res, &cp)
	}
	return res, nil
}

func (im *memoryImpl) Count(c ctx.Ctx, opts ...property.FindPropertyOptions) (int, error) {
	res, err := im.Find(c, opts...)
	if err != nil {
		return 0, err
	}
	return len(res), nil
}
