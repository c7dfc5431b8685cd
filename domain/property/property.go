package property

import (
	"time"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
)

// Property is a registered title record stored in database
type Property struct {
	Gps          domain.Location     `json:"gps" bson:"gps"`
	Location     string              `json:"location" bson:"location"`
	Owner        domain.Address      `json:"owner" bson:"owner"`
	DocHash      domain.DocumentHash `json:"docHash" bson:"docHash"`
	Price        domain.Amount       `json:"price" bson:"price"`
	Verified     bool                `json:"verified" bson:"verified"`
	RegisteredAt time.Time           `json:"registeredAt" bson:"registeredAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// Updater to patch property records
type Updater struct {
	Owner     *domain.Address      `bson:"owner,omitempty"`
	DocHash   *domain.DocumentHash `bson:"docHash,omitempty"`
	Price     *domain.Amount       `bson:"price,omitempty"`
	Verified  *bool                `bson:"verified,omitempty"`
	UpdatedAt time.Time            `bson:"updatedAt,omitempty"`
}

type findPropertyOptions struct {
	Owner    *domain.Address
	Verified *bool
	Offset   *int
	Limit    *int
}

type FindPropertyOptions func(*findPropertyOptions) error

func GetFindPropertyOptions(opts ...FindPropertyOptions) (*findPropertyOptions, error) {
	res := &findPropertyOptions{}
	for _, opt := range opts {
		if err := opt(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func PropertyWithOwner(owner domain.Address) FindPropertyOptions {
	return func(opts *findPropertyOptions) error {
		opts.Owner = owner.ToLowerPtr()
		return nil
	}
}

func PropertyWithVerified(verified bool) FindPropertyOptions {
	return func(opts *findPropertyOptions) error {
		opts.Verified = &verified
		return nil
	}
}

func PropertyWithPagination(offset, limit int) FindPropertyOptions {
	return func(opts *findPropertyOptions) error {
		opts.Offset = &offset
		opts.Limit = &limit
		return nil
	}
}

// Repo is property repo
type Repo interface {
	Get(c ctx.Ctx, gps domain.Location) (*Property, error)
	Insert(c ctx.Ctx, p *Property) error
	Update(c ctx.Ctx, gps domain.Location, updater *Updater) error
	Find(c ctx.Ctx, opts ...FindPropertyOptions) ([]*Property, error)
	Count(c ctx.Ctx, opts ...FindPropertyOptions) (int, error)
}

// Usecase is property usecase
type Usecase interface {
	// Register creates an unverified record owned by the caller
	Register(c ctx.Ctx, caller domain.Address, location string, gps domain.Location, docHash domain.DocumentHash) (*Property, error)
	// Verify is restricted to the arbiter; verifying twice is a no-op
	Verify(c ctx.Ctx, caller domain.Address, gps domain.Location) error
	// UpdatePrice is restricted to the owner and only allowed while the
	// property's auction has not received a bid
	UpdatePrice(c ctx.Ctx, caller domain.Address, gps domain.Location, price domain.Amount) error
	Get(c ctx.Ctx, gps domain.Location) (*Property, error)
	Find(c ctx.Ctx, opts ...FindPropertyOptions) ([]*Property, error)
}
