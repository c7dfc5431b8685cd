package activity

import (
	"time"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
)

type Type string

const (
	TypePropertyRegistered   Type = "propertyRegistered"
	TypePropertyVerified     Type = "propertyVerified"
	TypePriceUpdated         Type = "priceUpdated"
	TypeAuctionCreated       Type = "auctionCreated"
	TypeBidPlaced            Type = "bidPlaced"
	TypeAuctionCanceled      Type = "auctionCanceled"
	TypeAuctionEnded         Type = "auctionEnded"
	TypeTransactionConfirmed Type = "transactionConfirmed"
	TypeTransactionFinalized Type = "transactionFinalized"
	TypeWithdrawal           Type = "withdrawal"
)

// Activity is an observable registry event stored in database for
// monitoring and UI collaborators.
type Activity struct {
	Id      string          `json:"id" bson:"id"`
	Type    Type            `json:"type" bson:"type"`
	Gps     domain.Location `json:"gps,omitempty" bson:"gps,omitempty"`
	Account domain.Address  `json:"account,omitempty" bson:"account,omitempty"`
	To      domain.Address  `json:"to,omitempty" bson:"to,omitempty"`
	Amount  domain.Amount   `json:"amount,omitempty" bson:"amount,omitempty"`
	Time    time.Time       `json:"time" bson:"time"`
}

type findActivityOptions struct {
	Gps     *domain.Location
	Account *domain.Address
	Types   []Type
	Offset  *int
	Limit   *int
}

type FindActivityOptions func(*findActivityOptions) error

func GetFindActivityOptions(opts ...FindActivityOptions) (*findActivityOptions, error) {
	res := &findActivityOptions{}
	for _, opt := range opts {
		if err := opt(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func ActivityWithGps(gps domain.Location) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.Gps = &gps
		return nil
	}
}

func ActivityWithAccount(account domain.Address) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.Account = account.ToLowerPtr()
		return nil
	}
}

func ActivityWithTypes(types ...Type) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.Types = types
		return nil
	}
}

func ActivityWithPagination(offset, limit int) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.Offset = &offset
		opts.Limit = &limit
		return nil
	}
}

// Repo is activity repo
type Repo interface {
	Insert(c ctx.Ctx, a *Activity) error
	FindActivities(c ctx.Ctx, opts ...FindActivityOptions) ([]Activity, error)
	CountActivities(c ctx.Ctx, opts ...FindActivityOptions) (int, error)
}

// Usecase is activity usecase
type Usecase interface {
	Insert(c ctx.Ctx, a *Activity) error
	FindActivities(c ctx.Ctx, opts ...FindActivityOptions) ([]Activity, error)
}
