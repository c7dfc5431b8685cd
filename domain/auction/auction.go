package auction

import (
	"encoding/json"
	"time"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
)

// ListingFeeBps is the listing fee in basis points of the starting price,
// charged when an auction is opened and credited to the arbiter.
const ListingFeeBps = 100

// ListingFee returns the fee due for a given starting price
func ListingFee(startingPrice domain.Amount) domain.Amount {
	return startingPrice * ListingFeeBps / 10000
}

// Auction is the per-property auction state stored in database.
// HighestBid starts at the starting price; a property has at most one
// active auction at a time.
type Auction struct {
	Gps           domain.Location `json:"gps" bson:"gps"`
	Seller        domain.Address  `json:"seller" bson:"seller"`
	StartingPrice domain.Amount   `json:"startingPrice" bson:"startingPrice"`
	HighestBidder domain.Address  `json:"highestBidder" bson:"highestBidder"`
	HighestBid    domain.Amount   `json:"highestBid" bson:"highestBid"`
	EndTime       time.Time       `json:"endTime" bson:"endTime"`
	Active        bool            `json:"active" bson:"active"`
	CreatedAt     time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// HasBid reports whether any bid has been placed
func (a *Auction) HasBid() bool {
	return !a.HighestBidder.IsEmpty()
}

// Updater to patch auction records
type Updater struct {
	HighestBidder *domain.Address `bson:"highestBidder,omitempty"`
	HighestBid    *domain.Amount  `bson:"highestBid,omitempty"`
	Active        *bool           `bson:"active,omitempty"`
	UpdatedAt     time.Time       `bson:"updatedAt,omitempty"`
}

// TriggerData carries the due auctions from CheckTrigger to CloseTriggered.
// It crosses the scheduler boundary as opaque bytes.
type TriggerData struct {
	Locations []domain.Location `json:"locations"`
}

func (d *TriggerData) Encode() ([]byte, error) {
	return json.Marshal(d)
}

func DecodeTriggerData(raw []byte) (*TriggerData, error) {
	data := &TriggerData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, err
	}
	return data, nil
}

type findAuctionOptions struct {
	Seller     *domain.Address
	Active     *bool
	EndTimeLTE *time.Time
	Offset     *int
	Limit      *int
}

type FindAuctionOptions func(*findAuctionOptions) error

func GetFindAuctionOptions(opts ...FindAuctionOptions) (*findAuctionOptions, error) {
	res := &findAuctionOptions{}
	for _, opt := range opts {
		if err := opt(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func AuctionWithSeller(seller domain.Address) FindAuctionOptions {
	return func(opts *findAuctionOptions) error {
		opts.Seller = seller.ToLowerPtr()
		return nil
	}
}

func AuctionWithActive(active bool) FindAuctionOptions {
	return func(opts *findAuctionOptions) error {
		opts.Active = &active
		return nil
	}
}

func AuctionWithEndTimeLTE(t time.Time) FindAuctionOptions {
	return func(opts *findAuctionOptions) error {
		opts.EndTimeLTE = &t
		return nil
	}
}

func AuctionWithPagination(offset, limit int) FindAuctionOptions {
	return func(opts *findAuctionOptions) error {
		opts.Offset = &offset
		opts.Limit = &limit
		return nil
	}
}

// Repo is auction repo
type Repo interface {
	Get(c ctx.Ctx, gps domain.Location) (*Auction, error)
	Insert(c ctx.Ctx, a *Auction) error
	Update(c ctx.Ctx, gps domain.Location, updater *Updater) error
	Find(c ctx.Ctx, opts ...FindAuctionOptions) ([]*Auction, error)
}

// Usecase is the auction engine
type Usecase interface {
	// Open starts an auction for a verified property owned by the caller.
	// The paid amount must cover the listing fee, which is credited to the
	// arbiter and never refunded.
	Open(c ctx.Ctx, caller domain.Address, gps domain.Location, startingPrice domain.Amount, duration time.Duration, paid domain.Amount) (*Auction, error)
	// Bid must strictly exceed the current highest bid. The previous highest
	// bidder's stake moves to their pending balance; nothing is paid out
	// synchronously.
	Bid(c ctx.Ctx, caller domain.Address, gps domain.Location, amount domain.Amount) error
	// Cancel is seller-only and blocked by any bid
	Cancel(c ctx.Ctx, caller domain.Address, gps domain.Location) error
	Get(c ctx.Ctx, gps domain.Location) (*Auction, error)

	// CheckTrigger reports whether any active auction is past its end time.
	// It is read-only and meant to be polled by an external scheduler.
	CheckTrigger(c ctx.Ctx) (bool, *TriggerData, error)
	// CloseTriggered closes the due auctions carried in data. Locations
	// that are still running or already closed are skipped; the call fails
	// with ErrNotDue only when nothing was left to close, so repeated and
	// racing triggers are harmless.
	CloseTriggered(c ctx.Ctx, data *TriggerData) error
}
