package escrow

import (
	"time"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
)

// Transaction is the post-auction settlement entry awaiting dual
// confirmation and arbiter finalization. Created exactly once per sold
// auction, deactivated exactly once on finalization.
type Transaction struct {
	Gps             domain.Location `json:"gps" bson:"gps"`
	Buyer           domain.Address  `json:"buyer" bson:"buyer"`
	Seller          domain.Address  `json:"seller" bson:"seller"`
	Amount          domain.Amount   `json:"amount" bson:"amount"`
	BuyerConfirmed  bool            `json:"buyerConfirmed" bson:"buyerConfirmed"`
	SellerConfirmed bool            `json:"sellerConfirmed" bson:"sellerConfirmed"`
	Active          bool            `json:"active" bson:"active"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// BothConfirmed reports whether buyer and seller both confirmed
func (t *Transaction) BothConfirmed() bool {
	return t.BuyerConfirmed && t.SellerConfirmed
}

// Updater to patch transaction records
type Updater struct {
	BuyerConfirmed  *bool     `bson:"buyerConfirmed,omitempty"`
	SellerConfirmed *bool     `bson:"sellerConfirmed,omitempty"`
	Active          *bool     `bson:"active,omitempty"`
	UpdatedAt       time.Time `bson:"updatedAt,omitempty"`
}

// Repo is escrow transaction repo
type Repo interface {
	Get(c ctx.Ctx, gps domain.Location) (*Transaction, error)
	Insert(c ctx.Ctx, t *Transaction) error
	Update(c ctx.Ctx, gps domain.Location, updater *Updater) error
}

// Usecase is the escrow settlement protocol
type Usecase interface {
	// Confirm records buyer or seller intent; confirming twice by the same
	// party is a no-op and never double-counts toward finalization
	Confirm(c ctx.Ctx, caller domain.Address, gps domain.Location) error
	// AdminFinalize is arbiter-only and requires both confirmations. As one
	// unit it transfers ownership to the buyer, rewrites the document hash,
	// credits the seller's pending balance and deactivates the transaction.
	AdminFinalize(c ctx.Ctx, caller domain.Address, gps domain.Location, newDocHash domain.DocumentHash) error
	Get(c ctx.Ctx, gps domain.Location) (*Transaction, error)
}
