package ledger

import (
	"time"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
)

// Balance is an account's pending-return balance stored in database.
// It only grows when the account is outbid or a settlement completes in
// its favor, and is zeroed by withdrawal.
type Balance struct {
	Account   domain.Address `json:"account" bson:"account"`
	Pending   domain.Amount  `json:"pending" bson:"pending"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// Payout releases withdrawn funds to the recipient. It is an external
// collaborator; its code may call back into the registry, which is why
// balances are zeroed before Release runs.
type Payout interface {
	Release(c ctx.Ctx, to domain.Address, amount domain.Amount) error
}

// Repo is ledger balance repo
type Repo interface {
	Get(c ctx.Ctx, account domain.Address) (*Balance, error)
	// Add increases the account's pending balance, creating the entry on
	// first credit
	Add(c ctx.Ctx, account domain.Address, amount domain.Amount) error
	// SetZero clears the account's pending balance
	SetZero(c ctx.Ctx, account domain.Address) error
}

// Usecase is the ledger balance tracker
type Usecase interface {
	// Credit is internal-only, called by the auction engine and escrow
	// protocol under their own serialization; amounts are trusted
	Credit(c ctx.Ctx, account domain.Address, amount domain.Amount) error
	BalanceOf(c ctx.Ctx, account domain.Address) (domain.Amount, error)
	// Withdraw zeroes the caller's balance before releasing funds so a
	// re-entrant call during the release observes nothing to withdraw
	Withdraw(c ctx.Ctx, caller domain.Address) (domain.Amount, error)
}
