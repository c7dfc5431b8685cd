package account

import (
	"errors"
	"time"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
)

// Account is user's account stored in database
type Account struct {
	Address   domain.Address `bson:"address"`
	Alias     string         `bson:"alias"`
	Email     string         `bson:"email"`
	Nonce     int32          `bson:"nonce"`
	CreatedAt time.Time      `bson:"createdAt,omitempty"`
	UpdatedAt time.Time      `bson:"updatedAt,omitempty"`
}

func unixMilli(t time.Time) int64 {
	return t.Unix()*1e3 + int64(t.Nanosecond())/1e6
}

func (a *Account) ToInfo() *Info {
	return &Info{
		Address:     a.Address,
		Alias:       a.Alias,
		Email:       a.Email,
		CreatedAtMs: unixMilli(a.CreatedAt),
		UpdatedAtMs: unixMilli(a.UpdatedAt),
	}
}

// Info is account struct returned to client which contains public info
type Info struct {
	Address     domain.Address `json:"address"`
	Alias       string         `json:"alias"`
	Email       string         `json:"email"`
	CreatedAtMs int64          `json:"createdAtMs,omitempty"`
	UpdatedAtMs int64          `json:"updatedAtMs,omitempty"`
	IsArbiter   bool           `json:"isArbiter"`
}

// Updater to update account info
type Updater struct {
	Alias     *string   `json:"alias" bson:"alias"`
	Email     *string   `json:"email" bson:"email"`
	Nonce     int32     `json:"-" bson:"nonce"`
	UpdatedAt time.Time `json:"-" bson:"updatedAt,omitempty"`
}

var (
	// ErrInvalidNonce occured when validating a signature but the nonce of the address has not generated
	ErrInvalidNonce = errors.New("invalid nonce")
	// ErrInvalidSignature occured when a signature is invalid
	ErrInvalidSignature = errors.New("invalid signature")
)

// Usecase is account usecase
type Usecase interface {
	Create(c ctx.Ctx, address domain.Address) (*Info, error)
	Get(c ctx.Ctx, address domain.Address) (*Info, error)
	GenerateNonce(c ctx.Ctx, address domain.Address) (int32, error)
	ValidateSignature(c ctx.Ctx, address domain.Address, signature string) error
	Update(c ctx.Ctx, address domain.Address, updater *Updater) (*Info, error)
}

// Repo is account repo
type Repo interface {
	Get(c ctx.Ctx, address domain.Address) (*Account, error)
	Insert(c ctx.Ctx, account *Account) error
	Update(c ctx.Ctx, address domain.Address, updater *Updater) error
}
