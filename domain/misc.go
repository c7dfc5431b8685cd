package domain

import (
	"strings"
)

// Address is an account address, lowercase hex form
type Address string

const EmptyAddress = Address("")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerPtr() *Address {
	res := a.ToLower()
	return &res
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

// Location is the GPS key identifying a property record
type Location string

func (l Location) String() string {
	return string(l)
}

// Amount is a monetary value in the smallest native currency unit
type Amount uint64

// DocumentHash is an opaque content identifier of a title document.
// The registry stores and compares it byte for byte, never fetches it.
type DocumentHash string

type SortDir int8

const (
	SortDirAsc  = 1
	SortDirDesc = -1
)

// Table is a mongo collection name
type Table string

const (
	TableAccounts     Table = "accounts"
	TableProperties   Table = "properties"
	TableAuctions     Table = "auctions"
	TableTransactions Table = "transactions"
	TableBalances     Table = "balances"
	TableActivities   Table = "activities"
)
