package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// ErrAlreadyRegistered occurs when registering a location that already has a record
	ErrAlreadyRegistered = errors.New("property already registered")
	// ErrUnauthorized occurs on a role or ownership mismatch
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotVerified occurs when auctioning a property the arbiter has not verified
	ErrNotVerified = errors.New("property not verified")
	// ErrAuctionAlreadyActive occurs when opening a second auction for a property
	ErrAuctionAlreadyActive = errors.New("auction already active")
	// ErrAuctionNotActive occurs when acting on a property with no running auction
	ErrAuctionNotActive = errors.New("auction not active")
	// ErrAuctionEnded occurs when bidding after the auction end time
	ErrAuctionEnded = errors.New("auction ended")
	// ErrAuctionLocked occurs when updating price after bids have been placed
	ErrAuctionLocked = errors.New("auction locked by bids")
	// ErrHasBids occurs when canceling an auction that received a bid
	ErrHasBids = errors.New("auction has bids")
	// ErrNotDue occurs when a close trigger fires before end time or re-fires
	// after the auction is already closed
	ErrNotDue = errors.New("auction close not due")
	// ErrNoActiveTransaction occurs when confirming or finalizing without a
	// pending escrow transaction
	ErrNoActiveTransaction = errors.New("no active transaction")
	// ErrNotBothConfirmed occurs when finalizing before buyer and seller confirmed
	ErrNotBothConfirmed = errors.New("buyer and seller not both confirmed")
	// ErrNothingToWithdraw occurs when withdrawing a zero balance
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	// ErrInsufficientFee occurs when the listing fee payment is short
	ErrInsufficientFee = errors.New("insufficient listing fee")
	// ErrInvalidAmount occurs on a non-increasing bid
	ErrInvalidAmount = errors.New("bid amount must exceed highest bid")

	// request error
	ErrInvalidAddress = errors.New("Invalid address")
)
