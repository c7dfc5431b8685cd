package pricefmt

import (
	"math/big"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/deedchain/goapi/domain"
)

// NativeDecimals is the decimal precision of the native settlement token.
const NativeDecimals = 18

var (
	ErrNegativeAmount = xerrors.New("negative amount")
	ErrAmountOverflow = xerrors.New("amount overflows native unit range")
)

// ToDisplay renders a base-unit amount as a display price, e.g. 1500000000000000000 -> "1.5".
// Amounts are unsigned and may exceed int64, so go through big.Int.
func ToDisplay(amount domain.Amount) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(amount)), -NativeDecimals)
}

// ToDisplayString is a convenience wrapper around ToDisplay.
func ToDisplayString(amount domain.Amount) string {
	return ToDisplay(amount).String()
}

// FromDisplayString parses a display price back into base units.
// Fractions below base-unit precision are truncated.
func FromDisplayString(displayPrice string) (domain.Amount, error) {
	d, err := decimal.NewFromString(displayPrice)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	v := d.Shift(NativeDecimals).BigInt()
	if !v.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return domain.Amount(v.Uint64()), nil
}
