package pricefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deedchain/goapi/domain"
)

func TestToDisplayString(t *testing.T) {
	assert.Equal(t, "1.5", ToDisplayString(domain.Amount(1500000000000000000)))
	assert.Equal(t, "0", ToDisplayString(domain.Amount(0)))
	assert.Equal(t, "0.000000000000000001", ToDisplayString(domain.Amount(1)))

	// above int64 range, must not wrap negative
	assert.Equal(t, "10", ToDisplayString(domain.Amount(10000000000000000000)))
	assert.Equal(t, "18.446744073709551615", ToDisplayString(domain.Amount(18446744073709551615)))
}

func TestFromDisplayString(t *testing.T) {
	amount, err := FromDisplayString("2")
	assert.NoError(t, err)
	assert.Equal(t, domain.Amount(2000000000000000000), amount)

	amount, err = FromDisplayString("0.5")
	assert.NoError(t, err)
	assert.Equal(t, domain.Amount(500000000000000000), amount)

	amount, err = FromDisplayString("10")
	assert.NoError(t, err)
	assert.Equal(t, domain.Amount(10000000000000000000), amount)

	_, err = FromDisplayString("-1")
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = FromDisplayString("20")
	assert.ErrorIs(t, err, ErrAmountOverflow)

	_, err = FromDisplayString("abc")
	assert.Error(t, err)
}
