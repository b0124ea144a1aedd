// Package token converts decimal ticket prices into the payment token's
// smallest-unit integer representation. All arithmetic stays in
// arbitrary-precision decimals so monetary values never pass through floats.
package token

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a decimal token amount into the token's smallest unit
// (amount × 10^decimals). It fails rather than round: a price that is not
// representable at the token's precision is a caller bug, not something to
// truncate silently.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("token: negative amount %s", amount)
	}

	scaled := amount.Shift(decimals)
	if scaled.Exponent() < 0 && !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("token: %s has more than %d decimal places", amount, decimals)
	}

	return scaled.Truncate(0).BigInt(), nil
}

// FromBaseUnits is the exact inverse of ToBaseUnits.
func FromBaseUnits(units *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(units, 0).Shift(-decimals)
}

// Cost computes unitPrice × quantity in smallest units.
func Cost(unitPrice decimal.Decimal, quantity int64, decimals int32) (*big.Int, error) {
	total := unitPrice.Mul(decimal.NewFromInt(quantity))
	units, err := ToBaseUnits(total, decimals)
	if err != nil {
		return nil, fmt.Errorf("token: cost %s x %d: %w", unitPrice, quantity, err)
	}
	return units, nil
}
