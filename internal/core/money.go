// Package core provides money parsing and handling utilities.
//
// Amounts are kept as decimals for arithmetic and converted to integer
// centavos only at the storage boundary.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountTooLarge = errors.New("amount does not fit in int64 centavos")
)

var hundred = decimal.NewFromInt(100)

// Money is a positive or signed amount of reais.
type Money struct {
	decimal.Decimal
}

// ParseMoney converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signs are rejected; the result may still be zero, which callers
// check with Validate.
//
// Examples:
//
//	ParseMoney("25")    -> 25.00
//	ParseMoney("25,5")  -> 25.50
//	ParseMoney("-1")    -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// NewMoney builds Money from a whole number of reais and centavos, e.g. NewMoney(25, 50) is 25.50.
func NewMoney(reais, centavos int64) Money {
	return Money{Decimal: decimal.NewFromInt(reais).Add(decimal.New(centavos, -2))}
}

// MoneyFromCents converts a stored centavo count back to Money.
func MoneyFromCents(cents int64) Money {
	return Money{Decimal: decimal.New(cents, -2)}
}

// Cents returns the amount in centavos, rounded half away from zero.
func (m Money) Cents() int64 {
	return m.Decimal.Mul(hundred).Round(0).IntPart()
}

// Validate accepts positive amounts whose centavo value fits the int64
// storage column.
func (m Money) Validate() error {
	if !m.Decimal.IsPositive() {
		return ErrInvalidAmount
	}
	if !m.Decimal.Mul(hundred).Round(0).BigInt().IsInt64() {
		return ErrAmountTooLarge
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// Percent returns m as a percentage of total, or zero when total is not positive.
func (m Money) Percent(total Money) decimal.Decimal {
	if !total.Decimal.IsPositive() {
		return decimal.Zero
	}
	return m.Decimal.Div(total.Decimal).Mul(hundred)
}

// String always renders exactly two decimal digits ("50.00").
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// BRL renders the amount the way replies show it ("R$ 50.00").
func (m Money) BRL() string {
	return "R$ " + m.String()
}
