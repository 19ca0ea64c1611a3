// Package money provides currency-safe arithmetic for ledger amounts using
// integer minor units (fen for CNY) and the Fowler Money pattern.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CNY is the ledger currency (ISO-4217).
const CNY = "CNY"

// DefaultCurrency is used whenever a currency code is missing or unknown.
const DefaultCurrency = CNY

// ErrOutOfRange is returned for amounts whose minor units do not fit an
// int64.
var ErrOutOfRange = errors.New("amount out of range")

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units and a currency code.
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{m: money.New(amountMinor, normalizeCode(currencyCode))}
}

// NewFromDecimal creates Money from a major-unit decimal (800.5 yuan).
// Sub-fen digits are rounded half away from zero.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) (*Money, error) {
	code := normalizeCode(currencyCode)
	currency := money.GetCurrency(code)

	minor := amount.Shift(int32(currency.Fraction)).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return nil, fmt.Errorf("%w: %s %s", ErrOutOfRange, amount.String(), code)
	}
	return New(minor.IntPart(), code), nil
}

// Yuan is NewFromDecimal in CNY.
func Yuan(amount decimal.Decimal) (*Money, error) {
	return NewFromDecimal(amount, CNY)
}

// Zero returns a zero Money value for the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

func normalizeCode(code string) string {
	if code == "" || money.GetCurrency(code) == nil {
		return DefaultCurrency
	}
	return code
}

// Amount returns the amount in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Subtract subtracts other from m. Returns error if currencies don't match.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if other == nil || other.m == nil {
		return m, nil
	}
	if m == nil || m.m == nil {
		return &Money{m: other.m.Negative()}, nil
	}

	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display returns the currency formatted string, e.g. "1,200.00 元".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return Zero(DefaultCurrency).Display()
	}
	return m.m.Display()
}

// String returns the major-unit amount without trailing zeros ("800",
// "88.5"), the form people write on a gift card.
func (m *Money) String() string {
	return m.ToDecimal().String()
}

// ToDecimal converts to a major-unit decimal.Decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(map[string]interface{}{
		"amount":   m.Amount(),
		"currency": m.Currency(),
		"display":  m.Display(),
	})
}

// Scan reads a minor-unit integer column. The currency lives in its own
// column, so the value is tagged with DefaultCurrency.
func (m *Money) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		m.m = nil
		return nil
	case int64:
		m.m = money.New(v, DefaultCurrency)
		return nil
	case int32:
		m.m = money.New(int64(v), DefaultCurrency)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
}
