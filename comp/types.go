/*
Package comp provides the core compensation calculation primitives.

PURPOSE:
  This package contains the domain-agnostic building blocks shared by both
  compensation tracks: the quarterly weighted-bucket bonus and the monthly
  tiered-rate commission. It knows about money, ratios, periods, weights,
  and attainment math - and nothing about buckets, rate matrices, or orders.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount (decimal-backed, no float drift)
  - Ratio: A dimensionless fraction (weights, rates, attainment)
  - Typed IDs: RepID, CustomerID, OrderID, SegmentID, ProductCode
  - TransferStatus: manual override for customer-transfer handling
  - CustomerStatus: recency classification driving rate lookup

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Purity: Calculation functions take values, return values, no I/O
  3. Type Safety: Strong typing prevents mixing rep/customer/order IDs

SEE ALSO:
  - weights.go: Weight sum validation
  - attainment.go: Attainment and payout-fraction calculation
  - period.go: Quarter and calendar-month period math
*/
package comp

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount
// =============================================================================

// Money is a currency amount. The engine never mixes currencies, so the
// currency itself is implicit.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

// MustParseMoney parses a decimal string, returning zero on failure.
// Intended for constants and config defaults, not user input.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money          { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money          { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) MulRatio(r Ratio) Money     { return Money{Value: m.Value.Mul(r.Value)} }
func (m Money) Neg() Money                 { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool               { return m.Value.IsZero() }
func (m Money) IsNegative() bool           { return m.Value.IsNegative() }
func (m Money) IsPositive() bool           { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool   { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool      { return m.Value.LessThan(o.Value) }
func (m Money) Equal(o Money) bool         { return m.Value.Equal(o.Value) }
func (m Money) Min(o Money) Money          { if m.LessThan(o) { return m }; return o }
func (m Money) Max(o Money) Money          { if m.GreaterThan(o) { return m }; return o }

// Round returns the amount rounded to cents. Output records are rounded;
// intermediate math never is.
func (m Money) Round() Money { return Money{Value: m.Value.Round(2)} }

func (m Money) String() string { return m.Value.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error)  { return m.Value.MarshalJSON() }
func (m *Money) UnmarshalJSON(b []byte) error { return m.Value.UnmarshalJSON(b) }

// DivMoney returns m / o as a Ratio. Callers must guard o != 0; the
// attainment calculator never divides by a non-positive goal.
func (m Money) DivMoney(o Money) Ratio {
	return Ratio{Value: m.Value.Div(o.Value)}
}

// =============================================================================
// RATIO - Dimensionless fraction
// =============================================================================

// Ratio is a dimensionless fraction: bucket weights, role-scale percentages,
// commission rates, attainment. A rate of 8% is Ratio 0.08.
type Ratio struct {
	Value decimal.Decimal
}

func NewRatio(value float64) Ratio {
	return Ratio{Value: decimal.NewFromFloat(value)}
}

// RatioFromPercent converts a human percentage (8 = 8%) into a Ratio.
func RatioFromPercent(pct float64) Ratio {
	return Ratio{Value: decimal.NewFromFloat(pct).Div(decimal.NewFromInt(100))}
}

func ZeroRatio() Ratio { return Ratio{Value: decimal.Zero} }
func OneRatio() Ratio  { return Ratio{Value: decimal.NewFromInt(1)} }

func (r Ratio) Add(o Ratio) Ratio        { return Ratio{Value: r.Value.Add(o.Value)} }
func (r Ratio) Sub(o Ratio) Ratio        { return Ratio{Value: r.Value.Sub(o.Value)} }
func (r Ratio) Mul(o Ratio) Ratio        { return Ratio{Value: r.Value.Mul(o.Value)} }
func (r Ratio) Neg() Ratio               { return Ratio{Value: r.Value.Neg()} }
func (r Ratio) IsZero() bool             { return r.Value.IsZero() }
func (r Ratio) IsNegative() bool         { return r.Value.IsNegative() }
func (r Ratio) IsPositive() bool         { return r.Value.IsPositive() }
func (r Ratio) GreaterThan(o Ratio) bool { return r.Value.GreaterThan(o.Value) }
func (r Ratio) LessThan(o Ratio) bool    { return r.Value.LessThan(o.Value) }
func (r Ratio) Equal(o Ratio) bool       { return r.Value.Equal(o.Value) }

func (r Ratio) GreaterThanOrEqual(o Ratio) bool { return !r.Value.LessThan(o.Value) }

// Clamp bounds the ratio to [lo, hi].
func (r Ratio) Clamp(lo, hi Ratio) Ratio {
	if r.LessThan(lo) {
		return lo
	}
	if r.GreaterThan(hi) {
		return hi
	}
	return r
}

func (r Ratio) Float64() float64 {
	f, _ := r.Value.Float64()
	return f
}

func (r Ratio) String() string { return r.Value.String() }

func (r Ratio) MarshalJSON() ([]byte, error)  { return r.Value.MarshalJSON() }
func (r *Ratio) UnmarshalJSON(b []byte) error { return r.Value.UnmarshalJSON(b) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RepID string
type CustomerID string
type OrderID string
type SegmentID string
type ProductCode string

// Title is a sales role title (e.g., "Account Executive"). Role scales,
// budgets, and rate-matrix rows are all keyed by title.
type Title string

// BucketCode is a single-letter quarterly bucket identifier (A, B, C, D).
type BucketCode string

// =============================================================================
// TRANSFER STATUS - Manual override for customer-transfer handling
// =============================================================================

// TransferStatus controls whether a customer's commissions resolve through
// the transfer path or the standard path.
type TransferStatus string

const (
	// TransferAuto: derive from order history and the reorg rule.
	TransferAuto TransferStatus = "auto"

	// TransferOwn: the rep originated this customer; always standard path.
	TransferOwn TransferStatus = "own"

	// TransferTransferred: customer was reassigned; always transfer path.
	TransferTransferred TransferStatus = "transferred"
)

// ParseTransferStatus maps a stored string to a TransferStatus,
// defaulting to auto.
func ParseTransferStatus(s string) TransferStatus {
	switch s {
	case string(TransferOwn):
		return TransferOwn
	case string(TransferTransferred):
		return TransferTransferred
	default:
		return TransferAuto
	}
}

// =============================================================================
// CUSTOMER STATUS - Recency classification for rate lookup
// =============================================================================

// CustomerStatus classifies a customer by order recency. It selects the
// rate-matrix row together with the rep's title and the customer's segment.
type CustomerStatus string

const (
	StatusNewBusiness    CustomerStatus = "new_business"
	Status6MonthActive   CustomerStatus = "6_month_active"
	Status12MonthActive  CustomerStatus = "12_month_active"
)
