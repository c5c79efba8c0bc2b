package commission

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
)

const (
	// DefaultCurrency is used when neither the sale nor its snapshot carries a currency.
	DefaultCurrency = enums.CurrencyKRW
)

var (
	// DefaultWithholdingRate is the platform withholding percentage.
	DefaultWithholdingRate = decimal.RequireFromString("3.3")

	hundred = decimal.NewFromInt(100)
)

// Defaults are the platform-wide fallbacks applied when an input omits a value.
type Defaults struct {
	WithholdingRate decimal.Decimal
	Currency        enums.Currency
}

// Input carries the monetary facts of one sale. Amounts are in minor currency units.
// Null commissions fall back to the snapshot and then to zero. Null or negative rates
// fall back to the platform default.
type Input struct {
	SaleAmount             decimal.Decimal
	CostAmount             decimal.Decimal
	BranchCommission       decimal.NullDecimal
	SalesCommission        decimal.NullDecimal
	OverrideCommission     decimal.NullDecimal
	WithholdingRate        decimal.NullDecimal
	ManagerWithholdingRate decimal.NullDecimal
	// IncludeHQNet defaults to true when nil.
	IncludeHQNet *bool
	Currency     enums.Currency
	Snapshot     *TierSnapshot
}

// Breakdown is the itemized split of a sale. Every amount is a whole number of minor units.
type Breakdown struct {
	SaleAmount             int64           `json:"sale_amount"`
	CostAmount             int64           `json:"cost_amount"`
	NetRevenue             int64           `json:"net_revenue"`
	HQNet                  int64           `json:"hq_net"`
	BranchCommission       int64           `json:"branch_commission"`
	SalesCommission        int64           `json:"sales_commission"`
	OverrideCommission     int64           `json:"override_commission"`
	WithholdingAmount      int64           `json:"withholding_amount"`
	BranchWithholding      int64           `json:"branch_withholding"`
	OverrideWithholding    int64           `json:"override_withholding"`
	TotalWithholding       int64           `json:"total_withholding"`
	WithholdingRate        decimal.Decimal `json:"withholding_rate"`
	ManagerWithholdingRate decimal.Decimal `json:"manager_withholding_rate"`
	IncludeHQNet           bool            `json:"include_hq_net"`
	Currency               enums.Currency  `json:"currency"`
}

// PayeeTotal is the sum of the HQ share and the three commissions.
func (b Breakdown) PayeeTotal() int64 {
	return b.HQNet + b.BranchCommission + b.SalesCommission + b.OverrideCommission
}

// Reconciles reports whether the split adds back up to the net revenue.
func (b Breakdown) Reconciles() bool {
	return b.IncludeHQNet && b.PayeeTotal() == b.NetRevenue
}

// Calculator splits a sale's net revenue. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	defaults Defaults
}

// NewCalculator returns a calculator using the provided platform defaults.
// An invalid currency or a negative rate is replaced by the package default.
func NewCalculator(defaults Defaults) *Calculator {
	if !defaults.Currency.IsValid() {
		defaults.Currency = DefaultCurrency
	}
	if defaults.WithholdingRate.IsNegative() {
		defaults.WithholdingRate = DefaultWithholdingRate
	}
	return &Calculator{defaults: defaults}
}

// Defaults returns the effective platform defaults.
func (c *Calculator) Defaults() Defaults {
	return c.defaults
}

// Calculate computes the breakdown for in. It never fails: negative inputs count as zero.
func (c *Calculator) Calculate(in Input) Breakdown {
	snap := in.Snapshot

	sale := roundMinor(in.SaleAmount)
	cost := roundMinor(in.CostAmount)
	net := sale.Sub(cost)

	branch := roundMinor(firstValid(in.BranchCommission, snap.branch()))
	sales := roundMinor(firstValid(in.SalesCommission, snap.sales()))
	override := roundMinor(firstValid(in.OverrideCommission, snap.override()))

	includeHQ := in.IncludeHQNet == nil || *in.IncludeHQNet
	hq := decimal.Zero
	if includeHQ {
		if share := snap.hq(); share.Valid {
			hq = share.Decimal.Round(0)
		} else {
			hq = net.Sub(branch).Sub(sales).Sub(override)
		}
		if hq.IsNegative() {
			hq = decimal.Zero
		}
	}

	rate := c.defaults.WithholdingRate
	if validRate(in.WithholdingRate) {
		rate = in.WithholdingRate.Decimal
	}
	managerRate := rate
	if validRate(in.ManagerWithholdingRate) {
		managerRate = in.ManagerWithholdingRate.Decimal
	}

	salesWithholding := withhold(sales, rate)
	branchWithholding := withhold(branch, managerRate)
	overrideWithholding := withhold(override, managerRate)

	return Breakdown{
		SaleAmount:             sale.IntPart(),
		CostAmount:             cost.IntPart(),
		NetRevenue:             net.IntPart(),
		HQNet:                  hq.IntPart(),
		BranchCommission:       branch.IntPart(),
		SalesCommission:        sales.IntPart(),
		OverrideCommission:     override.IntPart(),
		WithholdingAmount:      salesWithholding.IntPart(),
		BranchWithholding:      branchWithholding.IntPart(),
		OverrideWithholding:    overrideWithholding.IntPart(),
		TotalWithholding:       salesWithholding.Add(branchWithholding).Add(overrideWithholding).IntPart(),
		WithholdingRate:        rate,
		ManagerWithholdingRate: managerRate,
		IncludeHQNet:           includeHQ,
		Currency:               c.currency(in),
	}
}

func (c *Calculator) currency(in Input) enums.Currency {
	if in.Currency.IsValid() {
		return in.Currency
	}
	if in.Snapshot != nil && in.Snapshot.Currency.IsValid() {
		return in.Snapshot.Currency
	}
	return c.defaults.Currency
}

// withhold returns round(amount * rate / 100), zero for a zero commission.
func withhold(amount, rate decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(rate).Div(hundred).Round(0)
}

// roundMinor rounds half away from zero after flooring negatives at zero.
func roundMinor(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v.Round(0)
}

func firstValid(values ...decimal.NullDecimal) decimal.Decimal {
	for _, v := range values {
		if v.Valid {
			return v.Decimal
		}
	}
	return decimal.Zero
}

func validRate(rate decimal.NullDecimal) bool {
	return rate.Valid && !rate.Decimal.IsNegative()
}

// Amount wraps a minor-unit amount as a present optional value.
func Amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// OptionalAmount converts a nullable column into an optional amount.
func OptionalAmount(v *int64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return Amount(*v)
}

// RateFromFloat converts a percentage. NaN, infinities and negative values are reported
// as absent so the platform default applies.
func RateFromFloat(v float64) decimal.NullDecimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

// AmountFromFloat converts a raw amount, treating NaN and infinities as zero.
func AmountFromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Bool returns a pointer to v, for optional flags such as Input.IncludeHQNet.
func Bool(v bool) *bool {
	return &v
}
