package pricing

import "github.com/shopspring/decimal"

// LineKind identifies a row of the price breakdown.
type LineKind string

const (
	LineRevenue    LineKind = "revenue"
	LineProduction LineKind = "production"
	LineMarketing  LineKind = "marketing"
	LineCommission LineKind = "commission"
	LineTax        LineKind = "tax"
	LineNetProfit  LineKind = "net_profit"
)

// BreakdownLine is one row of the detailed price structure.
// Share is a fraction of the sell price and is zero when the price is zero.
type BreakdownLine struct {
	Kind  LineKind        `json:"kind"`
	Unit  decimal.Decimal `json:"unit"`
	Batch decimal.Decimal `json:"batch"`
	Share decimal.Decimal `json:"share"`
}

// Breakdown splits the sell price into production, marketing, commission,
// tax and profit, per unit and for the sellable part of the batch.
func Breakdown(in BatchInputs, m Metrics) []BreakdownLine {
	sellable := decimal.NewFromInt(int64(m.SellableUnits))

	share := func(unit decimal.Decimal) decimal.Decimal {
		if in.SellPrice.IsZero() {
			return decimal.Zero
		}
		return unit.Div(in.SellPrice)
	}
	cost := func(kind LineKind, unit decimal.Decimal) BreakdownLine {
		return BreakdownLine{Kind: kind, Unit: unit, Batch: unit.Mul(sellable), Share: share(unit)}
	}

	return []BreakdownLine{
		{Kind: LineRevenue, Unit: in.SellPrice, Batch: in.SellPrice.Mul(sellable), Share: decimal.NewFromInt(1)},
		cost(LineProduction, m.UnitProd),
		cost(LineMarketing, m.UnitMarketing),
		cost(LineCommission, m.UnitCommission),
		cost(LineTax, m.UnitTax),
		{Kind: LineNetProfit, Unit: m.UnitProfit, Batch: m.TotalProfit, Share: share(m.UnitProfit)},
	}
}
