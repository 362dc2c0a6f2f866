package pricing

import "github.com/shopspring/decimal"

// Input bounds of the editing form. Compute itself accepts any rate below 100.
var (
	MaxRejectRatePct = decimal.NewFromInt(30)
	MaxTaxPct        = decimal.NewFromInt(20)
	MaxCommissionPct = decimal.NewFromInt(30)
	MinBatchSize     = 1
)

// Clamp pulls out-of-range inputs back to the nearest accepted value instead
// of rejecting them. Materials are copied.
func Clamp(in BatchInputs) BatchInputs {
	out := in
	out.Materials = make([]MaterialLine, len(in.Materials))
	for i, m := range in.Materials {
		m.UnitCost = nonNegative(m.UnitCost)
		out.Materials[i] = m
	}

	out.LaborUnit = nonNegative(in.LaborUnit)
	out.FiringUnit = nonNegative(in.FiringUnit)
	out.PackUnit = nonNegative(in.PackUnit)
	out.MarketingTotal = nonNegative(in.MarketingTotal)
	out.SellPrice = nonNegative(in.SellPrice)
	out.BatchSize = max(in.BatchSize, MinBatchSize)

	out.RejectRatePct = between(in.RejectRatePct, MaxRejectRatePct)
	out.TaxPct = between(in.TaxPct, MaxTaxPct)
	out.MarketplaceCommissionPct = between(in.MarketplaceCommissionPct, MaxCommissionPct)

	return out
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func between(v, upper decimal.Decimal) decimal.Decimal {
	return decimal.Min(nonNegative(v), upper)
}
