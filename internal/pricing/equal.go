package pricing

import "slices"

// Equal reports whether two material lines hold the same name and cost.
func (m MaterialLine) Equal(o MaterialLine) bool {
	return m.Name == o.Name && m.UnitCost.Equal(o.UnitCost)
}

// Equal compares inputs by value; decimals are equal when numerically equal
// regardless of their scale.
func (in BatchInputs) Equal(o BatchInputs) bool {
	return slices.EqualFunc(in.Materials, o.Materials, MaterialLine.Equal) &&
		in.LaborUnit.Equal(o.LaborUnit) &&
		in.FiringUnit.Equal(o.FiringUnit) &&
		in.PackUnit.Equal(o.PackUnit) &&
		in.BatchSize == o.BatchSize &&
		in.RejectRatePct.Equal(o.RejectRatePct) &&
		in.MarketingTotal.Equal(o.MarketingTotal) &&
		in.SellPrice.Equal(o.SellPrice) &&
		in.TaxPct.Equal(o.TaxPct) &&
		in.MarketplaceCommissionPct.Equal(o.MarketplaceCommissionPct) &&
		in.Title == o.Title
}

// Equal compares metrics by value.
func (m Metrics) Equal(o Metrics) bool {
	return m.CogsUnit.Equal(o.CogsUnit) &&
		m.SellableUnits == o.SellableUnits &&
		m.UnitProd.Equal(o.UnitProd) &&
		m.UnitMarketing.Equal(o.UnitMarketing) &&
		m.UnitCommission.Equal(o.UnitCommission) &&
		m.UnitTax.Equal(o.UnitTax) &&
		m.UnitProfit.Equal(o.UnitProfit) &&
		m.TotalProfit.Equal(o.TotalProfit) &&
		m.MarginPct.Equal(o.MarginPct)
}
