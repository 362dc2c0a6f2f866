package pricing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaterialLine is one material that goes into every produced unit.
type MaterialLine struct {
	Name     string          `json:"name"`
	UnitCost decimal.Decimal `json:"unitCost"`
}

// BatchInputs is the full parameter set of one calculation.
type BatchInputs struct {
	Materials                []MaterialLine  `json:"materials,omitempty"`
	LaborUnit                decimal.Decimal `json:"laborUnit"`
	FiringUnit               decimal.Decimal `json:"firingUnit"`
	PackUnit                 decimal.Decimal `json:"packUnit"`
	BatchSize                int             `json:"batchSize"`
	RejectRatePct            decimal.Decimal `json:"rejectRatePct"`
	MarketingTotal           decimal.Decimal `json:"marketingTotal"`
	SellPrice                decimal.Decimal `json:"sellPrice"`
	TaxPct                   decimal.Decimal `json:"taxPct"`
	MarketplaceCommissionPct decimal.Decimal `json:"marketplaceCommissionPct"`
	Title                    string          `json:"title,omitempty"`
}

// Metrics contains every value derived from BatchInputs.
type Metrics struct {
	CogsUnit       decimal.Decimal `json:"cogsUnit"`
	SellableUnits  int             `json:"sellableUnits"`
	UnitProd       decimal.Decimal `json:"unitProd"`
	UnitMarketing  decimal.Decimal `json:"unitMarketing"`
	UnitCommission decimal.Decimal `json:"unitCommission"`
	UnitTax        decimal.Decimal `json:"unitTax"`
	UnitProfit     decimal.Decimal `json:"unitProfit"`
	TotalProfit    decimal.Decimal `json:"totalProfit"`
	MarginPct      decimal.Decimal `json:"marginPct"`
}

// MaterialCost returns the summed unit cost of all materials.
func MaterialCost(materials []MaterialLine) decimal.Decimal {
	return lo.Reduce(materials, func(sum decimal.Decimal, m MaterialLine, _ int) decimal.Decimal {
		return sum.Add(m.UnitCost)
	}, decimal.Zero)
}

// SellableUnits returns how many units of the batch survive the reject rate.
// At least one unit always survives.
func SellableUnits(batchSize int, rejectRatePct decimal.Decimal) int {
	batch := decimal.NewFromInt(int64(max(batchSize, 1)))
	survived := batch.Mul(hundred.Sub(rejectRatePct)).Div(hundred).Floor().IntPart()
	if survived < 1 {
		return 1
	}
	return int(survived)
}

// Compute derives unit and batch metrics from inputs. It never fails; the
// only guarded case is a reject rate that would leave no sellable units.
func Compute(in BatchInputs) Metrics {
	batchSize := max(in.BatchSize, 1)
	cogsUnit := MaterialCost(in.Materials).Add(in.LaborUnit).Add(in.FiringUnit).Add(in.PackUnit)

	sellable := SellableUnits(batchSize, in.RejectRatePct)
	sellableD := decimal.NewFromInt(int64(sellable))

	// Rejected units are paid for too, so the whole production spend is
	// spread over the units that actually get sold.
	unitProd := cogsUnit.Mul(decimal.NewFromInt(int64(batchSize))).Div(sellableD)
	unitMarketing := in.MarketingTotal.Div(sellableD)
	unitCommission := in.SellPrice.Mul(in.MarketplaceCommissionPct).Div(hundred)
	unitTax := in.SellPrice.Mul(in.TaxPct).Div(hundred)

	unitProfit := in.SellPrice.Sub(unitProd.Add(unitMarketing).Add(unitCommission).Add(unitTax))

	margin := decimal.Zero
	if in.SellPrice.IsPositive() {
		margin = unitProfit.Div(in.SellPrice).Mul(hundred)
	}

	return Metrics{
		CogsUnit:       cogsUnit,
		SellableUnits:  sellable,
		UnitProd:       unitProd,
		UnitMarketing:  unitMarketing,
		UnitCommission: unitCommission,
		UnitTax:        unitTax,
		UnitProfit:     unitProfit,
		TotalProfit:    unitProfit.Mul(sellableD),
		MarginPct:      margin,
	}
}
