// Package seed provides the starting values of a fresh editing session.
package seed

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/unitecon/internal/pricing"
)

const defaultTitle = "Керамическая кружка"

var defaultMaterials = []struct {
	name string
	cost string
}{
	{name: "Глазурь (осн.)", cost: "18.58"},
	{name: "Глазурь (декор)", cost: "21.18"},
	{name: "Глина (масса 1)", cost: "58.28"},
	{name: "Глина (масса 2)", cost: "18.67"},
}

// Materials returns a fresh copy of the default materials list.
func Materials() []pricing.MaterialLine {
	out := make([]pricing.MaterialLine, 0, len(defaultMaterials))
	for _, m := range defaultMaterials {
		out = append(out, pricing.MaterialLine{Name: m.name, UnitCost: decimal.RequireFromString(m.cost)})
	}
	return out
}

// Inputs returns the default calculation: a small ceramics batch sold on a
// marketplace.
func Inputs() pricing.BatchInputs {
	return pricing.BatchInputs{
		Materials:                Materials(),
		LaborUnit:                decimal.NewFromInt(150),
		FiringUnit:               decimal.NewFromInt(20),
		PackUnit:                 decimal.NewFromInt(30),
		BatchSize:                100,
		RejectRatePct:            decimal.NewFromInt(5),
		MarketingTotal:           decimal.NewFromInt(5000),
		SellPrice:                decimal.NewFromInt(1200),
		TaxPct:                   decimal.NewFromInt(6),
		MarketplaceCommissionPct: decimal.NewFromInt(20),
		Title:                    defaultTitle,
	}
}
