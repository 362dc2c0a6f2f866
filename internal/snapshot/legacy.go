package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/unitecon/internal/pricing"
)

// Version 1 materials were table rows keyed by their Russian column headers.
const (
	v1MaterialNameKey  = "Материал"
	v1MaterialPriceKey = "Цена (₽)"
)

type v1Material struct {
	Name  string
	Price decimal.Decimal
}

// UnmarshalJSON reads a row by header name; "₽" is not allowed in a struct tag.
func (m *v1Material) UnmarshalJSON(data []byte) error {
	var row map[string]json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	if raw, ok := row[v1MaterialNameKey]; ok {
		var name *string
		if err := json.Unmarshal(raw, &name); err != nil {
			return fmt.Errorf("material name: %w", err)
		}
		if name != nil {
			m.Name = *name
		}
	}
	if raw, ok := row[v1MaterialPriceKey]; ok {
		if err := m.Price.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("material price: %w", err)
		}
	}
	return nil
}

type v1Snapshot struct {
	Schema  int    `json:"schema"`
	SavedAt string `json:"saved_at"`
	Title   string `json:"title"`
	Inputs  struct {
		LaborUnit      decimal.Decimal `json:"labor_unit"`
		FiringUnit     decimal.Decimal `json:"firing_unit"`
		PackUnit       decimal.Decimal `json:"pack_unit"`
		BatchSize      int             `json:"batch_size"`
		RejectRate     decimal.Decimal `json:"reject_rate"`
		MarketingTotal decimal.Decimal `json:"marketing_total"`
		SellPrice      decimal.Decimal `json:"sell_price"`
		TaxPct         decimal.Decimal `json:"tax_pct"`
		MpPct          decimal.Decimal `json:"mp_pct"`
	} `json:"inputs"`
	Materials []v1Material `json:"materials"`
	Metrics   struct {
		CogsU       decimal.Decimal `json:"cogs_u"`
		SellableU   int             `json:"sellable_u"`
		UnitProfit  decimal.Decimal `json:"unit_profit"`
		TotalProfit decimal.Decimal `json:"total_profit"`
		Margin      decimal.Decimal `json:"margin"`
		UProd       decimal.Decimal `json:"u_prod"`
		UMark       decimal.Decimal `json:"u_mark"`
		UComm       decimal.Decimal `json:"u_comm"`
		UTax        decimal.Decimal `json:"u_tax"`
	} `json:"metrics"`
}

// decodeV1 reads a version 1 record. Stored metrics are kept as they are;
// reloading must show what was saved, not a recalculation.
func decodeV1(data []byte) (Snapshot, error) {
	var v1 v1Snapshot
	if err := json.Unmarshal(data, &v1); err != nil {
		return Snapshot{}, fmt.Errorf("%w: schema 1: %v", ErrMalformed, err)
	}

	return Snapshot{
		SchemaVersion: SchemaVersion,
		SavedAt:       v1.SavedAt,
		Title:         v1.Title,
		Inputs: pricing.BatchInputs{
			LaborUnit:                v1.Inputs.LaborUnit,
			FiringUnit:               v1.Inputs.FiringUnit,
			PackUnit:                 v1.Inputs.PackUnit,
			BatchSize:                v1.Inputs.BatchSize,
			RejectRatePct:            v1.Inputs.RejectRate,
			MarketingTotal:           v1.Inputs.MarketingTotal,
			SellPrice:                v1.Inputs.SellPrice,
			TaxPct:                   v1.Inputs.TaxPct,
			MarketplaceCommissionPct: v1.Inputs.MpPct,
		},
		Materials: lo.Map(v1.Materials, func(m v1Material, _ int) pricing.MaterialLine {
			return pricing.MaterialLine{Name: m.Name, UnitCost: m.Price}
		}),
		Metrics: pricing.Metrics{
			CogsUnit:       v1.Metrics.CogsU,
			SellableUnits:  v1.Metrics.SellableU,
			UnitProd:       v1.Metrics.UProd,
			UnitMarketing:  v1.Metrics.UMark,
			UnitCommission: v1.Metrics.UComm,
			UnitTax:        v1.Metrics.UTax,
			UnitProfit:     v1.Metrics.UnitProfit,
			TotalProfit:    v1.Metrics.TotalProfit,
			MarginPct:      v1.Metrics.Margin,
		},
	}, nil
}
