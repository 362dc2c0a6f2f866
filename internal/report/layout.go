// Package report turns a snapshot into the financial report: a title, the
// key metrics, the detailed price structure and the materials list.
package report

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/unitecon/internal/pricing"
	"github.com/Simplici0/unitecon/internal/snapshot"
)

// ErrRenderingUnavailable means the document engine could not produce output.
var ErrRenderingUnavailable = errors.New("report rendering unavailable")

// DefaultTitle is used when a snapshot has no title.
const DefaultTitle = "Экономика продукта"

const (
	savedAtLabel     = "Время сохранения"
	keyMetricsHeader = "Ключевые показатели"
	breakdownHeader  = "Детальная структура цены (Смета)"
	materialsHeader  = "Материалы (входят в производство)"
)

var lineLabels = map[pricing.LineKind]string{
	pricing.LineRevenue:    "Сумма продажи (Выручка)",
	pricing.LineProduction: "Производство (с уч. брака)",
	pricing.LineMarketing:  "Маркетинг и логистика",
	pricing.LineCommission: "Комиссия площадки",
	pricing.LineTax:        "Налоги",
	pricing.LineNetProfit:  "ЧИСТАЯ ПРИБЫЛЬ",
}

// Table is a titled grid of preformatted cells.
type Table struct {
	Caption string
	Header  []string
	Rows    [][]string
}

// Document is the renderer-independent content of a report, in order.
type Document struct {
	Title      string
	SavedAt    string
	KeyMetrics Table
	Breakdown  Table
	// Materials is nil when the snapshot has no materials.
	Materials *Table
}

// Sections returns the tables in document order.
func (d Document) Sections() []Table {
	sections := []Table{d.KeyMetrics, d.Breakdown}
	if d.Materials != nil {
		sections = append(sections, *d.Materials)
	}
	return sections
}

// Build lays out the report content of a snapshot.
func Build(s snapshot.Snapshot) Document {
	in, m := s.Inputs, s.Metrics

	doc := Document{
		Title:   Title(s.Title, in.BatchSize),
		SavedAt: fmt.Sprintf("%s: %s", savedAtLabel, s.SavedAt),
		KeyMetrics: Table{
			Caption: keyMetricsHeader,
			Rows: [][]string{
				{"Цена за 1 шт, ₽", Money(in.SellPrice)},
				{"Прибыль с 1 шт, ₽", Money(m.UnitProfit)},
				{"Прибыль партии, ₽", Whole(m.TotalProfit)},
				{"Рентабельность, %", Percent(m.MarginPct)},
				{"Годных изделий, шт", strconv.Itoa(m.SellableUnits)},
			},
		},
		Breakdown: Table{
			Caption: breakdownHeader,
			Header:  []string{"Статья расходов / Доходов", "На 1 шт (₽)", "На партию (₽)", "Доля"},
		},
	}

	for _, line := range pricing.Breakdown(in, m) {
		doc.Breakdown.Rows = append(doc.Breakdown.Rows, []string{
			lineLabels[line.Kind],
			Money(line.Unit),
			Whole(line.Batch),
			share(line, in.SellPrice),
		})
	}

	if len(s.Materials) > 0 {
		materials := Table{Caption: materialsHeader, Header: []string{"Материал", "Цена (₽)"}}
		for _, mat := range s.Materials {
			materials.Rows = append(materials.Rows, []string{mat.Name, mat.UnitCost.String()})
		}
		doc.Materials = &materials
	}

	return doc
}

// Title returns "{title}, {batch} шт.", falling back to DefaultTitle when
// title is empty. Any other title is kept as entered.
func Title(title string, batchSize int) string {
	if title == "" {
		title = DefaultTitle
	}
	if batchSize > 0 {
		return fmt.Sprintf("%s, %d шт.", title, batchSize)
	}
	return title
}

// Money formats a per-unit currency amount.
func Money(v decimal.Decimal) string { return v.StringFixed(2) }

// Whole formats a per-batch currency amount.
func Whole(v decimal.Decimal) string { return v.StringFixed(0) }

// Percent formats a value already expressed in percent.
func Percent(v decimal.Decimal) string { return v.StringFixed(1) }

func share(line pricing.BreakdownLine, sellPrice decimal.Decimal) string {
	if line.Kind == pricing.LineRevenue {
		return "100%"
	}
	if !sellPrice.IsPositive() {
		return "0%"
	}
	return line.Share.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
