package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Simplici0/unitecon/internal/pricing"
	"github.com/Simplici0/unitecon/internal/snapshot"
)

func ceramics() pricing.BatchInputs {
	return pricing.BatchInputs{
		Materials: []pricing.MaterialLine{
			{Name: "Глазурь (осн.)", UnitCost: decimal.RequireFromString("18.58")},
			{Name: "Глазурь (декор)", UnitCost: decimal.RequireFromString("21.18")},
			{Name: "Глина (масса 1)", UnitCost: decimal.RequireFromString("58.28")},
			{Name: "Глина (масса 2)", UnitCost: decimal.RequireFromString("18.67")},
		},
		LaborUnit:                decimal.NewFromInt(150),
		FiringUnit:               decimal.NewFromInt(20),
		PackUnit:                 decimal.NewFromInt(30),
		BatchSize:                100,
		RejectRatePct:            decimal.NewFromInt(5),
		MarketingTotal:           decimal.NewFromInt(5000),
		SellPrice:                decimal.NewFromInt(1200),
		TaxPct:                   decimal.NewFromInt(6),
		MarketplaceCommissionPct: decimal.NewFromInt(20),
	}
}

func testSnapshot(in pricing.BatchInputs, title string) snapshot.Snapshot {
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	return snapshot.Build(in, in.Materials, pricing.Compute(in), title, at)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Кружка, 100 шт.", Title("Кружка", 100))
	assert.Equal(t, "Экономика продукта, 40 шт.", Title("", 40))
	assert.Equal(t, "   , 40 шт.", Title("   ", 40))
	assert.Equal(t, "Экономика продукта", Title("", 0))
}

func TestBuild_KeyMetricsPrecision(t *testing.T) {
	doc := Build(testSnapshot(ceramics(), "Кружка"))

	assert.Equal(t, "Кружка, 100 шт.", doc.Title)
	assert.Equal(t, "Время сохранения: 2026-10-15T12:00:00Z", doc.SavedAt)
	assert.Equal(t, [][]string{
		{"Цена за 1 шт, ₽", "1200.00"},
		{"Прибыль с 1 шт, ₽", "501.99"},
		{"Прибыль партии, ₽", "47689"},
		{"Рентабельность, %", "41.8"},
		{"Годных изделий, шт", "95"},
	}, doc.KeyMetrics.Rows)
}

func TestBuild_Breakdown(t *testing.T) {
	doc := Build(testSnapshot(ceramics(), ""))

	require.Len(t, doc.Breakdown.Rows, 6)
	assert.Equal(t, []string{"Сумма продажи (Выручка)", "1200.00", "114000", "100%"}, doc.Breakdown.Rows[0])
	assert.Equal(t, []string{"Производство (с уч. брака)", "333.38", "31671", "27.8%"}, doc.Breakdown.Rows[1])
	assert.Equal(t, []string{"Маркетинг и логистика", "52.63", "5000", "4.4%"}, doc.Breakdown.Rows[2])
	assert.Equal(t, []string{"Комиссия площадки", "240.00", "22800", "20.0%"}, doc.Breakdown.Rows[3])
	assert.Equal(t, []string{"Налоги", "72.00", "6840", "6.0%"}, doc.Breakdown.Rows[4])
	assert.Equal(t, []string{"ЧИСТАЯ ПРИБЫЛЬ", "501.99", "47689", "41.8%"}, doc.Breakdown.Rows[5])
}

func TestBuild_ZeroPriceShares(t *testing.T) {
	in := ceramics()
	in.SellPrice = decimal.Zero

	doc := Build(testSnapshot(in, ""))

	assert.Equal(t, "100%", doc.Breakdown.Rows[0][3])
	for _, cells := range doc.Breakdown.Rows[1:] {
		assert.Equal(t, "0%", cells[3], cells[0])
	}
	assert.Equal(t, "0.0", doc.KeyMetrics.Rows[3][1])
}

func TestBuild_MaterialsSection(t *testing.T) {
	doc := Build(testSnapshot(ceramics(), ""))
	require.NotNil(t, doc.Materials)
	assert.Len(t, doc.Sections(), 3)
	assert.Equal(t, []string{"Глина (масса 2)", "18.67"}, doc.Materials.Rows[3])

	in := ceramics()
	in.Materials = nil
	doc = Build(testSnapshot(in, ""))
	assert.Nil(t, doc.Materials)
	assert.Len(t, doc.Sections(), 2)
}

func TestTextRenderer(t *testing.T) {
	out, err := TextRenderer{}.Render(testSnapshot(ceramics(), "Кружка"))
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "Кружка, 100 шт.\n"))
	for _, want := range []string{
		"Ключевые показатели:",
		"Детальная структура цены (Смета):",
		"Материалы (входят в производство):",
		"ЧИСТАЯ ПРИБЫЛЬ",
		"47689",
	} {
		assert.Contains(t, text, want)
	}
}

func TestPDFRenderer_DefaultFont(t *testing.T) {
	r := NewPDFRenderer("", zap.NewNop())

	out, err := r.Render(testSnapshot(ceramics(), "Mug"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRenderer_MissingFontFallsBack(t *testing.T) {
	r := NewPDFRenderer("/nonexistent/font.ttf", zap.NewNop())
	assert.Empty(t, r.fonts)

	out, err := r.Render(testSnapshot(ceramics(), ""))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestChartBars_LossDrawsEmptyProfitBar(t *testing.T) {
	in := ceramics()
	in.SellPrice = decimal.NewFromInt(300)

	bars := ChartBars(pricing.Compute(in))

	require.Len(t, bars, 5)
	assert.True(t, bars[4].Profit)
	assert.True(t, bars[4].Value.IsZero())
	assert.Equal(t, "Произв.", bars[0].Label)
}

func TestCharter_PNG(t *testing.T) {
	c := NewCharter("/nonexistent/font.ttf", zap.NewNop())

	out, err := c.PNG(pricing.Compute(ceramics()))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\x89PNG\r\n\x1a\n")))

	out, err = c.PNG(pricing.Metrics{SellableUnits: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFallbackFonts_LogCyrillicImpact(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	NewCharter("/nonexistent/font.ttf", log)
	NewPDFRenderer("", log)
	NewPDFRenderer("/nonexistent/font.ttf", log)

	entries := logs.All()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, zap.InfoLevel, e.Level, e.Message)
		assert.Contains(t, e.ContextMap()["impact"], "cyrillic", e.Message)
	}
	assert.Equal(t, "/nonexistent/font.ttf", entries[0].ContextMap()["path"])
}
