package report

import (
	"bytes"
	"fmt"
	"image/color"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/Simplici0/unitecon/internal/pricing"
)

const (
	chartWidth  = 640
	chartHeight = 260
	chartMargin = 24
)

var (
	costBarColor   = color.RGBA{R: 0xD1, G: 0xD5, B: 0xDB, A: 0xFF}
	profitBarColor = color.RGBA{R: 0x00, G: 0xBA, B: 0x88, A: 0xFF}
	chartTextColor = color.RGBA{R: 0x1A, G: 0x1A, B: 0x1B, A: 0xFF}
)

// ChartBar is one bar of the unit cost structure chart.
type ChartBar struct {
	Label  string
	Value  decimal.Decimal
	Profit bool
}

// ChartBars returns the bars shown for a calculation. A loss is drawn as an
// empty profit bar.
func ChartBars(m pricing.Metrics) []ChartBar {
	return []ChartBar{
		{Label: "Произв.", Value: m.UnitProd},
		{Label: "Марк.", Value: m.UnitMarketing},
		{Label: "Коммис.", Value: m.UnitCommission},
		{Label: "Налог", Value: m.UnitTax},
		{Label: "ЧИСТАЯ", Value: decimal.Max(m.UnitProfit, decimal.Zero), Profit: true},
	}
}

// Charter draws the unit cost structure as a PNG bar chart.
type Charter struct {
	face font.Face
}

// NewCharter uses the TrueType font at fontPath for labels, or a built-in
// bitmap font when the file is missing or invalid.
func NewCharter(fontPath string, log *zap.Logger) *Charter {
	face, err := loadFontFace(fontPath, 12)
	if err != nil {
		log.Info("chart font unavailable, using bitmap font",
			zap.String("path", fontPath),
			zap.String("impact", fallbackFontImpact),
			zap.Error(err),
		)
		face = basicfont.Face7x13
	}
	return &Charter{face: face}
}

// PNG renders the chart for the given metrics.
func (c *Charter) PNG(m pricing.Metrics) ([]byte, error) {
	bars := ChartBars(m)

	peak := 0.0
	for _, b := range bars {
		peak = max(peak, b.Value.InexactFloat64())
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(c.face)

	plotTop := float64(chartMargin)
	plotBottom := float64(chartHeight - chartMargin)
	slot := float64(chartWidth-2*chartMargin) / float64(len(bars))

	for i, b := range bars {
		height := 0.0
		if peak > 0 {
			height = (plotBottom - plotTop - 16) * b.Value.InexactFloat64() / peak
		}
		x := float64(chartMargin) + float64(i)*slot + slot*0.15
		w := slot * 0.7

		if b.Profit {
			dc.SetColor(profitBarColor)
		} else {
			dc.SetColor(costBarColor)
		}
		dc.DrawRectangle(x, plotBottom-height, w, height)
		dc.Fill()

		dc.SetColor(chartTextColor)
		dc.DrawStringAnchored(b.Value.StringFixed(0), x+w/2, plotBottom-height-4, 0.5, 0)
		dc.DrawStringAnchored(b.Label, x+w/2, plotBottom+4, 0.5, 1)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}
	return buf.Bytes(), nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse ttf: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
