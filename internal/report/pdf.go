package report

import (
	"errors"
	"fmt"
	"os"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
	"go.uber.org/zap"

	"github.com/Simplici0/unitecon/internal/snapshot"
)

// Renderer produces a report document for a snapshot.
type Renderer interface {
	Render(s snapshot.Snapshot) ([]byte, error)
}

// MIMEType is the content type of documents produced by PDFRenderer.
const MIMEType = "application/pdf"

const fontFamily = "ptsans"

// The built-in PDF font and the bitmap chart font cover Latin only.
const fallbackFontImpact = "cyrillic text will not render; set REPORT_FONT_PATH to a TrueType font with Cyrillic glyphs"

var (
	gridColor     = &props.Color{Red: 128, Green: 128, Blue: 128}
	headerColor   = &props.Color{Red: 211, Green: 211, Blue: 211}
	labelColor    = &props.Color{Red: 245, Green: 245, Blue: 245}
	profitColor   = &props.Color{Red: 230, Green: 244, Blue: 234}
	cellTextProps = props.Text{Size: 9, Top: 1.5, Left: 1.5, Right: 1.5}
)

// PDFRenderer renders A4 reports with maroto. A TrueType font with Cyrillic
// glyphs is embedded when one is configured; otherwise the built-in font is used.
type PDFRenderer struct {
	fonts []*entity.CustomFont
	log   *zap.Logger
}

// NewPDFRenderer loads the font at fontPath once. A missing or unreadable font
// is not an error: reports fall back to the default font.
func NewPDFRenderer(fontPath string, log *zap.Logger) *PDFRenderer {
	r := &PDFRenderer{log: log}
	if fontPath == "" {
		log.Info("report font not configured, using default font", zap.String("impact", fallbackFontImpact))
		return r
	}
	if _, err := os.Stat(fontPath); err != nil {
		log.Info("report font not found, using default font",
			zap.String("path", fontPath),
			zap.String("impact", fallbackFontImpact),
		)
		return r
	}

	fonts, err := repository.New().
		AddUTF8Font(fontFamily, fontstyle.Normal, fontPath).
		AddUTF8Font(fontFamily, fontstyle.Bold, fontPath).
		Load()
	if err != nil {
		log.Warn("failed to load report font, using default font",
			zap.String("path", fontPath),
			zap.String("impact", fallbackFontImpact),
			zap.Error(err),
		)
		return r
	}
	r.fonts = fonts
	return r
}

// Render builds the PDF. When the embedded font breaks generation the
// report is retried with the default font before giving up.
func (r *PDFRenderer) Render(s snapshot.Snapshot) ([]byte, error) {
	doc := Build(s)

	if len(r.fonts) > 0 {
		out, err := generate(doc, r.fonts)
		if err == nil {
			return out, nil
		}
		r.log.Warn("pdf generation with embedded font failed, retrying with default font", zap.Error(err))
	}

	out, err := generate(doc, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	return out, nil
}

func generate(doc Document, fonts []*entity.CustomFont) (out []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pdf engine panic: %v", p)
		}
	}()

	builder := config.NewBuilder().
		WithTopMargin(10).
		WithLeftMargin(14).
		WithRightMargin(14)
	if len(fonts) > 0 {
		builder = builder.
			WithCustomFonts(fonts).
			WithDefaultFont(&props.Font{Family: fontFamily, Style: fontstyle.Normal, Size: 10})
	}

	m := maroto.New(builder.Build())

	m.AddRows(
		row.New(12).Add(text.NewCol(12, doc.Title, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Center})),
		row.New(8).Add(text.NewCol(12, doc.SavedAt, props.Text{Size: 10})),
	)

	m.AddRows(caption(doc.KeyMetrics.Caption))
	for _, cells := range doc.KeyMetrics.Rows {
		m.AddRows(row.New(7).Add(
			cell(7, cells[0], align.Left).WithStyle(gridCell(labelColor)),
			cell(5, cells[1], align.Left).WithStyle(gridCell(nil)),
		))
	}

	breakdownSizes := []int{5, 2, 3, 2}
	m.AddRows(caption(doc.Breakdown.Caption))
	m.AddRows(tableRow(doc.Breakdown.Header, breakdownSizes, headerColor))
	for i, cells := range doc.Breakdown.Rows {
		var bg *props.Color
		switch i {
		case 0:
			bg = labelColor
		case len(doc.Breakdown.Rows) - 1:
			bg = profitColor
		}
		m.AddRows(tableRow(cells, breakdownSizes, bg))
	}

	if doc.Materials != nil {
		materialSizes := []int{8, 4}
		m.AddRows(caption(doc.Materials.Caption))
		m.AddRows(tableRow(doc.Materials.Header, materialSizes, headerColor))
		for _, cells := range doc.Materials.Rows {
			m.AddRows(tableRow(cells, materialSizes, nil))
		}
	}

	generated, err := m.Generate()
	if err != nil {
		return nil, err
	}
	out = generated.GetBytes()
	if len(out) == 0 {
		return nil, errors.New("pdf engine returned an empty document")
	}
	return out, nil
}

func caption(title string) core.Row {
	return row.New(10).Add(text.NewCol(12, title, props.Text{Size: 12, Style: fontstyle.Bold, Top: 3}))
}

func tableRow(cells []string, sizes []int, bg *props.Color) core.Row {
	cols := make([]core.Col, 0, len(cells))
	for i, value := range cells {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, cell(sizes[i], value, a).WithStyle(gridCell(bg)))
	}
	return row.New(7).Add(cols...)
}

func cell(size int, value string, a align.Type) core.Col {
	p := cellTextProps
	p.Align = a
	return col.New(size).Add(text.New(value, p))
}

func gridCell(bg *props.Color) *props.Cell {
	return &props.Cell{
		BackgroundColor: bg,
		BorderType:      border.Full,
		BorderColor:     gridColor,
		BorderThickness: 0.1,
	}
}
