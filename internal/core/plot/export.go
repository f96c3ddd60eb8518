package plot

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/colonyops/tabula/internal/core/logging"
)

const dataSheet = "Data"

// DefaultPath returns the workbook path used for data read from dataPath:
// the data file name with its extension replaced by "-plot.xlsx".
func DefaultPath(dataPath string) string {
	base := strings.TrimSuffix(dataPath, filepath.Ext(dataPath))
	if base == "" {
		base = "plot"
	}
	return base + "-plot.xlsx"
}

// Options controls the chart.
type Options struct {
	Kind  Kind
	Title string
	// Flip swaps the X and Y columns.
	Flip bool
}

// Exporter writes plot workbooks.
type Exporter struct {
	log zerolog.Logger
}

func NewExporter() *Exporter {
	return &Exporter{log: logging.Component("plot")}
}

// Export writes the workbook for s to path.
func (e *Exporter) Export(path string, s Series, opts Options) error {
	f, err := e.build(s, opts)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save plot workbook: %w", err)
	}

	e.log.Info().Str("path", path).Str("kind", opts.Kind.String()).Int("points", len(s.X)).Msg("plot exported")
	return nil
}

// Write streams the workbook for s to w.
func (e *Exporter) Write(w io.Writer, s Series, opts Options) error {
	f, err := e.build(s, opts)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write plot workbook: %w", err)
	}
	return nil
}

func (e *Exporter) build(s Series, opts Options) (*excelize.File, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if opts.Kind == "" {
		opts.Kind = Scatter
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Flip {
		s = s.Flipped()
	}

	xs, ys := Coerce(s.X), Coerce(s.Y)

	kind := opts.Kind
	if kind == ScatterSmooth && (!xs.Numeric || !ys.Numeric) {
		e.log.Debug().Msg("non-numeric data, drawing without smoothing")
		kind = Scatter
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(dataSheet, "A1", &[]any{s.XLabel, s.YLabel}); err != nil {
		_ = f.Close()
		return nil, err
	}
	for i := range s.X {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(dataSheet, cell, &[]any{xs.At(i), ys.At(i)}); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	if err := f.AddChart(dataSheet, "D2", chartFor(kind, s, opts.Title)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("add chart: %w", err)
	}
	return f, nil
}

func chartFor(kind Kind, s Series, title string) *excelize.Chart {
	last := len(s.X) + 1
	series := excelize.ChartSeries{
		Name:       fmt.Sprintf("%s!$B$1", dataSheet),
		Categories: fmt.Sprintf("%s!$A$2:$A$%d", dataSheet, last),
		Values:     fmt.Sprintf("%s!$B$2:$B$%d", dataSheet, last),
	}

	chartType := excelize.Scatter
	switch kind {
	case Scatter:
		series.Marker = excelize.ChartMarker{Symbol: "circle", Size: 5}
		series.Line = excelize.ChartLine{Type: excelize.ChartLineNone}
	case ScatterSmooth:
		series.Marker = excelize.ChartMarker{Symbol: "circle", Size: 5}
		series.Line = excelize.ChartLine{Smooth: true, Width: 1.5}
	case Line:
		chartType = excelize.Line
		series.Marker = excelize.ChartMarker{Symbol: "none"}
		series.Line = excelize.ChartLine{Width: 1.5}
	}

	return &excelize.Chart{
		Type:   chartType,
		Series: []excelize.ChartSeries{series},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis: excelize.ChartAxis{
			MajorGridLines: true,
			Title:          []excelize.RichTextRun{{Text: s.XLabel}},
		},
		YAxis: excelize.ChartAxis{
			MajorGridLines: true,
			Title:          []excelize.RichTextRun{{Text: s.YLabel}},
		},
		Dimension: excelize.ChartDimension{Width: 640, Height: 400},
	}
}
