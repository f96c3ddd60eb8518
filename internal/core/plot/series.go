// Package plot turns two grid columns into a chart workbook.
//
// The session hands over raw cell strings; this package decides how they
// are coerced and drawn. Rendering is left to the spreadsheet application
// that opens the exported workbook.
package plot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultTitle is used when no title is given.
const DefaultTitle = "Plot Title"

var (
	// ErrLengthMismatch is returned when X and Y differ in length.
	ErrLengthMismatch = errors.New("x and y have different lengths")
	// ErrEmptySeries is returned when there is nothing to plot.
	ErrEmptySeries = errors.New("series is empty")
)

// Kind selects the chart style.
type Kind string

const (
	Scatter       Kind = "scatter"
	ScatterSmooth Kind = "scatter-smooth"
	Line          Kind = "line"
)

// Kinds lists every supported kind in menu order.
func Kinds() []Kind { return []Kind{Scatter, ScatterSmooth, Line} }

// ParseKind parses a kind name. The empty string selects Scatter.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return Scatter, nil
	case Scatter, ScatterSmooth, Line:
		return k, nil
	default:
		return "", fmt.Errorf("unknown plot kind %q (want scatter, scatter-smooth or line)", s)
	}
}

func (k Kind) String() string { return string(k) }

// Series is a pair of equal length columns taken from the grid.
type Series struct {
	XLabel string
	YLabel string
	X      []string
	Y      []string
}

// Validate checks that the series can be plotted.
func (s Series) Validate() error {
	if len(s.X) != len(s.Y) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(s.X), len(s.Y))
	}
	if len(s.X) == 0 {
		return ErrEmptySeries
	}
	return nil
}

// Flipped swaps the axes.
func (s Series) Flipped() Series {
	return Series{XLabel: s.YLabel, YLabel: s.XLabel, X: s.Y, Y: s.X}
}

// Values is a coerced column. When Numeric is false Numbers is nil and the
// raw strings are plotted as-is.
type Values struct {
	Raw     []string
	Numbers []float64
	Numeric bool
}

// Coerce converts raw cells to numbers. Empty cells count as 0. A single
// cell that is not a number keeps the whole column as text.
func Coerce(raw []string) Values {
	nums := make([]float64, len(raw))
	for i, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Values{Raw: raw}
		}
		nums[i] = f
	}
	return Values{Raw: raw, Numbers: nums, Numeric: true}
}

// At returns the cell value to write for index i.
func (v Values) At(i int) any {
	if v.Numeric {
		return v.Numbers[i]
	}
	return v.Raw[i]
}
