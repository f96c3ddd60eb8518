package doctor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/colonyops/tabula/internal/core/loader"
)

// FileCheck loads a CSV file through the regular loader and reports on its
// shape: header names, row widths and whether the whole file could be read.
type FileCheck struct {
	path string
	open loader.Opener
	opts loader.Options
}

// NewFileCheck creates a check for the file at path.
func NewFileCheck(path string, opts loader.Options) *FileCheck {
	return &FileCheck{path: path, open: loader.FileOpener(path), opts: opts}
}

func (c *FileCheck) Name() string {
	return "File " + c.path
}

func (c *FileCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	load, err := loader.New(c.opts).BeginSource(ctx, c.path, c.open)
	if err != nil {
		result.add("source", StatusFail, err.Error())
		return result
	}

	var (
		header    []string
		rows      int
		ragged    int
		firstRag  int
		maxFields int
	)
	for b := range load.Batches {
		if b.First {
			header = b.Header
			maxFields = len(header)
		}
		for _, row := range b.Rows {
			rows++
			if len(row) != len(header) {
				if ragged == 0 {
					firstRag = rows
				}
				ragged++
			}
			maxFields = max(maxFields, len(row))
		}
	}
	loadErr := <-load.Done

	result.add("source", StatusPass, c.path)
	c.checkHeader(&result, header)

	switch {
	case ragged > 0:
		result.add("rows", StatusWarn, fmt.Sprintf("%d of %d rows differ from the header width (first at row %d), widest has %d fields",
			ragged, rows, firstRag, maxFields))
	default:
		result.add("rows", StatusPass, fmt.Sprintf("%d rows of %d fields", rows, len(header)))
	}

	var encErr *loader.InvalidEncodingError
	switch {
	case loadErr == nil:
		result.add("read", StatusPass, "complete")
	case errors.As(loadErr, &encErr):
		result.add("read", StatusFail, fmt.Sprintf("invalid UTF-8 on line %d, only %d rows readable", encErr.Line, rows))
	default:
		result.add("read", StatusFail, loadErr.Error())
	}

	return result
}

func (c *FileCheck) checkHeader(result *Result, header []string) {
	if len(header) == 0 {
		result.add("header", StatusWarn, "file is empty")
		return
	}

	var blank []string
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if h == "" {
			blank = append(blank, fmt.Sprint(i+1))
			continue
		}
		seen[h]++
	}

	var dups []string
	for h, n := range seen {
		if n > 1 {
			dups = append(dups, fmt.Sprintf("%q x%d", h, n))
		}
	}
	slices.Sort(dups)

	if len(blank) == 0 && len(dups) == 0 {
		result.add("header", StatusPass, fmt.Sprintf("%d columns", len(header)))
		return
	}
	if len(blank) > 0 {
		result.add("header", StatusWarn, "unnamed columns "+strings.Join(blank, ", ")+" get generated names")
	}
	if len(dups) > 0 {
		result.add("header", StatusWarn, "repeated names "+strings.Join(dups, ", ")+" get a numeric suffix")
	}
}
