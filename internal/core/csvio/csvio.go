// Package csvio writes the visible projection of a grid back to CSV.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write emits headers and rows projected onto visibleIdx. headers is the
// full header list; visibleIdx holds the indices (into headers and into each
// row) to keep, in output order. Missing cells are written as "".
//
// The dialect matches the loader: comma separated, double-quote quoting,
// "\n" line endings. With no visible columns nothing is written.
func Write(w io.Writer, headers []string, rows [][]string, visibleIdx []int) error {
	if len(visibleIdx) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	rec := make([]string, len(visibleIdx))

	if err := writeRecord(w, cw, project(rec, headers, visibleIdx)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := writeRecord(w, cw, project(rec, row, visibleIdx)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// writeRecord writes rec. A lone empty field would come out as a blank line,
// which CSV readers skip, so it is written as an explicit empty quoted
// field.
func writeRecord(w io.Writer, cw *csv.Writer, rec []string) error {
	if len(rec) == 1 && rec[0] == "" {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\"\"\n")
		return err
	}
	return cw.Write(rec)
}

func project(dst, row []string, idx []int) []string {
	for i, c := range idx {
		if c >= 0 && c < len(row) {
			dst[i] = row[c]
		} else {
			dst[i] = ""
		}
	}
	return dst
}

// WriteFileAtomic calls fn with a temporary file next to path, then renames
// it over path. On any failure path is left untouched and the temporary
// file is removed. An existing path keeps its permission bits.
func WriteFileAtomic(path string, fn func(io.Writer) error) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() { _ = os.Remove(tmp) }

	if info, err := os.Stat(path); err == nil {
		if err := f.Chmod(info.Mode().Perm()); err != nil {
			_ = f.Close()
			cleanup()
			return fmt.Errorf("chmod %s: %w", filepath.Base(tmp), err)
		}
	}

	if err := fn(f); err != nil {
		_ = f.Close()
		cleanup()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", filepath.Base(tmp), err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", filepath.Base(tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		cleanup()
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
