package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Opener opens a fresh reader over the source. The loader calls it twice:
// once for the row-count pre-scan and once for the streaming pass.
type Opener func() (io.ReadCloser, error)

// FileOpener returns an Opener for a file on disk. Directories are rejected.
func FileOpener(path string) Opener {
	return func() (io.ReadCloser, error) {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
		return os.Open(path)
	}
}

// newReader wraps r in a CSV reader using the comma dialect with standard
// double-quote quoting. Ragged rows are allowed. A leading byte order mark
// is dropped; UTF-16 input with a BOM is decoded to UTF-8.
func newReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	cr := csv.NewReader(decoded)
	cr.Comma = ','
	cr.FieldsPerRecord = -1
	return cr
}

// countRecords returns the number of CSV records in r, header included.
func countRecords(r io.Reader) (int, error) {
	cr := newReader(r)
	cr.ReuseRecord = true

	n := 0
	for {
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}
