// Package loader reads CSV sources on a background goroutine and hands
// parsed rows to a single consumer.
//
// The loader never touches the grid it feeds. A Load exposes a batch channel
// with exactly one producer (the loader goroutine) and one consumer (the
// owner of the grid), plus a Done channel that fires after the batch channel
// is closed.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/colonyops/tabula/internal/core/logging"
)

const (
	DefaultBatchSize     = 256
	DefaultFlushInterval = 50 * time.Millisecond

	batchBuffer      = 4
	progressLogEvery = 500 * time.Millisecond
)

// Progress is the row count reached by a load. RowsRead never exceeds
// TotalRows.
type Progress struct {
	RowsRead  int
	TotalRows int
}

// Fraction returns RowsRead/TotalRows in [0, 1]. An empty load is complete.
func (p Progress) Fraction() float64 {
	if p.TotalRows <= 0 {
		return 1
	}
	return float64(p.RowsRead) / float64(p.TotalRows)
}

// Batch is an immutable group of parsed rows. The first batch of every load
// carries the header (possibly with no rows) and the pre-scanned total.
type Batch struct {
	Header   []string
	First    bool
	Rows     [][]string
	Progress Progress
}

// Options tunes batching.
type Options struct {
	// BatchSize is the maximum number of rows per batch. 1 gives per-row
	// progress.
	BatchSize int
	// FlushInterval bounds how long parsed rows wait before being sent.
	FlushInterval time.Duration
}

// Loader starts background loads.
type Loader struct {
	opts Options
	log  zerolog.Logger
}

// New creates a loader. Zero option values fall back to the defaults.
func New(opts Options) *Loader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	return &Loader{
		opts: opts,
		log:  logging.Component("loader"),
	}
}

// Load is an in-flight load.
type Load struct {
	// Name identifies the source in logs and errors.
	Name string
	// Batches delivers parsed rows in order. It is closed when the pipeline
	// stops for any reason.
	Batches <-chan Batch
	// Done receives nil on success or a *LoadIOError, then is closed. It
	// fires only after Batches is closed.
	Done <-chan error

	cancel context.CancelFunc
}

// Cancel stops the pipeline cooperatively. The load then finishes with a
// LoadIOError wrapping context.Canceled.
func (l *Load) Cancel() {
	if l.cancel != nil {
		l.cancel()
	}
}

// Begin starts loading the file at path.
func (l *Loader) Begin(ctx context.Context, path string) (*Load, error) {
	return l.BeginSource(ctx, path, FileOpener(path))
}

// BeginSource starts loading from open. It fails with ErrSourceUnavailable,
// synchronously, when the first open fails.
func (l *Loader) BeginSource(ctx context.Context, name string, open Opener) (*Load, error) {
	first, err := open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, name, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	batches := make(chan Batch, batchBuffer)
	done := make(chan error, 1)

	l.log.Info().Ctx(ctx).Str("source", name).Int("batch_size", l.opts.BatchSize).Msg("load started")

	go func() {
		defer cancel()
		err := l.run(ctx, name, first, open, batches)
		close(batches)
		done <- err
		close(done)
	}()

	return &Load{Name: name, Batches: batches, Done: done, cancel: cancel}, nil
}

func (l *Loader) run(ctx context.Context, name string, first io.ReadCloser, open Opener, out chan<- Batch) error {
	started := time.Now()

	records, err := countRecords(first)
	_ = first.Close()
	if err != nil {
		// the streaming pass reports the failure once the rows before it
		// have been delivered
		l.log.Debug().Ctx(ctx).Err(err).Str("source", name).Int("records", records).Msg("pre-scan stopped early")
	}
	total := max(records-1, 0)

	rc, err := open()
	if err != nil {
		return &LoadIOError{Err: fmt.Errorf("reopen: %w", err)}
	}
	defer func() { _ = rc.Close() }()

	p := &pipeline{
		ctx:      ctx,
		out:      out,
		opts:     l.opts,
		progress: Progress{TotalRows: total},
		log:      l.log,
	}

	if err := p.stream(newCSVSource(rc)); err != nil {
		l.log.Warn().Ctx(ctx).Err(err).Str("source", name).Int("rows_read", p.progress.RowsRead).Msg("load failed")
		return &LoadIOError{RowsRead: p.progress.RowsRead, Err: err}
	}

	l.log.Info().Ctx(ctx).
		Str("source", name).
		Int("rows", p.progress.RowsRead).
		Dur("elapsed", time.Since(started)).
		Msg("load complete")
	return nil
}

// recordSource yields CSV records with their starting line.
type recordSource interface {
	Read() ([]string, error)
	FieldPos(field int) (line, column int)
}

type csvSource struct{ recordSource }

func newCSVSource(r io.Reader) csvSource { return csvSource{newReader(r)} }

type pipeline struct {
	ctx       context.Context
	out       chan<- Batch
	opts      Options
	progress  Progress
	pending   [][]string
	lastFlush time.Time
	logEvery  rate.Sometimes
	log       zerolog.Logger
}

func (p *pipeline) stream(src csvSource) error {
	p.logEvery = rate.Sometimes{Interval: progressLogEvery}

	header, err := src.Read()
	switch {
	case errors.Is(err, io.EOF):
		return p.send(Batch{Header: []string{}, First: true, Progress: p.progress})
	case err != nil:
		return err
	}
	if err := validate(src, header); err != nil {
		return err
	}
	if err := p.send(Batch{Header: header, First: true, Progress: p.progress}); err != nil {
		return err
	}
	p.lastFlush = time.Now()

	for {
		if err := p.ctx.Err(); err != nil {
			return err
		}

		rec, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			err = validate(src, rec)
		}
		if err != nil {
			// rows parsed before the failure still reach the consumer
			if ferr := p.flush(); ferr != nil {
				return ferr
			}
			return err
		}

		p.pending = append(p.pending, rec)
		if len(p.pending) >= p.opts.BatchSize || time.Since(p.lastFlush) >= p.opts.FlushInterval {
			if err := p.flush(); err != nil {
				return err
			}
		}
	}

	return p.flush()
}

func (p *pipeline) flush() error {
	if len(p.pending) == 0 {
		return nil
	}

	p.progress.RowsRead += len(p.pending)
	if p.progress.RowsRead > p.progress.TotalRows {
		// the source grew after the pre-scan
		p.progress.TotalRows = p.progress.RowsRead
	}

	b := Batch{Rows: p.pending, Progress: p.progress}
	p.pending = nil
	p.lastFlush = time.Now()

	p.logEvery.Do(func() {
		p.log.Debug().Ctx(p.ctx).
			Int("rows_read", b.Progress.RowsRead).
			Int("total_rows", b.Progress.TotalRows).
			Msg("load progress")
	})

	return p.send(b)
}

func (p *pipeline) send(b Batch) error {
	select {
	case p.out <- b:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

func validate(src csvSource, rec []string) error {
	for i, f := range rec {
		if !utf8.ValidString(f) {
			line, _ := src.FieldPos(i)
			return &InvalidEncodingError{Line: line, Field: i}
		}
	}
	return nil
}
