package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/session"
)

// progressPrinter redraws a single status line while a file loads.
type progressPrinter struct {
	w     io.Writer
	name  string
	every time.Duration
	last  time.Time
}

func newProgressPrinter(w io.Writer, name string) *progressPrinter {
	return &progressPrinter{w: w, name: name, every: 100 * time.Millisecond}
}

func (p *progressPrinter) OnLoadProgress(rowsRead, totalRows int) {
	now := time.Now()
	if rowsRead < totalRows && now.Sub(p.last) < p.every {
		return
	}
	p.last = now

	pct := int(loader.Progress{RowsRead: rowsRead, TotalRows: totalRows}.Fraction() * 100)
	_, _ = fmt.Fprintf(p.w, "\rloading %s %3d%% (%d/%d rows)", p.name, pct, rowsRead, totalRows)
}

func (p *progressPrinter) OnLoadComplete() { p.clear() }

func (p *progressPrinter) OnLoadFailed(error) { p.clear() }

func (p *progressPrinter) clear() {
	_, _ = fmt.Fprint(p.w, "\r\x1b[2K")
}

// stderrProgress returns stderr when it is a terminal and nil otherwise.
func stderrProgress() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return nil
}

// loadInput reads in through a fresh session, reporting progress to
// progress when it is not nil. On a load error the partially loaded session
// is returned together with the error.
func loadInput(ctx context.Context, cfg *config.Config, in input, progress io.Writer) (*session.Session, error) {
	var obs session.Observer
	if progress != nil {
		obs = newProgressPrinter(progress, in.displayName())
	}

	sess := session.New(loader.New(cfg.Loader.Options()), obs)
	load, err := in.open(ctx, sess)
	if err != nil {
		return nil, err
	}
	return sess, sess.Drain(load)
}
