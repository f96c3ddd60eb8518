package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/session"
	"github.com/colonyops/tabula/internal/core/styles"
)

type InfoCmd struct {
	flags  *Flags
	format string
}

// NewInfoCmd creates a new info command.
func NewInfoCmd(flags *Flags) *InfoCmd {
	return &InfoCmd{flags: flags}
}

// Register adds the info command to the application.
func (cmd *InfoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "info",
		Usage:     "Load a CSV file and print its columns and row count",
		UsageText: "tabula info [options] <file|->",
		Description: `Loads the file through the same background loader the editor uses and
prints a summary. Pass - or pipe input to read from stdin.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		ShellComplete: CSVFileCompleter(cmd.flags),
		Action:        cmd.run,
	})
	return app
}

type infoJSON struct {
	Source  string   `json:"source"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
	Partial bool     `json:"partial"`
	Error   string   `json:"error,omitempty"`
}

func (cmd *InfoCmd) run(ctx context.Context, c *cli.Command) error {
	cfg, err := cmd.flags.ValidConfig()
	if err != nil {
		return err
	}

	sess, loadErr := loadInput(ctx, cfg, cmd.flags.input(c.Args().First()), stderrProgress())
	if sess == nil {
		return loadErr
	}

	out := infoJSON{
		Source:  sess.Path(),
		Rows:    sess.RowCount(),
		Columns: sess.AllColumns(),
		Partial: sess.Partial(),
	}
	if loadErr != nil {
		out.Error = loadFailure(sess, loadErr).Error()
	}

	w := c.Root().Writer
	if cmd.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		cmd.outputText(w, out)
	}

	if loadErr != nil {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *InfoCmd) outputText(w io.Writer, out infoJSON) {
	_, _ = lipgloss.Fprintln(w, styles.TextPrimaryBoldStyle.Render(out.Source))
	_, _ = lipgloss.Fprintln(w, styles.TextMutedStyle.Render(strings.Repeat("─", 40)))
	_, _ = lipgloss.Fprintf(w, "%-8s %d\n", "rows", out.Rows)
	_, _ = lipgloss.Fprintf(w, "%-8s %d\n", "columns", len(out.Columns))

	width := len(fmt.Sprint(len(out.Columns)))
	for i, h := range out.Columns {
		_, _ = lipgloss.Fprintf(w, "  %s %s\n", styles.TextMutedStyle.Render(fmt.Sprintf("%*d", width, i+1)), h)
	}

	if out.Partial {
		_, _ = lipgloss.Fprintln(w)
		_, _ = lipgloss.Fprintln(w, styles.TextErrorStyle.Render("incomplete: "+out.Error))
	}
}

// loadFailure describes a load error for people rather than logs.
func loadFailure(sess *session.Session, err error) error {
	var encErr *loader.InvalidEncodingError
	if errors.As(err, &encErr) {
		return fmt.Errorf("%s: invalid UTF-8 on line %d; only %d rows could be read", sess.Path(), encErr.Line, sess.RowCount())
	}
	return fmt.Errorf("%s: load stopped after %d rows: %w", sess.Path(), sess.RowCount(), err)
}
