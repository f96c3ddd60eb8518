package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/history"
	"github.com/colonyops/tabula/internal/core/styles"
)

type RecentCmd struct {
	flags  *Flags
	format string
}

// NewRecentCmd creates a new recent command.
func NewRecentCmd(flags *Flags) *RecentCmd {
	return &RecentCmd{flags: flags}
}

// Register adds the recent command to the application.
func (cmd *RecentCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "recent",
		Usage:       "List recently opened files",
		UsageText:   "tabula recent [options]",
		Description: "Lists files opened in the editor, newest first. Files that no longer exist are marked missing.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.list,
		Commands: []*cli.Command{
			{
				Name:      "clear",
				Usage:     "Forget every recently opened file",
				UsageText: "tabula recent clear",
				Action:    cmd.clear,
			},
			{
				Name:          "forget",
				Usage:         "Remove files from the recent list",
				UsageText:     "tabula recent forget <file>...",
				ShellComplete: CSVFileCompleter(cmd.flags),
				Action:        cmd.forget,
			},
		},
	})

	return app
}

type recentJSON struct {
	history.Entry
	Missing bool `json:"missing,omitempty"`
}

func (cmd *RecentCmd) list(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.flags.RecentStore().List(ctx)
	if err != nil {
		return fmt.Errorf("read recent files: %w", err)
	}

	out := make([]recentJSON, len(entries))
	for i, e := range entries {
		_, statErr := os.Stat(e.Path)
		out[i] = recentJSON{Entry: e, Missing: statErr != nil}
	}

	w := c.Root().Writer
	if cmd.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	outputRecentText(w, out)
	return nil
}

func outputRecentText(w io.Writer, entries []recentJSON) {
	if len(entries) == 0 {
		_, _ = lipgloss.Fprintln(w, styles.TextMutedStyle.Render("no recent files"))
		return
	}
	for _, e := range entries {
		detail := fmt.Sprintf("%d rows, %d columns, %s", e.Rows, e.Columns, e.OpenedAt.Local().Format(time.DateTime))
		if e.Missing {
			detail = styles.TextWarningStyle.Render("missing")
		}
		_, _ = lipgloss.Fprintf(w, "%s  %s\n", e.Path, styles.TextMutedStyle.Render(detail))
	}
}

func (cmd *RecentCmd) clear(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.RecentStore().Clear(ctx); err != nil {
		return fmt.Errorf("clear recent files: %w", err)
	}
	_, _ = lipgloss.Fprintln(c.Root().ErrWriter, styles.TextSuccessStyle.Render("✔ recent files cleared"))
	return nil
}

func (cmd *RecentCmd) forget(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("expected at least one file")
	}

	store := cmd.flags.RecentStore()
	for _, arg := range c.Args().Slice() {
		path := absPath(arg)
		if err := store.Forget(ctx, path); err != nil {
			return fmt.Errorf("forget %s: %w", path, err)
		}
	}
	return nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
