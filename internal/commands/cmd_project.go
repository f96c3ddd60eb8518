package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tabula/internal/core/session"
	"github.com/colonyops/tabula/internal/core/styles"
)

// stdinIsTerminal reports whether a confirmation can be asked. Package-level
// variable to allow test overrides.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// confirm asks a yes/no question. Package-level variable to allow test
// overrides.
var confirm = huhConfirm

func huhConfirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Overwrite").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

type ProjectCmd struct {
	flags  *Flags
	hide   []string
	show   []string
	output string
	yes    bool
}

// NewProjectCmd creates a new project command.
func NewProjectCmd(flags *Flags) *ProjectCmd {
	return &ProjectCmd{flags: flags}
}

// Register adds the project command to the application.
func (cmd *ProjectCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "project",
		Usage:     "Write a CSV file keeping only some of its columns",
		UsageText: "tabula project [--hide col]... [--show col]... [-o out.csv] <file|->",
		Description: `Loads the file, applies the column selection and saves the visible columns,
exactly like hiding columns in the editor and saving.

Without -o the input file is overwritten after confirmation. Use -o - to
write to stdout.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "hide",
				Usage:       "column to hide (repeatable)",
				Destination: &cmd.hide,
			},
			&cli.StringSliceFlag{
				Name:        "show",
				Usage:       "column to keep; all others are hidden (repeatable)",
				Destination: &cmd.show,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output path, - for stdout (defaults to the input file)",
				Destination: &cmd.output,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "overwrite existing files without asking",
				Destination: &cmd.yes,
			},
		},
		ShellComplete: CSVFileCompleter(cmd.flags),
		Action:        cmd.run,
	})
	return app
}

func (cmd *ProjectCmd) run(ctx context.Context, c *cli.Command) error {
	if len(cmd.hide) > 0 && len(cmd.show) > 0 {
		return errors.New("use either --hide or --show, not both")
	}

	cfg, err := cmd.flags.ValidConfig()
	if err != nil {
		return err
	}

	in := cmd.flags.input(c.Args().First())
	output := cmd.output
	if output == "" {
		if in.isStdin() {
			output = stdinName
		} else {
			output = in.name
		}
	}

	sess, err := loadInput(ctx, cfg, in, stderrProgress())
	if err != nil {
		if sess == nil {
			return err
		}
		return loadFailure(sess, err)
	}

	selected, err := cmd.selection(sess)
	if err != nil {
		return err
	}
	if _, err := sess.ApplyVisibility(selected); err != nil {
		return err
	}

	if output == stdinName {
		return sess.WriteVisible(c.Root().Writer)
	}

	if err := cmd.confirmOverwrite(output); err != nil {
		return err
	}
	if err := sess.Save(output); err != nil {
		return err
	}

	st := sess.Stats()
	_, _ = lipgloss.Fprintln(c.Root().ErrWriter, styles.TextSuccessStyle.Render(
		fmt.Sprintf("wrote %d rows, %d of %d columns to %s", st.Rows, st.VisibleColumns, st.Columns, output)))
	return nil
}

// selection returns the headers that stay visible.
func (cmd *ProjectCmd) selection(sess *session.Session) ([]string, error) {
	all := sess.AllColumns()

	names := cmd.hide
	if len(cmd.show) > 0 {
		names = cmd.show
	}
	var unknown []string
	for _, h := range names {
		if !slices.Contains(all, h) {
			unknown = append(unknown, fmt.Sprintf("%q", h))
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s (columns: %s)", session.ErrUnknownColumn, strings.Join(unknown, ", "), strings.Join(all, ", "))
	}

	if len(cmd.show) > 0 {
		return cmd.show, nil
	}
	return slices.DeleteFunc(all, func(h string) bool {
		return slices.Contains(cmd.hide, h)
	}), nil
}

func (cmd *ProjectCmd) confirmOverwrite(path string) error {
	if cmd.yes {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if !stdinIsTerminal() {
		return fmt.Errorf("%s exists; pass --yes to overwrite", path)
	}

	ok, err := confirm("Overwrite "+path+"?", "Hidden columns are left out of the written file.")
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return cli.Exit("cancelled", 1)
		}
		return err
	}
	if !ok {
		return cli.Exit("cancelled", 1)
	}
	return nil
}
