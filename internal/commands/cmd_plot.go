package commands

import (
	"context"
	"fmt"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/plot"
	"github.com/colonyops/tabula/internal/core/styles"
)

type PlotCmd struct {
	flags  *Flags
	x      string
	y      string
	kind   string
	title  string
	flip   bool
	output string
}

// NewPlotCmd creates a new plot command.
func NewPlotCmd(flags *Flags) *PlotCmd {
	return &PlotCmd{flags: flags}
}

// Register adds the plot command to the application.
func (cmd *PlotCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "plot",
		Usage:     "Export two columns as a chart workbook",
		UsageText: "tabula plot --x col --y col [options] <file|->",
		Description: `Writes an .xlsx workbook with the two columns on a data sheet and a chart
drawn from them. Numeric cells are written as numbers.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "x",
				Usage:       "column for the X axis",
				Required:    true,
				Destination: &cmd.x,
			},
			&cli.StringFlag{
				Name:        "y",
				Usage:       "column for the Y axis",
				Required:    true,
				Destination: &cmd.y,
			},
			&cli.StringFlag{
				Name:        "kind",
				Usage:       "chart kind (scatter, scatter-smooth, line); defaults to plot.kind from the config",
				Destination: &cmd.kind,
			},
			&cli.StringFlag{
				Name:        "title",
				Usage:       "chart title; defaults to plot.title from the config",
				Destination: &cmd.title,
			},
			&cli.BoolFlag{
				Name:        "flip",
				Usage:       "swap the X and Y columns",
				Destination: &cmd.flip,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "workbook path, - for stdout (defaults to <file>-plot.xlsx)",
				Destination: &cmd.output,
			},
		},
		ShellComplete: CSVFileCompleter(cmd.flags),
		Action:        cmd.run,
	})
	return app
}

func (cmd *PlotCmd) run(ctx context.Context, c *cli.Command) error {
	cfg, err := cmd.flags.ValidConfig()
	if err != nil {
		return err
	}

	kindName := cmd.kind
	if kindName == "" {
		kindName = cfg.Plot.Kind
	}
	kind, err := plot.ParseKind(kindName)
	if err != nil {
		return err
	}
	opts := plot.Options{Kind: kind, Title: cmd.title, Flip: cmd.flip}
	if opts.Title == "" {
		opts.Title = cfg.Plot.Title
	}

	in := cmd.flags.input(c.Args().First())
	sess, err := loadInput(ctx, cfg, in, stderrProgress())
	if err != nil {
		if sess == nil {
			return err
		}
		return loadFailure(sess, err)
	}

	series, err := sess.PlotData(cmd.x, cmd.y)
	if err != nil {
		return err
	}

	output := cmd.output
	if output == "" {
		if in.isStdin() {
			output = stdinName
		} else {
			output = plot.DefaultPath(in.name)
		}
	}

	exporter := plot.NewExporter()
	if output == stdinName {
		return exporter.Write(c.Root().Writer, series, opts)
	}
	if err := exporter.Export(output, series, opts); err != nil {
		return err
	}

	_, _ = lipgloss.Fprintln(c.Root().ErrWriter, styles.TextSuccessStyle.Render(
		fmt.Sprintf("%s chart of %d points written to %s", kind, len(series.X), output)))
	return nil
}
