package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/doctor"
	"github.com/colonyops/tabula/internal/core/styles"
)

type DoctorCmd struct {
	flags  *Flags
	format string
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "doctor",
		Usage:     "Run health checks on your setup and CSV files",
		UsageText: "tabula doctor [options] [file...]",
		Description: `Checks the configuration and environment. Every file argument is loaded
and checked for unnamed or repeated headers, ragged rows and text that is
not valid UTF-8.`,
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

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	checks := []doctor.Check{
		doctor.NewConfigCheck(cmd.flags.Config, cmd.flags.ConfigPath),
		doctor.NewEnvironmentCheck(cmd.flags.LogFile),
	}
	for _, path := range c.Args().Slice() {
		checks = append(checks, doctor.NewFileCheck(path, cmd.flags.Config.Loader.Options()))
	}

	results := doctor.RunAll(ctx, checks)

	var err error
	if cmd.format == "json" {
		err = cmd.outputJSON(c.Root().Writer, results)
	} else {
		cmd.outputText(c.Root().Writer, results)
	}
	if err != nil {
		return err
	}

	if _, _, failed := doctor.Summary(results); failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func (cmd *DoctorCmd) outputJSON(w io.Writer, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (cmd *DoctorCmd) outputText(w io.Writer, results []doctor.Result) {
	divider := styles.TextMutedStyle.Render(strings.Repeat("─", 40))

	_, _ = lipgloss.Fprintln(w, styles.TextPrimaryBoldStyle.Render("tabula doctor"))
	_, _ = lipgloss.Fprintln(w, divider)
	_, _ = lipgloss.Fprintln(w)

	for _, result := range results {
		_, _ = lipgloss.Fprintln(w, styles.TextForegroundBoldStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.TextMutedStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.TextSuccessStyle.Render("✔")
			case doctor.StatusWarn:
				icon = styles.TextWarningStyle.Render("●")
			case doctor.StatusFail:
				icon = styles.TextErrorStyle.Render("✘")
			}

			_, _ = lipgloss.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = lipgloss.Fprintln(w)
	}

	passed, warned, failed := doctor.Summary(results)
	_, _ = lipgloss.Fprintln(w, fmt.Sprintf("%s  %s  %s",
		styles.TextSuccessStyle.Render(fmt.Sprintf("%d passed", passed)),
		styles.TextWarningStyle.Render(fmt.Sprintf("%d warnings", warned)),
		styles.TextErrorStyle.Render(fmt.Sprintf("%d failed", failed)),
	))
}
